package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text is trimmed", in: "  loved the ending \n", want: "loved the ending"},
		{name: "comparison is not markup", in: "chapter 3 < chapter 4", want: "chapter 3 < chapter 4"},
		{name: "bold", in: "<p>This is <strong>bold</strong></p>", want: "This is **bold**"},
		{name: "italic", in: "<em>wow</em>", want: "*wow*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Paragraphs(t *testing.T) {
	got := Normalize("<p>First.</p><p>Second.</p>")
	assert.Contains(t, got, "First.")
	assert.Contains(t, got, "Second.")
	assert.NotContains(t, got, "<p>")
}
