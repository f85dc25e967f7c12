// Package id generates the prefixed identifiers used for every stored entity.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. The prefix makes an ID self-describing in logs and
// keeps IDs of different kinds from colliding in shared indexes.
const (
	PrefixUser         = "usr"
	PrefixBook         = "book"
	PrefixClub         = "club"
	PrefixReview       = "rev"
	PrefixLike         = "like"
	PrefixComment      = "cmt"
	PrefixFollow       = "fol"
	PrefixThread       = "thr"
	PrefixNotification = "ntf"
	PrefixContact      = "ctc"
	PrefixJoinRequest  = "jreq"
	PrefixInvitation   = "inv"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "club-V1StGXR8_Z5jdHi6B-myT").
//
// The NanoID alphabet (A-Za-z0-9_-) never contains ':' which the store
// uses as its key separator.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return generated
}
