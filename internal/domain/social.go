package domain

// Follow is a directed edge from follower to following. No approval step.
type Follow struct {
	Base
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

// Contact is an unauthenticated message submitted through the contact form.
type Contact struct {
	Base
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
