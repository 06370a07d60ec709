package model

// ChangeInfo describes an edit to a node. Nil fields are left unchanged.
type ChangeInfo struct {
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
}
