package models

// Session holds the authenticated identity for the current user. Token and
// DisplayName are always both present or both absent, never partial.
type Session struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name"`
}
