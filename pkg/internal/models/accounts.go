package models

// Account is the local session identity. Only the fields the sync core
// needs to tell "own" traffic apart from everyone else's.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}
