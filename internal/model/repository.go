package model

// Repository is one entry of the public repository list.
//
// Description is a pointer because GitHub sends null for repositories
// without one; templates should go through the truncated card text instead.
type Repository struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"html_url"`
	Description *string `json:"description"`
}
