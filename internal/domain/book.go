// Package domain contains the core business entities.
package domain

// Book represents a single book in the catalog.
// Rows are managed outside this service; the API only reads them.
type Book struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
