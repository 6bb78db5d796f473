// Package postgres provides the PostgreSQL implementation of the books repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/booktrack/booktrack/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the books.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListBooks retrieves all books. The connection is leased from the pool
// for the duration of the query and released on every path.
func (r *Repository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	query := `
		SELECT id, title
		FROM books
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Book, 0)
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(&book.ID, &book.Title); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		list = append(list, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return list, nil
}
