package books

import (
	"context"

	"github.com/booktrack/booktrack/internal/domain"
)

// Repository defines the interface for book data operations.
type Repository interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
}
