package books

import (
	"context"
	"fmt"

	"github.com/booktrack/booktrack/internal/domain"
)

// Service implements book listing business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListBooks returns every book in the catalog. Order is whatever the
// database returns; callers must not rely on it being stable.
func (s *Service) ListBooks(ctx context.Context) ([]domain.Book, error) {
	list, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}
