package store

import (
	"context"

	"github.com/ougirez/airquality/internal/domain"
)

type VisitorStore interface {
	InsertVisitor(ctx context.Context, nom string) (*domain.Visitor, error)
	ListVisitors(ctx context.Context, limit uint64) ([]*domain.Visitor, error)
}

var visitorColumns = []string{"id", "nom"}

func (s *store) InsertVisitor(ctx context.Context, nom string) (*domain.Visitor, error) {
	query := s.builder().Insert(tableVisitors).
		Columns(visitorColumns[1:]...).
		Values(nom).
		Suffix("RETURNING id")

	visitor := &domain.Visitor{Nom: nom}
	if err := s.pool.Getx(ctx, &visitor.ID, query); err != nil {
		return nil, wrapErr(err)
	}

	return visitor, nil
}

func (s *store) ListVisitors(ctx context.Context, limit uint64) ([]*domain.Visitor, error) {
	query := s.builder().Select(visitorColumns...).
		From(tableVisitors).
		OrderBy("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var selected []*domain.Visitor
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
