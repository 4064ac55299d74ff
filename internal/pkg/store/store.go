package store

import (
	"context"

	"github.com/ougirez/airquality/internal/pkg/store/xdb"
)

type Pool = xdb.Pool

type Store interface {
	AirQualityStore
	VisitorStore
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}

func (s *store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *store) Close() error {
	return s.pool.Close()
}
