package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ougirez/airquality/internal/pkg/constants"
)

// Provider отдает Store по требованию. Ошибки недоступной базы приходят как
// constants.ErrStoreUnavailable.
type Provider interface {
	Get(ctx context.Context) (Store, error)
	// Release проверяет ошибку операции над s: если база не отвечает на ping,
	// соединение сбрасывается, а ошибка становится ErrStoreUnavailable.
	Release(ctx context.Context, s Store, err error) error
}

type OpenFunc func(ctx context.Context) (Store, error)

// Lazy открывает Store при первом обращении и переоткрывает после потери соединения.
type Lazy struct {
	mu    sync.Mutex
	open  OpenFunc
	store Store
}

func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) Get(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}

	s, err := l.open(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	l.store = s
	return s, nil
}

func (l *Lazy) Release(ctx context.Context, s Store, err error) error {
	if err == nil || s == nil {
		return err
	}

	if pingErr := s.Ping(ctx); pingErr == nil {
		return err
	}

	l.mu.Lock()
	if l.store == s {
		l.store = nil
		_ = s.Close()
	}
	l.mu.Unlock()

	return unavailable(err)
}

func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

func unavailable(cause error) error {
	return fmt.Errorf("%w: %s", constants.ErrStoreUnavailable, cause.Error())
}
