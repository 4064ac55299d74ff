package visitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
)

const (
	MaxNameLength = 100
	DefaultLimit  = 50
)

var nameRule = fmt.Sprintf("required,max=%d", MaxNameLength)

type Service struct {
	stores   store.Provider
	validate *validator.Validate
}

// NewVisitorService stores может быть nil: базы нет вовсе, Add и List
// возвращают constants.ErrStoreUnavailable.
func NewVisitorService(stores store.Provider) *Service {
	return &Service{
		stores:   stores,
		validate: validator.New(),
	}
}

func (s *Service) store(ctx context.Context) (store.Store, error) {
	if s.stores == nil {
		return nil, constants.ErrStoreUnavailable
	}
	return s.stores.Get(ctx)
}

// Add записывает посетителя. Пустое имя не пишется и не считается ошибкой.
func (s *Service) Add(ctx context.Context, nom string) (*domain.Visitor, error) {
	nom = strings.TrimSpace(nom)
	if nom == "" {
		return nil, nil
	}

	if err := s.validate.Var(nom, nameRule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%s: %w", verrs[0].Tag(), constants.ErrInvalidVisitorName)
		}
		return nil, fmt.Errorf("validate.Var: %w", err)
	}

	st, err := s.store(ctx)
	if err != nil {
		return nil, err
	}

	visitor, err := st.InsertVisitor(ctx, nom)
	if err = s.stores.Release(ctx, st, err); err != nil {
		return nil, fmt.Errorf("store.InsertVisitor: %w", err)
	}

	logger.Infof(ctx, "visitor %d added", visitor.ID)
	return visitor, nil
}

func (s *Service) List(ctx context.Context, limit uint64) ([]*domain.Visitor, error) {
	if limit == 0 {
		limit = DefaultLimit
	}

	st, err := s.store(ctx)
	if err != nil {
		return nil, err
	}

	visitors, err := st.ListVisitors(ctx, limit)
	if err = s.stores.Release(ctx, st, err); err != nil {
		return nil, fmt.Errorf("store.ListVisitors: %w", err)
	}
	return visitors, nil
}
