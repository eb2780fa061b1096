package catalogs

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
)

// Hook is a callback run at a lifecycle point of a catalog entity.
type Hook[T any] func(ctx context.Context, entity T) error

// Service provides business logic shared by all catalog entities.
// Entity-specific behavior is attached through the before-create and
// before-update hooks (see NewWarehouseService).
type Service[T entity.Validatable] struct {
	repo      Repository[T]
	txManager tx.Manager

	beforeCreate []Hook[T]
	beforeUpdate []Hook[T]

	// entityName for error messages
	entityName string
}

// NewService creates a catalog service.
func NewService[T entity.Validatable](entityName string, repo Repository[T], txManager tx.Manager) *Service[T] {
	return &Service[T]{
		repo:       repo,
		txManager:  txManager,
		entityName: entityName,
	}
}

// OnBeforeCreate registers a hook to run before create.
func (s *Service[T]) OnBeforeCreate(hook Hook[T]) {
	s.beforeCreate = append(s.beforeCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (s *Service[T]) OnBeforeUpdate(hook Hook[T]) {
	s.beforeUpdate = append(s.beforeUpdate, hook)
}

// Create creates a new catalog entity.
func (s *Service[T]) Create(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	for _, hook := range s.beforeCreate {
		if err := hook(ctx, e); err != nil {
			return err
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
}

// GetByID retrieves entity by ID.
func (s *Service[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return e, s.normalizeGetErr(err, entityID.String())
	}
	return e, nil
}

// GetByCode retrieves entity by code.
func (s *Service[T]) GetByCode(ctx context.Context, code string) (T, error) {
	e, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return e, s.normalizeGetErr(err, code)
	}
	return e, nil
}

// Update updates an existing entity.
func (s *Service[T]) Update(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	for _, hook := range s.beforeUpdate {
		if err := hook(ctx, e); err != nil {
			return err
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
}

// Delete performs soft delete.
func (s *Service[T]) Delete(ctx context.Context, entityID id.ID) error {
	if _, err := s.repo.GetByID(ctx, entityID); err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeletionMark(ctx, entityID, true); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
}

// List retrieves entities with filtering.
func (s *Service[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *Service[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

func (s *Service[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *Service[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// NewWarehouseService builds the warehouse catalog service with the
// default-flag housekeeping hooks attached.
func NewWarehouseService(repo WarehouseRepository, txManager tx.Manager) *Service[*Warehouse] {
	svc := NewService[*Warehouse]("warehouse", repo, txManager)

	clearDefault := func(ctx context.Context, wh *Warehouse) error {
		if wh.IsDefault {
			return repo.ClearDefault(ctx)
		}
		return nil
	}

	svc.OnBeforeCreate(clearDefault)
	svc.OnBeforeUpdate(clearDefault)

	return svc
}
