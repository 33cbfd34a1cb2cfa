package domain

import (
	"context"
	"fmt"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/core/tx"
	"cgl/pkg/logger"
)

// ContentService provides the lifecycle of numbered content: validation,
// visible-number assignment, persistence and hooks.
type ContentService[T Numbered] struct {
	repo      ContentRepository[T]
	txManager tx.Manager
	assigner  *numbering.Assigner
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// ContentServiceConfig configures the content service.
type ContentServiceConfig[T Numbered] struct {
	Repo       ContentRepository[T]
	TxManager  tx.Manager
	Assigner   *numbering.Assigner
	EntityName string
}

// NewContentService creates a new content service.
func NewContentService[T Numbered](cfg ContentServiceConfig[T]) *ContentService[T] {
	return &ContentService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		assigner:   cfg.Assigner,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *ContentService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Repo returns the underlying repository.
func (s *ContentService[T]) Repo() ContentRepository[T] {
	return s.repo
}

func (s *ContentService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *ContentService[T]) normalizeGetErr(err error, entityID any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID)
}

// Create stores a new entity. When explicit is nil the next visible number of
// the entity's scope is assigned, retrying on concurrent conflicts; otherwise
// the explicit number is used as is and a conflict is reported to the caller.
func (s *ContentService[T]) Create(ctx context.Context, entity T, explicit *numbering.VisibleNumber) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	// Each attempt runs in its own transaction so that a uniqueness
	// violation aborts only that attempt.
	create := func(ctx context.Context, number numbering.VisibleNumber) error {
		entity.SetVisibleNumber(number)
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.repo.Create(ctx, entity)
		})
	}

	var (
		number numbering.VisibleNumber
		err    error
	)
	if explicit != nil {
		number, err = numbering.AssignExplicit(ctx, *explicit, create)
	} else {
		number, err = s.assigner.Assign(ctx, entity.NumberingScope(), create)
	}
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("create %s: %w", s.entityName, err))
	}

	logger.Info(ctx, "content created",
		"entity", s.entityName,
		"id", entity.GetID().String(),
		"scope", entity.NumberingScope().Key(),
		"visible_number", number.String(),
	)

	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// GetByID retrieves a live entity by ID.
func (s *ContentService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// Update persists changes made to an entity loaded with GetByID.
func (s *ContentService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, entity)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("update %s: %w", s.entityName, err))
	}

	if err := s.hooks.Run(ctx, AfterUpdate, entity); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// Delete performs soft delete. The visible number stays taken.
func (s *ContentService[T]) Delete(ctx context.Context, entityID id.ID) error {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}

	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entityID, true)
	})
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}

	if err := s.hooks.Run(ctx, AfterDelete, entity); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// List retrieves entities ordered by visible number.
func (s *ContentService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	filter.Normalize()
	if filter.Range.IsEmpty() {
		return ListResult[T]{Items: []T{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}
	return s.repo.List(ctx, filter)
}

// Exists checks if a live entity exists.
func (s *ContentService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
