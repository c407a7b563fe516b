package services

import (
	"context"
	"strings"

	"outlay/internal/core"
)

// CategoryService manages the classification buckets expenses post against.
type CategoryService struct {
	store CategoryStore
	audit AuditLogger
}

func NewCategoryService(store CategoryStore, audit AuditLogger) *CategoryService {
	return &CategoryService{store: store, audit: orNopAudit(audit)}
}

func (s *CategoryService) Create(ctx context.Context, actor string, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.audit.Record(ctx, actor, "category.created", map[string]any{
		"category_id": created.ID,
		"name":        created.Name,
	})
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, actor string, c core.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "category.updated", map[string]any{"category_id": c.ID})
	return nil
}

// Deactivate retires a category without deleting it; it stops appearing in
// active listings but its history stays intact.
func (s *CategoryService) Deactivate(ctx context.Context, actor string, id int64) error {
	if err := s.store.SetCategoryActive(ctx, id, false); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "category.deactivated", map[string]any{"category_id": id})
	return nil
}

func (s *CategoryService) Activate(ctx context.Context, actor string, id int64) error {
	if err := s.store.SetCategoryActive(ctx, id, true); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "category.activated", map[string]any{"category_id": id})
	return nil
}

// Delete removes a category outright. The store refuses when any expense or
// budget references it; deactivation is the supported path in that case.
func (s *CategoryService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "category.deleted", map[string]any{"category_id": id})
	return nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]core.Category, error) {
	return s.store.ListCategories(ctx, activeOnly)
}
