package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]] struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a repository over the tables of P and O.
func NewGORMCatalogRepository[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]](db *gorm.DB) *GORMCatalogRepository[P, O, PP, OP] {
	return &GORMCatalogRepository[P, O, PP, OP]{
		db: db,
	}
}

func (r *GORMCatalogRepository[P, O, PP, OP]) parentTable() string {
	return PP(new(P)).TableName()
}

func (r *GORMCatalogRepository[P, O, PP, OP]) optionTable() string {
	return OP(new(O)).TableName()
}

// ListParents retrieves all parents.
func (r *GORMCatalogRepository[P, O, PP, OP]) ListParents(ctx context.Context) ([]P, error) {
	var parents []P
	if err := r.db.WithContext(ctx).Find(&parents).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.parentTable(), err)
	}
	return parents, nil
}

// ListParentsByName retrieves the parents whose name equals name exactly.
func (r *GORMCatalogRepository[P, O, PP, OP]) ListParentsByName(ctx context.Context, name string) ([]P, error) {
	var parents []P
	if err := r.db.WithContext(ctx).Where("name = ?", name).Find(&parents).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s by name %q: %w", r.parentTable(), name, err)
	}
	return parents, nil
}

// TopParentsByPrice retrieves up to limit parents ordered by price, highest first.
func (r *GORMCatalogRepository[P, O, PP, OP]) TopParentsByPrice(ctx context.Context, limit int) ([]P, error) {
	var parents []P
	if err := r.db.WithContext(ctx).Order("price DESC").Limit(limit).Find(&parents).Error; err != nil {
		return nil, fmt.Errorf("failed to get top %d %s by price: %w", limit, r.parentTable(), err)
	}
	return parents, nil
}

// ListParentsByOptionName retrieves parents owning at least one option named name.
func (r *GORMCatalogRepository[P, O, PP, OP]) ListParentsByOptionName(ctx context.Context, name string) ([]P, error) {
	db := r.db.WithContext(ctx)
	owners := db.Model(new(O)).
		Select(OP(new(O)).ParentColumn()).
		Where("LOWER(name) = LOWER(?)", name)

	var parents []P
	if err := db.Where("id IN (?)", owners).Find(&parents).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s with option %q: %w", r.parentTable(), name, err)
	}
	return parents, nil
}

// GetParent retrieves a single parent by its ID.
func (r *GORMCatalogRepository[P, O, PP, OP]) GetParent(ctx context.Context, id uuid.UUID) (*P, error) {
	var parent P
	if err := r.db.WithContext(ctx).First(&parent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with ID %s: %w", r.parentTable(), id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by ID %s: %w", r.parentTable(), id, err)
	}
	return &parent, nil
}

// CreateParent inserts a parent. The caller assigns the ID.
func (r *GORMCatalogRepository[P, O, PP, OP]) CreateParent(ctx context.Context, parent *P) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(parent).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.parentTable(), err)
	}
	return nil
}

// UpdateParent writes every column of parent. It never inserts: if the row
// is gone ErrConflict is returned.
func (r *GORMCatalogRepository[P, O, PP, OP]) UpdateParent(ctx context.Context, parent *P) error {
	res := r.db.WithContext(ctx).Model(parent).Select("*").Omit(clause.Associations).Updates(parent)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.parentTable(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s: %w", r.parentTable(), PP(parent).GetID(), ErrConflict)
	}
	return nil
}

// DeleteParent deletes the options of the parent and then the parent in one transaction.
func (r *GORMCatalogRepository[P, O, PP, OP]) DeleteParent(ctx context.Context, id uuid.UUID) error {
	column := OP(new(O)).ParentColumn()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(column+" = ?", id).Delete(new(O)).Error; err != nil {
			return fmt.Errorf("failed to delete %s of %s: %w", r.optionTable(), id, err)
		}
		res := tx.Delete(new(P), "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", r.parentTable(), res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s with ID %s: %w", r.parentTable(), id, ErrNotFound)
		}
		return nil
	})
}

// ListOptions retrieves the options owned by parentID.
func (r *GORMCatalogRepository[P, O, PP, OP]) ListOptions(ctx context.Context, parentID uuid.UUID) ([]O, error) {
	var options []O
	column := OP(new(O)).ParentColumn()
	if err := r.db.WithContext(ctx).Where(column+" = ?", parentID).Find(&options).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s of %s: %w", r.optionTable(), parentID, err)
	}
	return options, nil
}

// GetOption retrieves a single option by its ID regardless of its parent.
func (r *GORMCatalogRepository[P, O, PP, OP]) GetOption(ctx context.Context, id uuid.UUID) (*O, error) {
	var option O
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with ID %s: %w", r.optionTable(), id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by ID %s: %w", r.optionTable(), id, err)
	}
	return &option, nil
}

// CreateOption inserts an option. The caller assigns the ID and parent ID.
func (r *GORMCatalogRepository[P, O, PP, OP]) CreateOption(ctx context.Context, option *O) error {
	if err := r.db.WithContext(ctx).Create(option).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.optionTable(), err)
	}
	return nil
}

// UpdateOption writes every column of option, returning ErrConflict if the row is gone.
func (r *GORMCatalogRepository[P, O, PP, OP]) UpdateOption(ctx context.Context, option *O) error {
	res := r.db.WithContext(ctx).Model(option).Select("*").Updates(option)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.optionTable(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s: %w", r.optionTable(), OP(option).GetID(), ErrConflict)
	}
	return nil
}

// DeleteOption deletes an option by its ID.
func (r *GORMCatalogRepository[P, O, PP, OP]) DeleteOption(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(new(O), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.optionTable(), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s: %w", r.optionTable(), id, ErrNotFound)
	}
	return nil
}
