package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an update matched no row, i.e. the record
	// changed or vanished between read and write.
	ErrConflict = errors.New("record changed or removed before update")
)

// CatalogRepository defines data access for one parent/option table pair.
type CatalogRepository[P any, O any] interface {
	ListParents(ctx context.Context) ([]P, error)
	ListParentsByName(ctx context.Context, name string) ([]P, error)
	TopParentsByPrice(ctx context.Context, limit int) ([]P, error)
	// ListParentsByOptionName matches option names case-insensitively.
	ListParentsByOptionName(ctx context.Context, name string) ([]P, error)
	GetParent(ctx context.Context, id uuid.UUID) (*P, error)
	CreateParent(ctx context.Context, parent *P) error
	UpdateParent(ctx context.Context, parent *P) error
	// DeleteParent removes the parent and all of its options atomically.
	DeleteParent(ctx context.Context, id uuid.UUID) error

	ListOptions(ctx context.Context, parentID uuid.UUID) ([]O, error)
	GetOption(ctx context.Context, id uuid.UUID) (*O, error)
	CreateOption(ctx context.Context, option *O) error
	UpdateOption(ctx context.Context, option *O) error
	DeleteOption(ctx context.Context, id uuid.UUID) error
}
