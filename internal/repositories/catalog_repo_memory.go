package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// MemoryCatalogRepository is an in-memory implementation of CatalogRepository.
// Iteration follows insertion order.
type MemoryCatalogRepository[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]] struct {
	mu          sync.RWMutex
	parents     map[uuid.UUID]P
	parentOrder []uuid.UUID
	options     map[uuid.UUID]O
	optionOrder []uuid.UUID
}

// NewMemoryCatalogRepository creates a new, empty MemoryCatalogRepository.
func NewMemoryCatalogRepository[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]]() *MemoryCatalogRepository[P, O, PP, OP] {
	return &MemoryCatalogRepository[P, O, PP, OP]{
		parents: make(map[uuid.UUID]P),
		options: make(map[uuid.UUID]O),
	}
}

func (r *MemoryCatalogRepository[P, O, PP, OP]) filterParents(keep func(PP) bool) []P {
	parents := make([]P, 0, len(r.parentOrder))
	for _, id := range r.parentOrder {
		p := r.parents[id]
		if keep(PP(&p)) {
			parents = append(parents, p)
		}
	}
	return parents
}

// ListParents returns all parents.
func (r *MemoryCatalogRepository[P, O, PP, OP]) ListParents(ctx context.Context) ([]P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterParents(func(PP) bool { return true }), nil
}

// ListParentsByName returns the parents whose name equals name.
func (r *MemoryCatalogRepository[P, O, PP, OP]) ListParentsByName(ctx context.Context, name string) ([]P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterParents(func(p PP) bool { return p.GetName() == name }), nil
}

// TopParentsByPrice returns up to limit parents, most expensive first.
func (r *MemoryCatalogRepository[P, O, PP, OP]) TopParentsByPrice(ctx context.Context, limit int) ([]P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parents := r.filterParents(func(PP) bool { return true })
	sort.SliceStable(parents, func(i, j int) bool {
		return PP(&parents[i]).GetPrice() > PP(&parents[j]).GetPrice()
	})
	if len(parents) > limit {
		parents = parents[:limit]
	}
	return parents, nil
}

// ListParentsByOptionName returns parents owning an option named name, ignoring case.
func (r *MemoryCatalogRepository[P, O, PP, OP]) ListParentsByOptionName(ctx context.Context, name string) ([]P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[uuid.UUID]bool)
	for _, o := range r.options {
		option := OP(&o)
		if strings.EqualFold(option.GetName(), name) {
			owners[option.GetParentID()] = true
		}
	}
	return r.filterParents(func(p PP) bool { return owners[p.GetID()] }), nil
}

// GetParent returns a parent by its ID.
func (r *MemoryCatalogRepository[P, O, PP, OP]) GetParent(ctx context.Context, id uuid.UUID) (*P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parent, ok := r.parents[id]
	if !ok {
		return nil, fmt.Errorf("parent with ID %s: %w", id, ErrNotFound)
	}
	return &parent, nil
}

// CreateParent adds a new parent.
func (r *MemoryCatalogRepository[P, O, PP, OP]) CreateParent(ctx context.Context, parent *P) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := PP(parent).GetID()
	if id == uuid.Nil {
		return fmt.Errorf("parent ID must be assigned before create")
	}
	if _, exists := r.parents[id]; exists {
		return fmt.Errorf("parent with ID %s already exists", id)
	}
	r.parents[id] = *parent
	r.parentOrder = append(r.parentOrder, id)
	return nil
}

// UpdateParent replaces an existing parent.
func (r *MemoryCatalogRepository[P, O, PP, OP]) UpdateParent(ctx context.Context, parent *P) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := PP(parent).GetID()
	if _, ok := r.parents[id]; !ok {
		return fmt.Errorf("parent with ID %s: %w", id, ErrConflict)
	}
	r.parents[id] = *parent
	return nil
}

// DeleteParent removes a parent together with its options.
func (r *MemoryCatalogRepository[P, O, PP, OP]) DeleteParent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parents[id]; !ok {
		return fmt.Errorf("parent with ID %s: %w", id, ErrNotFound)
	}
	for optionID, o := range r.options {
		if OP(&o).GetParentID() == id {
			delete(r.options, optionID)
			r.optionOrder = without(r.optionOrder, optionID)
		}
	}
	delete(r.parents, id)
	r.parentOrder = without(r.parentOrder, id)
	return nil
}

// ListOptions returns the options owned by parentID.
func (r *MemoryCatalogRepository[P, O, PP, OP]) ListOptions(ctx context.Context, parentID uuid.UUID) ([]O, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	options := make([]O, 0)
	for _, id := range r.optionOrder {
		o := r.options[id]
		if OP(&o).GetParentID() == parentID {
			options = append(options, o)
		}
	}
	return options, nil
}

// GetOption returns an option by its ID.
func (r *MemoryCatalogRepository[P, O, PP, OP]) GetOption(ctx context.Context, id uuid.UUID) (*O, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	option, ok := r.options[id]
	if !ok {
		return nil, fmt.Errorf("option with ID %s: %w", id, ErrNotFound)
	}
	return &option, nil
}

// CreateOption adds a new option. Its parent must exist.
func (r *MemoryCatalogRepository[P, O, PP, OP]) CreateOption(ctx context.Context, option *O) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o := OP(option)
	if o.GetID() == uuid.Nil {
		return fmt.Errorf("option ID must be assigned before create")
	}
	if _, exists := r.options[o.GetID()]; exists {
		return fmt.Errorf("option with ID %s already exists", o.GetID())
	}
	if _, ok := r.parents[o.GetParentID()]; !ok {
		return fmt.Errorf("foreign key violation: parent %s does not exist", o.GetParentID())
	}
	r.options[o.GetID()] = *option
	r.optionOrder = append(r.optionOrder, o.GetID())
	return nil
}

// UpdateOption replaces an existing option.
func (r *MemoryCatalogRepository[P, O, PP, OP]) UpdateOption(ctx context.Context, option *O) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := OP(option).GetID()
	if _, ok := r.options[id]; !ok {
		return fmt.Errorf("option with ID %s: %w", id, ErrConflict)
	}
	r.options[id] = *option
	return nil
}

// DeleteOption removes an option by its ID.
func (r *MemoryCatalogRepository[P, O, PP, OP]) DeleteOption(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.options[id]; !ok {
		return fmt.Errorf("option with ID %s: %w", id, ErrNotFound)
	}
	delete(r.options, id)
	r.optionOrder = without(r.optionOrder, id)
	return nil
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
