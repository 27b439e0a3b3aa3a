package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Parent is implemented by the root entities of a catalog (products, inventory items).
// Methods are defined on the pointer type so GORM and the services can mutate them.
type Parent interface {
	TableName() string
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetName() string
	GetPrice() float64
	Assign(req ParentRequest)
	ToDTO() ParentDTO
}

// Option is implemented by the sub-resource entities owned by a Parent.
type Option interface {
	TableName() string
	// ParentColumn is the foreign key column referencing the parent table.
	ParentColumn() string
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetParentID() uuid.UUID
	SetParentID(id uuid.UUID)
	GetName() string
	Assign(req OptionRequest)
	ToDTO() OptionDTO
}

// ParentRequest is the create/update body for a parent resource.
type ParentRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	DeliveryPrice float64 `json:"deliveryprice"`
}

// ParentDTO is the wire representation of a parent resource.
type ParentDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DeliveryPrice float64   `json:"deliveryprice"`
}

// OptionRequest is the create/update body for an option.
type OptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OptionDTO is the wire representation of an option. The parent reference is
// serialized under ParentKey ("productid", "inventoryitemid").
type OptionDTO struct {
	ID          uuid.UUID
	ParentID    uuid.UUID
	ParentKey   string
	Name        string
	Description string
}

func (d OptionDTO) MarshalJSON() ([]byte, error) {
	key := d.ParentKey
	if key == "" {
		key = "parentid"
	}
	return json.Marshal(map[string]interface{}{
		"id":          d.ID,
		key:           d.ParentID,
		"name":        d.Name,
		"description": d.Description,
	})
}

// ParentPtr lets generic code construct a *P and use it as a Parent.
type ParentPtr[P any] interface {
	*P
	Parent
}

// OptionPtr lets generic code construct an *O and use it as an Option.
type OptionPtr[O any] interface {
	*O
	Option
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	StatusCode int    `json:"statuscode"`
	Message    string `json:"message"`
}
