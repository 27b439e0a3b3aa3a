package models

import "github.com/google/uuid"

// Product represents a product in the store.
type Product struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(17);not null" validate:"required,max=17"`
	Description   string          `json:"description" gorm:"type:varchar(35);not null" validate:"required,max=35"`
	Price         float64         `json:"price" gorm:"not null" validate:"gte=1,lte=5000"`
	DeliveryPrice float64         `json:"deliveryprice" gorm:"not null" validate:"gte=0,lte=5000"`
	Options       []ProductOption `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (*Product) TableName() string { return "products" }
func (p *Product) GetID() uuid.UUID { return p.ID }
func (p *Product) SetID(id uuid.UUID) { p.ID = id }
func (p *Product) GetName() string { return p.Name }
func (p *Product) GetPrice() float64 { return p.Price }

// Assign replaces every mutable field with the request values.
func (p *Product) Assign(req ParentRequest) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.DeliveryPrice = req.DeliveryPrice
}

func (p *Product) ToDTO() ParentDTO {
	return ParentDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DeliveryPrice: p.DeliveryPrice,
	}
}

// ProductOption is a named attribute of a product, e.g. Colour or Capacity.
type ProductOption struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `json:"productid" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(9);not null" validate:"required,max=9"`
	Description string    `json:"description" gorm:"type:varchar(23);not null" validate:"required,max=23"`
}

func (*ProductOption) TableName() string { return "product_options" }
func (*ProductOption) ParentColumn() string { return "product_id" }
func (o *ProductOption) GetID() uuid.UUID { return o.ID }
func (o *ProductOption) SetID(id uuid.UUID) { o.ID = id }
func (o *ProductOption) GetParentID() uuid.UUID { return o.ProductID }
func (o *ProductOption) SetParentID(id uuid.UUID) {
	o.ProductID = id
}
func (o *ProductOption) GetName() string { return o.Name }

func (o *ProductOption) Assign(req OptionRequest) {
	o.Name = req.Name
	o.Description = req.Description
}

func (o *ProductOption) ToDTO() OptionDTO {
	return OptionDTO{
		ID:          o.ID,
		ParentID:    o.ProductID,
		ParentKey:   "productid",
		Name:        o.Name,
		Description: o.Description,
	}
}
