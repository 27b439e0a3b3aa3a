package models

import (
	"fmt"

	"github.com/google/uuid"
)

// InventoryItem is a stocked item. It mirrors Product with wider text limits.
type InventoryItem struct {
	ID            uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string                `json:"name" gorm:"type:varchar(35);not null" validate:"required,max=35"`
	Description   string                `json:"description" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Price         float64               `json:"price" gorm:"not null" validate:"gte=1,lte=5000"`
	DeliveryPrice float64               `json:"deliveryprice" gorm:"not null" validate:"gte=0,lte=5000"`
	Options       []InventoryItemOption `json:"-" gorm:"foreignKey:InventoryItemID;constraint:OnDelete:CASCADE"`
}

func (*InventoryItem) TableName() string { return "inventory_items" }
func (i *InventoryItem) GetID() uuid.UUID { return i.ID }
func (i *InventoryItem) SetID(id uuid.UUID) { i.ID = id }
func (i *InventoryItem) GetName() string { return i.Name }
func (i *InventoryItem) GetPrice() float64 { return i.Price }

func (i *InventoryItem) Assign(req ParentRequest) {
	i.Name = req.Name
	i.Description = req.Description
	i.Price = req.Price
	i.DeliveryPrice = req.DeliveryPrice
}

func (i *InventoryItem) ToDTO() ParentDTO {
	return ParentDTO{
		ID:            i.ID,
		Name:          i.Name,
		Description:   i.Description,
		Price:         i.Price,
		DeliveryPrice: i.DeliveryPrice,
	}
}

func (i *InventoryItem) String() string {
	return fmt.Sprintf("ItemId: %s, Name: %s, Description: %s, Price: %.2f, Shipping: %.2f",
		i.ID, i.Name, i.Description, i.Price, i.DeliveryPrice)
}

// InventoryItemOption is a named attribute of an inventory item.
type InventoryItemOption struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	InventoryItemID uuid.UUID `json:"inventoryitemid" gorm:"type:uuid;not null;index"`
	Name            string    `json:"name" gorm:"type:varchar(35);not null" validate:"required,max=35"`
	Description     string    `json:"description" gorm:"type:varchar(100);not null" validate:"required,max=100"`
}

func (*InventoryItemOption) TableName() string { return "inventory_item_options" }
func (*InventoryItemOption) ParentColumn() string { return "inventory_item_id" }
func (o *InventoryItemOption) GetID() uuid.UUID { return o.ID }
func (o *InventoryItemOption) SetID(id uuid.UUID) { o.ID = id }
func (o *InventoryItemOption) GetParentID() uuid.UUID {
	return o.InventoryItemID
}
func (o *InventoryItemOption) SetParentID(id uuid.UUID) {
	o.InventoryItemID = id
}
func (o *InventoryItemOption) GetName() string { return o.Name }

func (o *InventoryItemOption) Assign(req OptionRequest) {
	o.Name = req.Name
	o.Description = req.Description
}

func (o *InventoryItemOption) ToDTO() OptionDTO {
	return OptionDTO{
		ID:          o.ID,
		ParentID:    o.InventoryItemID,
		ParentKey:   "inventoryitemid",
		Name:        o.Name,
		Description: o.Description,
	}
}
