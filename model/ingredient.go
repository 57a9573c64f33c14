package model

// Ingredient is the inventory-side stock entity. It shares the lifecycle
// status column used by the other catalog entities.
type Ingredient struct {
	DTO
	RestaurantID uint       `gorm:"not null;index" json:"restaurantId"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Unit         string     `gorm:"not null" json:"unit"` // kg, l, pcs
	Quantity     float64    `gorm:"not null;default:0" json:"quantity"`
	MinQuantity  float64    `gorm:"not null;default:0" json:"minQuantity"`
	Status       string     `gorm:"default:'ACTIVE';not null" json:"status"`
}

type Ingredients []Ingredient

type UpdateIngredientStockInput struct {
	Quantity *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Status   *string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}
