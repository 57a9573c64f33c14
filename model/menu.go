package model

type Menu struct {
	DTO
	RestaurantID uint       `gorm:"not null;index" json:"restaurantId"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Status       string     `gorm:"default:'ACTIVE';not null" json:"status"`
}

type Category struct {
	DTO
	MenuID uint   `gorm:"not null;index" json:"menuId"`
	Menu   Menu   `gorm:"foreignKey:MenuID" json:"-"`
	Name   string `gorm:"not null" json:"name"`
}

// Dish carries a denormalized RestaurantID so order validation and promotion
// scoping do not join through category and menu.
type Dish struct {
	DTO
	CategoryID   uint     `gorm:"not null;index" json:"categoryId"`
	Category     Category `gorm:"foreignKey:CategoryID" json:"-"`
	RestaurantID uint     `gorm:"not null;index" json:"restaurantId"`
	Name         string   `gorm:"not null" json:"name"`
	Description  string   `gorm:"type:text" json:"description"`
	Price        float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity     int      `gorm:"not null;default:0" json:"quantity"`
	IsAvailable  bool     `gorm:"default:true" json:"isAvailable"`
	Status       string   `gorm:"default:'ACTIVE';not null" json:"status"`
}

type Dishes []Dish

func (d Dish) IsActive() bool { return d.Status == "ACTIVE" }

type UpdateDishStockInput struct {
	Quantity    *int  `json:"quantity" validate:"omitempty,gte=0"`
	IsAvailable *bool `json:"isAvailable"`
}

// DishSummary is the trimmed dish view embedded in order item responses.
type DishSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
