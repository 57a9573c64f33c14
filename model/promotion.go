package model

import "time"

const (
	DiscountTypePercentage  = "PERCENTAGE"
	DiscountTypeFixedAmount = "FIXED_AMOUNT"
)

const (
	PromotionTypeDiscount     = "DISCOUNT"
	PromotionTypeBogo         = "BOGO"
	PromotionTypeFreeDelivery = "FREE_DELIVERY"
	PromotionTypeHappyHour    = "HAPPY_HOUR"
	PromotionTypeSeasonal     = "SEASONAL"
)

type Promotion struct {
	DTO
	RestaurantID   uint       `gorm:"not null;index" json:"restaurantId"`
	Restaurant     Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Type           string     `gorm:"not null" json:"type"`
	DiscountType   string     `gorm:"not null" json:"discountType"`
	DiscountValue  float64    `gorm:"type:decimal(10,2);not null" json:"discountValue"`
	MinOrderAmount *float64   `gorm:"type:decimal(10,2)" json:"minOrderAmount,omitempty"`
	StartDate      time.Time  `gorm:"not null" json:"startDate"`
	EndDate        time.Time  `gorm:"not null" json:"endDate"`
	MaxUses        *int       `json:"maxUses,omitempty"`
	CurrentUses    int        `gorm:"default:0" json:"currentUses"`
	Status         string     `gorm:"default:'ACTIVE';not null" json:"status"`
	Dishes         []Dish     `gorm:"many2many:promotion_dishes" json:"dishes,omitempty"`
}

type Promotions []Promotion

func (p Promotion) IsActive() bool { return p.Status == "ACTIVE" }

type CreatePromotionInput struct {
	RestaurantId   uint      `json:"restaurantId" validate:"required,gt=0"`
	Title          string    `json:"title" validate:"required,min=1,max=100"`
	Description    string    `json:"description" validate:"required,min=1,max=500"`
	Type           string    `json:"type" validate:"required,oneof=DISCOUNT BOGO FREE_DELIVERY HAPPY_HOUR SEASONAL"`
	DiscountType   string    `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue  float64   `json:"discountValue" validate:"required,gt=0"`
	MinOrderAmount *float64  `json:"minOrderAmount" validate:"omitempty,gte=0"`
	StartDate      time.Time `json:"startDate" validate:"required"`
	EndDate        time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	MaxUses        *int      `json:"maxUses" validate:"omitempty,gt=0"`
	DishIds        []uint    `json:"dishIds"`
}

type UpdatePromotionInput struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=100"`
	Description    *string    `json:"description" validate:"omitempty,min=1,max=500"`
	DiscountValue  *float64   `json:"discountValue" validate:"omitempty,gt=0"`
	MinOrderAmount *float64   `json:"minOrderAmount" validate:"omitempty,gte=0"`
	EndDate        *time.Time `json:"endDate"`
	MaxUses        *int       `json:"maxUses" validate:"omitempty,gt=0"`
	Status         *string    `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	DishIds        *[]uint    `json:"dishIds"`
}

type PromotionQuoteInput struct {
	PromotionId uint    `json:"promotionId" validate:"required,gt=0"`
	OrderAmount float64 `json:"orderAmount" validate:"required,gt=0"`
}

// PromotionQuote is a non-binding discount computation. It reserves nothing;
// usage is only counted by the explicit increment-usage call.
type PromotionQuote struct {
	Applicable     bool    `json:"applicable"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
	Message        string  `json:"message"`
}
