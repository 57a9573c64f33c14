package model

import "time"

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusReady          = "READY"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusCompleted      = "COMPLETED"
	OrderStatusCancelled      = "CANCELLED"
)

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

type Order struct {
	DTO
	OrderNumber       string      `gorm:"unique;size:30;not null" json:"orderNumber"`
	UserID            *uint       `json:"userId,omitempty"` // nil for walk-in QR orders
	User              *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RestaurantID      uint        `gorm:"not null;index" json:"restaurantId"`
	Restaurant        Restaurant  `gorm:"foreignKey:RestaurantID" json:"restaurant"`
	TableID           *uint       `json:"tableId,omitempty"`
	Table             *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Type              string      `gorm:"not null" json:"type"`
	Status            string      `gorm:"default:'PENDING';not null" json:"status"`
	Subtotal          float64     `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DeliveryFee       float64     `gorm:"type:decimal(10,2);default:0" json:"deliveryFee"`
	Discount          float64     `gorm:"type:decimal(10,2);default:0" json:"discount"`
	TotalAmount       float64     `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	DeliveryAddressID *uint       `json:"deliveryAddressId,omitempty"`
	DeliveryAddress   *Address    `gorm:"foreignKey:DeliveryAddressID" json:"deliveryAddress,omitempty"`
	PaymentStatus     string      `gorm:"default:'PENDING';not null" json:"paymentStatus"`
	Notes             string      `gorm:"type:text" json:"notes,omitempty"`
	OrderTime         time.Time   `gorm:"not null" json:"orderTime"`
	ConfirmedAt       *time.Time  `json:"confirmedAt,omitempty"`
	PreparedAt        *time.Time  `json:"preparedAt,omitempty"`
	ReadyAt           *time.Time  `json:"readyAt,omitempty"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
	CancelledAt       *time.Time  `json:"cancelledAt,omitempty"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type Orders []Order

// OrderItem snapshots the dish price at order time. Rows are written once and
// never mutated.
type OrderItem struct {
	DTO
	OrderID    uint    `gorm:"not null;index" json:"orderId"`
	DishID     uint    `gorm:"not null" json:"dishId"`
	Dish       Dish    `gorm:"foreignKey:DishID" json:"dish"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice float64 `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Notes      string  `json:"notes,omitempty"`
}

type OrderItemInput struct {
	DishId   uint   `json:"dishId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
	Notes    string `json:"notes"`
}

type CreateOrderInput struct {
	RestaurantId      uint             `json:"restaurantId" validate:"required,gt=0"`
	TableId           *uint            `json:"tableId"`
	Type              string           `json:"type" validate:"required,oneof=DINE_IN TAKEAWAY DELIVERY"`
	Items             []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes             string           `json:"notes"`
	DeliveryAddressId *uint            `json:"deliveryAddressId"`
}

// PublicOrderInput is the unauthenticated walk-in variant. Only DINE_IN with a
// table is accepted and the total is capped.
type PublicOrderInput struct {
	RestaurantId  uint             `json:"restaurantId" validate:"required,gt=0"`
	TableId       *uint            `json:"tableId"`
	Type          string           `json:"type" validate:"required,oneof=DINE_IN TAKEAWAY DELIVERY"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string           `json:"notes"`
	CustomerName  string           `json:"customerName"`
	CustomerPhone string           `json:"customerPhone"`
}

type DeliveryOrderInput struct {
	RestaurantId          uint             `json:"restaurantId" validate:"required,gt=0"`
	Items                 []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes                 string           `json:"notes"`
	UseStoredAddress      bool             `json:"useStoredAddress"`
	CustomDeliveryAddress *AddressInput    `json:"customDeliveryAddress"`
}

type AddressInput struct {
	Street    string   `json:"street" validate:"required"`
	City      string   `json:"city" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type OrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED PREPARING READY OUT_FOR_DELIVERY COMPLETED CANCELLED"`
	Notes  string `json:"notes"`
}

// OrderListItem is the compact row used by list endpoints.
type OrderListItem struct {
	ID            uint          `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	RestaurantID  uint          `json:"restaurantId"`
	TableID       *uint         `json:"tableId,omitempty"`
	Type          string        `json:"type"`
	Status        string        `json:"status"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentStatus string        `json:"paymentStatus"`
	OrderTime     time.Time     `json:"orderTime"`
	User          *UserContact  `json:"user,omitempty"`
	Table         *TableSummary `json:"table,omitempty"`
	ItemCount     int           `json:"itemCount"`
}
