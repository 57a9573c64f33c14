package model

import "time"

// Payment stores the external gateway reference for an order. The order's own
// paymentStatus field is the source of truth for paid/unpaid. At most one
// payment record exists per order.
type Payment struct {
	DTO
	TransactionID string `gorm:"not null" json:"transactionId"`
	OrderID       uint   `gorm:"uniqueIndex;not null" json:"orderId"`
	Order         Order  `gorm:"foreignKey:OrderID" json:"-"`
}

type Payments []Payment

type InitiatePaymentInput struct {
	OrderId  uint   `json:"orderId" validate:"required,gt=0"`
	Language string `json:"language" validate:"omitempty,oneof=fr en ar"`
}

type InitiatePaymentResult struct {
	Success       bool   `json:"success"`
	PaymentId     string `json:"paymentId,omitempty"`
	TransactionId string `json:"transactionId,omitempty"`
	FormUrl       string `json:"formUrl,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Message       string `json:"message"`
	Error         string `json:"error,omitempty"`
}

type PaymentStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID FAILED REFUNDED"`
}

type PaymentStatusRow struct {
	ID            uint      `json:"id"`
	TransactionID string    `json:"transactionId"`
	OrderID       uint      `json:"orderId"`
	OrderNumber   string    `json:"orderNumber,omitempty"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GatewayTransaction is the parsed result of a gateway initiate call:
// {"data":{"id":..., "attributes":{"form_url":..., "amount":...}}}.
type GatewayTransaction struct {
	TransactionID string
	FormURL       string
	Amount        string
}
