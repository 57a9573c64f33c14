package model

import "time"

const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCompleted = "COMPLETED"
	ReservationCancelled = "CANCELLED"
	ReservationNoShow    = "NO_SHOW"
)

type Reservation struct {
	DTO
	RestaurantID     uint       `gorm:"not null;index" json:"restaurantId"`
	Restaurant       Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	TableID          *uint      `json:"tableId,omitempty"`
	Table            *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	UserID           *uint      `json:"userId,omitempty"` // nil for phone/walk-in bookings
	User             *User      `gorm:"foreignKey:UserID" json:"-"`
	CustomerName     string     `json:"customerName,omitempty"`
	CustomerPhone    string     `json:"customerPhone,omitempty"`
	PartySize        int        `gorm:"not null" json:"partySize"`
	ReservationStart time.Time  `gorm:"not null;index" json:"reservationStart"`
	ReservationEnd   time.Time  `gorm:"not null" json:"reservationEnd"`
	Status           string     `gorm:"default:'PENDING';not null" json:"status"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
}

type Reservations []Reservation

type CreateReservationInput struct {
	RestaurantId     uint      `json:"restaurantId" validate:"required,gt=0"`
	TableId          *uint     `json:"tableId"`
	PartySize        int       `json:"partySize" validate:"required,gte=1"`
	ReservationStart time.Time `json:"reservationStart" validate:"required"`
	ReservationEnd   time.Time `json:"reservationEnd" validate:"required,gtfield=ReservationStart"`
	Notes            string    `json:"notes"`
	// for staff-created (phone / walk-in) bookings
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

type ReservationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED NO_SHOW"`
}

type AvailabilityInput struct {
	RestaurantId     uint      `json:"restaurantId" validate:"required,gt=0"`
	PartySize        int       `json:"partySize" validate:"omitempty,gte=1"`
	ReservationStart time.Time `json:"reservationStart" validate:"required"`
	ReservationEnd   time.Time `json:"reservationEnd" validate:"required,gtfield=ReservationStart"`
}

type AvailabilityResult struct {
	Available       bool    `json:"available"`
	AvailableTables []Table `json:"availableTables"`
	Message         string  `json:"message"`
}
