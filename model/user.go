package model

const (
	RoleClient  = "CLIENT"
	RoleWaiter  = "WAITER"
	RoleChef    = "CHEF"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	DTO
	FirstName    string   `gorm:"not null" json:"firstName"`
	LastName     string   `gorm:"not null" json:"lastName"`
	Email        string   `gorm:"unique;not null" json:"email"`
	Phone        string   `gorm:"size:20" json:"phone"`
	Password     string   `gorm:"not null" json:"-"`
	Role         string   `gorm:"default:'CLIENT';not null" json:"role"`
	RestaurantID *uint    `json:"restaurantId,omitempty"` // set for staff, nil for clients
	AddressID    *uint    `json:"addressId,omitempty"`
	Address      *Address `gorm:"foreignKey:AddressID" json:"address,omitempty"`
}

type Users []User

type Address struct {
	DTO
	Street    string   `gorm:"not null" json:"street"`
	City      string   `gorm:"not null" json:"city"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsDefault bool     `gorm:"default:false" json:"isDefault"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=6,max=20"`
	Password  string `json:"password" validate:"required,min=8"`
}

type SendOtpInput struct {
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Purpose string `json:"purpose" validate:"required,oneof=REGISTER LOGIN RESET_PASSWORD"`
}

type VerifyOtpInput struct {
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Purpose string `json:"purpose" validate:"required,oneof=REGISTER LOGIN RESET_PASSWORD"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

// UserContact is the trimmed user view embedded in order responses.
type UserContact struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
