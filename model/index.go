package model

import "time"

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Principal is the authenticated caller extracted from a JWT. Handlers and
// middleware consume this typed value instead of re-parsing claims.
type Principal struct {
	UserID       uint   `json:"userId"`
	Role         string `json:"role"`
	RestaurantID *uint  `json:"restaurantId,omitempty"`
}

func (p Principal) IsStaff() bool {
	switch p.Role {
	case RoleWaiter, RoleChef, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanAccessRestaurant reports whether the principal may act on data scoped to
// the given restaurant. Admins may act on any restaurant, other staff only on
// their own.
func (p Principal) CanAccessRestaurant(restaurantId uint) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.RestaurantID != nil && *p.RestaurantID == restaurantId
}

type TokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
