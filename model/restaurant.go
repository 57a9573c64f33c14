package model

type Restaurant struct {
	DTO
	Name        string   `gorm:"not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Phone       string   `gorm:"size:20" json:"phone"`
	AddressID   *uint    `json:"addressId,omitempty"`
	Address     *Address `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Status      string   `gorm:"default:'ACTIVE';not null" json:"status"`
}

type Restaurants []Restaurant

func (r Restaurant) IsActive() bool { return r.Status == "ACTIVE" }

type Table struct {
	DTO
	RestaurantID uint       `gorm:"not null;index" json:"restaurantId"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	Number       int        `gorm:"not null" json:"number"`
	Capacity     int        `gorm:"not null" json:"capacity"`
	Status       string     `gorm:"default:'ACTIVE';not null" json:"status"`
}

type Tables []Table

func (t Table) IsActive() bool { return t.Status == "ACTIVE" }

// TableSummary is the trimmed table view embedded in order responses.
type TableSummary struct {
	ID       uint `json:"id"`
	Number   int  `json:"number"`
	Capacity int  `json:"capacity"`
}
