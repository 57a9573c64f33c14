package model

const (
	LoyaltyEarned   = "EARNED"
	LoyaltyRedeemed = "REDEEMED"
	LoyaltyBonus    = "BONUS"
	LoyaltyExpired  = "EXPIRED"
)

// LoyaltyCard carries the cached running balance; the ledger rows are the
// source of truth. Every balance mutation commits in the same transaction as
// its ledger entry.
type LoyaltyCard struct {
	DTO
	UserID uint `gorm:"unique;not null" json:"userId"`
	User   User `gorm:"foreignKey:UserID" json:"-"`
	Points int  `gorm:"default:0;not null" json:"points"`
}

// LoyaltyTransaction is an append-only ledger entry. The partial unique index
// enforces at most one EARNED entry per order.
type LoyaltyTransaction struct {
	DTO
	LoyaltyCardID uint        `gorm:"not null;index" json:"loyaltyCardId"`
	LoyaltyCard   LoyaltyCard `gorm:"foreignKey:LoyaltyCardID" json:"-"`
	RestaurantID  uint        `gorm:"not null;index" json:"restaurantId"`
	Restaurant    Restaurant  `gorm:"foreignKey:RestaurantID" json:"-"`
	Points        int         `gorm:"not null" json:"points"`
	Type          string      `gorm:"not null" json:"type"`
	Description   string      `gorm:"size:255;not null" json:"description"`
	OrderID       *uint       `gorm:"uniqueIndex:uniq_earned_order,where:type = 'EARNED'" json:"orderId,omitempty"`
}

type LoyaltyTransactions []LoyaltyTransaction

type RedeemPointsInput struct {
	RestaurantId   uint   `json:"restaurantId" validate:"required,gt=0"`
	PointsToRedeem int    `json:"pointsToRedeem" validate:"required,gt=0"`
	Description    string `json:"description"`
}

type AwardPointsInput struct {
	OrderId      uint    `json:"orderId" validate:"required,gt=0"`
	RestaurantId uint    `json:"restaurantId" validate:"required,gt=0"`
	OrderAmount  float64 `json:"orderAmount" validate:"required,gt=0"`
}

type ManualLoyaltyInput struct {
	LoyaltyCardId uint   `json:"loyaltyCardId" validate:"required,gt=0"`
	RestaurantId  uint   `json:"restaurantId" validate:"required,gt=0"`
	Points        int    `json:"points" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=EARNED REDEEMED BONUS EXPIRED"`
	Description   string `json:"description" validate:"required,min=1,max=255"`
	OrderId       *uint  `json:"orderId"`
}

type RedeemPointsResult struct {
	Success         bool    `json:"success"`
	PointsRedeemed  int     `json:"pointsRedeemed"`
	DiscountAmount  float64 `json:"discountAmount"`
	RemainingPoints int     `json:"remainingPoints"`
	Message         string  `json:"message"`
}

type AwardPointsResult struct {
	PointsEarned int    `json:"pointsEarned"`
	TotalPoints  int    `json:"totalPoints"`
	Message      string `json:"message"`
}

type LoyaltyProgramInfo struct {
	PointsPerDollar    float64 `json:"pointsPerDollar"`
	PointsToMoneyRatio int     `json:"pointsToMoneyRatio"`
	MinimumRedemption  int     `json:"minimumRedemption"`
}

// LoyaltyTransactionRow is the compact row used by transaction listings.
type LoyaltyTransactionRow struct {
	ID             uint   `json:"id"`
	RestaurantID   uint   `json:"restaurantId"`
	RestaurantName string `json:"restaurantName,omitempty"`
	Points         int    `json:"points"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	OrderID        *uint  `json:"orderId,omitempty"`
	OrderNumber    string `json:"orderNumber,omitempty"`
}
