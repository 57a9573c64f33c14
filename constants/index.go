package constants

// Stable error codes returned in the "code" field of error responses.
const (
	ERROR_NOT_FOUND       = "NOT_FOUND"
	ERROR_FORBIDDEN       = "FORBIDDEN"
	ERROR_UNAUTHORIZED    = "UNAUTHORIZED"
	ERROR_INVALID_REQUEST = "INVALID_REQUEST"
	ERROR_CONFLICT        = "CONFLICT"
	ERROR_GATEWAY         = "GATEWAY_ERROR"
	ERROR_INTERNAL        = "INTERNAL"

	// Flagged (non-error) condition on payment initiation.
	PAYMENT_EXISTS = "PAYMENT_EXISTS"
)

// Order pricing rules.
const (
	DeliveryFee          = 50.0
	MaxPublicOrderAmount = 1000.0
)

// Loyalty program parameters.
const (
	PointsPerDollar    = 1.0
	PointsToMoneyRatio = 100
	MinimumRedemption  = 100
	RedemptionStep     = 10
)

// Lifecycle status shared by Restaurant, Table, Dish, Promotion and Ingredient.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)
