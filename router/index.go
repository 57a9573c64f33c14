package router

import (
	"restaurant_manager/constants"
	"restaurant_manager/handler"
	"restaurant_manager/helper"
	"restaurant_manager/middleware"
	"restaurant_manager/model"
	"restaurant_manager/utils"
	"restaurant_manager/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, h *handler.Handler) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh-token", h.RefreshToken)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", middleware.Protected(), h.Me)
	auth.Post("/otp/send", h.SendOtp)
	auth.Post("/otp/verify", h.VerifyOtp)

	order := v1.Group("/order")
	order.Post("/public", h.CreatePublicOrder)
	order.Get("/public/status/:orderNumber", h.GetPublicOrderStatus)
	order.Post("/", middleware.Protected(), h.CreateOrder)
	order.Post("/delivery", middleware.Protected(), h.CreateDeliveryOrder)
	order.Get("/my", middleware.Protected(), h.GetMyOrders)
	order.Get("/restaurant/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), h.GetRestaurantOrders)
	order.Get("/table/:tableId/current", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("tableId"), h.GetTableCurrentOrders)
	order.Get("/:orderId", middleware.Protected(), validate.GetById("orderId"), h.GetOrder)
	order.Patch("/:orderId/status", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("orderId"), validate.UpdateOrderStatus(), h.UpdateOrderStatus)
	order.Patch("/:orderId/payment-status", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("orderId"), validate.UpdatePaymentStatus(), h.UpdatePaymentStatus)

	promotion := v1.Group("/promotion")
	promotion.Get("/active", h.GetActivePromotions)
	promotion.Post("/calculate", h.CalculateDiscount)
	promotion.Get("/restaurant/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), h.GetRestaurantPromotions)
	promotion.Get("/:promotionId", validate.GetById("promotionId"), h.GetPromotion)
	promotion.Post("/", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		validate.CreatePromotion(), h.CreatePromotion)
	promotion.Put("/:promotionId", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		validate.GetById("promotionId"), validate.UpdatePromotion(), h.UpdatePromotion)
	promotion.Delete("/:promotionId", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		validate.GetById("promotionId"), h.DeletePromotion)
	promotion.Post("/:promotionId/use", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("promotionId"), h.IncrementPromotionUsage)

	loyalty := v1.Group("/loyalty")
	loyalty.Get("/program", h.GetLoyaltyProgram)
	loyalty.Get("/card", middleware.Protected(), h.GetMyLoyaltyCard)
	loyalty.Get("/transactions", middleware.Protected(), h.GetMyLoyaltyTransactions)
	loyalty.Post("/redeem", middleware.Protected(), h.RedeemPoints)
	loyalty.Post("/award", middleware.Protected(),
		middleware.RequireRoles(model.RoleWaiter, model.RoleManager, model.RoleAdmin),
		h.AwardPoints)
	loyalty.Post("/manual", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		h.CreateManualTransaction)

	payment := v1.Group("/payment")
	payment.Post("/initiate", middleware.Protected(), h.InitiatePayment)
	payment.Get("/show/:orderNumber", middleware.Protected(), h.ShowPaymentStatus)
	payment.Get("/callback", h.GatewayCallback)
	payment.Get("/order/:orderId", middleware.Protected(), validate.GetById("orderId"), h.GetPaymentByOrder)
	payment.Get("/restaurant/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), h.ListPayments)
	payment.Get("/:paymentId", middleware.Protected(), validate.GetById("paymentId"), h.GetPayment)

	reservation := v1.Group("/reservation")
	reservation.Post("/availability", h.CheckAvailability)
	reservation.Post("/", middleware.OptionalAuth(), h.CreateReservation)
	reservation.Get("/my", middleware.Protected(), h.GetMyReservations)
	reservation.Get("/restaurant/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), h.GetRestaurantReservations)
	reservation.Patch("/:reservationId/status", middleware.Protected(),
		validate.GetById("reservationId"), validate.UpdateReservationStatus(), h.UpdateReservationStatus)

	dish := v1.Group("/dish")
	dish.Get("/restaurant/:restaurantId", middleware.OptionalAuth(),
		validate.GetById("restaurantId"), h.GetRestaurantDishes)
	dish.Get("/:dishId", validate.GetById("dishId"), h.GetDish)
	dish.Patch("/:dishId/stock", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("dishId"), validate.UpdateDishStock(), h.UpdateDishStock)

	table := v1.Group("/table")
	table.Get("/restaurant/:restaurantId", validate.GetById("restaurantId"), h.GetRestaurantTables)
	table.Get("/:tableId", validate.GetById("tableId"), h.GetTable)
	table.Get("/:tableId/qr", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("tableId"), h.GetTableQRCode)

	ingredient := v1.Group("/ingredient")
	ingredient.Get("/restaurant/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), h.GetRestaurantIngredients)
	ingredient.Patch("/:ingredientId/stock", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("ingredientId"), validate.UpdateIngredientStock(), h.UpdateIngredientStock)

	ws := v1.Group("/ws")
	ws.Get("/orders/:restaurantId", middleware.Protected(), middleware.RequireStaff(),
		validate.GetById("restaurantId"), orderFeedGate, websocket.New(h.OrderFeed()))
}

// orderFeedGate checks restaurant access and stashes the typed restaurant id
// for the websocket handler, which only sees conn.Locals.
func orderFeedGate(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))
	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only watch orders of your own restaurant", nil)
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("restaurantId", restaurantId)
	return c.Next()
}
