package handler

import (
	"errors"
	"fmt"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InitiatePayment opens a gateway transaction for an order. When a payment
// record already exists the stored transaction is returned with a flagged
// message instead of creating a duplicate.
func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.InitiatePaymentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var order model.Order
	if err := h.DB.First(&order, input.OrderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", err)
	}
	if order.UserID == nil || *order.UserID != principal.UserID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only pay for your own orders", nil)
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Order is already paid", nil)
	}
	if order.Status == model.OrderStatusCancelled {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Cannot pay for a cancelled order", nil)
	}

	var existing model.Payment
	err := h.DB.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		return utils.SuccessResponse(c, fiber.StatusOK, model.InitiatePaymentResult{
			Success:       true,
			PaymentId:     fmt.Sprintf("%d", existing.ID),
			TransactionId: existing.TransactionID,
			Message:       constants.PAYMENT_EXISTS,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading payment", err)
	}

	gatewayTx, err := h.Gateway.Initiate(order.TotalAmount, input.Language)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.ERROR_GATEWAY,
			"Payment gateway error", err)
	}

	payment := model.Payment{
		TransactionID: gatewayTx.TransactionID,
		OrderID:       order.ID,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		// A concurrent initiate won the unique index on order_id; surface the
		// stored record the same way as the fast path above.
		if isDuplicateKeyError(err) {
			if lookupErr := h.DB.Where("order_id = ?", order.ID).First(&existing).Error; lookupErr == nil {
				return utils.SuccessResponse(c, fiber.StatusOK, model.InitiatePaymentResult{
					Success:       true,
					PaymentId:     fmt.Sprintf("%d", existing.ID),
					TransactionId: existing.TransactionID,
					Message:       constants.PAYMENT_EXISTS,
				})
			}
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error saving payment", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, model.InitiatePaymentResult{
		Success:       true,
		PaymentId:     fmt.Sprintf("%d", payment.ID),
		TransactionId: gatewayTx.TransactionID,
		FormUrl:       gatewayTx.FormURL,
		Amount:        gatewayTx.Amount,
		Message:       "Payment initiated",
	})
}

// ShowPaymentStatus proxies the gateway's status lookup for an order number.
func (h *Handler) ShowPaymentStatus(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	if orderNumber == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Order number is required", nil)
	}

	raw, err := h.Gateway.Show(orderNumber)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.ERROR_GATEWAY,
			"Payment gateway error", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, raw)
}

func (h *Handler) GetPayment(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	paymentId := c.Locals("inputId").(int)

	var payment model.Payment
	if err := h.DB.Preload("Order").First(&payment, paymentId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Payment not found", err)
	}

	if !principal.IsStaff() {
		if payment.Order.UserID == nil || *payment.Order.UserID != principal.UserID {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only view your own payments", nil)
		}
	} else if !principal.CanAccessRestaurant(payment.Order.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view payments of your own restaurant", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, paymentRow(payment))
}

func (h *Handler) GetPaymentByOrder(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	orderId := c.Locals("inputId").(int)

	var payment model.Payment
	if err := h.DB.Preload("Order").Where("order_id = ?", orderId).First(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
			"No payment found for this order", err)
	}

	if !principal.IsStaff() {
		if payment.Order.UserID == nil || *payment.Order.UserID != principal.UserID {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only view your own payments", nil)
		}
	} else if !principal.CanAccessRestaurant(payment.Order.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view payments of your own restaurant", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, paymentRow(payment))
}

func paymentRow(payment model.Payment) model.PaymentStatusRow {
	return model.PaymentStatusRow{
		ID:            payment.ID,
		TransactionID: payment.TransactionID,
		OrderID:       payment.OrderID,
		OrderNumber:   payment.Order.OrderNumber,
		Amount:        payment.Order.TotalAmount,
		Status:        payment.Order.PaymentStatus,
		CreatedAt:     payment.CreatedAt,
	}
}

// ListPayments returns payments for one restaurant, newest first. Staff only.
func (h *Handler) ListPayments(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))

	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view payments of your own restaurant", nil)
	}

	limit := c.QueryInt("limit", 50)
	page := c.QueryInt("page", 1)

	var payments model.Payments
	query := h.DB.
		Preload("Order").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.restaurant_id = ?", restaurantId).
		Order("payments.created_at desc")
	if err := utils.ApplyPagination(query, &limit, &page).Find(&payments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading payments", err)
	}

	rows := make([]model.PaymentStatusRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, paymentRow(p))
	}

	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

// GatewayCallback receives the gateway's redirect after a hosted payment.
// The reported status is only trusted after re-querying the gateway.
func (h *Handler) GatewayCallback(c *fiber.Ctx) error {
	orderNumber := c.Query("order_number")
	if orderNumber == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"order_number is required", nil)
	}

	if !h.Gateway.VerifyCallbackSignature(orderNumber, c.Query("signature")) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Invalid callback signature", nil)
	}

	var payment model.Payment
	if err := h.DB.
		Preload("Order").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.transaction_id = ? OR orders.order_number = ?", orderNumber, orderNumber).
		First(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Payment not found", err)
	}

	raw, err := h.Gateway.Show(payment.TransactionID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.ERROR_GATEWAY,
			"Payment gateway error", err)
	}

	status := model.PaymentStatusFailed
	if data, ok := raw["data"].(map[string]interface{}); ok {
		if attrs, ok := data["attributes"].(map[string]interface{}); ok {
			if s, ok := attrs["status"].(string); ok && (s == "paid" || s == "PAID" || s == "success") {
				status = model.PaymentStatusPaid
			}
		}
	}

	if err := h.DB.Model(&model.Order{}).
		Where("id = ?", payment.OrderID).
		Update("payment_status", status).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating payment status", err)
	}

	h.BroadcastRestaurantOrders(payment.Order.RestaurantID)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"orderNumber":   payment.Order.OrderNumber,
		"paymentStatus": status,
	})
}

// UpdatePaymentStatus is the manual override for staff, used when payment is
// collected outside the gateway (cash, terminal).
func (h *Handler) UpdatePaymentStatus(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	orderId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.PaymentStatusInput)

	var order model.Order
	if err := h.DB.First(&order, orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", err)
	}

	if !principal.CanAccessRestaurant(order.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only update orders of your own restaurant", nil)
	}

	if err := h.DB.Model(&order).Update("payment_status", input.Status).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating payment status", err)
	}

	h.BroadcastRestaurantOrders(order.RestaurantID)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"orderId":       order.ID,
		"paymentStatus": input.Status,
	})
}
