package handler

import (
	"errors"
	"fmt"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type validatedLine struct {
	dish     model.Dish
	quantity int
	notes    string
}

// validateOrderItems checks every requested line against the catalog and
// accumulates the subtotal from current dish prices. Runs inside the
// caller's transaction; the conditional stock decrement later in the same
// transaction is what actually guards against overselling.
func validateOrderItems(tx *gorm.DB, items []model.OrderItemInput) ([]validatedLine, float64, int, string, error) {
	subtotal := 0.0
	lines := make([]validatedLine, 0, len(items))

	for _, item := range items {
		var dish model.Dish
		if err := tx.First(&dish, item.DishId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
					fmt.Errorf("dish with ID %d not found", item.DishId)
			}
			return nil, 0, fiber.StatusInternalServerError, constants.ERROR_INTERNAL, err
		}

		if !dish.IsActive() || !dish.IsAvailable {
			return nil, 0, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				fmt.Errorf("dish '%s' is not available", dish.Name)
		}

		if dish.Quantity < item.Quantity {
			return nil, 0, fiber.StatusConflict, constants.ERROR_CONFLICT,
				fmt.Errorf("not enough quantity for dish '%s'. Available: %d, Requested: %d",
					dish.Name, dish.Quantity, item.Quantity)
		}

		subtotal += dish.Price * float64(item.Quantity)
		lines = append(lines, validatedLine{dish: dish, quantity: item.Quantity, notes: item.Notes})
	}

	return lines, subtotal, 0, "", nil
}

// createOrder persists the order, its item snapshots and the stock decrement
// in one transaction. The decrement is a conditional single-statement update;
// zero affected rows means another order took the stock first and the whole
// transaction rolls back.
func (h *Handler) createOrder(c *fiber.Ctx, restaurantId uint, tableId *uint, orderType string,
	items []model.OrderItemInput, notes string, userId *uint, deliveryAddressId *uint, public bool) error {

	if len(items) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Order must contain at least one item", nil)
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var restaurant model.Restaurant
	if err := tx.First(&restaurant, restaurantId).Error; err != nil || !restaurant.IsActive() {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
			"Restaurant not found or inactive", nil)
	}

	if tableId != nil {
		var table model.Table
		if err := tx.Where("id = ? AND restaurant_id = ?", *tableId, restaurantId).
			First(&table).Error; err != nil || !table.IsActive() {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
				"Table not found or inactive", nil)
		}
	}

	lines, subtotal, status, code, err := validateOrderItems(tx, items)
	if err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, status, code, err.Error(), nil)
	}

	deliveryFee := 0.0
	if orderType == model.OrderTypeDelivery {
		deliveryFee = constants.DeliveryFee
	}
	discount := 0.0
	totalAmount := subtotal + deliveryFee - discount

	// Anti-abuse ceiling for unauthenticated walk-in orders.
	if public && totalAmount > constants.MaxPublicOrderAmount {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			fmt.Sprintf("Order amount (%.2f) exceeds maximum allowed for public orders (%.2f). Please register/login for larger orders.",
				totalAmount, constants.MaxPublicOrderAmount), nil)
	}

	order := model.Order{
		OrderNumber:       helper.GenerateOrderNumber(),
		UserID:            userId,
		RestaurantID:      restaurantId,
		TableID:           tableId,
		Type:              orderType,
		Status:            model.OrderStatusPending,
		Subtotal:          subtotal,
		DeliveryFee:       deliveryFee,
		Discount:          discount,
		TotalAmount:       totalAmount,
		DeliveryAddressID: deliveryAddressId,
		PaymentStatus:     model.PaymentStatusPending,
		Notes:             notes,
		OrderTime:         time.Now(),
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating order", err)
	}

	for _, line := range lines {
		item := model.OrderItem{
			OrderID:    order.ID,
			DishID:     line.dish.ID,
			Quantity:   line.quantity,
			UnitPrice:  line.dish.Price,
			TotalPrice: line.dish.Price * float64(line.quantity),
			Notes:      line.notes,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error creating order items", err)
		}

		// quantity >= ? in the WHERE gates the decrement; is_available clears
		// when the remaining stock reaches zero.
		result := tx.Model(&model.Dish{}).
			Where("id = ? AND quantity >= ?", line.dish.ID, line.quantity).
			UpdateColumns(map[string]interface{}{
				"quantity":     gorm.Expr("quantity - ?", line.quantity),
				"is_available": gorm.Expr("quantity - ? > 0", line.quantity),
			})
		if result.Error != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error updating dish stock", result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
				fmt.Sprintf("not enough quantity for dish '%s'", line.dish.Name), nil)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating order", err)
	}

	var complete model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Items.Dish").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		Preload("DeliveryAddress").
		First(&complete, order.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading order", err)
	}

	h.BroadcastRestaurantOrders(restaurantId)

	return utils.SuccessResponse(c, fiber.StatusCreated, complete)
}

// CreatePublicOrder handles walk-in customers ordering via table QR codes.
// Only DINE_IN with a valid table is allowed and the amount is capped.
func (h *Handler) CreatePublicOrder(c *fiber.Ctx) error {
	var input model.PublicOrderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	if input.Type != model.OrderTypeDineIn {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_INVALID_REQUEST,
			"Only dine-in orders are allowed without authentication. Please register/login for delivery or takeaway orders.", nil)
	}
	if input.TableId == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Table ID is required for public orders", nil)
	}

	return h.createOrder(c, input.RestaurantId, input.TableId, input.Type, input.Items, input.Notes, nil, nil, true)
}

// CreateOrder creates an order for the authenticated user.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var user model.User
	if err := h.DB.Preload("Address").First(&user, principal.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "User profile not found", err)
	}

	if input.Type == model.OrderTypeDelivery {
		if input.DeliveryAddressId == nil && user.Address == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Delivery address is required. Please add an address to your profile or specify a delivery address.", nil)
		}
		if input.DeliveryAddressId == nil && user.Address != nil {
			input.DeliveryAddressId = &user.Address.ID
		}
	}

	userId := principal.UserID
	return h.createOrder(c, input.RestaurantId, input.TableId, input.Type, input.Items, input.Notes,
		&userId, input.DeliveryAddressId, false)
}

// CreateDeliveryOrder is the delivery convenience endpoint: it resolves the
// stored or custom address first, then runs the standard creation path.
func (h *Handler) CreateDeliveryOrder(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.DeliveryOrderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var user model.User
	if err := h.DB.Preload("Address").First(&user, principal.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "User profile not found", err)
	}
	if user.Phone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Phone number is required for delivery orders. Please update your profile.", nil)
	}

	var deliveryAddressId *uint
	if input.UseStoredAddress {
		if user.Address == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"No stored address found. Please add an address to your profile or provide a custom delivery address.", nil)
		}
		deliveryAddressId = &user.Address.ID
	} else {
		if input.CustomDeliveryAddress == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Custom delivery address is required when not using stored address", nil)
		}
		address := model.Address{
			Street:    input.CustomDeliveryAddress.Street,
			City:      input.CustomDeliveryAddress.City,
			Latitude:  input.CustomDeliveryAddress.Latitude,
			Longitude: input.CustomDeliveryAddress.Longitude,
		}
		if err := h.DB.Create(&address).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error saving delivery address", err)
		}
		deliveryAddressId = &address.ID
	}

	userId := principal.UserID
	return h.createOrder(c, input.RestaurantId, nil, model.OrderTypeDelivery, input.Items, input.Notes,
		&userId, deliveryAddressId, false)
}

func (h *Handler) GetMyOrders(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	limit := c.QueryInt("limit", 50)
	page := c.QueryInt("page", 1)

	var orders []model.Order
	query := h.DB.
		Preload("Items").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		Preload("DeliveryAddress").
		Where("user_id = ?", principal.UserID).
		Order("order_time desc")
	if err := utils.ApplyPagination(query, &limit, &page).Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading orders", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orderListRows(orders))
}

func orderListRows(orders []model.Order) []model.OrderListItem {
	rows := make([]model.OrderListItem, 0, len(orders))
	for _, order := range orders {
		var row model.OrderListItem
		copier.Copy(&row, &order)
		row.ItemCount = len(order.Items)
		if order.User != nil {
			row.User = &model.UserContact{
				ID:        order.User.ID,
				FirstName: order.User.FirstName,
				LastName:  order.User.LastName,
				Email:     order.User.Email,
				Phone:     order.User.Phone,
			}
		}
		if order.Table != nil {
			row.Table = &model.TableSummary{
				ID:       order.Table.ID,
				Number:   order.Table.Number,
				Capacity: order.Table.Capacity,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// GetOrder returns one order. Admins see everything, staff see their own
// restaurant's orders, clients only their own.
func (h *Handler) GetOrder(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	orderId := c.Locals("inputId").(int)

	var order model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Items.Dish").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		First(&order, orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", err)
	}

	switch {
	case principal.Role == model.RoleAdmin:
	case principal.IsStaff():
		if !principal.CanAccessRestaurant(order.RestaurantID) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only view orders from your restaurant", nil)
		}
	default:
		if order.UserID == nil || *order.UserID != principal.UserID {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only view your own orders", nil)
		}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// GetPublicOrderStatus resolves an order by its public number. Orders owned by
// a registered user are never exposed through this endpoint.
func (h *Handler) GetPublicOrderStatus(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")

	var order model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Items.Dish").
		Preload("Table").
		Preload("Restaurant").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", err)
	}

	if order.UserID != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func (h *Handler) GetRestaurantOrders(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))

	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view orders from your own restaurant", nil)
	}

	limit := c.QueryInt("limit", 50)
	page := c.QueryInt("page", 1)

	query := h.DB.
		Preload("Items").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		Where("restaurant_id = ?", restaurantId).
		Order("order_time desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := utils.ApplyPagination(query, &limit, &page).Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading orders", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orderListRows(orders))
}

// UpdateOrderStatus sets the lifecycle status and stamps the matching
// timestamp. Transitions are permissive except that a COMPLETED order stays
// COMPLETED.
func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	orderId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.OrderStatusInput)

	var order model.Order
	if err := h.DB.First(&order, orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Order not found", err)
	}

	if !principal.CanAccessRestaurant(order.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only update orders from your own restaurant", nil)
	}

	if order.Status == model.OrderStatusCompleted && input.Status != model.OrderStatusCompleted {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Completed orders cannot change status", nil)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": input.Status}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}
	switch input.Status {
	case model.OrderStatusConfirmed:
		updates["confirmed_at"] = now
	case model.OrderStatusPreparing:
		updates["prepared_at"] = now
	case model.OrderStatusReady:
		updates["ready_at"] = now
	case model.OrderStatusCompleted:
		updates["completed_at"] = now
	case model.OrderStatusCancelled:
		updates["cancelled_at"] = now
	}

	if err := h.DB.Model(&order).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating order status", err)
	}

	var updated model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Items.Dish").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		First(&updated, order.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading order", err)
	}

	h.BroadcastRestaurantOrders(order.RestaurantID)

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}

// GetTableCurrentOrders lists a table's orders that are still in flight.
func (h *Handler) GetTableCurrentOrders(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	tableId := c.Locals("inputId").(int)

	var table model.Table
	if err := h.DB.First(&table, tableId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Table not found", err)
	}

	if !principal.CanAccessRestaurant(table.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view orders from your own restaurant", nil)
	}

	var orders []model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Table").
		Preload("Restaurant").
		Preload("User").
		Where("table_id = ? AND status IN ?", table.ID,
			[]string{model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing, model.OrderStatusReady}).
		Order("order_time desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading orders", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orderListRows(orders))
}
