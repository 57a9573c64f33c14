package handler

import (
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// CheckAvailability lists tables free in the requested window. A table is
// free when no PENDING or CONFIRMED reservation overlaps the window.
func (h *Handler) CheckAvailability(c *fiber.Ctx) error {
	var input model.AvailabilityInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var restaurant model.Restaurant
	if err := h.DB.First(&restaurant, input.RestaurantId).Error; err != nil || !restaurant.IsActive() {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
			"Restaurant not found or inactive", nil)
	}

	tablesQuery := h.DB.
		Where("restaurant_id = ? AND status = ?", input.RestaurantId, constants.StatusActive)
	if input.PartySize > 0 {
		tablesQuery = tablesQuery.Where("capacity >= ?", input.PartySize)
	}
	var tables model.Tables
	if err := tablesQuery.Order("capacity asc").Find(&tables).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading tables", err)
	}

	overlapping, err := helper.OverlappingReservations(h.DB, input.RestaurantId,
		input.ReservationStart, input.ReservationEnd)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading reservations", err)
	}

	booked := map[uint]bool{}
	for _, r := range overlapping {
		if r.TableID != nil {
			booked[*r.TableID] = true
		}
	}

	free := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if !booked[t.ID] {
			free = append(free, t)
		}
	}

	result := model.AvailabilityResult{
		Available:       len(free) > 0,
		AvailableTables: free,
	}
	if result.Available {
		result.Message = "Tables available for the requested time"
	} else {
		result.Message = "No tables available for the requested time"
	}

	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

// CreateReservation books a table. The overlap check and the insert share a
// transaction, which narrows but does not close the window for two
// concurrent bookings of the same slot under READ COMMITTED.
func (h *Handler) CreateReservation(c *fiber.Ctx) error {
	principal, hasPrincipal := helper.GetPrincipal(c)

	var input model.CreateReservationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	if input.ReservationStart.Before(time.Now()) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Reservation start must be in the future", nil)
	}

	var userId *uint
	customerName := input.CustomerName
	customerPhone := input.CustomerPhone
	if hasPrincipal && !principal.IsStaff() {
		id := principal.UserID
		userId = &id
		customerName = ""
		customerPhone = ""
	} else if customerName == "" || customerPhone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Customer name and phone are required for staff-created reservations", nil)
	}

	var restaurant model.Restaurant
	if err := h.DB.First(&restaurant, input.RestaurantId).Error; err != nil || !restaurant.IsActive() {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
			"Restaurant not found or inactive", nil)
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if input.TableId != nil {
		var table model.Table
		if err := tx.Where("id = ? AND restaurant_id = ?", *input.TableId, input.RestaurantId).
			First(&table).Error; err != nil || !table.IsActive() {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND,
				"Table not found or inactive", nil)
		}
		if table.Capacity < input.PartySize {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Table capacity is smaller than the party size", nil)
		}

		overlapping, err := helper.OverlappingReservations(tx, input.RestaurantId,
			input.ReservationStart, input.ReservationEnd)
		if err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error checking reservations", err)
		}
		for _, r := range overlapping {
			if r.TableID != nil && *r.TableID == *input.TableId {
				tx.Rollback()
				return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
					"Table is already reserved for the requested time", nil)
			}
		}
	}

	reservation := model.Reservation{
		RestaurantID:     input.RestaurantId,
		TableID:          input.TableId,
		UserID:           userId,
		CustomerName:     customerName,
		CustomerPhone:    customerPhone,
		PartySize:        input.PartySize,
		ReservationStart: input.ReservationStart,
		ReservationEnd:   input.ReservationEnd,
		Status:           model.ReservationPending,
		Notes:            input.Notes,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating reservation", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating reservation", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, reservation)
}

func (h *Handler) GetMyReservations(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var reservations model.Reservations
	if err := h.DB.
		Preload("Table").
		Where("user_id = ?", principal.UserID).
		Order("reservation_start desc").
		Find(&reservations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading reservations", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, reservations)
}

// GetRestaurantReservations lists a restaurant's reservations, optionally
// filtered by status or day. Staff only.
func (h *Handler) GetRestaurantReservations(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))

	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view reservations of your own restaurant", nil)
	}

	query := h.DB.
		Preload("Table").
		Where("restaurant_id = ?", restaurantId).
		Order("reservation_start asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if day := c.Query("date"); day != "" {
		if parsed, err := time.Parse("2006-01-02", day); err == nil {
			query = query.Where("reservation_start >= ? AND reservation_start < ?",
				parsed, parsed.AddDate(0, 0, 1))
		}
	}

	var reservations model.Reservations
	if err := query.Find(&reservations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading reservations", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, reservations)
}

// UpdateReservationStatus moves a reservation through its lifecycle. Clients
// may only cancel their own booking; staff manage the rest.
func (h *Handler) UpdateReservationStatus(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	reservationId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.ReservationStatusInput)

	var reservation model.Reservation
	if err := h.DB.First(&reservation, reservationId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Reservation not found", err)
	}

	if principal.IsStaff() {
		if !principal.CanAccessRestaurant(reservation.RestaurantID) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only manage reservations of your own restaurant", nil)
		}
	} else {
		if reservation.UserID == nil || *reservation.UserID != principal.UserID {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only manage your own reservations", nil)
		}
		if input.Status != model.ReservationCancelled {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"You can only cancel your reservation", nil)
		}
	}

	if reservation.Status == model.ReservationCompleted || reservation.Status == model.ReservationCancelled {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Reservation is already finalized", nil)
	}

	if err := h.DB.Model(&reservation).Update("status", input.Status).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating reservation", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, reservation)
}
