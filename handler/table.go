package handler

import (
	"fmt"

	"restaurant_manager/config"
	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetRestaurantTables(c *fiber.Ctx) error {
	restaurantId := uint(c.Locals("inputId").(int))

	var tables model.Tables
	if err := h.DB.
		Where("restaurant_id = ? AND status = ?", restaurantId, constants.StatusActive).
		Order("number asc").
		Find(&tables).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading tables", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, tables)
}

func (h *Handler) GetTable(c *fiber.Ctx) error {
	tableId := c.Locals("inputId").(int)

	var table model.Table
	if err := h.DB.First(&table, tableId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Table not found", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, table)
}

// GetTableQRCode renders the table's ordering link as a PNG QR code. Walk-in
// customers scan it to reach the public ordering page.
func (h *Handler) GetTableQRCode(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	tableId := c.Locals("inputId").(int)

	var table model.Table
	if err := h.DB.First(&table, tableId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Table not found", err)
	}

	if !principal.CanAccessRestaurant(table.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only manage tables of your own restaurant", nil)
	}

	baseURL := config.ConfigOr("FRONTEND_URL", "http://localhost:3000")
	content := fmt.Sprintf("%s/order?restaurantId=%d&tableId=%d", baseURL, table.RestaurantID, table.ID)

	size := c.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}

	image, err := utils.GenerateQRCode(content, size)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating QR code", err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(image)
}
