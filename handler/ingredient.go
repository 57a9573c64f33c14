package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// GetRestaurantIngredients lists inventory for one restaurant. Pass
// lowStock=true to see only items at or below their minimum.
func (h *Handler) GetRestaurantIngredients(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))

	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view inventory of your own restaurant", nil)
	}

	query := h.DB.
		Where("restaurant_id = ? AND status = ?", restaurantId, constants.StatusActive).
		Order("name asc")
	if c.QueryBool("lowStock", false) {
		query = query.Where("quantity <= min_quantity")
	}

	var ingredients model.Ingredients
	if err := query.Find(&ingredients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading ingredients", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, ingredients)
}

func (h *Handler) UpdateIngredientStock(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	ingredientId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateIngredientStockInput)

	var ingredient model.Ingredient
	if err := h.DB.First(&ingredient, ingredientId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Ingredient not found", err)
	}

	if !principal.CanAccessRestaurant(ingredient.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only manage inventory of your own restaurant", nil)
	}

	updates := map[string]interface{}{}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Nothing to update", nil)
	}

	if err := h.DB.Model(&ingredient).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating ingredient", err)
	}

	var updated model.Ingredient
	if err := h.DB.First(&updated, ingredient.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading ingredient", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}
