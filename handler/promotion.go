package handler

import (
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// promotionInWindow reports whether the promotion is active, inside its date
// window and not exhausted.
func promotionInWindow(p model.Promotion, now time.Time) (bool, string) {
	if !p.IsActive() {
		return false, "Promotion is not active"
	}
	if now.Before(p.StartDate) {
		return false, "Promotion has not started yet"
	}
	if now.After(p.EndDate) {
		return false, "Promotion has expired"
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false, "Promotion usage limit reached"
	}
	return true, ""
}

// GetActivePromotions lists currently valid promotions, optionally filtered by
// restaurant. Public endpoint.
func (h *Handler) GetActivePromotions(c *fiber.Ctx) error {
	now := time.Now()
	query := h.DB.
		Joins("JOIN restaurants ON restaurants.id = promotions.restaurant_id AND restaurants.status = ?",
			constants.StatusActive).
		Where("promotions.status = ?", constants.StatusActive).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("max_uses IS NULL OR current_uses < max_uses").
		Order("end_date asc")
	if restaurantId := c.QueryInt("restaurantId", 0); restaurantId > 0 {
		query = query.Where("restaurant_id = ?", restaurantId)
	}

	var promotions model.Promotions
	if err := query.Preload("Dishes").Find(&promotions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading promotions", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, promotions)
}

// GetRestaurantPromotions lists every promotion of a restaurant, active or not.
// Staff only.
func (h *Handler) GetRestaurantPromotions(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	restaurantId := uint(c.Locals("inputId").(int))

	if !principal.CanAccessRestaurant(restaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only view promotions of your own restaurant", nil)
	}

	var promotions model.Promotions
	if err := h.DB.
		Where("restaurant_id = ?", restaurantId).
		Preload("Dishes").
		Order("created_at desc").
		Find(&promotions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading promotions", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, promotions)
}

func (h *Handler) GetPromotion(c *fiber.Ctx) error {
	promotionId := c.Locals("inputId").(int)

	var promotion model.Promotion
	if err := h.DB.Preload("Dishes").First(&promotion, promotionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Promotion not found", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, promotion)
}

// CalculateDiscount quotes a promotion against an order amount. Pure
// computation: nothing is reserved and currentUses is not touched.
func (h *Handler) CalculateDiscount(c *fiber.Ctx) error {
	var input model.PromotionQuoteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var promotion model.Promotion
	if err := h.DB.First(&promotion, input.PromotionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Promotion not found", err)
	}

	quote := model.PromotionQuote{FinalAmount: input.OrderAmount}

	var restaurant model.Restaurant
	if err := h.DB.First(&restaurant, promotion.RestaurantID).Error; err != nil || !restaurant.IsActive() {
		quote.Message = "Restaurant is not active"
		return utils.SuccessResponse(c, fiber.StatusOK, quote)
	}

	if ok, reason := promotionInWindow(promotion, time.Now()); !ok {
		quote.Message = reason
		return utils.SuccessResponse(c, fiber.StatusOK, quote)
	}

	if promotion.MinOrderAmount != nil && input.OrderAmount < *promotion.MinOrderAmount {
		quote.Message = "Order amount below promotion minimum"
		return utils.SuccessResponse(c, fiber.StatusOK, quote)
	}

	discount := 0.0
	switch promotion.DiscountType {
	case model.DiscountTypePercentage:
		discount = input.OrderAmount * promotion.DiscountValue / 100
	case model.DiscountTypeFixedAmount:
		discount = promotion.DiscountValue
	}
	if discount > input.OrderAmount {
		discount = input.OrderAmount
	}

	quote.Applicable = true
	quote.DiscountAmount = discount
	quote.FinalAmount = input.OrderAmount - discount
	quote.Message = "Promotion applied"

	return utils.SuccessResponse(c, fiber.StatusOK, quote)
}

// IncrementPromotionUsage counts one redemption. The conditional update keeps
// currentUses under maxUses even when redemptions race.
func (h *Handler) IncrementPromotionUsage(c *fiber.Ctx) error {
	promotionId := c.Locals("inputId").(int)

	var promotion model.Promotion
	if err := h.DB.First(&promotion, promotionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Promotion not found", err)
	}

	if ok, reason := promotionInWindow(promotion, time.Now()); !ok {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT, reason, nil)
	}

	result := h.DB.Model(&model.Promotion{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", promotion.ID).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating promotion usage", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Promotion usage limit reached", nil)
	}

	var updated model.Promotion
	if err := h.DB.First(&updated, promotion.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading promotion", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}

func (h *Handler) CreatePromotion(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	input := c.Locals("input").(model.CreatePromotionInput)

	if !principal.CanAccessRestaurant(input.RestaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only create promotions for your own restaurant", nil)
	}

	if input.DiscountType == model.DiscountTypePercentage && input.DiscountValue > 100 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Percentage discount cannot exceed 100", nil)
	}

	var restaurant model.Restaurant
	if err := h.DB.First(&restaurant, input.RestaurantId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Restaurant not found", err)
	}

	promotion := model.Promotion{
		RestaurantID:   input.RestaurantId,
		Title:          input.Title,
		Description:    input.Description,
		Type:           input.Type,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		MinOrderAmount: input.MinOrderAmount,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		MaxUses:        input.MaxUses,
		Status:         constants.StatusActive,
	}

	if len(input.DishIds) > 0 {
		var dishes []model.Dish
		if err := h.DB.Where("id IN ? AND restaurant_id = ?", input.DishIds, input.RestaurantId).
			Find(&dishes).Error; err != nil || len(dishes) != len(input.DishIds) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"One or more dishes not found in this restaurant", nil)
		}
		promotion.Dishes = dishes
	}

	if err := h.DB.Create(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating promotion", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, promotion)
}

func (h *Handler) UpdatePromotion(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	promotionId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdatePromotionInput)

	var promotion model.Promotion
	if err := h.DB.First(&promotion, promotionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Promotion not found", err)
	}

	if !principal.CanAccessRestaurant(promotion.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only update promotions of your own restaurant", nil)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DiscountValue != nil {
		if promotion.DiscountType == model.DiscountTypePercentage && *input.DiscountValue > 100 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Percentage discount cannot exceed 100", nil)
		}
		updates["discount_value"] = *input.DiscountValue
	}
	if input.MinOrderAmount != nil {
		updates["min_order_amount"] = *input.MinOrderAmount
	}
	if input.EndDate != nil {
		if !input.EndDate.After(promotion.StartDate) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"End date must be after start date", nil)
		}
		updates["end_date"] = *input.EndDate
	}
	if input.MaxUses != nil {
		updates["max_uses"] = *input.MaxUses
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&promotion).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error updating promotion", err)
		}
	}

	if input.DishIds != nil {
		var dishes []model.Dish
		if len(*input.DishIds) > 0 {
			if err := h.DB.Where("id IN ? AND restaurant_id = ?", *input.DishIds, promotion.RestaurantID).
				Find(&dishes).Error; err != nil || len(dishes) != len(*input.DishIds) {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
					"One or more dishes not found in this restaurant", nil)
			}
		}
		if err := h.DB.Model(&promotion).Association("Dishes").Replace(dishes); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
				"Error updating promotion dishes", err)
		}
	}

	var updated model.Promotion
	if err := h.DB.Preload("Dishes").First(&updated, promotion.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading promotion", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}

// DeletePromotion retires a promotion. Soft delete keeps the usage history.
func (h *Handler) DeletePromotion(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	promotionId := c.Locals("inputId").(int)

	var promotion model.Promotion
	if err := h.DB.First(&promotion, promotionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Promotion not found", err)
	}

	if !principal.CanAccessRestaurant(promotion.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only delete promotions of your own restaurant", nil)
	}

	if err := h.DB.Model(&promotion).Update("status", constants.StatusInactive).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error deleting promotion", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Promotion deactivated"})
}
