package handler

import (
	"errors"
	"fmt"
	"strings"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetLoyaltyProgram exposes the program parameters so clients can render
// conversion rates without hardcoding them.
func (h *Handler) GetLoyaltyProgram(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, model.LoyaltyProgramInfo{
		PointsPerDollar:    constants.PointsPerDollar,
		PointsToMoneyRatio: constants.PointsToMoneyRatio,
		MinimumRedemption:  constants.MinimumRedemption,
	})
}

// loyaltyCardFor returns the user's card, creating it on first touch.
func loyaltyCardFor(tx *gorm.DB, userId uint) (model.LoyaltyCard, error) {
	var card model.LoyaltyCard
	err := tx.Where("user_id = ?", userId).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		card = model.LoyaltyCard{UserID: userId, Points: 0}
		err = tx.Create(&card).Error
	}
	return card, err
}

func (h *Handler) GetMyLoyaltyCard(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	card, err := loyaltyCardFor(h.DB, principal.UserID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading loyalty card", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, card)
}

func (h *Handler) GetMyLoyaltyTransactions(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	card, err := loyaltyCardFor(h.DB, principal.UserID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading loyalty card", err)
	}

	limit := c.QueryInt("limit", 50)
	page := c.QueryInt("page", 1)

	var transactions model.LoyaltyTransactions
	query := h.DB.
		Preload("Restaurant").
		Where("loyalty_card_id = ?", card.ID).
		Order("created_at desc")
	if err := utils.ApplyPagination(query, &limit, &page).Find(&transactions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading loyalty transactions", err)
	}

	rows := make([]model.LoyaltyTransactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, model.LoyaltyTransactionRow{
			ID:             t.ID,
			RestaurantID:   t.RestaurantID,
			RestaurantName: t.Restaurant.Name,
			Points:         t.Points,
			Type:           t.Type,
			Description:    t.Description,
			OrderID:        t.OrderID,
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"card":         card,
		"transactions": rows,
	})
}

// RedeemPoints converts points to a discount amount. Balance check, balance
// decrement and the REDEEMED ledger row commit in one transaction.
func (h *Handler) RedeemPoints(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.RedeemPointsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	if input.PointsToRedeem < constants.MinimumRedemption {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			fmt.Sprintf("Minimum redemption is %d points", constants.MinimumRedemption), nil)
	}
	if input.PointsToRedeem%constants.RedemptionStep != 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			fmt.Sprintf("Points must be redeemed in multiples of %d", constants.RedemptionStep), nil)
	}

	var restaurant model.Restaurant
	if err := h.DB.First(&restaurant, input.RestaurantId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Restaurant not found", err)
	}

	var result model.RedeemPointsResult

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		card, err := loyaltyCardFor(tx, principal.UserID)
		if err != nil {
			return err
		}

		// The conditional decrement keeps the balance non-negative even when
		// two redemptions race on the same card.
		res := tx.Model(&model.LoyaltyCard{}).
			Where("id = ? AND points >= ?", card.ID, input.PointsToRedeem).
			UpdateColumn("points", gorm.Expr("points - ?", input.PointsToRedeem))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("insufficient points: you have %d, requested %d", card.Points, input.PointsToRedeem)
		}

		description := input.Description
		if description == "" {
			description = fmt.Sprintf("Redeemed %d points at %s", input.PointsToRedeem, restaurant.Name)
		}
		entry := model.LoyaltyTransaction{
			LoyaltyCardID: card.ID,
			RestaurantID:  input.RestaurantId,
			Points:        -input.PointsToRedeem,
			Type:          model.LoyaltyRedeemed,
			Description:   description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var updated model.LoyaltyCard
		if err := tx.First(&updated, card.ID).Error; err != nil {
			return err
		}

		result = model.RedeemPointsResult{
			Success:         true,
			PointsRedeemed:  input.PointsToRedeem,
			DiscountAmount:  float64(input.PointsToRedeem) / float64(constants.PointsToMoneyRatio),
			RemainingPoints: updated.Points,
			Message:         "Points redeemed successfully",
		}
		return nil
	})
	if err != nil {
		if strings.HasPrefix(err.Error(), "insufficient points") {
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT, err.Error(), nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error redeeming points", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

// AwardPoints credits points to the order owner's card for a completed
// order. Staff operation, scoped to the order's restaurant. The partial
// unique index on the ledger makes the EARNED entry at-most-once per order;
// a duplicate award fails the insert and rolls back the balance increment.
func (h *Handler) AwardPoints(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.AwardPointsInput
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
	if order.RestaurantID != input.RestaurantId {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Order does not belong to this restaurant", nil)
	}
	if !principal.CanAccessRestaurant(order.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only award points for orders of your own restaurant", nil)
	}
	if order.UserID == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Walk-in orders have no loyalty account", nil)
	}
	if order.Status != model.OrderStatusCompleted {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Points can only be awarded for completed orders", nil)
	}

	points := int(order.TotalAmount * constants.PointsPerDollar)
	if points <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Order amount too small to earn points", nil)
	}

	var result model.AwardPointsResult

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		card, err := loyaltyCardFor(tx, *order.UserID)
		if err != nil {
			return err
		}

		entry := model.LoyaltyTransaction{
			LoyaltyCardID: card.ID,
			RestaurantID:  order.RestaurantID,
			Points:        points,
			Type:          model.LoyaltyEarned,
			Description:   fmt.Sprintf("Earned from order %s", order.OrderNumber),
			OrderID:       &order.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.LoyaltyCard{}).
			Where("id = ?", card.ID).
			UpdateColumn("points", gorm.Expr("points + ?", points)).Error; err != nil {
			return err
		}

		var updated model.LoyaltyCard
		if err := tx.First(&updated, card.ID).Error; err != nil {
			return err
		}

		result = model.AwardPointsResult{
			PointsEarned: points,
			TotalPoints:  updated.Points,
			Message:      "Points awarded successfully",
		}
		return nil
	})
	if err != nil {
		// Unique index violation on (order_id) where type = EARNED.
		if isDuplicateKeyError(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
				"Points were already awarded for this order", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error awarding points", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// CreateManualTransaction lets staff adjust a card directly, for corrections
// and goodwill bonuses. The balance moves with the ledger entry atomically.
func (h *Handler) CreateManualTransaction(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var input model.ManualLoyaltyInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	if !principal.CanAccessRestaurant(input.RestaurantId) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only manage loyalty for your own restaurant", nil)
	}

	// Debits carry negative points, credits positive. A REDEEMED entry with
	// positive points would inflate the balance instead of reducing it.
	switch input.Type {
	case model.LoyaltyRedeemed, model.LoyaltyExpired:
		if input.Points >= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Points must be negative for "+input.Type+" transactions", nil)
		}
	case model.LoyaltyEarned, model.LoyaltyBonus:
		if input.Points <= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Points must be positive for "+input.Type+" transactions", nil)
		}
	}

	var card model.LoyaltyCard
	if err := h.DB.First(&card, input.LoyaltyCardId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Loyalty card not found", err)
	}

	var entry model.LoyaltyTransaction

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if input.Points < 0 {
			res := tx.Model(&model.LoyaltyCard{}).
				Where("id = ? AND points >= ?", card.ID, -input.Points).
				UpdateColumn("points", gorm.Expr("points + ?", input.Points))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("insufficient points on card %d", card.ID)
			}
		} else {
			if err := tx.Model(&model.LoyaltyCard{}).
				Where("id = ?", card.ID).
				UpdateColumn("points", gorm.Expr("points + ?", input.Points)).Error; err != nil {
				return err
			}
		}

		entry = model.LoyaltyTransaction{
			LoyaltyCardID: card.ID,
			RestaurantID:  input.RestaurantId,
			Points:        input.Points,
			Type:          input.Type,
			Description:   input.Description,
			OrderID:       input.OrderId,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if strings.HasPrefix(err.Error(), "insufficient points") {
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT, err.Error(), nil)
		}
		if isDuplicateKeyError(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
				"Points were already awarded for this order", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating loyalty transaction", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, entry)
}
