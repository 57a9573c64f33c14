package utils

import (
	"restaurant_manager/config"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorResponse writes the error envelope. code is one of the stable error
// codes in constants; the raw error detail is suppressed in production.
func ErrorResponse(c *fiber.Ctx, status int, code string, message string, err error) error {
	var errMsg interface{}
	if err != nil && !config.IsProduction() {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"code":    code,
		"message": message,
		"error":   errMsg,
	})
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func ApplyPagination(query *gorm.DB, limit, page *int) *gorm.DB {
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		query = query.Limit(*limit)
		offset := *limit * (*page - 1)
		query = query.Offset(offset)
	}
	return query
}

func Ptr[T any](v T) *T {
	return &v
}
