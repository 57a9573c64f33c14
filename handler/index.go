package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var validate = validator.New()

// Handler owns the injected collaborators: the database handle, the payment
// gateway adapter, the redis client (OTP storage and order-feed pub/sub) and
// the SMS collaborator.
type Handler struct {
	DB      *gorm.DB
	Gateway *GuidiniPay
	Redis   *redis.Client
	Sms     SmsSender
}

type SmsSender interface {
	SendOtp(phone, code, purpose string) error
}

func New(db *gorm.DB, gateway *GuidiniPay, rdb *redis.Client, sms SmsSender) *Handler {
	return &Handler{DB: db, Gateway: gateway, Redis: rdb, Sms: sms}
}
