package utils

import "log"

// SmsSender is the external SMS/OTP delivery collaborator. Delivery is
// fire-and-forget per request; failures are reported but never block the
// calling flow.
type SmsSender interface {
	SendOtp(phone, code, purpose string) error
}

// LogSmsSender logs codes instead of sending them. Used in development and
// tests; a real provider implementation is wired by env in main.
type LogSmsSender struct{}

func (LogSmsSender) SendOtp(phone, code, purpose string) error {
	log.Printf("SMS to %s (%s): your verification code is %s", phone, purpose, code)
	return nil
}
