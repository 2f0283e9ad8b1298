package sms

import (
	"context"
	"errors"

	"github.com/smartapp-edu/records-service/internal/utils"
)

// ErrNotConfigured means no delivery provider is available; callers fall back
// to surfacing the message through the operational log.
var ErrNotConfigured = errors.New("sms provider not configured")

// ConsoleSender writes messages to the log instead of delivering them. Used
// when no SMS provider is configured. It reports ErrNotConfigured so callers
// know delivery did not happen.
type ConsoleSender struct {
	logger utils.Logger
}

func NewConsoleSender(logger utils.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (c *ConsoleSender) Send(_ context.Context, phone, body string) error {
	c.logger.Info("sms not configured, logging message instead", "phone", phone, "body", body)
	return ErrNotConfigured
}
