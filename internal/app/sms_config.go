package app

import (
	"strings"

	"github.com/kodisha/kodisha/internal/auth/mfa"
	"github.com/kodisha/kodisha/internal/notifications"
)

// Sender builds the SMS delivery adapter described by the configuration.
// When the provider is disabled it returns the logging sender so development
// environments can complete SMS flows without a gateway.
func (c SMSConfig) Sender() (mfa.Sender, error) {
	if !c.Enabled {
		return notifications.NewLogSender(), nil
	}

	return notifications.NewSMSSender(notifications.SMSConfig{
		URL:     strings.TrimSpace(c.URL),
		APIKey:  strings.TrimSpace(c.APIKey),
		From:    strings.TrimSpace(c.From),
		Timeout: c.Timeout,
	})
}
