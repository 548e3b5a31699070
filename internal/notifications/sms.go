package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kodisha/kodisha/internal/auth/mfa"
	"github.com/kodisha/kodisha/pkg/logger"
)

const defaultSendTimeout = 10 * time.Second

// SMSConfig configures the HTTP SMS gateway client.
type SMSConfig struct {
	URL     string
	APIKey  string
	From    string
	Timeout time.Duration
}

// SMSSender delivers verification codes through an HTTP SMS gateway. The
// gateway accepts a JSON body and reports per-message delivery status, which
// is surfaced as a failed SendResult rather than an error so callers can tell
// provider rejections apart from transport problems.
type SMSSender struct {
	cfg    SMSConfig
	client *http.Client
	log    *zap.Logger
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

type smsResponse struct {
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// NewSMSSender constructs an SMS gateway client.
func NewSMSSender(cfg SMSConfig) (*SMSSender, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, fmt.Errorf("sms: gateway url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}

	return &SMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.WithModule("sms"),
	}, nil
}

// Send posts the message to the gateway and maps the response onto a
// SendResult.
func (s *SMSSender) Send(ctx context.Context, destination, message string) (mfa.SendResult, error) {
	payload, err := json.Marshal(smsRequest{
		To:      destination,
		From:    s.cfg.From,
		Message: message,
	})
	if err != nil {
		return mfa.SendResult{}, fmt.Errorf("sms: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return mfa.SendResult{}, fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return mfa.SendResult{}, fmt.Errorf("sms: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return mfa.SendResult{}, fmt.Errorf("sms: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("sms gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("destination", destination))
		return mfa.SendResult{
			Success:       false,
			ProviderError: fmt.Sprintf("gateway status %d", resp.StatusCode),
		}, nil
	}

	var parsed smsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return mfa.SendResult{}, fmt.Errorf("sms: decode response: %w", err)
	}

	if !parsed.Delivered {
		return mfa.SendResult{Success: false, ProviderError: parsed.Error}, nil
	}
	return mfa.SendResult{Success: true}, nil
}

// LogSender writes messages to the application log instead of delivering
// them. It stands in for a real gateway in development environments.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender constructs a development sender.
func NewLogSender() *LogSender {
	return &LogSender{log: logger.WithModule("sms")}
}

// Send logs the destination and message and always reports success.
func (s *LogSender) Send(_ context.Context, destination, message string) (mfa.SendResult, error) {
	s.log.Info("sms delivery skipped",
		zap.String("destination", destination),
		zap.String("message", message))
	return mfa.SendResult{Success: true}, nil
}
