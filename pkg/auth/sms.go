package auth

import (
	"context"

	"github.com/chatforge/chatforge/pkg/logger"
)

// Sender delivers verification codes to phones. The provider SDK is
// deliberately behind this interface; deployments plug in their own.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log instead of sending them. Default for
// development and tests.
type LogSender struct {
	log logger.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendCode(ctx context.Context, phone, code string) error {
	s.log.InfoContext(ctx, "sms code issued", "phone", maskPhone(phone), "code", code)
	return nil
}

// maskPhone keeps the first three and last two digits.
func maskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 5 {
		return phone
	}
	masked := make([]rune, len(runes))
	copy(masked, runes)
	for i := 3; i < len(runes)-2; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
