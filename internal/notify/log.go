package notify

import (
	"context"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Log writes notifications to the logger instead of delivering them. It is
// useful for trying out a configuration.
type Log struct {
	base
}

// NewLog creates a Log channel.
func NewLog(name string, opts ...Option) *Log {
	return &Log{base: newBase(name, "log", newOptions(opts))}
}

// HasRequiredFields always reports true.
func (*Log) HasRequiredFields() bool { return true }

// Send logs the notification.
func (l *Log) Send(_ context.Context, to *domain.User, title, message string) error {
	user := ""
	if to != nil {
		user = to.Name
	}
	l.log.Info("notification",
		"user", user,
		"title", title,
		"message", message,
	)
	return nil
}
