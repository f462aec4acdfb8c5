package ports

import "context"

// Notifier shows desktop notifications
type Notifier interface {
	Notify(ctx context.Context, summary, body string) error
}
