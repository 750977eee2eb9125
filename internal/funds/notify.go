package funds

import (
	"context"
	"log/slog"
)

// Notifier is told about every committed movement.
type Notifier interface {
	Notify(ctx context.Context, m *Movement) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, m *Movement) error

func (f NotifierFunc) Notify(ctx context.Context, m *Movement) error {
	return f(ctx, m)
}

// Notifiers fans a movement out to every notifier. Failures are logged, never
// returned: the movement is already committed.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, m *Movement) {
	for _, n := range ns {
		if err := n.Notify(ctx, m); err != nil {
			slog.Error("failed to notify movement", "kind", m.Kind, "error", err)
		}
	}
}
