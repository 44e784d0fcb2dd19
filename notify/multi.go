package notify

import (
	"context"
	"errors"
	"log/slog"
)

// =============================================================================
// MultiNotifier
// =============================================================================

// MultiNotifier fans an event out to several notifiers. Each target can
// carry its own severity floor, so a channel like Slack sees everything
// while a pager only wakes up for failures.
type MultiNotifier struct {
	Logger *slog.Logger

	routes []notifyRoute
}

type notifyRoute struct {
	target      Notifier
	minSeverity string
}

// NewMultiNotifier creates a notifier that fans out to the given targets.
// Every target receives every event; use Route to add filtered targets.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{Logger: slog.Default()}
	for _, n := range notifiers {
		m.routes = append(m.routes, notifyRoute{target: n})
	}
	return m
}

// Route adds a target that only receives events at or above minSeverity.
func (n *MultiNotifier) Route(minSeverity string, target Notifier) *MultiNotifier {
	n.routes = append(n.routes, notifyRoute{target: target, minSeverity: minSeverity})
	return n
}

// Notify implements Notifier. A failing target does not stop delivery to
// the rest; all failures are joined into the returned error.
func (n *MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, route := range n.routes {
		if severityRank(event.Severity) < severityRank(route.minSeverity) {
			continue
		}
		if err := route.target.Notify(ctx, event); err != nil {
			errs = append(errs, err)
			if n.Logger != nil {
				n.Logger.Warn("notifier failed",
					"error", err,
					"event_type", event.Type,
				)
			}
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// NopNotifier
// =============================================================================

// NopNotifier is a no-op notifier that discards all notifications.
// Useful for testing or when notifications are disabled.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}
