// Package notify provides notification services for orchestration events.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Notification event with type, message, and metadata
//   - EventType: Type of event (run, step, transition, agent)
//
// Implementations:
//   - SlackNotifier: Sends notifications to Slack webhooks
//   - WebhookNotifier: Posts events to generic webhooks, with an optional
//     severity floor
//   - LogNotifier: Logs notifications (for testing/debugging)
//   - MultiNotifier: Fans out to multiple notifiers, with per-target
//     severity routing
//   - NopNotifier: No-op notifier (for testing)
//
// Example usage:
//
//	notifier := notify.NewSlackNotifier(webhookURL,
//	    notify.WithSlackChannel("#orchestration-alerts"),
//	    notify.WithSlackUsername("autoflow-bot"),
//	)
//	err := notifier.Notify(ctx, notify.Event{
//	    Type:    notify.EventTransitionApplied,
//	    ItemID:  item.ID,
//	    Message: "work item advanced to VERIFIED",
//	})
package notify
