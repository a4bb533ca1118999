package ports

import "bitserve/internal/domain"

// EventPublisher accepts lifecycle events for asynchronous delivery. Publish
// must never block on network I/O; delivery failures are invisible to the
// caller.
type EventPublisher interface {
	Publish(event domain.LifecycleEvent)
}
