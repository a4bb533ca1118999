package domain

import "time"

// EventType names a torrent lifecycle event that subscribers can listen for.
type EventType string

const (
	EventTorrentAdded     EventType = "torrent_added"
	EventTorrentRemoved   EventType = "torrent_removed"
	EventTorrentCompleted EventType = "torrent_completed"
)

// ValidEventType reports whether t names a known lifecycle event.
func ValidEventType(t EventType) bool {
	switch t {
	case EventTorrentAdded, EventTorrentRemoved, EventTorrentCompleted:
		return true
	}
	return false
}

// LifecycleEvent is constructed by the orchestrator and consumed once by the
// webhook dispatcher. It is never persisted.
type LifecycleEvent struct {
	Type       EventType    `json:"type"`
	InfoHash   InfoHash     `json:"infoHash"`
	Payload    SessionState `json:"payload"`
	OccurredAt time.Time    `json:"occurredAt"`
}
