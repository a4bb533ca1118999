package domain

import (
	"errors"
	"net/url"
	"strings"
)

// WebhookSubscription pairs an event type with a delivery URL. Subscriptions
// are additive: the same URL may subscribe to several events and several URLs
// may subscribe to the same event.
type WebhookSubscription struct {
	Event EventType `json:"event"`
	URL   string    `json:"url"`
}

// Validate checks that the subscription is well-formed. Reachability of the
// URL is deliberately not checked at registration time.
func (s WebhookSubscription) Validate() error {
	if strings.TrimSpace(string(s.Event)) == "" {
		return errors.New("event is required")
	}
	if !ValidEventType(s.Event) {
		return errors.New("unknown event type")
	}
	raw := strings.TrimSpace(s.URL)
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("url host is required")
	}
	return nil
}
