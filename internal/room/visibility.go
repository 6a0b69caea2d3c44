package room

import (
	"fmt"

	"github.com/nfrund/batepapo/internal/domain"
)

// VisibilityPolicy selects how public a kind=message entry addressed to a
// single participant is.
type VisibilityPolicy string

const (
	// PolicyAddressedPublic makes every kind=message entry visible to all,
	// whoever it is addressed to. Only private_message is restricted.
	PolicyAddressedPublic VisibilityPolicy = "addressed-public"

	// PolicyStrict shows a non-broadcast message only to its sender and addressee.
	PolicyStrict VisibilityPolicy = "strict"
)

// ParseVisibilityPolicy validates a configured policy name. Empty selects the default.
func ParseVisibilityPolicy(s string) (VisibilityPolicy, error) {
	switch VisibilityPolicy(s) {
	case "", PolicyAddressedPublic:
		return PolicyAddressedPublic, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown visibility policy %q", s)
}

// CanSee reports whether viewer is entitled to read m.
func (p VisibilityPolicy) CanSee(m *domain.Message, viewer string) bool {
	switch {
	case m.IsBroadcast():
		return true
	case m.To == viewer || m.From == viewer:
		return true
	case p != PolicyStrict && m.Kind == domain.KindMessage:
		return true
	}
	return false
}

// VisibleTo returns the messages viewer may read, preserving log order.
func VisibleTo(messages []*domain.Message, viewer string, policy VisibilityPolicy) []*domain.Message {
	visible := make([]*domain.Message, 0, len(messages))
	for _, m := range messages {
		if policy.CanSee(m, viewer) {
			visible = append(visible, m)
		}
	}
	return visible
}

// Last truncates messages to the most recent limit entries.
// A nil limit keeps everything; a limit of zero or less yields nothing.
func Last(messages []*domain.Message, limit *int) []*domain.Message {
	if limit == nil {
		return messages
	}
	n := *limit
	if n <= 0 {
		return []*domain.Message{}
	}
	if n > len(messages) {
		n = len(messages)
	}
	return messages[len(messages)-n:]
}
