package room

import (
	"testing"

	"github.com/nfrund/batepapo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(from, to string, kind domain.Kind, text string) *domain.Message {
	return &domain.Message{From: from, To: to, Kind: kind, Text: text}
}

func TestVisibilityPolicy_CanSee(t *testing.T) {
	tests := []struct {
		name   string
		m      *domain.Message
		viewer string
		open   bool
		strict bool
	}{
		{"broadcast", msg("Alice", "Todos", domain.KindMessage, "x"), "Carol", true, true},
		{"broadcast lower case", msg("Alice", "todos", domain.KindMessage, "x"), "Carol", true, true},
		{"status broadcast", msg("Alice", "Todos", domain.KindStatus, "x"), "Carol", true, true},
		{"private to viewer", msg("Alice", "Bob", domain.KindPrivateMessage, "x"), "Bob", true, true},
		{"private from viewer", msg("Alice", "Bob", domain.KindPrivateMessage, "x"), "Alice", true, true},
		{"private to someone else", msg("Alice", "Bob", domain.KindPrivateMessage, "x"), "Carol", false, false},
		{"addressed message to someone else", msg("Alice", "Bob", domain.KindMessage, "x"), "Carol", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, PolicyAddressedPublic.CanSee(tt.m, tt.viewer), "addressed-public")
			assert.Equal(t, tt.strict, PolicyStrict.CanSee(tt.m, tt.viewer), "strict")
		})
	}
}

func TestParseVisibilityPolicy(t *testing.T) {
	p, err := ParseVisibilityPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAddressedPublic, p)

	p, err = ParseVisibilityPolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = ParseVisibilityPolicy("everyone")
	assert.Error(t, err)
}

func TestLast(t *testing.T) {
	all := []*domain.Message{
		msg("a", "Todos", domain.KindMessage, "1"),
		msg("a", "Todos", domain.KindMessage, "2"),
		msg("a", "Todos", domain.KindMessage, "3"),
	}
	intp := func(n int) *int { return &n }

	tests := []struct {
		name  string
		limit *int
		want  []string
	}{
		{"no limit", nil, []string{"1", "2", "3"}},
		{"zero", intp(0), []string{}},
		{"negative", intp(-2), []string{}},
		{"smaller than log", intp(2), []string{"2", "3"}},
		{"larger than log", intp(10), []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(Last(all, tt.limit)))
		})
	}
}

func TestVisibleTo_KeepsOrder(t *testing.T) {
	all := []*domain.Message{
		msg("Alice", "Todos", domain.KindStatus, "join"),
		msg("Alice", "Bob", domain.KindPrivateMessage, "secret"),
		msg("Bob", "Todos", domain.KindMessage, "hello"),
		msg("Carol", "Alice", domain.KindPrivateMessage, "hi alice"),
	}

	assert.Equal(t, []string{"join", "hello", "hi alice"}, texts(VisibleTo(all, "Carol", PolicyStrict)))
	assert.Equal(t, []string{"join", "secret", "hello"}, texts(VisibleTo(all, "Bob", PolicyStrict)))
}
