package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestProfileUpdate(t *testing.T) {
	p := NewProfile("u1", "ada@example.com", now)
	require.NoError(t, p.Update("  Ada Lovelace ", "12 St James's Square", "+44 20 7946 0958", now.Add(time.Hour)))
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, now.Add(time.Hour), p.UpdatedAt)

	require.NoError(t, p.Update("Ada", "", "", now))
	assert.Empty(t, p.Phone)

	err := p.Update("Ada", "", "call me maybe", now)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
	err = p.Update(strings.Repeat("a", maxNameLen+1), "", "", now)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
}

func TestNewMessage(t *testing.T) {
	m, err := NewMessage(" Grace ", "grace@example.com", "Do you resize rings?", now)
	require.NoError(t, err)
	assert.Equal(t, MessageUnread, m.Status)
	assert.Equal(t, "Grace", m.Name)

	for _, tc := range []struct{ name, email, body string }{
		{"", "a@b.co", "hi"},
		{"G", "not-an-email", "hi"},
		{"G", "a@b.co", "   "},
		{"G", "a@b.co", strings.Repeat("x", maxMessageLen+1)},
	} {
		_, err := NewMessage(tc.name, tc.email, tc.body, now)
		assert.True(t, errors.Is(err, ErrInvalidMessage), "%+v", tc)
	}
}

func TestMessageRespond(t *testing.T) {
	m, err := NewMessage("G", "g@example.com", "hello", now)
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Respond("  ", now), ErrInvalidMessage))

	later := now.Add(2 * time.Hour)
	require.NoError(t, m.Respond("Yes, free of charge.", later))
	assert.Equal(t, MessageResponded, m.Status)
	require.NotNil(t, m.RepliedAt)
	assert.Equal(t, later, *m.RepliedAt)
}

func TestParseMessageStatus(t *testing.T) {
	s, err := ParseMessageStatus("READ")
	require.NoError(t, err)
	assert.Equal(t, MessageRead, s)
	_, err = ParseMessageStatus("archived")
	assert.True(t, errors.Is(err, ErrInvalidMsgStatus))
}
