package server

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBLogHandlerWithAttrsMerges(t *testing.T) {
	h := NewDBLogHandler(nil, uuid.New())

	h2, ok := h.WithAttrs([]slog.Attr{slog.String("node", "web_research")}).(*DBLogHandler)
	require.True(t, ok)
	h3, ok := h2.WithAttrs([]slog.Attr{slog.Int("query_id", 3)}).(*DBLogHandler)
	require.True(t, ok)

	// Each With produces a new handler carrying the full chain; the
	// original stays untouched.
	assert.Empty(t, h.attrs)
	assert.Len(t, h2.attrs, 1)
	require.Len(t, h3.attrs, 2)
	assert.Equal(t, "node", h3.attrs[0].Key)
	assert.Equal(t, "query_id", h3.attrs[1].Key)
	assert.Equal(t, h.RunID, h3.RunID)
}

func TestDBLogHandlerWithAttrsEmpty(t *testing.T) {
	h := NewDBLogHandler(nil, uuid.New())
	assert.Same(t, slog.Handler(h), h.WithAttrs(nil))
}
