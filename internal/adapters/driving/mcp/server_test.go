package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil handler returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingHandler)
	})

	t.Run("handler only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Handler: &mockHandler{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Token(t *testing.T) {
	t.Run("explicit token wins", func(t *testing.T) {
		p := &Ports{Token: "env"}
		tok, err := p.token("call")
		require.NoError(t, err)
		assert.Equal(t, "call", tok)
	})

	t.Run("falls back to server token", func(t *testing.T) {
		p := &Ports{Token: "env"}
		tok, err := p.token("")
		require.NoError(t, err)
		assert.Equal(t, "env", tok)
	})

	t.Run("no token", func(t *testing.T) {
		_, err := (&Ports{}).token("")
		assert.ErrorIs(t, err, ErrTokenRequired)
	})
}
