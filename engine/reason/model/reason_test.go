package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	t.Run("Should parse both types case-insensitively", func(t *testing.T) {
		got, err := ParseType("rebirth")
		require.NoError(t, err)
		assert.Equal(t, TypeRebirth, got)
		got, err = ParseType(" DEFAULT ")
		require.NoError(t, err)
		assert.Equal(t, TypeDefault, got)
	})

	t.Run("Should reject unknown types when binding JSON", func(t *testing.T) {
		var body struct {
			Type Type `json:"type"`
		}
		err := json.Unmarshal([]byte(`{"type":"RECOVERED"}`), &body)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("Should map types to the customer flag they require and produce", func(t *testing.T) {
		assert.False(t, TypeDefault.RequiredFlag())
		assert.True(t, TypeDefault.DefaultFlag())
		assert.True(t, TypeRebirth.RequiredFlag())
		assert.False(t, TypeRebirth.DefaultFlag())
	})
}
