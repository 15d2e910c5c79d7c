package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearWindow(t *testing.T) {
	t.Run("Should cover exactly one UTC year", func(t *testing.T) {
		w, err := YearWindow(2024)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
	})

	t.Run("Should reject years out of range", func(t *testing.T) {
		_, err := YearWindow(1969)
		assert.Error(t, err)
		_, err = YearWindow(10000)
		assert.Error(t, err)
	})
}

func TestParseDimension(t *testing.T) {
	t.Run("Should accept industry and region only", func(t *testing.T) {
		d, err := ParseDimension("region")
		require.NoError(t, err)
		assert.Equal(t, DimensionRegion, d)
		_, err = ParseDimension("country")
		assert.ErrorIs(t, err, ErrUnknownDimension)
	})
}
