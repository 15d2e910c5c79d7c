package statsrouter

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/authtest"
	"github.com/compozy/defaultdesk/engine/infra/server/router/routertest"
	"github.com/compozy/defaultdesk/engine/stats/model"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitForTests()
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CountApproved(
	ctx context.Context,
	dim model.Dimension,
	window model.Window,
) ([]*model.Bucket, error) {
	args := m.Called(ctx, dim, window)
	if b := args.Get(0); b != nil {
		return b.([]*model.Bucket), args.Error(1)
	}
	return nil, args.Error(1)
}

func windowOf(t *testing.T, year int) model.Window {
	t.Helper()
	w, err := model.YearWindow(year)
	require.NoError(t, err)
	return w
}

func TestCountStats(t *testing.T) {
	t.Run("Should group approvals by industry for the requested year", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("CountApproved", mock.Anything, model.DimensionIndustry, windowOf(t, 2025)).Return([]*model.Bucket{
			{Value: "Retail", DefaultCount: 2, RebirthCount: 1},
			{Value: model.Unset, DefaultCount: 1},
		}, nil)
		state := routertest.NewState()
		state.Stats = repo
		r := routertest.NewRouter(state, authtest.Operator(), Register)

		w := routertest.Do(t, r, http.MethodGet, "/stats/industry?year=2025", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []model.Bucket
		routertest.DecodeData(t, w, &out)
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[0].DefaultCount)
		assert.Equal(t, model.Unset, out[1].Value)
		repo.AssertExpectations(t)
	})

	t.Run("Should default to the current year", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("CountApproved", mock.Anything, model.DimensionRegion, windowOf(t, time.Now().UTC().Year())).
			Return(nil, nil)
		state := routertest.NewState()
		state.Stats = repo
		r := routertest.NewRouter(state, authtest.Reviewer(), Register)

		w := routertest.Do(t, r, http.MethodGet, "/stats/region", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("Should reject a malformed or out of range year", func(t *testing.T) {
		state := routertest.NewState()
		state.Stats = new(mockRepository)
		r := routertest.NewRouter(state, authtest.Admin(), Register)
		assert.Equal(t, http.StatusBadRequest, routertest.Do(t, r, http.MethodGet, "/stats/industry?year=abc", nil).Code)
		assert.Equal(t, http.StatusBadRequest, routertest.Do(t, r, http.MethodGet, "/stats/region?year=1200", nil).Code)
	})
}

func TestSummaryStats(t *testing.T) {
	t.Run("Should return both breakdowns", func(t *testing.T) {
		repo := new(mockRepository)
		window := windowOf(t, 2024)
		repo.On("CountApproved", mock.Anything, model.DimensionIndustry, window).
			Return([]*model.Bucket{{Value: "Energy", DefaultCount: 3}}, nil)
		repo.On("CountApproved", mock.Anything, model.DimensionRegion, window).
			Return([]*model.Bucket{{Value: "EU", RebirthCount: 4}}, nil)
		state := routertest.NewState()
		state.Stats = repo
		r := routertest.NewRouter(state, authtest.Operator(), Register)

		w := routertest.Do(t, r, http.MethodGet, "/stats/summary?year=2024", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out model.Summary
		routertest.DecodeData(t, w, &out)
		assert.Equal(t, 2024, out.Year)
		require.Len(t, out.Industry, 1)
		require.Len(t, out.Region, 1)
		assert.Equal(t, int64(4), out.Region[0].RebirthCount)
	})
}
