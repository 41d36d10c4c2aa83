package service

import (
	"context"
	"testing"
	"time"

	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsService_SumsVisibleSubmittedForms(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.taxRates.Create(ctx, e.taxAuthority, flatSchedule(nil))
	require.NoError(t, err)

	submitted, err := e.forms.Create(ctx, e.agent, e.freighterRequest())
	require.NoError(t, err)
	_, err = e.forms.Submit(ctx, e.agent, submitted.ID)
	require.NoError(t, err)

	_, err = e.forms.Create(ctx, e.agent, e.freighterRequest()) // draft, never counted
	require.NoError(t, err)

	perms, err := permission.New(nil)
	require.NoError(t, err)
	stats := NewStatisticsService(repository.NewStatisticsRepository(e.db), perms, nil)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	got, err := stats.GetStatistics(ctx, e.taxAuthority, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Overall.Forms)
	assert.True(t, decimal.NewFromInt(3300).Equal(got.Overall.HarbourTax), got.Overall.HarbourTax.String())
	assert.True(t, decimal.NewFromInt(3300).Equal(got.Overall.Total))
	assert.True(t, got.Overall.PaxTax.IsZero())

	require.Len(t, got.ByStatus, 1)
	assert.Equal(t, model.StatusNew, got.ByStatus[0].Status)
	require.Len(t, got.ByPort, 1)
	assert.Equal(t, "Nuuk", got.ByPort[0].PortName)

	other := e.user(t, CreateUserRequest{Username: "other-ship", Password: "secret1", Group: model.GroupShip})
	got, err = stats.GetStatistics(ctx, other, from, to)
	require.NoError(t, err)
	assert.Zero(t, got.Overall.Forms, "ships only see their own calls")

	got, err = stats.GetStatistics(ctx, e.taxAuthority, to, to.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, got.Overall.Forms)

	_, err = stats.GetStatistics(ctx, e.taxAuthority, to, from)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
