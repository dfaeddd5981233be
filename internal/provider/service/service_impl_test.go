package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/provider/domain"
	"github.com/smallbiznis/meritscore/internal/provider/repository"
	"github.com/smallbiznis/meritscore/internal/testutil"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    testutil.OpenDB(t, &domain.Provider{}),
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, domain.UpsertProviderRequest{ID: "101", NPI: "1234567890", Name: "Dr. Rivera", SpecialtyCode: "cardiology"})
	require.NoError(t, err)
	assert.Equal(t, "cardiology", created.SpecialtyCode)

	clk.Advance(time.Hour)
	updated, err := svc.Upsert(ctx, domain.UpsertProviderRequest{ID: "101", NPI: "1234567890", Name: "Dr. Rivera", SpecialtyCode: "internal_medicine"})
	require.NoError(t, err)
	assert.Equal(t, "internal_medicine", updated.SpecialtyCode)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "internal_medicine", got.SpecialtyCode)
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.UpsertProviderRequest{ID: "abc", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Upsert(ctx, domain.UpsertProviderRequest{ID: "5", Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Upsert(ctx, domain.UpsertProviderRequest{ID: "5", Name: "x", NPI: "12ab"})
	assert.ErrorIs(t, err, domain.ErrInvalidNPI)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		_, err := svc.Upsert(ctx, domain.UpsertProviderRequest{ID: id, Name: "p" + id})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.ListProviderRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Providers, 2)
	assert.True(t, first.HasMore)

	next, err := svc.List(ctx, domain.ListProviderRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, next.Providers, 1)
	assert.Equal(t, "p3", next.Providers[0].Name)
}
