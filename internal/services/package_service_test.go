package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/database/memstore"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPackageService_CRUD(t *testing.T) {
	svc := NewPackageService(memstore.New())
	ctx := context.Background()

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	p, err := svc.Create(ctx, &models.PackageRequest{
		Name:            strPtr("  Songkran Getaway "),
		Price:           amount(4500),
		DiscountPercent: amount(15),
		ValidFrom:       &from,
		ValidTo:         &to,
	})
	require.NoError(t, err)
	assert.Equal(t, "Songkran Getaway", p.Name)
	assert.True(t, p.Active)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.DiscountPercent)

	updated, err := svc.Update(ctx, p.ID, &models.PackageRequest{Price: amount(4000), Active: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, updated.Price)
	assert.False(t, updated.Active)
	assert.Equal(t, "Songkran Getaway", updated.Name)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, p.ID))
	requireKind(t, svc.Delete(ctx, p.ID), KindNotFound)
	_, err = svc.Get(ctx, p.ID)
	requireKind(t, err, KindNotFound)
}

func TestPackageService_Validation(t *testing.T) {
	svc := NewPackageService(memstore.New())
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.PackageRequest
	}{
		{"missing name", models.PackageRequest{Price: amount(100)}},
		{"blank name", models.PackageRequest{Name: strPtr("  ")}},
		{"negative price", models.PackageRequest{Name: strPtr("A"), Price: amount(-1)}},
		{"discount over 100", models.PackageRequest{Name: strPtr("A"), DiscountPercent: amount(120)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			requireKind(t, err, KindValidation)
		})
	}
}

func TestPackageService_UpdateChecksCombinedWindow(t *testing.T) {
	svc := NewPackageService(memstore.New())
	ctx := context.Background()

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)
	p, err := svc.Create(ctx, &models.PackageRequest{Name: strPtr("Long Stay"), ValidFrom: &from, ValidTo: &to})
	require.NoError(t, err)

	// Only valid_from is sent, but it lands after the stored valid_to
	later := to.AddDate(0, 0, 1)
	_, err = svc.Update(ctx, p.ID, &models.PackageRequest{ValidFrom: &later})
	requireKind(t, err, KindValidation)

	_, err = svc.Update(ctx, uuid.New(), &models.PackageRequest{Name: strPtr("x")})
	requireKind(t, err, KindNotFound)
}
