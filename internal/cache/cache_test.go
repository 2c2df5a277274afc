package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/parking-system/internal/model"
)

func TestAvailabilityCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), time.Minute)

	ctx := context.Background()

	av := &model.Availability{
		Classes: []model.ClassAvailability{
			{Class: model.VehicleClassCar, Capacity: 50, Occupied: 10, Available: 40},
		},
		TotalCapacity:  200,
		TotalOccupied:  10,
		TotalAvailable: 190,
	}

	require.NoError(t, c.Set(ctx, av))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, av, got)
}

func TestAvailabilityCache_Miss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), time.Minute)

	_, ok, err := c.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAvailabilityCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), time.Second)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &model.Availability{TotalCapacity: 200}))

	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
