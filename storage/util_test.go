package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camsys-rove/rove/storage"
)

func TestHaversineDistanceZero(t *testing.T) {
	d := storage.HaversineDistance(41.8781, -87.6298, 41.8781, -87.6298)
	assert.InDelta(t, 0.0, d, 1e-9)
}

func TestHaversineDistanceKnownPoints(t *testing.T) {
	// Chicago (Willis Tower) to Chicago (Wrigley Field), roughly 8km apart.
	d := storage.HaversineDistance(41.8789, -87.6359, 41.9484, -87.6553)
	assert.InDelta(t, 7.8, d, 1.0)
}
