package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(27.7172, 85.3240, 27.7172, 85.3240))
}

func TestDistanceKm_Symmetry(t *testing.T) {
	// カトマンズ中心部とパタン
	d1 := DistanceKm(27.7172, 85.3240, 27.6644, 85.3188)
	d2 := DistanceKm(27.6644, 85.3188, 27.7172, 85.3240)

	assert.InDelta(t, d1, d2, 1e-12)
	assert.Greater(t, d1, 0.0)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// 緯度1度 ≈ 111.19 km
	d := DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestDistanceKm_NaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(DistanceKm(math.NaN(), 0, 1, 1)))
}
