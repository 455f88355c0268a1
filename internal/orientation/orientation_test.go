// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestComputePoseFromAccel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ax, ay, az float64
		want       Pose
	}{
		{"flat", 0, 0, 1, Pose{}},
		{"rolled 90", 0, 1, 0, Pose{Roll: 90}},
		{"nose down 90", -1, 0, 0, Pose{Pitch: 90}},
		{"rolled 45", 0, 1, 1, Pose{Roll: 45}},
	}
	for _, tt := range tests {
		got := ComputePoseFromAccel(tt.ax, tt.ay, tt.az)
		assert.InDelta(t, tt.want.Roll, got.Roll, eps, tt.name)
		assert.InDelta(t, tt.want.Pitch, got.Pitch, eps, tt.name)
		assert.Zero(t, got.Yaw, tt.name)
	}
}

func TestFuse(t *testing.T) {
	t.Parallel()

	t.Run("no time step falls back to tilt", func(t *testing.T) {
		got := Fuse(Pose{Roll: 10, Yaw: 42}, 0, 0, 1, 100, 100, 100, 0)
		assert.InDelta(t, 0, got.Roll, eps)
		assert.InDelta(t, 42, got.Yaw, eps)
	})

	t.Run("steady gyro integrates yaw and wraps", func(t *testing.T) {
		got := Fuse(Pose{Yaw: 350}, 0, 0, 1, 0, 0, 20, 1)
		assert.InDelta(t, 10, got.Yaw, eps)
	})

	t.Run("converges to tilt when still", func(t *testing.T) {
		p := Pose{Roll: 30}
		for i := 0; i < 2000; i++ {
			p = Fuse(p, 0, 0, 1, 0, 0, 0, 0.01)
		}
		assert.InDelta(t, 0, p.Roll, 1e-6)
	})
}

func TestQuaternionRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("identity", func(t *testing.T) {
		q := QuaternionFromPose(Pose{})
		assert.InDelta(t, 1, q.W, eps)
		yaw, pitch, roll := Angles(q.RotationMatrix())
		assert.InDelta(t, 0, yaw, eps)
		assert.InDelta(t, 0, pitch, eps)
		assert.InDelta(t, 0, roll, eps)
	})

	t.Run("rotation about z", func(t *testing.T) {
		// +30° about z reads as azimuth -30° in the device convention.
		q := QuaternionFromPose(Pose{Yaw: 30})
		yaw, pitch, roll := Angles(q.RotationMatrix())
		assert.InDelta(t, -math.Pi/6, yaw, eps)
		assert.InDelta(t, 0, pitch, eps)
		assert.InDelta(t, 0, roll, eps)
	})

	t.Run("rotation about x", func(t *testing.T) {
		q := QuaternionFromPose(Pose{Roll: 20})
		yaw, pitch, roll := Angles(q.RotationMatrix())
		assert.InDelta(t, 0, yaw, eps)
		assert.InDelta(t, -20*math.Pi/180, pitch, eps)
		assert.InDelta(t, 0, roll, eps)
	})
}

func TestQuaternionFromVector(t *testing.T) {
	t.Parallel()

	q := QuaternionFromPose(Pose{Roll: 10, Pitch: -20, Yaw: 200})
	v := q.RotationVector()
	assert.Len(t, v, 4)
	assert.GreaterOrEqual(t, v[3], 0.0)

	full := QuaternionFromVector(v)
	derived := QuaternionFromVector(v[:3])
	assert.InDelta(t, full.W, derived.W, 1e-9)

	// Out of range vectors clamp w to zero instead of producing NaN.
	assert.Zero(t, QuaternionFromVector([]float64{1, 1, 1}).W)
	assert.Equal(t, Quaternion{W: 1}, QuaternionFromVector(nil))
}

func TestGravityFilter(t *testing.T) {
	t.Parallel()

	var f GravityFilter
	start := time.Unix(0, 0)
	still := [3]float64{0, 0, 9.81}

	g, lin := f.Update(still, start)
	assert.Equal(t, still, g)
	assert.Equal(t, [3]float64{}, lin)

	// A sudden push along x shows up almost entirely as linear acceleration.
	pushed := [3]float64{2, 0, 9.81}
	g, lin = f.Update(pushed, start.Add(10*time.Millisecond))
	assert.Less(t, g[0], 0.2)
	assert.Greater(t, lin[0], 1.8)
	assert.InDelta(t, 9.81, g[2], eps)

	// Held long enough, gravity absorbs the constant component.
	at := start.Add(10 * time.Millisecond)
	for i := 0; i < 500; i++ {
		at = at.Add(10 * time.Millisecond)
		g, lin = f.Update(pushed, at)
	}
	assert.InDelta(t, 2, g[0], 1e-3)
	assert.InDelta(t, 0, lin[0], 1e-3)
}

func TestMockPose(t *testing.T) {
	t.Parallel()

	p := MockPose(0)
	assert.InDelta(t, 0, p.Roll, eps)
	assert.InDelta(t, 15, p.Pitch, eps)
	assert.InDelta(t, 0, p.Yaw, eps)

	// rates match a finite difference of the pose
	const h = 1e-6
	for _, at := range []float64{0.3, 2, 7.5} {
		a, b := MockPose(at-h), MockPose(at+h)
		r, pi, y := MockRates(at)
		assert.InDelta(t, r, (b.Roll-a.Roll)/(2*h), 1e-4)
		assert.InDelta(t, pi, (b.Pitch-a.Pitch)/(2*h), 1e-4)
		assert.InDelta(t, y, (b.Yaw-a.Yaw)/(2*h), 1e-4)
	}
}
