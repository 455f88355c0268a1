// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is roll/pitch/yaw in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// FusionWeight is the share of the gyro-integrated angle kept by Fuse on
// each step; the rest comes from the accelerometer tilt.
const FusionWeight = 0.98

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// Fuse runs one complementary filter step. Gyro rates are in °/s and dt in
// seconds. Yaw is pure gyro integration since there is no heading reference.
func Fuse(prev Pose, ax, ay, az, gx, gy, gz, dt float64) Pose {
	tilt := ComputePoseFromAccel(ax, ay, az)
	if dt <= 0 {
		tilt.Yaw = prev.Yaw
		return tilt
	}

	return Pose{
		Roll:  FusionWeight*(prev.Roll+gx*dt) + (1-FusionWeight)*tilt.Roll,
		Pitch: FusionWeight*(prev.Pitch+gy*dt) + (1-FusionWeight)*tilt.Pitch,
		Yaw:   wrapDegrees(prev.Yaw + gz*dt),
	}
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Quaternion is a unit rotation quaternion.
type Quaternion struct {
	W, X, Y, Z float64
}

// QuaternionFromPose converts roll/pitch/yaw (ZYX order) into a quaternion.
func QuaternionFromPose(p Pose) Quaternion {
	r := p.Roll * math.Pi / 180 / 2
	pi := p.Pitch * math.Pi / 180 / 2
	y := p.Yaw * math.Pi / 180 / 2

	cr, sr := math.Cos(r), math.Sin(r)
	cp, sp := math.Cos(pi), math.Sin(pi)
	cy, sy := math.Cos(y), math.Sin(y)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// RotationVector returns q in rotation vector layout: x, y, z, w.
func (q Quaternion) RotationVector() []float64 {
	if q.W < 0 {
		// same rotation, keeps the implied scalar part non-negative
		q = Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	}
	return []float64{q.X, q.Y, q.Z, q.W}
}

// QuaternionFromVector reads a rotation vector (x, y, z and optionally w).
// When w is absent it is derived from the unit norm.
func QuaternionFromVector(v []float64) Quaternion {
	var q Quaternion
	if len(v) > 0 {
		q.X = v[0]
	}
	if len(v) > 1 {
		q.Y = v[1]
	}
	if len(v) > 2 {
		q.Z = v[2]
	}
	if len(v) > 3 {
		q.W = v[3]
		return q
	}
	w := 1 - q.X*q.X - q.Y*q.Y - q.Z*q.Z
	if w > 0 {
		q.W = math.Sqrt(w)
	}
	return q
}

// RotationMatrix returns the row-major 3x3 rotation matrix of q.
func (q Quaternion) RotationMatrix() [9]float64 {
	sqX := 2 * q.X * q.X
	sqY := 2 * q.Y * q.Y
	sqZ := 2 * q.Z * q.Z
	xy := 2 * q.X * q.Y
	zw := 2 * q.Z * q.W
	xz := 2 * q.X * q.Z
	yw := 2 * q.Y * q.W
	yz := 2 * q.Y * q.Z
	xw := 2 * q.X * q.W

	return [9]float64{
		1 - sqY - sqZ, xy - zw, xz + yw,
		xy + zw, 1 - sqX - sqZ, yz - xw,
		xz - yw, yz + xw, 1 - sqX - sqY,
	}
}

// Angles returns azimuth (yaw), pitch and roll in radians from a rotation
// matrix, using the device-frame convention of mobile sensor APIs.
func Angles(r [9]float64) (yaw, pitch, roll float64) {
	yaw = math.Atan2(r[1], r[4])
	pitch = math.Asin(clamp(-r[7], -1, 1))
	roll = math.Atan2(-r[6], r[8])
	return yaw, pitch, roll
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
