// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "math"

// MockPose is a smoothly changing pose, elapsed seconds after start: a
// gentle rock on roll and pitch while turning at 30°/s.
func MockPose(elapsed float64) Pose {
	return Pose{
		Roll:  20 * math.Sin(elapsed),
		Pitch: 15 * math.Cos(elapsed*0.7),
		Yaw:   math.Mod(elapsed*30, 360),
	}
}

// MockRates is the time derivative of MockPose in °/s.
func MockRates(elapsed float64) (roll, pitch, yaw float64) {
	return 20 * math.Cos(elapsed), -10.5 * math.Sin(elapsed*0.7), 30
}
