// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "errors"

var (
	// ErrNativeModulesUnavailable is returned when the host registers none of
	// the sensor modules. It is fatal for the caller.
	ErrNativeModulesUnavailable = errors.New("native modules for sensors not available, is the sensor backend configured?")

	// ErrUnknownSensorType is returned for type strings outside the fixed set.
	ErrUnknownSensorType = errors.New("unknown sensor type")

	// ErrModuleNotRegistered is returned for a known type whose native module
	// the host did not provide.
	ErrModuleNotRegistered = errors.New("native module not registered")

	// ErrNotInitialized is returned by the package-level functions before Init.
	ErrNotInitialized = errors.New("sensors not initialized")
)
