// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package periph

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/devices/v3/tlv493d"

	"github.com/relabs-tech/sensor_bridge/internal/orientation"
)

// StandardGravity in m/s².
const StandardGravity = 9.80665

// IMU is the part of the MPU9250 driver the backend reads from.
type IMU interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
	GetRotationX() (int16, error)
	GetRotationY() (int16, error)
	GetRotationZ() (int16, error)
}

// Barometer is the part of the BMP280 driver the backend reads from.
type Barometer interface {
	Sense(e *physic.Env) error
}

// Magnetometer is the part of the TLV493D driver the backend reads from.
type Magnetometer interface {
	Read(precision tlv493d.Precision) (tlv493d.Sample, error)
}

// openIMU brings up the MPU9250 on spiDev with the given chip select pin,
// applies the ranges and runs self-test and calibration.
func openIMU(logger *log.Logger, spiDev, csPin string, accelRange, gyroRange byte) (IMU, error) {
	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	logger.Info("accelerometer range set", "range", accelRange, "g", 2<<accelRange)

	if err := dev.SetGyroRange(gyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	logger.Info("gyroscope range set", "range", gyroRange, "dps", 250<<gyroRange)

	if res, err := dev.SelfTest(); err != nil {
		logger.Warn("self-test failed", "err", err)
	} else {
		logger.Info("self-test passed", "accel_deviation", res.AccelDeviation, "gyro_deviation", res.GyroDeviation)
	}

	if err := dev.Calibrate(); err != nil {
		logger.Warn("calibration failed", "err", err)
	} else {
		logger.Info("calibration complete")
	}

	return dev, nil
}

// openBarometer brings up the BMP280 on spiDev. The returned port must be
// closed by the caller.
func openBarometer(spiDev string) (*bmxx80.Dev, spi.PortCloser, error) {
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, nil, fmt.Errorf("BMP: SPI open (%s): %w", spiDev, err)
	}

	dev, err := bmxx80.NewSPI(port, &bmxx80.DefaultOpts)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("BMP: init: %w", err)
	}
	return dev, port, nil
}

// openMagnetometer brings up the TLV493D on the named I²C bus in low power
// mode (100 Hz). The returned bus must be closed by the caller.
func openMagnetometer(busName string) (*tlv493d.Dev, i2c.BusCloser, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("MAG: I2C open (%s): %w", busName, err)
	}

	opts := tlv493d.DefaultOpts
	opts.Mode = tlv493d.LowPowerMode
	dev, err := tlv493d.New(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("MAG: init: %w", err)
	}
	return dev, bus, nil
}

// imuReading is one IMU sample with everything derived from it.
type imuReading struct {
	accel   [3]float64 // m/s²
	gyro    [3]float64 // rad/s
	gravity [3]float64 // m/s²
	linear  [3]float64 // m/s²
	pose    orientation.Pose
	at      time.Time
}

// imuDevice shares one IMU between the sensors derived from it. Every read
// advances the gravity filter and the orientation estimate.
type imuDevice struct {
	mu  sync.Mutex
	dev IMU
	now func() time.Time

	accelLSB float64 // counts per g
	gyroLSB  float64 // counts per °/s

	gravity  orientation.GravityFilter
	pose     orientation.Pose
	lastFuse time.Time
}

func newIMUDevice(dev IMU, accelRange, gyroRange byte, tc time.Duration, now func() time.Time) *imuDevice {
	return &imuDevice{
		dev:      dev,
		now:      now,
		accelLSB: 16384 / float64(int(1)<<accelRange),
		gyroLSB:  131 / float64(int(1)<<gyroRange),
		gravity:  orientation.GravityFilter{TimeConstant: tc},
	}
}

// probe reads the IMU once without touching the filters.
func (d *imuDevice) probe() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := readRaw(d.dev)
	return err
}

func (d *imuDevice) read() (imuReading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := readRaw(d.dev)
	if err != nil {
		return imuReading{}, err
	}
	at := d.now()

	var r imuReading
	var dps [3]float64
	for i := 0; i < 3; i++ {
		r.accel[i] = float64(raw[i]) / d.accelLSB * StandardGravity
		dps[i] = float64(raw[3+i]) / d.gyroLSB
		r.gyro[i] = dps[i] * math.Pi / 180
	}
	r.gravity, r.linear = d.gravity.Update(r.accel, at)

	dt := 0.0
	if !d.lastFuse.IsZero() {
		dt = at.Sub(d.lastFuse).Seconds()
	}
	d.pose = orientation.Fuse(d.pose, r.accel[0], r.accel[1], r.accel[2], dps[0], dps[1], dps[2], dt)
	d.lastFuse = at

	r.pose = d.pose
	r.at = at
	return r, nil
}

// readRaw returns accel x/y/z followed by gyro x/y/z in counts.
func readRaw(dev IMU) ([6]int16, error) {
	var raw [6]int16
	getters := [6]struct {
		name string
		get  func() (int16, error)
	}{
		{"accel X", dev.GetAccelerationX},
		{"accel Y", dev.GetAccelerationY},
		{"accel Z", dev.GetAccelerationZ},
		{"gyro X", dev.GetRotationX},
		{"gyro Y", dev.GetRotationY},
		{"gyro Z", dev.GetRotationZ},
	}
	for i, g := range getters {
		v, err := g.get()
		if err != nil {
			return raw, fmt.Errorf("IMU %s: %w", g.name, err)
		}
		raw[i] = v
	}
	return raw, nil
}

// readPressure returns the pressure in hPa.
func readPressure(b Barometer) (float64, error) {
	var e physic.Env
	if err := b.Sense(&e); err != nil {
		return 0, fmt.Errorf("BMP sense: %w", err)
	}
	pa := float64(e.Pressure) / float64(physic.Pascal)
	return pa / 100, nil // 1 hPa = 100 Pa
}

// readField returns the magnetic field in µT.
func readField(m Magnetometer) ([3]float64, error) {
	smp, err := m.Read(tlv493d.HighPrecisionWithTemperature)
	if err != nil {
		return [3]float64{}, fmt.Errorf("MAG read: %w", err)
	}
	ut := float64(physic.MicroTesla)
	return [3]float64{
		float64(smp.Bx) / ut,
		float64(smp.By) / ut,
		float64(smp.Bz) / ut,
	}, nil
}
