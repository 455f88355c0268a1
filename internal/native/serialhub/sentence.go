// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialhub

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/sensor_bridge/sensors"
)

// Proprietary sentence types. With the "P" talker the remaining letters of
// the address become the sentence type.
const (
	TypeReading   = "RSEN"
	TypeAvailable = "RSAV"
)

// maxValues is the longest reading a hub sends (a rotation vector with w).
const maxValues = 4

// Reading is a $PRSEN sentence: one sensor reading.
//
//	$PRSEN,<type>,<v0>[,<v1>[,<v2>[,<v3>]]]*CS
type Reading struct {
	nmea.BaseSentence
	Sensor sensors.SensorType
	Values []float64
}

// Announce is a $PRSAV sentence: the sensors the hub carries.
//
//	$PRSAV,<type>[,<type>...]*CS
type Announce struct {
	nmea.BaseSentence
	Sensors []sensors.SensorType
}

// newSentenceParser returns a parser that knows the hub sentences on top of
// the standard NMEA set. Checksums are verified.
func newSentenceParser() *nmea.SentenceParser {
	return &nmea.SentenceParser{
		CustomParsers: map[string]nmea.ParserFunc{
			TypeReading:   parseReading,
			TypeAvailable: parseAnnounce,
		},
	}
}

func parseReading(s nmea.BaseSentence) (nmea.Sentence, error) {
	if len(s.Fields) < 2 {
		return nil, fmt.Errorf("nmea: %s expects a type and at least one value, got %d fields", s.Prefix(), len(s.Fields))
	}
	if len(s.Fields) > maxValues+1 {
		return nil, fmt.Errorf("nmea: %s carries at most %d values, got %d", s.Prefix(), maxValues, len(s.Fields)-1)
	}

	p := nmea.NewParser(s)
	r := Reading{BaseSentence: s}

	t, err := sensors.ParseSensorType(p.String(0, "sensor type"))
	if err != nil {
		return nil, fmt.Errorf("nmea: %s: %w", s.Prefix(), err)
	}
	r.Sensor = t

	for i := 1; i < len(s.Fields); i++ {
		r.Values = append(r.Values, p.Float64(i, fmt.Sprintf("v%d", i-1)))
	}
	return r, p.Err()
}

func parseAnnounce(s nmea.BaseSentence) (nmea.Sentence, error) {
	a := Announce{BaseSentence: s}
	for _, f := range s.Fields {
		if f == "" {
			continue
		}
		t, err := sensors.ParseSensorType(f)
		if err != nil {
			return nil, fmt.Errorf("nmea: %s: %w", s.Prefix(), err)
		}
		a.Sensors = append(a.Sensors, t)
	}
	return a, nil
}
