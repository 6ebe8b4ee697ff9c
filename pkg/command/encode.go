package command

import (
	"fmt"
	"math"
)

// Wire protocol of the actuator firmware: single-byte direction commands and
// 4-byte ASCII "Pnnn"/"Vnnn" frames with a zero-padded percentage. The
// firmware decodes these and drives its relays break-before-make.
const (
	extendByte  = 'E'
	retractByte = 'R'
	stopByte    = 'S'
)

// Extend encodes the extend intent.
func Extend() []byte { return []byte{extendByte} }

// Retract encodes the retract intent.
func Retract() []byte { return []byte{retractByte} }

// Stop encodes the stop intent.
func Stop() []byte { return []byte{stopByte} }

// Position encodes a normalized target position. Out-of-range input is
// silently clamped to [0, 1], never rejected.
func Position(v float64) []byte { return scaled('P', v) }

// Speed encodes a normalized speed with the same clamp and scale rule.
func Speed(v float64) []byte { return scaled('V', v) }

func scaled(prefix byte, v float64) []byte {
	return []byte(fmt.Sprintf("%c%03d", prefix, percent(v)))
}

// percent clamps to [0, 1] and scales to 0-100, rounding half up. NaN clamps
// low; the encoder stays total so every frame is well formed.
func percent(v float64) int {
	if math.IsNaN(v) || v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return int(math.Floor(v*100 + 0.5))
}
