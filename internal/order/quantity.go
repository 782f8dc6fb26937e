package order

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Clamp maps any numeric input onto [MinQuantity, MaxQuantity]. NaN and
// values below the minimum become the minimum; fractions are floored.
func Clamp(value float64) int {
	if math.IsNaN(value) || value < MinQuantity {
		return MinQuantity
	}
	if value > MaxQuantity {
		return MaxQuantity
	}
	return int(math.Floor(value))
}

func ClampInt(value int) int {
	return Clamp(float64(value))
}

// ParseQuantity clamps free text from a quantity field. Text that is not a
// number takes the NaN path and yields the minimum.
func ParseQuantity(text string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return Clamp(math.NaN())
	}
	return Clamp(v)
}
