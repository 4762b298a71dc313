package vo

import (
	"errors"
	"math"

	"github.com/dustin/go-humanize"
)

// Size represents a byte count value object used for capacity arithmetic.
type Size struct {
	bytes int64
}

const (
	KB int64 = 1024
	MB int64 = 1024 * KB
	GB int64 = 1024 * MB
)

var (
	ErrNegativeSize = errors.New("size cannot be negative")
)

// NewSize creates a new Size value object.
func NewSize(bytes int64) (Size, error) {
	if bytes < 0 {
		return Size{}, ErrNegativeSize
	}
	return Size{bytes: bytes}, nil
}

// SizeOf creates a Size, clamping negative values to zero.
func SizeOf(bytes int64) Size {
	if bytes < 0 {
		return Size{}
	}
	return Size{bytes: bytes}
}

// SizeFromUint creates a Size from an unsigned byte count, saturating at MaxInt64.
func SizeFromUint(bytes uint64) Size {
	if bytes > math.MaxInt64 {
		return Size{bytes: math.MaxInt64}
	}
	return Size{bytes: int64(bytes)}
}

// SizeFromGB creates a Size from gigabytes.
func SizeFromGB(gb float64) Size {
	return fromFloat(gb * float64(GB))
}

// SizeFromMB creates a Size from megabytes.
func SizeFromMB(mb float64) Size {
	return fromFloat(mb * float64(MB))
}

// Bytes returns the size in bytes.
func (s Size) Bytes() int64 {
	return s.bytes
}

// GB returns the size in gigabytes.
func (s Size) GB() float64 {
	return float64(s.bytes) / float64(GB)
}

// RoundedGB returns the size in gigabytes rounded to 2 decimals.
func (s Size) RoundedGB() float64 {
	return Round2(s.GB())
}

// IsZero returns true if the size is zero.
func (s Size) IsZero() bool {
	return s.bytes == 0
}

// AtLeast returns true if this size has reached limit.
func (s Size) AtLeast(limit Size) bool {
	return s.bytes >= limit.bytes
}

// Subtract returns a new Size with other subtracted, floored at zero.
func (s Size) Subtract(other Size) Size {
	return SizeOf(s.bytes - other.bytes)
}

// Min returns the smaller of the two sizes.
func (s Size) Min(other Size) Size {
	if other.bytes < s.bytes {
		return other
	}
	return s
}

// PercentOf returns s/total as a percentage rounded to one decimal.
// Returns 0 when total is zero.
func (s Size) PercentOf(total Size) float64 {
	if total.bytes <= 0 {
		return 0
	}
	return math.Round(float64(s.bytes)/float64(total.bytes)*1000) / 10
}

// String returns a human-readable string representation.
func (s Size) String() string {
	return humanize.IBytes(uint64(s.bytes))
}

// Round2 rounds v to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fromFloat truncates to whole bytes, saturating at MaxInt64. NaN and
// negative values yield zero.
func fromFloat(bytes float64) Size {
	if math.IsNaN(bytes) || bytes <= 0 {
		return Size{}
	}
	if bytes >= math.MaxInt64 {
		return Size{bytes: math.MaxInt64}
	}
	return Size{bytes: int64(bytes)}
}
