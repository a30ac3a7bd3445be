package media

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidRational is returned by ParseRational for malformed input.
var ErrInvalidRational = errors.New("media: invalid rational")

// Rational is a time base or frame rate expressed as Num/Den.
type Rational struct {
	Num int64
	Den int64
}

// R returns the rational num/den.
func R(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// ParseRational parses "num/den" or a bare integer. Both terms must be
// positive.
func ParseRational(s string) (Rational, error) {
	numStr, denStr, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		denStr = "1"
	}
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRational, s)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRational, s)
	}
	r := Rational{Num: num, Den: den}
	if !r.Valid() {
		return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRational, s)
	}
	return r, nil
}

// Valid reports whether both terms are positive.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Inverse returns Den/Num.
func (r Rational) Inverse() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// Float64 returns the value as a float.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts a from time base `from` to time base `to`, rounding to the
// nearest integer with halves away from zero. The intermediate product is
// computed without overflow; a result outside the int64 range saturates to
// math.MaxInt64 or math.MinInt64.
func Rescale(a int64, from, to Rational) int64 {
	num := new(big.Int).Mul(big.NewInt(a), big.NewInt(from.Num))
	num.Mul(num, big.NewInt(to.Den))
	den := new(big.Int).Mul(big.NewInt(from.Den), big.NewInt(to.Num))
	if den.Sign() == 0 {
		return 0
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}

	// round half away from zero: (2*num + sign(num)*den) / (2*den)
	twice := new(big.Int).Lsh(num, 1)
	if num.Sign() >= 0 {
		twice.Add(twice, den)
	} else {
		twice.Sub(twice, den)
	}
	q := new(big.Int).Quo(twice, new(big.Int).Lsh(den, 1))
	if !q.IsInt64() {
		if q.Sign() > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return q.Int64()
}

// FrameDuration returns the length of one frame at the given frame rate,
// expressed in the stream time base.
func FrameDuration(frameRate, streamTimeBase Rational) int64 {
	return Rescale(1, frameRate.Inverse(), streamTimeBase)
}
