package Euler3D

import (
	"fmt"
	"math"
	"strings"
)

type LimiterType uint8

const (
	LIMITER_Minmod LimiterType = iota
	LIMITER_Maxmod
	LIMITER_Superbee
)

var (
	LimiterNames = map[string]LimiterType{
		"minmod":   LIMITER_Minmod,
		"maxmod":   LIMITER_Maxmod,
		"superbee": LIMITER_Superbee,
	}
	LimiterPrintNames = []string{"Minmod", "Maxmod", "Superbee"}
)

func (lt LimiterType) Print() (txt string) {
	txt = LimiterPrintNames[lt]
	return
}

// NewLimiterType defaults to minmod for an empty label
func NewLimiterType(label string) (lt LimiterType) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		return LIMITER_Minmod
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if lt, ok = LimiterNames[label]; !ok {
		err = fmt.Errorf("unable to use limiter named [%s]", label)
		panic(err)
	}
	return
}

// Limit applies the limiter to a pair of candidate slopes
func (lt LimiterType) Limit(a, b float64) float64 {
	switch lt {
	case LIMITER_Maxmod:
		return Maxmod(a, b)
	case LIMITER_Superbee:
		return Superbee(a, b)
	default:
		return Minmod(a, b)
	}
}

// Minmod is zero when a and b differ in sign, otherwise the argument of smaller magnitude
func Minmod(a, b float64) float64 {
	if a*b < 0 {
		return 0
	}
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}

// Maxmod is zero when a and b differ in sign, otherwise the argument of larger magnitude
func Maxmod(a, b float64) float64 {
	if a*b < 0 {
		return 0
	}
	if math.Abs(a) > math.Abs(b) {
		return a
	}
	return b
}

func Superbee(a, b float64) float64 {
	return Minmod(Maxmod(a, b), Minmod(a, b))
}
