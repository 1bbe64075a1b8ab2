package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNumber indicates that the numeric part of an input could not be read.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidUnit indicates that a unit is missing or not one of the supported units.
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrInvalidNumberAndUnit indicates that both parts of an input are invalid.
	ErrInvalidNumberAndUnit = errors.New("invalid number and unit")
)

// Unit is a canonical lowercase unit abbreviation.
type Unit string

// Supported units.
const (
	Gallons    Unit = "gal"
	Liters     Unit = "l"
	Miles      Unit = "mi"
	Kilometers Unit = "km"
	Pounds     Unit = "lbs"
	Kilograms  Unit = "kg"
)

const (
	galToL  = 3.78541
	miToKm  = 1.60934
	lbsToKg = 0.453592
)

type unitInfo struct {
	returnUnit string
	spelled    string
	factor     float64
	divide     bool
}

var units = [...]Unit{Gallons, Liters, Miles, Kilometers, Pounds, Kilograms}

// The paired unit is stored in display form, so gal pairs with "L" while l
// pairs with "gal".
var unitTable = map[Unit]unitInfo{
	Gallons:    {returnUnit: "L", spelled: "gallons", factor: galToL},
	Liters:     {returnUnit: "gal", spelled: "liters", factor: galToL, divide: true},
	Miles:      {returnUnit: "km", spelled: "miles", factor: miToKm},
	Kilometers: {returnUnit: "mi", spelled: "kilometers", factor: miToKm, divide: true},
	Pounds:     {returnUnit: "kg", spelled: "pounds", factor: lbsToKg},
	Kilograms:  {returnUnit: "lbs", spelled: "kilograms", factor: lbsToKg, divide: true},
}

// Units returns the supported units in table order.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units[:])
	return out
}

// lookupUnit returns the canonical Unit for s, ignoring case.
func lookupUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(s))
	if _, ok := unitTable[u]; !ok {
		return "", ErrInvalidUnit
	}
	return u, nil
}

// Display returns the abbreviation as shown to users. Liters are written "L".
func (u Unit) Display() string {
	if u == Liters {
		return "L"
	}
	return string(u)
}

// ParseNumber reads the leading quantity of input. The quantity is a run of
// digits, dots and slashes; a single slash makes it a fraction. A missing
// quantity defaults to 1. Quantities outside the float64 range are invalid.
func ParseNumber(input string) (float64, error) {
	v, err := parseQuantity(input)
	if err != nil {
		return 0, err
	}
	if !isFinite(v) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

func parseQuantity(input string) (float64, error) {
	s := strings.TrimSpace(input)
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '/'
	})
	if end < 0 {
		end = len(s)
	}
	lit := s[:end]
	if lit == "" {
		return 1, nil
	}

	parts := strings.Split(lit, "/")
	switch len(parts) {
	case 1:
		return parseDecimal(parts[0])
	case 2:
		num, err := parseDecimal(parts[0])
		if err != nil {
			return 0, err
		}
		den, err := parseDecimal(parts[1])
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, ErrInvalidNumber
		}
		return num / den, nil
	default:
		return 0, ErrInvalidNumber
	}
}

// parseDecimal accepts digits with at most one dot, and at least one digit.
func parseDecimal(s string) (float64, error) {
	if s == "" || s == "." || strings.Count(s, ".") > 1 {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// ParseUnit reads the trailing alphabetic token of input and returns it as a
// canonical Unit.
func ParseUnit(input string) (Unit, error) {
	s := strings.TrimSpace(input)
	start := strings.LastIndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z')
	}) + 1
	token := s[start:]
	if token == "" {
		return "", ErrInvalidUnit
	}
	return lookupUnit(token)
}

// ReturnUnit returns the display abbreviation of the unit that unit converts to.
func ReturnUnit(unit string) (string, error) {
	u, err := lookupUnit(unit)
	if err != nil {
		return "", err
	}
	return unitTable[u].returnUnit, nil
}

// SpellOut returns the plural name of unit.
func SpellOut(unit string) (string, error) {
	u, err := lookupUnit(unit)
	if err != nil {
		return "", err
	}
	return unitTable[u].spelled, nil
}

// Convert returns num expressed in the paired unit of unit. The result is not
// rounded.
func Convert(num float64, unit string) (float64, error) {
	u, err := lookupUnit(unit)
	if err != nil {
		return 0, err
	}
	info := unitTable[u]
	if info.divide {
		return num / info.factor, nil
	}
	return num * info.factor, nil
}

// Conversion is the result of converting a raw input string.
type Conversion struct {
	InitNum    float64 `json:"initNum"`
	InitUnit   string  `json:"initUnit"`
	ReturnNum  float64 `json:"returnNum"`
	ReturnUnit string  `json:"returnUnit"`
	String     string  `json:"string"`
}

// Parse converts a raw input such as "3.1mi" or "1/2gal". When both the number
// and the unit are invalid it returns ErrInvalidNumberAndUnit.
func Parse(input string) (*Conversion, error) {
	num, numErr := ParseNumber(input)
	unit, unitErr := ParseUnit(input)
	switch {
	case numErr != nil && unitErr != nil:
		return nil, ErrInvalidNumberAndUnit
	case numErr != nil:
		return nil, numErr
	case unitErr != nil:
		return nil, unitErr
	}

	ret, err := Convert(num, string(unit))
	if err != nil {
		return nil, err
	}
	if !isFinite(ret) {
		return nil, ErrInvalidNumber
	}
	info := unitTable[unit]
	retSpelled, err := SpellOut(info.returnUnit)
	if err != nil {
		return nil, err
	}
	ret = round(ret, 5)

	return &Conversion{
		InitNum:    num,
		InitUnit:   unit.Display(),
		ReturnNum:  ret,
		ReturnUnit: info.returnUnit,
		String:     fmt.Sprintf("%s %s converts to %s %s", formatNum(num), info.spelled, formatNum(ret), retSpelled),
	}, nil
}

func round(v float64, places int) float64 {
	// Above 2^52 a float64 has no fractional part left to round.
	if math.Abs(v) >= 1<<52 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
