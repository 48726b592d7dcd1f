package vitals

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Acceptance ranges for storage. These are wider than, and independent of,
// the classification thresholds below.
const (
	SystolicMin  = 80
	SystolicMax  = 200
	DiastolicMin = 50
	DiastolicMax = 120
	SugarMin     = 70.0
	SugarMax     = 400.0
	HeartRateMin = 40
	HeartRateMax = 200
)

// Classification thresholds. A value strictly beyond either bound is
// clinically notable.
const (
	alertSystolicHigh  = 140
	alertSystolicLow   = 90
	alertDiastolicHigh = 90
	alertDiastolicLow  = 60
	alertSugarHigh     = 140.0
	alertSugarLow      = 70.0
	alertHeartRateHigh = 100
	alertHeartRateLow  = 60
)

// Validate parses and checks a raw submission. Every field is checked
// independently and every problem is reported; an empty list means the
// returned Vitals are storable.
func Validate(raw RawVitals) (Vitals, []string) {
	var v Vitals
	var reasons []string

	sys, okSys := parseInt("systolic", raw.Systolic, &reasons)
	if okSys {
		v.Systolic = sys
		reasons = checkIntRange(reasons, "systolic", sys, SystolicMin, SystolicMax)
	}
	dia, okDia := parseInt("diastolic", raw.Diastolic, &reasons)
	if okDia {
		v.Diastolic = dia
		reasons = checkIntRange(reasons, "diastolic", dia, DiastolicMin, DiastolicMax)
	}
	if sugar, ok := parseNumber("sugar", raw.Sugar, &reasons); ok {
		v.Sugar = sugar
		reasons = checkSugar(reasons, sugar)
	}
	if hr, ok := parseInt("heart rate", raw.HeartRate, &reasons); ok {
		v.HeartRate = hr
		reasons = checkIntRange(reasons, "heart rate", hr, HeartRateMin, HeartRateMax)
	}
	if okSys && okDia && sys <= dia {
		reasons = append(reasons, "systolic must be greater than diastolic")
	}
	return v, reasons
}

// ValidateVitals applies the range rules to already parsed measurements.
func ValidateVitals(v Vitals) []string {
	var reasons []string
	reasons = checkIntRange(reasons, "systolic", v.Systolic, SystolicMin, SystolicMax)
	reasons = checkIntRange(reasons, "diastolic", v.Diastolic, DiastolicMin, DiastolicMax)
	reasons = checkSugar(reasons, v.Sugar)
	reasons = checkIntRange(reasons, "heart rate", v.HeartRate, HeartRateMin, HeartRateMax)
	if v.Systolic <= v.Diastolic {
		reasons = append(reasons, "systolic must be greater than diastolic")
	}
	return reasons
}

// Classify labels a set of vitals. It does not consult the acceptance ranges.
func Classify(v Vitals) Wellness {
	switch {
	case v.Systolic > alertSystolicHigh, v.Systolic < alertSystolicLow:
		return WellnessAlert
	case v.Diastolic > alertDiastolicHigh, v.Diastolic < alertDiastolicLow:
		return WellnessAlert
	case v.Sugar > alertSugarHigh, v.Sugar < alertSugarLow:
		return WellnessAlert
	case v.HeartRate > alertHeartRateHigh, v.HeartRate < alertHeartRateLow:
		return WellnessAlert
	}
	return WellnessHealthy
}

func parseNumber(field, s string, reasons *[]string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		*reasons = append(*reasons, field+" is required")
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*reasons = append(*reasons, field+" must be a number")
		return 0, false
	}
	return f, true
}

func parseInt(field, s string, reasons *[]string) (int, bool) {
	f, ok := parseNumber(field, s, reasons)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		*reasons = append(*reasons, field+" must be a whole number")
		return 0, false
	}
	return int(f), true
}

func checkIntRange(reasons []string, field string, n, lo, hi int) []string {
	if n < lo || n > hi {
		return append(reasons, fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
	}
	return reasons
}

func checkSugar(reasons []string, sugar float64) []string {
	if math.IsNaN(sugar) || sugar < SugarMin || sugar > SugarMax {
		return append(reasons, fmt.Sprintf("sugar must be between %g and %g", SugarMin, SugarMax))
	}
	return reasons
}
