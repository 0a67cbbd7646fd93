// Package vitals validates vital-sign readings and classifies blood
// pressure. Everything here is pure: no storage, no logging.
package vitals

import "math"

// Validation messages.
const (
	MsgSystolicNotPositive  = "Systolic blood pressure must be a positive number"
	MsgDiastolicNotPositive = "Diastolic blood pressure must be a positive number"
	MsgSystolicRange        = "Systolic blood pressure should be between 30 and 300 mmHg"
	MsgDiastolicRange       = "Diastolic blood pressure should be between 30 and 200 mmHg"
	MsgSystolicNotGreater   = "Systolic pressure must be greater than diastolic pressure"
	MsgWeightNotPositive    = "Weight must be a positive number"
	MsgWeightRange          = "Weight should be between 1 and 300 kg"
)

// Accepted ranges, inclusive.
const (
	SystolicMin  = 30
	SystolicMax  = 300
	DiastolicMin = 30
	DiastolicMax = 200
	WeightMin    = 1
	WeightMax    = 300
)

// Signs is the subset of a vitals record that gets validated.
type Signs struct {
	Systolic  float64
	Diastolic float64
	Weight    float64
}

// Result collects every violated rule; checks never short-circuit.
type Result struct {
	Errors []string `json:"errors"`
}

func (r Result) Valid() bool { return len(r.Errors) == 0 }

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func within(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func ValidateBloodPressure(systolic, diastolic float64) Result {
	var errs []string

	if !positive(systolic) {
		errs = append(errs, MsgSystolicNotPositive)
	}
	if !positive(diastolic) {
		errs = append(errs, MsgDiastolicNotPositive)
	}
	if !within(systolic, SystolicMin, SystolicMax) {
		errs = append(errs, MsgSystolicRange)
	}
	if !within(diastolic, DiastolicMin, DiastolicMax) {
		errs = append(errs, MsgDiastolicRange)
	}
	// NaN compares false both ways; treat it as failing the ordering rule.
	if !(systolic > diastolic) {
		errs = append(errs, MsgSystolicNotGreater)
	}

	return Result{Errors: errs}
}

func ValidateWeight(weight float64) Result {
	var errs []string

	if !positive(weight) {
		errs = append(errs, MsgWeightNotPositive)
	}
	if !within(weight, WeightMin, WeightMax) {
		errs = append(errs, MsgWeightRange)
	}

	return Result{Errors: errs}
}

// Validate returns the blood pressure errors followed by the weight errors.
func Validate(s Signs) Result {
	bp := ValidateBloodPressure(s.Systolic, s.Diastolic)
	w := ValidateWeight(s.Weight)

	errs := make([]string, 0, len(bp.Errors)+len(w.Errors))
	errs = append(errs, bp.Errors...)
	errs = append(errs, w.Errors...)
	if len(errs) == 0 {
		errs = nil
	}
	return Result{Errors: errs}
}
