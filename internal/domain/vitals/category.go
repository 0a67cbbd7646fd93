package vitals

// Category is a blood pressure classification.
type Category string

const (
	Normal               Category = "Normal"
	Elevated             Category = "Elevated"
	Stage1Hypertension   Category = "Stage 1 Hypertension"
	Stage2Hypertension   Category = "Stage 2 Hypertension"
	HypertensiveCrisis   Category = "Hypertensive Crisis"
	UnknownBloodPressure Category = "Unknown"
)

// Categorize classifies a reading, most severe band first, so every band is
// reachable:
//
//	crisis   systolic >= 180 or diastolic >= 120
//	stage 2  systolic >= 140 or diastolic >= 90
//	stage 1  systolic >= 130 or diastolic >= 80
//	elevated systolic >= 120
//	normal   otherwise
//
// Non-positive or non-finite readings are Unknown.
func Categorize(systolic, diastolic float64) Category {
	if !positive(systolic) || !positive(diastolic) {
		return UnknownBloodPressure
	}

	switch {
	case systolic >= 180 || diastolic >= 120:
		return HypertensiveCrisis
	case systolic >= 140 || diastolic >= 90:
		return Stage2Hypertension
	case systolic >= 130 || diastolic >= 80:
		return Stage1Hypertension
	case systolic >= 120:
		return Elevated
	default:
		return Normal
	}
}
