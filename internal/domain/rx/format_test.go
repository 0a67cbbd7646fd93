package rx

import (
	"testing"
	"time"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"full name", FullName("Maria", "", "Reyes"), "Maria Reyes"},
		{"address", Address("", "Dayap", "Cainta", ""), "Dayap, Cainta"},
		{"bp whole", BloodPressure(120, 80), "120/80"},
		{"bp fractional", BloodPressure(120.5, 79), "120.5/79"},
		{"weight", Weight(65.27), "65.3 kg"},
		{"weight whole", Weight(3), "3.0 kg"},
		{"age months", Age(7, "months"), "7 months"},
		{"age default unit", Age(30, ""), "30 years"},
		{"date", Date(time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)), "January 9, 2026"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"09171234567", "0917 123 4567"},
		{"0917-123-4567", "0917 123 4567"},
		{"+63 917 123 4567", "+63 917 123 4567"},
		{"639171234567", "+63 917 123 4567"},
		{"8123-4567", "8123-4567"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PhoneNumber(tt.in); got != tt.want {
			t.Errorf("PhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
