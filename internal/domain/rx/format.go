package rx

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FullName joins the non-empty name parts with single spaces.
func FullName(first, middle, last string) string {
	return join(" ", first, middle, last)
}

// Address joins the non-empty address parts with ", ".
func Address(street, barangay, city, province string) string {
	return join(", ", street, barangay, city, province)
}

func join(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// BloodPressure renders a reading as "sys/dia", without trailing zeros.
func BloodPressure(systolic, diastolic float64) string {
	return number(systolic) + "/" + number(diastolic)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Weight renders kilograms with one decimal.
func Weight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', 1, 64) + " kg"
}

func Age(age int, unit string) string {
	if unit == "" {
		unit = "years"
	}
	return strconv.Itoa(age) + " " + unit
}

// Date renders t as "January 2, 2006".
func Date(t time.Time) string {
	return t.Format("January 2, 2006")
}

// DateTime renders t in local time as "January 2, 2006 3:04 PM".
func DateTime(t time.Time) string {
	return t.Local().Format("January 2, 2006 3:04 PM")
}

// PhoneNumber formats Philippine mobile numbers as "09XX XXX XXXX" or
// "+63 XXX XXX XXXX". Anything else is returned unchanged.
func PhoneNumber(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "09"):
		return digits[:4] + " " + digits[4:7] + " " + digits[7:]
	case len(digits) == 12 && strings.HasPrefix(digits, "63"):
		return "+" + digits[:2] + " " + digits[2:5] + " " + digits[5:8] + " " + digits[8:]
	}
	return phone
}
