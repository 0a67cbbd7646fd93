package patientid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SequenceWidth is the zero-padded width of the numeric suffix.
const SequenceWidth = 6

var identifierPattern = regexp.MustCompile(`^([A-Z]+)-(\d{6})$`)

// ErrInvalidIdentifier is returned by Parse for text that does not match
// CODE-NNNNNN.
var ErrInvalidIdentifier = errors.New("invalid patient identifier")

// Identifier is a decomposed CODE-NNNNNN patient identifier.
type Identifier struct {
	ServiceCode string `json:"service_code"`
	Sequence    int    `json:"sequence"`
}

// String renders the identifier. Sequences of 1,000,000 and above simply
// grow past six digits.
func (id Identifier) String() string {
	return Format(id.ServiceCode, id.Sequence)
}

// Format renders code and seq as CODE-NNNNNN.
func Format(code string, seq int) string {
	return fmt.Sprintf("%s-%0*d", code, SequenceWidth, seq)
}

// Parse splits a CODE-NNNNNN identifier. It does not check that the service
// code exists in the catalogue.
func Parse(s string) (Identifier, error) {
	m := identifierPattern.FindStringSubmatch(s)
	if m == nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return Identifier{ServiceCode: m[1], Sequence: seq}, nil
}

// IsValidFormat reports whether s matches ^[A-Z]+-\d{6}$.
func IsValidFormat(s string) bool {
	return identifierPattern.MatchString(s)
}

// Normalize trims and upper-cases user input so "ma-000001 " finds MA-000001.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ServiceCodeOf returns the text before the first hyphen, whether or not the
// rest is a valid sequence.
func ServiceCodeOf(s string) string {
	code, _, _ := strings.Cut(s, "-")
	return code
}
