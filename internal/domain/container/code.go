package container

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

const (
	codeLetters   = 4
	maxCodeNumber = 99999999
)

var codePattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{8}$`)

// ValidateCode checks the canonical container code format: 4 upper-case
// letters followed by 8 digits.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return shared.NewValidationError("code", fmt.Sprintf("invalid container code %q: expected 4 letters and 8 digits", code))
	}
	return nil
}

// BuildCode assembles a code from operator input. Letters are upper-cased and
// anything that is not a letter is dropped; exactly four letters must remain.
// The number is zero-padded to eight digits.
func BuildCode(letters string, number int) (string, error) {
	var b strings.Builder
	for _, r := range letters {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	prefix := b.String()
	if len(prefix) != codeLetters {
		return "", shared.NewValidationError("letters", fmt.Sprintf("expected %d letters, got %q", codeLetters, prefix))
	}
	if number < 0 || number > maxCodeNumber {
		return "", shared.NewValidationError("number", fmt.Sprintf("expected 0..%d, got %d", maxCodeNumber, number))
	}
	return fmt.Sprintf("%s%08d", prefix, number), nil
}

// CanonicalCode strips everything but letters and digits and upper-cases the
// result. Used for lookups so "msdu-1234 5678" finds MSDU12345678.
func CanonicalCode(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
