package text

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize collapses all whitespace runs to a single space and trims the result.
func Sanitize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Field length bounds for a complete review submission, counted in characters.
const (
	ProductNameMaxLen = 200
	UserNameMaxLen    = 100
	ReviewMaxLen      = 5000
)

// ValidateLengths checks the three collected fields against their length bounds.
// The returned error message names the violated field and its range.
func ValidateLengths(productName, userName, reviewText string) error {
	if n := utf8.RuneCountInString(productName); n < 1 || n > ProductNameMaxLen {
		return fmt.Errorf("Product name must be 1-%d characters.", ProductNameMaxLen)
	}
	if n := utf8.RuneCountInString(userName); n < 1 || n > UserNameMaxLen {
		return fmt.Errorf("User name must be 1-%d characters.", UserNameMaxLen)
	}
	if n := utf8.RuneCountInString(reviewText); n < 1 || n > ReviewMaxLen {
		return fmt.Errorf("Review must be 1-%d characters.", ReviewMaxLen)
	}
	return nil
}
