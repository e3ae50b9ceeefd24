package applicant

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// The applicant-facing reference code has the fixed shape PREFIX-YYYY-NNNNN:
// the issuing calendar year and a zero-padded random 5-digit number.
// Generation alone does not guarantee uniqueness; Service.Issue does.
var (
	refPrefix = "QIS"
	refRegex  = regexp.MustCompile(`^QIS-\d{4}-\d{5}$`)

	nonRefCharsRegex = regexp.MustCompile(`[^A-Z0-9-]`)

	nowFunc  = time.Now  // mockable
	randIntn = rand.Intn // mockable
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

// SetRefPrefix changes the reference prefix (and its validation grammar).
func SetRefPrefix(prefix string) {
	refPrefix = strings.ToUpper(strings.TrimSpace(prefix))
	refRegex = regexp.MustCompile(`^` + refPrefix + `-\d{4}-\d{5}$`)
}

// GenerateRef returns a new reference code candidate.
func GenerateRef() string {
	return fmt.Sprintf("%s-%d-%05d", refPrefix, nowFunc().Year(), randIntn(100000))
}

// NormalizeRef uppercases the code and strips any character
// outside [A-Z0-9-] before it is checked or looked up.
func NormalizeRef(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return nonRefCharsRegex.ReplaceAllString(code, "")
}

// IsWellFormedRef reports whether the normalized code matches the reference grammar.
func IsWellFormedRef(code string) bool {
	return refRegex.MatchString(NormalizeRef(code))
}
