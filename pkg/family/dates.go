package family

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var partialDateRe = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?)?$`)

// ValidPartialDate reports whether s is YYYY, YYYY-MM or YYYY-MM-DD.
// A trailing time component ("T00:00:00Z") as produced by some databases is
// tolerated.
func ValidPartialDate(s string) bool {
	return partialDateRe.MatchString(trimTime(s))
}

// Year extracts the year of a partial ISO date.
func Year(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// BirthYear returns the year of birth, if recorded.
func (p Person) BirthYear() (int, bool) { return Year(p.BirthDate) }

// DeathYear returns the year of death, if recorded.
func (p Person) DeathYear() (int, bool) { return Year(p.DeathDate) }

func trimTime(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

// FlagEmoji turns an ISO-3166 alpha-2 code into its regional-indicator flag.
// Values that already contain a non-ASCII symbol are returned unchanged.
func FlagEmoji(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for _, r := range code {
		if r > unicode.MaxASCII {
			return code
		}
	}
	if len(code) != 2 {
		return ""
	}
	code = strings.ToUpper(code)
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
