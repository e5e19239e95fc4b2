package family

import (
	"strings"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
)

// MinQueryRunes is the shortest query any search will run.
const MinQueryRunes = 2

// Search returns the members whose first name, last name, national id or
// profession contains q, case-insensitively, in snapshot order. Queries shorter
// than [MinQueryRunes] after trimming match nothing.
func Search(people []Person, q string) []Person {
	q, err := kerrors.ValidateSearchQuery(q, MinQueryRunes)
	if err != nil {
		return nil
	}
	var out []Person
	for _, p := range people {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Person, q string) bool {
	for _, f := range []string{p.FirstName, p.LastName, p.NationalID, p.Profession} {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
