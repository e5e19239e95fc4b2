package family

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Normalize returns a copy of people with whitespace trimmed, genders and
// relation kinds canonicalized. Decoders that bypass [Gender.UnmarshalText]
// (database drivers, spreadsheets) rely on this.
func Normalize(people []Person) []Person {
	out := make([]Person, len(people))
	for i, p := range people {
		p.ID = strings.TrimSpace(p.ID)
		p.FirstName = strings.TrimSpace(p.FirstName)
		p.LastName = strings.TrimSpace(p.LastName)
		p.Gender = ParseGender(string(p.Gender))
		p.BirthDate = trimTime(p.BirthDate)
		p.DeathDate = trimTime(p.DeathDate)
		p.FatherID = strings.TrimSpace(p.FatherID)
		p.MotherID = strings.TrimSpace(p.MotherID)
		p.SpouseID = strings.TrimSpace(p.SpouseID)
		p.RelatedTo = strings.TrimSpace(p.RelatedTo)
		p.RelationshipType = Relation(strings.ToLower(strings.TrimSpace(string(p.RelationshipType))))
		p.PhotoURL = strings.TrimSpace(p.PhotoURL)
		out[i] = p
	}
	return out
}

// idNamespace scopes generated identifiers to kinfolk.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/kinfolk/person"))

// AssignIDs gives every record without an id a name-based UUID derived from
// its position and name, so the same snapshot always yields the same ids.
// Records that already have an id are left untouched.
func AssignIDs(people []Person) []Person {
	out := make([]Person, len(people))
	copy(out, people)
	for i := range out {
		if out[i].ID != "" {
			continue
		}
		seed := strconv.Itoa(i) + "\x00" + out[i].FullName() + "\x00" + out[i].BirthDate
		out[i].ID = uuid.NewSHA1(idNamespace, []byte(seed)).String()
	}
	return out
}
