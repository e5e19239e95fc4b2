package family

import (
	"fmt"
	"strings"
)

// Gender is the closed set of genders a record can carry.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// ParseGender accepts the spellings found in stored data ("M", "F",
// "male", "female", any case). Anything else is unspecified.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "masculino", "h":
		return GenderMale
	case "f", "female", "femenino":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// UnmarshalText lets JSON, TOML and YAML decoders normalize stored values.
func (g *Gender) UnmarshalText(b []byte) error {
	*g = ParseGender(string(b))
	return nil
}

// Short returns the single-letter code used by the stored data.
func (g Gender) Short() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	default:
		return ""
	}
}

// Relation is the legacy relation-link kind stored with a record.
type Relation string

const (
	RelationNone    Relation = ""
	RelationSelf    Relation = "self"
	RelationParent  Relation = "parent"
	RelationChild   Relation = "child"
	RelationSpouse  Relation = "spouse"
	RelationSibling Relation = "sibling"
)

// Person is one family member as loaded from a repository.
type Person struct {
	ID        string `json:"id" yaml:"id" toml:"id" bson:"id" validate:"required"`
	FirstName string `json:"first_name" yaml:"first_name" toml:"first_name" bson:"first_name" validate:"required"`
	LastName  string `json:"last_name" yaml:"last_name" toml:"last_name" bson:"last_name"`
	Gender    Gender `json:"gender,omitempty" yaml:"gender,omitempty" toml:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female"`

	BirthDate  string `json:"birth_date,omitempty" yaml:"birth_date,omitempty" toml:"birth_date,omitempty" bson:"birth_date,omitempty" validate:"omitempty,partialdate"`
	DeathDate  string `json:"death_date,omitempty" yaml:"death_date,omitempty" toml:"death_date,omitempty" bson:"death_date,omitempty" validate:"omitempty,partialdate"`
	BirthPlace string `json:"birth_place,omitempty" yaml:"birth_place,omitempty" toml:"birth_place,omitempty" bson:"birth_place,omitempty"`
	DeathPlace string `json:"death_place,omitempty" yaml:"death_place,omitempty" toml:"death_place,omitempty" bson:"death_place,omitempty"`

	FatherID string `json:"father_id,omitempty" yaml:"father_id,omitempty" toml:"father_id,omitempty" bson:"father_id,omitempty" validate:"omitempty,nefield=ID"`
	MotherID string `json:"mother_id,omitempty" yaml:"mother_id,omitempty" toml:"mother_id,omitempty" bson:"mother_id,omitempty" validate:"omitempty,nefield=ID"`
	SpouseID string `json:"spouse_id,omitempty" yaml:"spouse_id,omitempty" toml:"spouse_id,omitempty" bson:"spouse_id,omitempty" validate:"omitempty,nefield=ID"`

	RelationshipType Relation `json:"relationship_type,omitempty" yaml:"relationship_type,omitempty" toml:"relationship_type,omitempty" bson:"relationship_type,omitempty" validate:"omitempty,oneof=self parent child spouse sibling"`
	RelatedTo        string   `json:"related_to,omitempty" yaml:"related_to,omitempty" toml:"related_to,omitempty" bson:"related_to,omitempty" validate:"omitempty,nefield=ID"`

	PhotoURL    string `json:"photo_url,omitempty" yaml:"photo_url,omitempty" toml:"photo_url,omitempty" bson:"photo_url,omitempty" validate:"omitempty,url"`
	Nationality string `json:"nationality,omitempty" yaml:"nationality,omitempty" toml:"nationality,omitempty" bson:"nationality,omitempty"`
	NationalID  string `json:"rut,omitempty" yaml:"rut,omitempty" toml:"rut,omitempty" bson:"rut,omitempty"`
	Profession  string `json:"profession,omitempty" yaml:"profession,omitempty" toml:"profession,omitempty" bson:"profession,omitempty"`
	Bio         string `json:"bio,omitempty" yaml:"bio,omitempty" toml:"bio,omitempty" bson:"bio,omitempty"`
}

// Self reports whether the record marks the person the tree centres on.
func (p Person) Self() bool { return p.RelationshipType == RelationSelf }

// Deceased reports whether a death date is recorded.
func (p Person) Deceased() bool { return strings.TrimSpace(p.DeathDate) != "" }

// FullName joins first and last name.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayName is the card label: the first word of the first name followed
// by the first word of the last name.
func (p Person) DisplayName() string {
	return strings.TrimSpace(firstWord(p.FirstName) + " " + firstWord(p.LastName))
}

// Initials returns up to two uppercase initials from the display name.
func (p Person) Initials() string {
	var b strings.Builder
	for _, w := range strings.Fields(p.DisplayName()) {
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// Lifespan renders the card date line: "1931 - 2004", "1931 - present",
// "? - 2004", or "no dates" when neither date is known.
func (p Person) Lifespan() string {
	by, bok := Year(p.BirthDate)
	dy, dok := Year(p.DeathDate)
	if !bok && !dok {
		return "no dates"
	}
	b, d := "?", "present"
	if bok {
		b = fmt.Sprintf("%04d", by)
	}
	if dok {
		d = fmt.Sprintf("%04d", dy)
	}
	return b + " - " + d
}

// Flag returns the emoji flag for the person's nationality, or "".
func (p Person) Flag() string { return FlagEmoji(p.Nationality) }

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
