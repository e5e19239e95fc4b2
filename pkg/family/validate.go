package family

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the validator instance for person records.
// Initialized in init() with the partial date rule.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("partialdate", func(fl validator.FieldLevel) bool {
		return ValidPartialDate(fl.Field().String())
	})
}

// Issue is a problem found in one record. Issues never stop a layout; callers
// log them.
type Issue struct {
	ID      string `json:"id"`
	Field   string `json:"field,omitempty"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.ID, i.Problem)
	}
	return fmt.Sprintf("%s: %s %s", i.ID, i.Field, i.Problem)
}

// Validate checks every record against its field rules and against the rest
// of the snapshot (duplicate ids, references that point nowhere).
func Validate(people []Person) []Issue {
	var issues []Issue
	ids := make(map[string]int, len(people))
	for _, p := range people {
		if p.ID != "" {
			ids[p.ID]++
		}
	}

	seenDup := make(map[string]bool)
	for i, p := range people {
		label := p.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		issues = append(issues, fieldIssues(label, p)...)

		if ids[p.ID] > 1 && !seenDup[p.ID] {
			seenDup[p.ID] = true
			issues = append(issues, Issue{ID: label, Problem: fmt.Sprintf("id used by %d records; first one wins", ids[p.ID])})
		}
		for _, ref := range []struct{ field, id string }{
			{"father_id", p.FatherID},
			{"mother_id", p.MotherID},
			{"spouse_id", p.SpouseID},
			{"related_to", p.RelatedTo},
		} {
			if ref.id != "" && ref.id != p.ID && ids[ref.id] == 0 {
				issues = append(issues, Issue{ID: label, Field: ref.field, Problem: fmt.Sprintf("references unknown person %q", ref.id)})
			}
		}
	}
	return issues
}

func fieldIssues(label string, p Person) []Issue {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{ID: label, Problem: err.Error()}}
	}
	out := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Issue{ID: label, Field: snakeCase(fe.Field()), Problem: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "partialdate":
		return fmt.Sprintf("is not a YYYY[-MM[-DD]] date: %q", fe.Value())
	case "nefield":
		return "refers to the record itself"
	case "url":
		return "is not a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}
