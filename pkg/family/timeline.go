package family

import (
	"cmp"
	"slices"
	"strings"
)

// EventKind distinguishes timeline entries.
type EventKind string

const (
	EventBirth EventKind = "birth"
	EventDeath EventKind = "death"
)

// Event is one dated entry on the family timeline.
type Event struct {
	PersonID    string    `json:"person_id"`
	Person      string    `json:"person"`
	Kind        EventKind `json:"kind"`
	Date        string    `json:"date"`
	Year        int       `json:"year"`
	Place       string    `json:"place,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Description string    `json:"description"`
}

// Timeline lists every recorded birth and death, oldest first. Events that
// share a date keep snapshot order, births before deaths of the same person.
// Dates that carry no year are skipped.
func Timeline(people []Person) []Event {
	var events []Event
	for _, p := range people {
		if e, ok := newEvent(p, EventBirth, p.BirthDate, p.BirthPlace); ok {
			events = append(events, e)
		}
		if e, ok := newEvent(p, EventDeath, p.DeathDate, p.DeathPlace); ok {
			events = append(events, e)
		}
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return events
}

func newEvent(p Person, kind EventKind, date, place string) (Event, bool) {
	date = trimTime(date)
	year, ok := Year(date)
	if !ok {
		return Event{}, false
	}
	verb := "Born"
	if kind == EventDeath {
		verb = "Died"
	}
	desc := verb + ": " + firstWord(p.FirstName)
	if place = strings.TrimSpace(place); place != "" {
		desc += " in " + place
	}
	return Event{
		PersonID:    p.ID,
		Person:      p.FullName(),
		Kind:        kind,
		Date:        date,
		Year:        year,
		Place:       place,
		PhotoURL:    p.PhotoURL,
		Description: desc,
	}, true
}
