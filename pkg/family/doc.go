// Package family defines the person record every other kinfolk package
// consumes, along with the record-level helpers built on it: display labels,
// partial-date handling, nationality flags, validation, member search and the
// birth/death timeline.
//
// # Records
//
// A [Person] mirrors one row of the family_members table. Relations are
// expressed two ways, both accepted downstream:
//
//   - Foreign keys: FatherID, MotherID and SpouseID point at other records.
//   - Relation links: RelationshipType plus RelatedTo ("parent", "child",
//     "spouse", "sibling") as written by older data entry forms. A record
//     with RelationshipType "self" marks the person the tree is centred on.
//
// References that do not resolve inside a snapshot are treated as absent;
// nothing in this package fails because of them.
//
// # Dates
//
// BirthDate and DeathDate are partial ISO dates: "1931", "1931-04" or
// "1931-04-17". Only the year is used for labels and timeline ordering ties
// are broken by the full string.
package family
