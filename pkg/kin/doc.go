// Package kin builds the bidirectional relationship graph a layout pass runs
// on.
//
// [Build] turns a flat snapshot of [family.Person] records into one [Node]
// per record plus a deduplicated list of [Edge] values:
//
//   - parent-child edges, always directed parent to child
//   - spouse edges, at most one per unordered pair
//   - sibling edges, at most one per unordered pair, computed from shared
//     parents and from explicit sibling links
//
// Each node keeps four insertion-ordered, duplicate-free id lists (parents,
// children, spouses, siblings). Self references and references to records
// outside the snapshot are dropped silently.
//
// A Graph is built for one layout pass and never mutated afterwards.
package kin
