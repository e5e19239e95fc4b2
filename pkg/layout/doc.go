// Package layout computes deterministic 2-D positions for a family tree.
//
// [Compute] places a root person at the origin and grows the tree from it:
//
//   - Ancestors go upward one generation per [Options.SpacingY], laid out as
//     a binary fan: the father (or first parent) to the left and the mother
//     (or second parent) to the right. The horizontal offset at generation
//     level L is AncestorSpacing × 2^(D−L−1), where D is the root's ancestor
//     depth capped at MaxAncestorDepth, so the fan halves at every older
//     generation.
//   - Descendants go downward, children centred under their parent:
//     the i-th of k children sits at parentX − (k−1)·SpacingX/2 + i·SpacingX.
//   - Spouses sit to the right of their partner on the same row.
//   - Siblings of the root, and only of the root, sit to its left.
//
// A person is positioned once and never moved. Anyone the walk does not
// reach lands on an overflow row at y = 2·SpacingY, to the right of
// everything else, so no record is ever dropped.
//
// Compute is pure: the same graph and options always yield bit-identical
// coordinates.
package layout
