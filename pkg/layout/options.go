package layout

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSpacingX is the horizontal distance between neighbouring cards.
	DefaultSpacingX = 160.0

	// DefaultSpacingY is the vertical distance between generations.
	DefaultSpacingY = 300.0

	// DefaultMaxAncestorDepth caps how many generations widen the ancestor fan.
	DefaultMaxAncestorDepth = 5

	// ancestorSpacingRatio derives the ancestor base offset from SpacingX.
	ancestorSpacingRatio = 1.5
)

// Options configures a layout pass. Zero values select defaults.
type Options struct {
	SpacingX         float64 `json:"spacing_x" toml:"spacing_x"`
	SpacingY         float64 `json:"spacing_y" toml:"spacing_y"`
	AncestorSpacing  float64 `json:"ancestor_spacing,omitempty" toml:"ancestor_spacing"`
	MaxAncestorDepth int     `json:"max_ancestor_depth" toml:"max_ancestor_depth"`

	// RootID selects the person at the origin. When empty or unknown, the
	// first record marked self is used, then the first record.
	RootID string `json:"root_id,omitempty" toml:"root_id"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.SpacingX <= 0 {
		o.SpacingX = DefaultSpacingX
	}
	if o.SpacingY <= 0 {
		o.SpacingY = DefaultSpacingY
	}
	if o.AncestorSpacing <= 0 {
		o.AncestorSpacing = o.SpacingX / ancestorSpacingRatio
	}
	if o.MaxAncestorDepth <= 0 {
		o.MaxAncestorDepth = DefaultMaxAncestorDepth
	}
	return o
}
