package cache

import "strconv"

// Keyer generates cache keys for each kind of entry.
type Keyer interface {
	// HTTPKey names a raw HTTP response within a namespace.
	HTTPKey(namespace, key string) string

	// SnapshotKey names the person list fetched from a repository.
	SnapshotKey(source string) string

	// LayoutKey names a layout computed from a snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey names a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// PhotoKey names a thumbnail of a remote photo.
	PhotoKey(url string, size int) string
}

// LayoutKeyOpts holds the layout options that change node positions.
type LayoutKeyOpts struct {
	SpacingX         float64 `json:"spacing_x"`
	SpacingY         float64 `json:"spacing_y"`
	AncestorSpacing  float64 `json:"ancestor_spacing"`
	MaxAncestorDepth int     `json:"max_ancestor_depth"`
	RootID           string  `json:"root_id,omitempty"`
}

// ArtifactKeyOpts holds the render options that change output bytes.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Title     string `json:"title,omitempty"`
	Page      string `json:"page,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
	Pinned    bool   `json:"pinned,omitempty"`
	Photos    bool   `json:"photos,omitempty"`
}

// DefaultKeyer hashes option structs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SnapshotKey returns "snapshot:<hash(source)>".
func (DefaultKeyer) SnapshotKey(source string) string {
	return hashKey("snapshot", source)
}

// LayoutKey returns "layout:<hash(snapshot, opts)>".
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey returns "artifact:<hash(layout, opts)>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// PhotoKey returns "photo:<size>:<hash(url)>".
func (DefaultKeyer) PhotoKey(url string, size int) string {
	return hashKey("photo:"+strconv.Itoa(size), url)
}
