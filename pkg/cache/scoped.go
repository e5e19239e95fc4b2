package cache

// ScopedKeyer wraps a Keyer with a prefix so several family trees can share
// one cache backend without colliding.
//
// Example usage:
//
//	// One namespace per configured repository
//	k := NewScopedKeyer(NewDefaultKeyer(), "tree:soto:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SnapshotKey generates a prefixed key for repository snapshots.
func (k *ScopedKeyer) SnapshotKey(source string) string {
	return k.prefix + k.inner.SnapshotKey(source)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// PhotoKey generates a prefixed key for photo thumbnails.
func (k *ScopedKeyer) PhotoKey(url string, size int) string {
	return k.prefix + k.inner.PhotoKey(url, size)
}
