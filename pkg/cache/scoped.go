package cache

// ScopedKeyer prefixes every key of an inner [Keyer], so that the CLI and
// one or more servers can share a backend without seeing each other's
// snapshots and sessions:
//
//	cli := NewScopedKeyer(nil, "cli:")    // cli:snapshot:feed
//	api := NewScopedKeyer(nil, "server:") // server:session:3f2c...
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SnapshotKey(name string) string {
	return k.prefix + k.inner.SnapshotKey(name)
}

func (k *ScopedKeyer) SessionKey(id string) string {
	return k.prefix + k.inner.SessionKey(id)
}

func (k *ScopedKeyer) ResultKey(scenarioHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(scenarioHash, opts)
}
