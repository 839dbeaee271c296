package cache

// Keyer generates cache keys.
type Keyer interface {
	// SnapshotKey names a snapshot saved by the user under name.
	SnapshotKey(name string) string

	// SessionKey names an HTTP API layout session.
	SessionKey(id string) string

	// ResultKey names the rendered result of a scenario, identified by the
	// hash of its source.
	ResultKey(scenarioHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts are the render settings that change a scenario result.
type ResultKeyOpts struct {
	Format     string `json:"format"`
	Trace      bool   `json:"trace,omitempty"`
	CellWidth  int    `json:"cell_width,omitempty"`
	CellHeight int    `json:"cell_height,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SnapshotKey returns "snapshot:<name>".
func (DefaultKeyer) SnapshotKey(name string) string {
	return "snapshot:" + name
}

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(id string) string {
	return "session:" + id
}

// ResultKey returns "result:" followed by a hash of the scenario hash and
// the options.
func (DefaultKeyer) ResultKey(scenarioHash string, opts ResultKeyOpts) string {
	return hashKey("result", scenarioHash, opts)
}

var _ Keyer = DefaultKeyer{}
