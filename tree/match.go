package tree

import (
	"strings"
	"sync"
)

// Match points at one entry inside the feeder that minted it.
// Matches are only created through a Registry.
type Match struct {
	feeder string
	id     int
	label  string
}

func (m Match) Feeder() string {
	return m.feeder
}

// ID is the index of the entry inside the owning feeder.
func (m Match) ID() int {
	return m.id
}

// Label is the human readable key, e.g. the variable or flag name.
func (m Match) Label() string {
	return m.label
}

// Registry mints matches on behalf of a feeder and keeps the labels they
// point at. Feeders embed it.
type Registry struct {
	mu     sync.RWMutex
	feeder string
	labels []string
}

func NewRegistry(feeder string) *Registry {
	return &Registry{feeder: feeder}
}

// Name returns the feeder name the registry mints matches for.
func (r *Registry) Name() string {
	return r.feeder
}

// Mint registers label and returns a match referencing it.
func (r *Registry) Mint(label string) Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := Match{feeder: r.feeder, id: len(r.labels), label: label}
	r.labels = append(r.labels, label)
	return m
}

// Label returns the label registered under id.
func (r *Registry) Label(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.labels) {
		return "", false
	}
	return r.labels[id], true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.labels)
}

// Bind mints one match per label and attaches them to node in order.
func (r *Registry) Bind(node Node, labels ...string) error {
	matches := make([]Match, 0, len(labels))
	for _, label := range labels {
		matches = append(matches, r.Mint(label))
	}
	fm, err := NewFeederMatches(matches...)
	if err != nil {
		return err
	}
	return node.AddFeederMatches(r.feeder, fm)
}

// FeederMatches is the ordered list of matches one feeder holds on one node.
type FeederMatches struct {
	feeder  string
	matches []Match
}

// NewFeederMatches groups matches minted by the same feeder.
func NewFeederMatches(matches ...Match) (*FeederMatches, error) {
	fm := &FeederMatches{}
	for _, m := range matches {
		if err := fm.Add(m); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

// Add appends m, rejecting matches from another feeder.
func (fm *FeederMatches) Add(m Match) error {
	if fm.feeder == "" {
		fm.feeder = m.feeder
	}
	if m.feeder != fm.feeder {
		return newSetupError(ErrMixedFeederMatches, "MIXED_FEEDER_MATCHES",
			"matches from different feeders cannot be combined",
			map[string]any{"expected": fm.feeder, "got": m.feeder, "label": m.label})
	}
	fm.matches = append(fm.matches, m)
	return nil
}

// Feeder is empty until the first match is added.
func (fm *FeederMatches) Feeder() string {
	return fm.feeder
}

func (fm *FeederMatches) Matches() []Match {
	return append([]Match(nil), fm.matches...)
}

func (fm *FeederMatches) Len() int {
	return len(fm.matches)
}

func (fm *FeederMatches) String() string {
	labels := make([]string, 0, len(fm.matches))
	for _, m := range fm.matches {
		labels = append(labels, m.label)
	}
	return "[" + fm.feeder + " " + strings.Join(labels, ", ") + "]"
}
