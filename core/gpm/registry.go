package gpm

import (
	"sort"
	"sync"

	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

// Family bundles everything the engine needs to work with one component
// model family without knowing its concrete type: a constructor, default
// hyperparameters derived from column data, and the hyperparameter grids
// the grid-Gibbs transition driver samples over.
type Family struct {
	// Name is the stable identifier, matching ComponentModel.Name of the
	// components the family builds.
	Name string

	// Collapsed is the static family property.
	Collapsed bool

	// New builds a component holding the given statistics and sharing the
	// given hyperparameters. Uncollapsed families initialize their latent
	// parameters by an immediate TransitionParams draw.
	New func(stats SuffStats, hypers *Hypers, src Source) (ComponentModel, error)

	// DefaultHypers derives a sensible shared hyperparameter set from the
	// column's data. Must produce a set that passes Validate.
	DefaultHypers func(data []float64) *Hypers

	// HyperGrids builds the candidate grids for the hyperparameter
	// transition driver from the column's data.
	HyperGrids func(data []float64, gridLen int) (HyperGrids, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Family)
)

// Register adds a family to the global registry. Families register
// themselves from an init function in their defining package.
// Registering the same name twice panics; it is a programming error.
func Register(f Family) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[f.Name]; dup {
		panic("gpm: Register called twice for family " + f.Name)
	}
	registry[f.Name] = f
}

// Lookup returns the family registered under name.
func Lookup(name string) (Family, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return Family{}, errors.Wrapf(errors.ErrUnknownFamily, "family %q", name)
	}
	return f, nil
}

// New builds a component of the named family.
func New(name string, stats SuffStats, hypers *Hypers, src Source) (ComponentModel, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.New(stats, hypers, src)
}

// Families returns the registered family names in sorted order.
func Families() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
