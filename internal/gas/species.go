package gas

import (
	"sort"
	"strings"
	"sync"

	"github.com/san-kum/buoy/internal/units"
)

// Species is the molecular species of a gas.
type Species struct {
	Name         string
	Abbreviation string
	MolarMass    units.MolarMass

	// SpecificHeatRatio is gamma (cp/cv). Zero means diatomic (1.4).
	SpecificHeatRatio float64
}

func Air() Species {
	return Species{Name: "Air", Abbreviation: "AIR", MolarMass: 0.0289647, SpecificHeatRatio: 1.4}
}

func Helium() Species {
	return Species{Name: "Helium", Abbreviation: "He", MolarMass: 0.0040026, SpecificHeatRatio: 1.66}
}

func Hydrogen() Species {
	return Species{Name: "Hydrogen", Abbreviation: "H2", MolarMass: 0.00201588, SpecificHeatRatio: 1.41}
}

// Gamma returns the specific heat ratio, defaulting to 1.4.
func (s Species) Gamma() float64 {
	if s.SpecificHeatRatio <= 0 {
		return 1.4
	}
	return s.SpecificHeatRatio
}

// Validate checks that the species can be used in the gas laws.
func (s Species) Validate() error {
	if s.Name == "" {
		return &InvalidInputError{Param: "name", Value: 0}
	}
	m := float64(s.MolarMass)
	if !units.Finite(m) || m <= 0 {
		return &InvalidInputError{Param: "molar_mass", Value: m}
	}
	if !units.Finite(s.SpecificHeatRatio) || s.SpecificHeatRatio < 0 {
		return &InvalidInputError{Param: "specific_heat_ratio", Value: s.SpecificHeatRatio}
	}
	return nil
}

// Registry maps names and abbreviations to species. Lookups are case
// insensitive. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	species map[string]Species
}

// NewRegistry returns a Registry holding the built-in species.
func NewRegistry() *Registry {
	r := &Registry{species: make(map[string]Species)}
	for _, s := range []Species{Air(), Helium(), Hydrogen()} {
		r.species[strings.ToLower(s.Name)] = s
		r.species[strings.ToLower(s.Abbreviation)] = s
	}
	return r
}

// Register adds or replaces a species. It is keyed by both its name and
// its abbreviation.
func (r *Registry) Register(s Species) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.species[strings.ToLower(s.Name)] = s
	if s.Abbreviation != "" {
		r.species[strings.ToLower(s.Abbreviation)] = s
	}
	return nil
}

func (r *Registry) Lookup(name string) (Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.species[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Species{}, &UnknownSpeciesError{Name: name}
	}
	return s, nil
}

// List returns the distinct registered species sorted by name.
func (r *Registry) List() []Species {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []Species
	for _, s := range r.species {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	return names
}

var builtin = NewRegistry()

// Lookup finds a built-in species by name or abbreviation.
func Lookup(name string) (Species, error) {
	return builtin.Lookup(name)
}
