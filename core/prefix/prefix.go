// Package prefix - Unit prefixes and the prefix registry
package prefix

import (
	"math"
	"sort"
	"sync"
)

// Namespace is the identifier namespace of the standard prefixes
const Namespace = "http://www.ontology-of-units-of-measure.org/resource/om-2/"

// Prefix is a named multiplicative scale factor (kilo = 1000)
type Prefix struct {
	Name       string
	Symbol     string
	Factor     float64
	Identifier string
}

// Equal compares prefixes by identifier
func (p *Prefix) Equal(other *Prefix) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Identifier == other.Identifier
}

// String implements Stringer
func (p *Prefix) String() string {
	return p.Name
}

// Registry maps prefix identifiers to prefixes
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]*Prefix
}

// NewRegistry creates an empty prefix registry
func NewRegistry() *Registry {
	return &Registry{
		prefixes: make(map[string]*Prefix),
	}
}

// Register creates a prefix and stores it under its identifier. An existing
// prefix with the same identifier is replaced.
func (r *Registry) Register(name, symbol string, factor float64, identifier string) *Prefix {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Prefix{Name: name, Symbol: symbol, Factor: factor, Identifier: identifier}
	r.prefixes[identifier] = p
	return p
}

// Lookup returns the prefix registered under identifier
func (r *Registry) Lookup(identifier string) (*Prefix, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefixes[identifier]
	return p, ok
}

// WithSymbol returns every prefix with the given symbol, ordered by identifier
func (r *Registry) WithSymbol(symbol string) []*Prefix {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Prefix
	for _, p := range r.prefixes {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	sortPrefixes(out)
	return out
}

// All returns every registered prefix, ordered by identifier
func (r *Registry) All() []*Prefix {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Prefix, 0, len(r.prefixes))
	for _, p := range r.prefixes {
		out = append(out, p)
	}
	sortPrefixes(out)
	return out
}

// Len returns the number of registered prefixes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prefixes)
}

// Clear removes every prefix
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes = make(map[string]*Prefix)
}

func sortPrefixes(ps []*Prefix) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].Identifier < ps[j].Identifier
	})
}

// Standard prefix identifiers
const (
	Yotta = Namespace + "yotta"
	Zetta = Namespace + "zetta"
	Exa   = Namespace + "exa"
	Peta  = Namespace + "peta"
	Tera  = Namespace + "tera"
	Giga  = Namespace + "giga"
	Mega  = Namespace + "mega"
	Kilo  = Namespace + "kilo"
	Hecto = Namespace + "hecto"
	Deca  = Namespace + "deca"
	Deci  = Namespace + "deci"
	Centi = Namespace + "centi"
	Milli = Namespace + "milli"
	Micro = Namespace + "micro"
	Nano  = Namespace + "nano"
	Pico  = Namespace + "pico"
	Femto = Namespace + "femto"
	Atto  = Namespace + "atto"
	Zepto = Namespace + "zepto"
	Yocto = Namespace + "yocto"

	Kibi = Namespace + "kibi"
	Mebi = Namespace + "mebi"
	Gibi = Namespace + "gibi"
	Tebi = Namespace + "tebi"
	Pebi = Namespace + "pebi"
	Exbi = Namespace + "exbi"
	Zebi = Namespace + "zebi"
	Yobi = Namespace + "yobi"

	JEDECKilo = Namespace + "jedec-kilo"
	JEDECMega = Namespace + "jedec-mega"
	JEDECGiga = Namespace + "jedec-giga"
)

// RegisterSI registers the twenty SI decimal prefixes
func RegisterSI(r *Registry) {
	r.Register("yotta", "Y", 1e24, Yotta)
	r.Register("zetta", "Z", 1e21, Zetta)
	r.Register("exa", "E", 1e18, Exa)
	r.Register("peta", "P", 1e15, Peta)
	r.Register("tera", "T", 1e12, Tera)
	r.Register("giga", "G", 1e9, Giga)
	r.Register("mega", "M", 1e6, Mega)
	r.Register("kilo", "k", 1e3, Kilo)
	r.Register("hecto", "h", 1e2, Hecto)
	r.Register("deca", "da", 1e1, Deca)
	r.Register("deci", "d", 1e-1, Deci)
	r.Register("centi", "c", 1e-2, Centi)
	r.Register("milli", "m", 1e-3, Milli)
	r.Register("micro", "μ", 1e-6, Micro)
	r.Register("nano", "n", 1e-9, Nano)
	r.Register("pico", "p", 1e-12, Pico)
	r.Register("femto", "f", 1e-15, Femto)
	r.Register("atto", "a", 1e-18, Atto)
	r.Register("zepto", "z", 1e-21, Zepto)
	r.Register("yocto", "y", 1e-24, Yocto)
}

// RegisterIEC registers the IEC binary prefixes
func RegisterIEC(r *Registry) {
	r.Register("kibi", "Ki", math.Pow(2, 10), Kibi)
	r.Register("mebi", "Mi", math.Pow(2, 20), Mebi)
	r.Register("gibi", "Gi", math.Pow(2, 30), Gibi)
	r.Register("tebi", "Ti", math.Pow(2, 40), Tebi)
	r.Register("pebi", "Pi", math.Pow(2, 50), Pebi)
	r.Register("exbi", "Ei", math.Pow(2, 60), Exbi)
	r.Register("zebi", "Zi", math.Pow(2, 70), Zebi)
	r.Register("yobi", "Yi", math.Pow(2, 80), Yobi)
}

// RegisterJEDEC registers the JEDEC binary interpretation of kilo, mega and giga
func RegisterJEDEC(r *Registry) {
	r.Register("kilo", "k", math.Pow(2, 10), JEDECKilo)
	r.Register("mega", "M", math.Pow(2, 20), JEDECMega)
	r.Register("giga", "G", math.Pow(2, 30), JEDECGiga)
}

// NewStandardRegistry returns a registry holding the SI, IEC and JEDEC prefixes
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	RegisterSI(r)
	RegisterIEC(r)
	RegisterJEDEC(r)
	return r
}

// Global default registry
var defaultRegistry = NewStandardRegistry()

// Register adds a prefix to the default registry
func Register(name, symbol string, factor float64, identifier string) *Prefix {
	return defaultRegistry.Register(name, symbol, factor, identifier)
}

// Lookup finds a prefix in the default registry
func Lookup(identifier string) (*Prefix, bool) {
	return defaultRegistry.Lookup(identifier)
}

// GetDefaultRegistry returns the default registry
func GetDefaultRegistry() *Registry {
	return defaultRegistry
}
