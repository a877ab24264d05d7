package definitions

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"om-units/core/determinism"
	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/core/scale"
	"om-units/core/unit"
	"om-units/internal/errors"
	"om-units/internal/logging"
)

// Loader reads definition files into a unit catalog and a scale catalog
type Loader struct {
	parser *hclparse.Parser
	units  *unit.Catalog
	scales *scale.Catalog
	logger *zap.Logger

	variables map[string]cty.Value
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the loader logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithVariable makes a string variable available to attribute expressions,
// e.g. base_unit = "${om}metre"
func WithVariable(name, value string) Option {
	return func(l *Loader) {
		l.variables[name] = cty.StringVal(value)
	}
}

// NewLoader creates a loader registering into the given catalogs.
// Prefix blocks are registered into the prefix registry of units. The
// variable om holds the OM namespace.
func NewLoader(units *unit.Catalog, scales *scale.Catalog, opts ...Option) *Loader {
	l := &Loader{
		parser: hclparse.NewParser(),
		units:  units,
		scales: scales,
		logger: logging.Named("definitions"),
	}
	l.variables = map[string]cty.Value{"om": cty.StringVal(prefix.Namespace)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result holds what a load registered, keyed by block name
type Result struct {
	Prefixes map[string]*prefix.Prefix
	Units    map[string]*unit.Unit
	Scales   map[string]*scale.Scale
}

func newResult() *Result {
	return &Result{
		Prefixes: make(map[string]*prefix.Prefix),
		Units:    make(map[string]*unit.Unit),
		Scales:   make(map[string]*scale.Scale),
	}
}

// LoadFiles parses every file and registers their blocks together, so
// blocks may reference blocks of another file. Blocks that fail do not stop
// the others; all failures are returned combined.
func (l *Loader) LoadFiles(paths ...string) (*Result, error) {
	var files []*File
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Parsing(fmt.Sprintf("failed to read %s", path), err)
		}
		f, err := l.decode(src, path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return l.apply(files...)
}

// Load parses and registers a single in-memory definition source
func (l *Loader) Load(src []byte, filename string) (*Result, error) {
	f, err := l.decode(src, filename)
	if err != nil {
		return nil, err
	}
	return l.apply(f)
}

func (l *Loader) decode(src []byte, filename string) (*File, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing(fmt.Sprintf("failed to parse %s", filename), diagnosticsError(diags))
	}
	var f File
	ctx := &hcl.EvalContext{Variables: l.variables}
	if diags := gohcl.DecodeBody(hclFile.Body, ctx, &f); diags.HasErrors() {
		return nil, errors.Parsing(fmt.Sprintf("failed to decode %s", filename), diagnosticsError(diags))
	}
	return &f, nil
}

func diagnosticsError(diags hcl.Diagnostics) error {
	var err error
	for _, diag := range diags {
		if diag.Severity == hcl.DiagError {
			err = multierr.Append(err, diag)
		}
	}
	return err
}

// run is the state of one apply pass
type run struct {
	*Loader
	graph        *dependencyGraph
	prefixBlocks map[string]*PrefixBlock
	unitBlocks   map[string]*UnitBlock
	scaleBlocks  map[string]*ScaleBlock
	result       *Result
	failed       map[blockKey]bool
}

func (l *Loader) apply(files ...*File) (*Result, error) {
	r := &run{
		Loader:       l,
		graph:        newDependencyGraph(),
		prefixBlocks: make(map[string]*PrefixBlock),
		unitBlocks:   make(map[string]*UnitBlock),
		scaleBlocks:  make(map[string]*ScaleBlock),
		result:       newResult(),
		failed:       make(map[blockKey]bool),
	}
	if err := r.buildGraph(files); err != nil {
		return nil, err
	}
	order, err := r.graph.order()
	if err != nil {
		return nil, err
	}

	var errs error
	for _, n := range order {
		if dep, ok := r.failedDependency(n); ok {
			r.failed[n.key] = true
			errs = multierr.Append(errs, errors.InvalidArgument("%s depends on %s which failed to load", n.key, dep))
			continue
		}
		if err := r.register(n.key); err != nil {
			r.failed[n.key] = true
			errs = multierr.Append(errs, annotate(err, n.key))
		}
	}

	l.logger.Debug("definitions loaded",
		zap.Int("prefixes", len(r.result.Prefixes)),
		zap.Int("units", len(r.result.Units)),
		zap.Int("scales", len(r.result.Scales)),
		zap.Int("failed", len(r.failed)))
	return r.result, errs
}

func (r *run) buildGraph(files []*File) error {
	type pending struct {
		node blockNode
		typ  blockType
		refs []string
	}
	var deps []pending

	var errs error
	for _, f := range files {
		for i := range f.Prefixes {
			b := &f.Prefixes[i]
			if _, err := r.graph.add(prefixBlock, b.Name); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			r.prefixBlocks[b.Name] = b
		}
		for i := range f.Units {
			b := &f.Units[i]
			n, err := r.graph.add(unitBlock, b.Name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			r.unitBlocks[b.Name] = b
			deps = append(deps, pending{node: n, typ: unitBlock, refs: b.references()})
			if b.Prefix != "" {
				deps = append(deps, pending{node: n, typ: prefixBlock, refs: []string{b.Prefix}})
			}
		}
		for i := range f.Scales {
			b := &f.Scales[i]
			n, err := r.graph.add(scaleBlock, b.Name)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			r.scaleBlocks[b.Name] = b
			deps = append(deps, pending{node: n, typ: unitBlock, refs: []string{b.Unit}})
			if b.BaseScale != "" {
				deps = append(deps, pending{node: n, typ: scaleBlock, refs: []string{b.BaseScale}})
			}
		}
	}

	for _, p := range deps {
		for _, ref := range p.refs {
			errs = multierr.Append(errs, r.graph.depend(p.node, p.typ, ref))
		}
	}
	return errs
}

func annotate(err error, key blockKey) error {
	if e, ok := errors.As(err); ok {
		return e.WithContext("block", key.String())
	}
	return errors.Wrap(errors.TypeInternal, key.String(), err)
}

func (r *run) failedDependency(n blockNode) (blockKey, bool) {
	for _, dep := range r.graph.dependencies(n) {
		if r.failed[dep] {
			return dep, true
		}
	}
	return blockKey{}, false
}

func (r *run) register(key blockKey) error {
	switch key.typ {
	case prefixBlock:
		b := r.prefixBlocks[key.name]
		if b.Factor <= 0 {
			return errors.InvalidArgument("prefix factor must be positive, got %v", b.Factor)
		}
		id := b.Identifier
		if id == "" {
			id = b.Name
		}
		r.result.Prefixes[key.name] = r.units.Prefixes().Register(b.Name, b.Symbol, b.Factor, id)
		return nil
	case unitBlock:
		u, err := r.registerUnit(r.unitBlocks[key.name])
		if err != nil {
			return err
		}
		r.result.Units[key.name] = u
		return nil
	case scaleBlock:
		s, err := r.registerScale(r.scaleBlocks[key.name])
		if err != nil {
			return err
		}
		r.result.Scales[key.name] = s
		return nil
	default:
		return errors.Internal(fmt.Sprintf("unknown block type %d", key.typ), nil)
	}
}

func (r *run) registerUnit(b *UnitBlock) (*unit.Unit, error) {
	meta := unitMetadata(b)
	catalog := r.units

	switch kind := b.unitKind(); kind {
	case KindSingular:
		spec := unit.SingularSpec{Metadata: meta, Factor: b.Factor}
		if len(b.Dimension) > 0 {
			dim, err := dimension.FromSlice(b.Dimension)
			if err != nil {
				return nil, err
			}
			spec.Dimensions = dim
		}
		if b.BaseUnit != "" {
			base, err := r.unit(b.BaseUnit)
			if err != nil {
				return nil, err
			}
			spec.BaseUnit = base
		}
		return catalog.SingularUnit(spec)

	case KindMultiple:
		base, err := r.required(b.BaseUnit, "base_unit", kind)
		if err != nil {
			return nil, err
		}
		return catalog.UnitMultiple(unit.MultipleSpec{Metadata: meta, BaseUnit: base, Factor: b.Factor})

	case KindPrefixed:
		if b.Prefix == "" {
			return nil, errors.InvalidArgument("a %s unit requires prefix", kind)
		}
		p, err := r.prefix(b.Prefix)
		if err != nil {
			return nil, err
		}
		base, err := r.required(b.BaseUnit, "base_unit", kind)
		if err != nil {
			return nil, err
		}
		return catalog.PrefixedUnit(unit.PrefixedSpec{Metadata: meta, Prefix: p, BaseUnit: base})

	case KindMultiplication:
		a, err := r.required(b.Multiplier, "multiplier", kind)
		if err != nil {
			return nil, err
		}
		c, err := r.required(b.Multiplicand, "multiplicand", kind)
		if err != nil {
			return nil, err
		}
		return catalog.UnitMultiplication(unit.MultiplicationSpec{Metadata: meta, Multiplier: a, Multiplicand: c})

	case KindDivision:
		num, err := r.required(b.Numerator, "numerator", kind)
		if err != nil {
			return nil, err
		}
		den, err := r.required(b.Denominator, "denominator", kind)
		if err != nil {
			return nil, err
		}
		return catalog.UnitDivision(unit.DivisionSpec{Metadata: meta, Numerator: num, Denominator: den})

	case KindExponentiation:
		base, err := r.required(b.Base, "base", kind)
		if err != nil {
			return nil, err
		}
		return catalog.UnitExponentiation(unit.ExponentiationSpec{Metadata: meta, Base: base, Exponent: b.Exponent})

	default:
		return nil, errors.InvalidArgument("unknown unit kind %q", kind)
	}
}

func unitMetadata(b *UnitBlock) unit.Metadata {
	meta := unit.Metadata{
		Identifier:    label.Identifier(b.Identifier),
		SystemOfUnits: b.System,
		IsBaseUnit:    b.IsBaseUnit,
	}
	for _, lang := range determinism.SortedKeys(b.Labels) {
		meta.Labels = append(meta.Labels, label.Lang(b.Labels[lang], lang))
	}
	// the plain label goes last so it stays the preferred one
	if b.Label != "" {
		meta.Labels = append(meta.Labels, label.Plain(b.Label))
	}
	if b.Symbol != "" {
		meta.Symbols = append(meta.Symbols, label.Plain(b.Symbol))
	}
	for _, s := range b.Symbols {
		meta.Symbols = append(meta.Symbols, label.Plain(s))
	}
	return meta
}

func (r *run) registerScale(b *ScaleBlock) (*scale.Scale, error) {
	u, err := r.unit(b.Unit)
	if err != nil {
		return nil, err
	}
	meta := scale.Metadata{
		Identifier:    label.Identifier(b.Identifier),
		SystemOfUnits: b.System,
	}
	if b.Label != "" {
		meta.Labels = []label.Text{label.Plain(b.Label)}
	}

	var s *scale.Scale
	switch kind := b.scaleKind(); kind {
	case KindRatio:
		s, err = r.scales.RatioScale(scale.RatioSpec{Metadata: meta, Unit: u})
	case KindInterval:
		if b.BaseScale == "" {
			return nil, errors.InvalidArgument("an interval scale requires base_scale")
		}
		base, berr := r.scale(b.BaseScale)
		if berr != nil {
			return nil, berr
		}
		s, err = r.scales.IntervalScale(scale.IntervalSpec{Metadata: meta, BaseScale: base, Unit: u, Offset: b.Offset})
	default:
		return nil, errors.InvalidArgument("unknown scale kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	for _, name := range determinism.SortedKeys(b.FixedPoints) {
		s.AddFixedPoint(name, b.FixedPoints[name])
	}
	return s, nil
}

func (r *run) required(ref, attribute, kind string) (*unit.Unit, error) {
	if ref == "" {
		return nil, errors.InvalidArgument("a %s unit requires %s", kind, attribute)
	}
	return r.unit(ref)
}

// unit resolves a reference to a block of this load, then to the catalog
func (r *run) unit(ref string) (*unit.Unit, error) {
	if u, ok := r.result.Units[ref]; ok {
		return u, nil
	}
	return r.units.Resolve(ref)
}

func (r *run) scale(ref string) (*scale.Scale, error) {
	if s, ok := r.result.Scales[ref]; ok {
		return s, nil
	}
	return r.scales.Resolve(ref)
}

// prefix resolves a block name, a registered identifier, a standard prefix
// name such as "kilo", or a unique prefix symbol
func (r *run) prefix(ref string) (*prefix.Prefix, error) {
	if p, ok := r.result.Prefixes[ref]; ok {
		return p, nil
	}
	registry := r.units.Prefixes()
	for _, id := range []string{ref, prefix.Namespace + ref} {
		if p, ok := registry.Lookup(id); ok {
			return p, nil
		}
	}
	if found := registry.WithSymbol(ref); len(found) == 1 {
		return found[0], nil
	}
	return nil, errors.NotFound("prefix", ref)
}
