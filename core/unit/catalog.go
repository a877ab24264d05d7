package unit

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"om-units/core/determinism"
	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/internal/errors"
	"om-units/internal/logging"
)

const (
	// DefaultIdentityTolerance bounds the relative log-difference between
	// factors of two definitions sharing an identifier
	DefaultIdentityTolerance = 1e-5

	// DefaultDuplicateTolerance bounds |factor - 1| when detecting an
	// anonymous duplicate of an existing unit
	DefaultDuplicateTolerance = 1e-7
)

// Catalog creates, deduplicates and looks up units. Factories return the
// existing instance when a request resolves to a unit already known.
type Catalog struct {
	mu        sync.RWMutex
	units     []*Unit
	byID      map[label.Identifier]*Unit
	baseCache map[baseKey]*Unit

	prefixes           *prefix.Registry
	logger             *zap.Logger
	identityTolerance  float64
	duplicateTolerance float64
}

type baseKey struct {
	unit   *Unit
	system string
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLogger sets the catalog logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrefixes sets the prefix registry used to resolve prefix identifiers
func WithPrefixes(r *prefix.Registry) Option {
	return func(c *Catalog) {
		if r != nil {
			c.prefixes = r
		}
	}
}

// WithTolerances overrides the identity and duplicate tolerances. Non-positive values are ignored.
func WithTolerances(identity, duplicate float64) Option {
	return func(c *Catalog) {
		if identity > 0 {
			c.identityTolerance = identity
		}
		if duplicate > 0 {
			c.duplicateTolerance = duplicate
		}
	}
}

// NewCatalog creates an empty catalog
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		byID:               make(map[label.Identifier]*Unit),
		baseCache:          make(map[baseKey]*Unit),
		prefixes:           prefix.GetDefaultRegistry(),
		logger:             logging.Named("unit"),
		identityTolerance:  DefaultIdentityTolerance,
		duplicateTolerance: DefaultDuplicateTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefixes returns the prefix registry of the catalog
func (c *Catalog) Prefixes() *prefix.Registry { return c.prefixes }

// Metadata holds the descriptive fields shared by every unit request
type Metadata struct {
	// Identifier is the durable identifier; empty yields a blank one
	Identifier label.Identifier

	// Labels are added in order; the last untagged label is preferred
	Labels []label.Text

	// Symbols are added in order
	Symbols []label.Text

	// SystemOfUnits tags the unit, e.g. "SI"
	SystemOfUnits string

	// IsBaseUnit flags the unit as base unit of its dimension in SystemOfUnits
	IsBaseUnit bool

	// NoCache builds a throwaway unit that is neither looked up nor registered
	NoCache bool
}

// SingularSpec requests a root unit or a scalar multiple of a base unit
type SingularSpec struct {
	Metadata

	// Dimensions of a root unit; derived from BaseUnit otherwise
	Dimensions dimension.Dimension

	// BaseUnit is nil for root units
	BaseUnit *Unit

	// Factor is how many base units one unit is; 0 means 1
	Factor float64
}

// PrefixedSpec requests a prefixed unit
type PrefixedSpec struct {
	Metadata
	Prefix   *prefix.Prefix
	BaseUnit *Unit
}

// MultipleSpec requests a unit multiple
type MultipleSpec struct {
	Metadata
	BaseUnit *Unit
	Factor   float64
}

// MultiplicationSpec requests the product of two units
type MultiplicationSpec struct {
	Metadata
	Multiplier   *Unit
	Multiplicand *Unit
}

// DivisionSpec requests the quotient of two units
type DivisionSpec struct {
	Metadata
	Numerator   *Unit
	Denominator *Unit
}

// ExponentiationSpec requests a unit raised to an integer power
type ExponentiationSpec struct {
	Metadata
	Base     *Unit
	Exponent int
}

func (c *Catalog) newUnit(kind Kind, dim dimension.Dimension, meta Metadata) *Unit {
	u := &Unit{
		kind:    kind,
		dim:     dim,
		catalog: c,
		id:      meta.Identifier,
		texts:   label.NewSet(meta.Labels, meta.Symbols),
		system:  meta.SystemOfUnits,
		isBase:  meta.IsBaseUnit,
	}
	if u.id == "" {
		u.id = label.NewBlankIdentifier()
	}
	return u
}

func normalizeFactor(f float64) (float64, error) {
	if f == 0 {
		return 1, nil
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.InvalidArgument("unit factor must be positive and finite, got %v", f)
	}
	return f, nil
}

// SingularUnit returns the singular unit described by spec
func (c *Catalog) SingularUnit(spec SingularSpec) (*Unit, error) {
	factor, err := normalizeFactor(spec.Factor)
	if err != nil {
		return nil, err
	}
	dim := spec.Dimensions
	if spec.BaseUnit != nil {
		if dim != dimension.Dimensionless && dim != spec.BaseUnit.dim {
			return nil, errors.DimensionalMismatch("dimensions %s do not match base unit %s with %s",
				dim, spec.BaseUnit.DisplayName(), spec.BaseUnit.dim)
		}
		dim = spec.BaseUnit.dim
	}

	u := c.newUnit(KindSingular, dim, spec.Metadata)
	u.base = spec.BaseUnit
	u.factor = factor
	return c.resolve(u, spec.Metadata)
}

// UnitMultiple returns a multiple of a base unit. Without labels the label
// is "<factor> <base label>" and the symbol "<factor><base symbol>".
func (c *Catalog) UnitMultiple(spec MultipleSpec) (*Unit, error) {
	if spec.BaseUnit == nil {
		return nil, errors.InvalidArgument("unit multiple requires a base unit")
	}
	factor, err := normalizeFactor(spec.Factor)
	if err != nil {
		return nil, err
	}

	u := c.newUnit(KindMultiple, spec.BaseUnit.dim, spec.Metadata)
	u.base = spec.BaseUnit
	u.factor = factor
	amount := determinism.NewAmountFromFloat(factor).String()
	if len(spec.Labels) == 0 {
		if l := spec.BaseUnit.Label(); l != "" {
			u.texts.AddPreferredLabel(label.Plain(amount + " " + l))
		}
	}
	if len(spec.Symbols) == 0 {
		u.texts.AddSymbol(label.Plain(amount + spec.BaseUnit.DisplayName()))
	}
	return c.resolve(u, spec.Metadata)
}

// PrefixedUnit returns a prefixed unit. Without labels the label and symbol
// are the prefix name and symbol joined with those of the base unit.
func (c *Catalog) PrefixedUnit(spec PrefixedSpec) (*Unit, error) {
	if spec.Prefix == nil {
		return nil, errors.InvalidArgument("prefixed unit requires a prefix")
	}
	if spec.BaseUnit == nil {
		return nil, errors.InvalidArgument("prefixed unit requires a base unit")
	}

	u := c.newUnit(KindPrefixed, spec.BaseUnit.dim, spec.Metadata)
	u.base = spec.BaseUnit
	u.prefix = spec.Prefix
	if len(spec.Labels) == 0 {
		if l := spec.BaseUnit.Label(); l != "" {
			u.texts.AddPreferredLabel(label.Plain(spec.Prefix.Name + l))
		}
	}
	if len(spec.Symbols) == 0 {
		u.texts.AddSymbol(label.Plain(spec.Prefix.Symbol + spec.BaseUnit.DisplayName()))
	}
	return c.resolve(u, spec.Metadata)
}

// PrefixedUnitByID resolves a prefix identifier through the catalog prefix
// registry and returns the prefixed unit
func (c *Catalog) PrefixedUnitByID(prefixID string, spec PrefixedSpec) (*Unit, error) {
	p, ok := c.prefixes.Lookup(prefixID)
	if !ok {
		return nil, errors.NotFound("prefix", prefixID)
	}
	spec.Prefix = p
	return c.PrefixedUnit(spec)
}

// UnitMultiplication returns the product of two units
func (c *Catalog) UnitMultiplication(spec MultiplicationSpec) (*Unit, error) {
	if spec.Multiplier == nil || spec.Multiplicand == nil {
		return nil, errors.InvalidArgument("unit multiplication requires two operands")
	}
	u := c.newUnit(KindMultiplication, spec.Multiplier.dim.Mul(spec.Multiplicand.dim), spec.Metadata)
	u.left, u.right = spec.Multiplier, spec.Multiplicand
	c.addCompoundSymbol(u, spec.Metadata)
	return c.resolve(u, spec.Metadata)
}

// UnitDivision returns the quotient of two units
func (c *Catalog) UnitDivision(spec DivisionSpec) (*Unit, error) {
	if spec.Numerator == nil || spec.Denominator == nil {
		return nil, errors.InvalidArgument("unit division requires a numerator and a denominator")
	}
	u := c.newUnit(KindDivision, spec.Numerator.dim.Div(spec.Denominator.dim), spec.Metadata)
	u.left, u.right = spec.Numerator, spec.Denominator
	c.addCompoundSymbol(u, spec.Metadata)
	return c.resolve(u, spec.Metadata)
}

// UnitExponentiation returns a unit raised to a non-zero integer power
func (c *Catalog) UnitExponentiation(spec ExponentiationSpec) (*Unit, error) {
	if spec.Base == nil {
		return nil, errors.InvalidArgument("unit exponentiation requires a base")
	}
	if spec.Exponent == 0 {
		return nil, errors.InvalidArgument("unit exponentiation requires a non-zero exponent")
	}
	u := c.newUnit(KindExponentiation, spec.Base.dim.Pow(float64(spec.Exponent)), spec.Metadata)
	u.base = spec.Base
	u.exponent = spec.Exponent
	c.addCompoundSymbol(u, spec.Metadata)
	return c.resolve(u, spec.Metadata)
}

func (c *Catalog) addCompoundSymbol(u *Unit, meta Metadata) {
	if len(meta.Symbols) > 0 {
		return
	}
	left := u.left
	if u.kind == KindExponentiation {
		left = u.base
	}
	u.texts.AddSymbol(label.Plain(compoundSymbol(u.kind, left, u.right, u.exponent)))
}

// resolve returns the canonical instance for a freshly built candidate:
// the unit registered under its identifier, a structurally equal unit, an
// anonymous duplicate, or the candidate itself once registered.
func (c *Catalog) resolve(candidate *Unit, meta Metadata) (*Unit, error) {
	if meta.NoCache {
		return candidate, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	durable := meta.Identifier.IsDurable()
	if durable {
		if existing, ok := c.byID[meta.Identifier]; ok {
			if err := c.checkRedefinition(existing, candidate); err != nil {
				return nil, err
			}
			c.mergeLocked(existing, meta)
			c.logger.Debug("unit cache hit by identifier",
				zap.String("identifier", meta.Identifier.String()))
			return existing, nil
		}
	}

	for _, existing := range c.units {
		if !identityCompatible(existing, meta) {
			continue
		}
		if existing.Equal(candidate) || c.sameSingularDefinition(existing, candidate) {
			c.mergeLocked(existing, meta)
			c.logger.Debug("unit cache hit by structure",
				zap.Stringer("kind", candidate.kind),
				zap.String("identifier", existing.Identifier().String()))
			return existing, nil
		}
	}

	for _, existing := range c.units {
		if existing.dim != candidate.dim || !identityCompatible(existing, meta) {
			continue
		}
		f, ok := TryConversionFactor(existing, candidate)
		if !ok || math.Abs(f-1) >= c.duplicateTolerance || !existing.sharesText(candidate) {
			continue
		}
		c.mergeLocked(existing, meta)
		c.logger.Debug("unit merged into duplicate",
			zap.String("identifier", existing.Identifier().String()),
			zap.String("symbol", existing.Symbol()))
		return existing, nil
	}

	c.units = append(c.units, candidate)
	if durable {
		c.byID[meta.Identifier] = candidate
	}
	c.logger.Debug("unit registered",
		zap.Stringer("kind", candidate.kind),
		zap.String("identifier", candidate.id.String()),
		zap.String("symbol", candidate.Symbol()))
	return candidate, nil
}

// identityCompatible reports whether a request may resolve to existing:
// false only when both carry different durable identifiers.
func identityCompatible(existing *Unit, meta Metadata) bool {
	if !meta.Identifier.IsDurable() {
		return true
	}
	id := existing.Identifier()
	return !id.IsDurable() || id == meta.Identifier
}

// sameSingularDefinition matches a singular-family request against an
// existing unit of the same kind whose conversion factor is 1
func (c *Catalog) sameSingularDefinition(existing, candidate *Unit) bool {
	if existing.kind != candidate.kind || candidate.kind.IsCompound() {
		return false
	}
	if existing.dim != candidate.dim {
		return false
	}
	f, ok := TryConversionFactor(existing, candidate)
	return ok && closeLog(f, 1, c.identityTolerance)
}

// checkRedefinition fails when a request reusing an identifier describes a different unit
func (c *Catalog) checkRedefinition(existing, candidate *Unit) error {
	id := candidate.id
	compatibleKind := existing.kind == candidate.kind ||
		(candidate.kind == KindSingular && existing.kind == KindMultiple)
	if !compatibleKind {
		return errors.UnitIdentity("%s is already defined as a %s unit, not a %s unit",
			id, existing.kind, candidate.kind).WithContext("identifier", id.String())
	}
	if existing.dim != candidate.dim {
		return errors.UnitIdentity("%s is already defined with dimensions %s, requested %s",
			id, existing.dim, candidate.dim).WithContext("identifier", id.String())
	}

	if c.sameDefinition(existing, candidate) {
		return nil
	}
	return errors.UnitIdentity("%s is already defined differently: existing %s, requested %s",
		id, describe(existing), describe(candidate)).WithContext("identifier", id.String())
}

func (c *Catalog) sameDefinition(existing, candidate *Unit) bool {
	switch candidate.kind {
	case KindSingular, KindMultiple:
		switch {
		case existing.base == nil && candidate.base == nil:
			return true
		case existing.base == nil || candidate.base == nil:
			return false
		case existing.base.Equal(candidate.base) && closeLog(existing.factor, candidate.factor, c.identityTolerance):
			return true
		}
	case KindPrefixed:
		if existing.prefix.Equal(candidate.prefix) && existing.base.Equal(candidate.base) {
			return true
		}
	case KindMultiplication:
		return (existing.left.Equal(candidate.left) && existing.right.Equal(candidate.right)) ||
			(existing.left.Equal(candidate.right) && existing.right.Equal(candidate.left))
	case KindDivision:
		return existing.left.Equal(candidate.left) && existing.right.Equal(candidate.right)
	case KindExponentiation:
		return existing.exponent == candidate.exponent && existing.base.Equal(candidate.base)
	}

	// re-derivation of the same unit through a different chain
	f, ok := TryConversionFactor(existing, candidate)
	return ok && closeLog(f, 1, c.identityTolerance)
}

func describe(u *Unit) string {
	switch u.kind {
	case KindSingular, KindMultiple:
		if u.base == nil {
			return "root unit"
		}
		return determinism.NewAmountFromFloat(u.factor).String() + " " + u.base.DisplayName()
	case KindPrefixed:
		return u.prefix.Symbol + " " + u.base.DisplayName()
	default:
		return u.DisplayName()
	}
}

// closeLog reports whether |ln(a) - ln(b)| is within tol
func closeLog(a, b, tol float64) bool {
	if a == b {
		return true
	}
	if a <= 0 || b <= 0 {
		return false
	}
	return math.Abs(math.Log(a)-math.Log(b)) < tol
}

// mergeLocked enriches an existing unit with the metadata of a request
// that resolved to it. The caller holds c.mu.
func (c *Catalog) mergeLocked(existing *Unit, meta Metadata) {
	existing.mu.Lock()
	defer existing.mu.Unlock()

	existing.texts.Merge(label.NewSet(meta.Labels, meta.Symbols))

	if meta.SystemOfUnits != "" {
		switch existing.system {
		case "":
			existing.system = meta.SystemOfUnits
		case meta.SystemOfUnits:
		default:
			c.logger.Warn("ignoring conflicting system of units",
				zap.String("identifier", existing.id.String()),
				zap.String("existing", existing.system),
				zap.String("requested", meta.SystemOfUnits))
		}
	}

	if meta.IsBaseUnit {
		existing.isBase = true
	}

	if meta.Identifier.IsDurable() && !existing.id.IsDurable() {
		c.logger.Debug("back-filling unit identifier",
			zap.String("from", existing.id.String()),
			zap.String("to", meta.Identifier.String()))
		existing.id = meta.Identifier
		c.byID[meta.Identifier] = existing
	}
}
