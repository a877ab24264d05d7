package scale

import (
	"sync"

	"go.uber.org/zap"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/unit"
	"om-units/internal/errors"
	"om-units/internal/logging"
)

// Catalog creates, deduplicates and looks up scales
type Catalog struct {
	mu     sync.RWMutex
	scales []*Scale
	byID   map[label.Identifier]*Scale
	logger *zap.Logger
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

// NewCatalog creates an empty scale catalog
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		byID:   make(map[label.Identifier]*Scale),
		logger: logging.Named("scale"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metadata holds the descriptive fields shared by scale requests
type Metadata struct {
	Identifier label.Identifier
	Labels     []label.Text

	// SystemOfUnits defaults to that of the base scale, then the unit
	SystemOfUnits string
}

// RatioSpec requests a ratio scale
type RatioSpec struct {
	Metadata
	Unit *unit.Unit
}

// IntervalSpec requests an interval scale. Offset is expressed in Unit.
type IntervalSpec struct {
	Metadata
	BaseScale *Scale
	Unit      *unit.Unit
	Offset    float64
}

func newScale(kind Kind, u *unit.Unit, meta Metadata, system string) *Scale {
	s := &Scale{
		kind:   kind,
		unit:   u,
		dim:    u.Dimensions(),
		id:     meta.Identifier,
		texts:  label.NewSet(meta.Labels, nil),
		system: meta.SystemOfUnits,
	}
	if s.system == "" {
		s.system = system
	}
	if s.id == "" {
		s.id = label.NewBlankIdentifier()
	}
	return s
}

// RatioScale returns the ratio scale of a unit
func (c *Catalog) RatioScale(spec RatioSpec) (*Scale, error) {
	if spec.Unit == nil {
		return nil, errors.InvalidArgument("ratio scale requires a unit")
	}
	s := newScale(KindRatio, spec.Unit, spec.Metadata, spec.Unit.SystemOfUnits())
	return c.resolve(s, spec.Metadata)
}

// IntervalScale returns an interval scale offset from a base scale
func (c *Catalog) IntervalScale(spec IntervalSpec) (*Scale, error) {
	if spec.Unit == nil {
		return nil, errors.InvalidArgument("interval scale requires a unit")
	}
	if spec.BaseScale == nil {
		return nil, errors.InvalidArgument("interval scale requires a base scale")
	}
	if spec.Unit.Dimensions() != spec.BaseScale.dim {
		return nil, errors.DimensionalMismatch("the dimensions of the base scale %s are not the dimensions of the unit %s",
			spec.BaseScale.dim, spec.Unit.Dimensions())
	}

	system := spec.BaseScale.SystemOfUnits()
	if system == "" {
		system = spec.Unit.SystemOfUnits()
	}
	s := newScale(KindInterval, spec.Unit, spec.Metadata, system)
	s.base = spec.BaseScale
	s.offset = spec.Offset
	return c.resolve(s, spec.Metadata)
}

func (c *Catalog) resolve(candidate *Scale, meta Metadata) (*Scale, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	durable := meta.Identifier.IsDurable()
	if durable {
		if existing, ok := c.byID[meta.Identifier]; ok {
			if !existing.sameStructure(candidate) {
				return nil, errors.ScaleIdentity("the %s scale %s already exists with different properties: %s is not %s",
					existing.kind, meta.Identifier, candidate, existing).
					WithContext("identifier", meta.Identifier.String())
			}
			c.mergeLocked(existing, meta)
			return existing, nil
		}
	}

	for _, existing := range c.scales {
		id := existing.Identifier()
		if durable && id.IsDurable() && id != meta.Identifier {
			continue
		}
		if existing.sameStructure(candidate) {
			c.mergeLocked(existing, meta)
			c.logger.Debug("scale cache hit by structure",
				zap.String("identifier", existing.Identifier().String()))
			return existing, nil
		}
	}

	c.scales = append(c.scales, candidate)
	if durable {
		c.byID[meta.Identifier] = candidate
	}
	c.logger.Debug("scale registered",
		zap.Stringer("kind", candidate.kind),
		zap.String("identifier", candidate.id.String()))
	return candidate, nil
}

func (c *Catalog) mergeLocked(existing *Scale, meta Metadata) {
	existing.mu.Lock()
	defer existing.mu.Unlock()

	existing.texts.Merge(label.NewSet(meta.Labels, nil))
	if meta.SystemOfUnits != "" && existing.system == "" {
		existing.system = meta.SystemOfUnits
	}
	if meta.Identifier.IsDurable() && !existing.id.IsDurable() {
		c.logger.Debug("back-filling scale identifier",
			zap.String("from", existing.id.String()),
			zap.String("to", meta.Identifier.String()))
		existing.id = meta.Identifier
		c.byID[meta.Identifier] = existing
	}
}

// WithIdentifier returns the scale registered under id
func (c *Catalog) WithIdentifier(id label.Identifier) (*Scale, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

// WithLabel returns every scale carrying a label with this value
func (c *Catalog) WithLabel(value string) []*Scale {
	return c.filter(func(s *Scale) bool { return s.HasLabel(value) })
}

// WithDimensions returns the scales of a dimension. An empty system matches every system of units.
func (c *Catalog) WithDimensions(dim dimension.Dimension, system string) []*Scale {
	return c.filter(func(s *Scale) bool {
		return s.dim == dim && (system == "" || s.SystemOfUnits() == system)
	})
}

// Resolve finds a scale by identifier, then by a unique label
func (c *Catalog) Resolve(name string) (*Scale, error) {
	if s, ok := c.WithIdentifier(label.Identifier(name)); ok {
		return s, nil
	}
	switch found := c.WithLabel(name); len(found) {
	case 0:
		return nil, errors.NotFound("scale", name)
	case 1:
		return found[0], nil
	default:
		return nil, errors.InvalidArgument("scale %q is ambiguous", name)
	}
}

// All returns the registered scales in registration order
func (c *Catalog) All() []*Scale {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Scale, len(c.scales))
	copy(out, c.scales)
	return out
}

// Len returns the number of registered scales
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scales)
}

// Clear removes every scale
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scales = nil
	c.byID = make(map[label.Identifier]*Scale)
}

func (c *Catalog) filter(match func(*Scale) bool) []*Scale {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Scale
	for _, s := range c.scales {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}
