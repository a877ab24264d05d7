// Package output provides output formatting for conversion results and unit listings.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"io"
	"sort"
	"sync"

	"om-units/core/determinism"
	"om-units/core/scale"
	"om-units/core/ui"
	"om-units/core/unit"
	"om-units/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *Result) error
}

// Result is what a command prints
type Result struct {
	// Title is printed as a header above tables
	Title string `json:"-"`

	// Conversions are value conversions, one per line
	Conversions []Conversion `json:"conversions,omitempty"`

	// Units is a unit listing
	Units []UnitSummary `json:"units,omitempty"`

	// Scales is a scale listing
	Scales []ScaleSummary `json:"scales,omitempty"`
}

// Conversion describes one converted value
type Conversion struct {
	// Value is the input value
	Value float64 `json:"value"`

	// From is the display name of the source unit or scale
	From string `json:"from"`

	// Result is the converted value
	Result float64 `json:"result"`

	// To is the display name of the target unit or scale
	To string `json:"to"`

	// Factor is the multiplicative conversion factor
	Factor float64 `json:"factor"`

	// Offset is the additive offset between scales
	Offset float64 `json:"offset,omitempty"`
}

// UnitSummary describes a unit in a listing
type UnitSummary struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Kind       string `json:"kind"`
	Dimensions string `json:"dimensions"`
	System     string `json:"system_of_units,omitempty"`
	IsBaseUnit bool   `json:"is_base_unit,omitempty"`
}

// ScaleSummary describes a scale in a listing
type ScaleSummary struct {
	Identifier  string             `json:"identifier"`
	Label       string             `json:"label,omitempty"`
	Kind        string             `json:"kind"`
	Unit        string             `json:"unit"`
	FixedPoints []scale.FixedPoint `json:"fixed_points,omitempty"`
}

// SummarizeUnit builds the listing entry of a unit
func SummarizeUnit(u *unit.Unit) UnitSummary {
	return UnitSummary{
		Identifier: u.Identifier().String(),
		Label:      u.Label(),
		Symbol:     u.Symbol(),
		Kind:       u.Kind().String(),
		Dimensions: u.Dimensions().String(),
		System:     u.SystemOfUnits(),
		IsBaseUnit: u.IsBaseUnit(),
	}
}

// SummarizeScale builds the listing entry of a scale
func SummarizeScale(s *scale.Scale) ScaleSummary {
	return ScaleSummary{
		Identifier:  s.Identifier().String(),
		Label:       s.Label(),
		Kind:        s.Kind().String(),
		Unit:        s.Unit().DisplayName(),
		FixedPoints: s.FixedPoints(),
	}
}

// CLIFormatter renders tables for a terminal
type CLIFormatter struct {
	// Precision is the maximum number of decimal places
	Precision int32

	// NoColor disables colored output
	NoColor bool
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, result *Result) error {
	out := ui.NewWriter(w, f.NoColor)
	if result.Title != "" {
		out.Header(result.Title)
	}

	for _, c := range result.Conversions {
		out.Println("%s %s = %s %s",
			f.number(c.Value), c.From, out.Color(ui.Bold, f.number(c.Result)), c.To)
	}

	if len(result.Units) > 0 {
		table := out.NewTable("Symbol", "Label", "Kind", "Dimensions", "System", "Base", "Identifier")
		for _, u := range result.Units {
			base := ""
			if u.IsBaseUnit {
				base = "yes"
			}
			table.AddRow(u.Symbol, u.Label, u.Kind, u.Dimensions, u.System, base, u.Identifier)
		}
		table.Render()
	}

	if len(result.Scales) > 0 {
		table := out.NewTable("Label", "Kind", "Unit", "Fixed points", "Identifier")
		for _, s := range result.Scales {
			table.AddRow(s.Label, s.Kind, s.Unit, f.fixedPoints(s.FixedPoints), s.Identifier)
		}
		table.Render()
	}
	return nil
}

func (f *CLIFormatter) number(v float64) string {
	return determinism.NewAmountFromFloat(v).StringTrimmed(f.Precision)
}

func (f *CLIFormatter) fixedPoints(points []scale.FixedPoint) string {
	out := ""
	for i, p := range points {
		if i > 0 {
			out += ", "
		}
		out += p.Label + "=" + f.number(p.Value)
	}
	return out
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return errors.Internal("failed to encode result", err)
	}
	return nil
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the cli and json formatters
func NewRegistry(precision int32, noColor bool) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(&CLIFormatter{Precision: precision, NoColor: noColor})
	r.Register(&JSONFormatter{})
	return r
}

// Register adds a formatter, replacing one of the same format
func (r *Registry) Register(formatter Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[formatter.Format()] = formatter
}

// Get returns the formatter of a format
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.InvalidArgument("unsupported output format %q", format)
	}
	return f, nil
}

// Formats returns the registered formats in sorted order
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
