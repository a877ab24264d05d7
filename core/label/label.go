// Package label provides identifiers and language-tagged labels and symbols
// for units and scales.
package label

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// blankPrefix marks identifiers that carry no durable identity
const blankPrefix = "_:"

// Identifier is an opaque, comparable identity token. Durable identifiers are
// stable strings (typically ontology URIs); blank identifiers are generated
// per instance and only identify that instance.
type Identifier string

// NewBlankIdentifier returns a fresh anonymous identifier
func NewBlankIdentifier() Identifier {
	return Identifier(blankPrefix + uuid.NewString())
}

// IsDurable reports whether the identifier is non-empty and not blank
func (id Identifier) IsDurable() bool {
	return id != "" && !strings.HasPrefix(string(id), blankPrefix)
}

// String implements Stringer
func (id Identifier) String() string {
	return string(id)
}

// Text is a label or symbol with an optional BCP-47 language tag
type Text struct {
	Value    string `json:"value"`
	Language string `json:"language,omitempty"`
}

// Plain creates an untagged text
func Plain(value string) Text {
	return Text{Value: value}
}

// Lang creates a language-tagged text
func Lang(value, lang string) Text {
	return Text{Value: value, Language: CanonicalLanguage(lang)}
}

// String implements Stringer
func (t Text) String() string {
	if t.Language == "" {
		return t.Value
	}
	return t.Value + "@" + t.Language
}

// CanonicalLanguage normalizes a language tag ("EN-gb" -> "en-GB"). Tags
// that do not parse are kept lower-cased.
func CanonicalLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return tag.String()
}

// Set holds preferred labels, alternative labels and symbols. It is not safe
// for concurrent use; owners guard it.
type Set struct {
	preferred   []Text
	alternative []Text
	symbols     []Text
}

// NewSet creates a set from preferred labels and symbols, skipping empty values
func NewSet(labels, symbols []Text) Set {
	var s Set
	for _, l := range labels {
		s.AddPreferredLabel(l)
	}
	for _, sym := range symbols {
		s.AddSymbol(sym)
	}
	return s
}

// AddPreferredLabel adds a preferred label unless an equal one exists
func (s *Set) AddPreferredLabel(t Text) bool {
	return addText(&s.preferred, t)
}

// AddAlternativeLabel adds an alternative label unless an equal one exists
func (s *Set) AddAlternativeLabel(t Text) bool {
	return addText(&s.alternative, t)
}

// AddSymbol adds a symbol unless an equal one exists
func (s *Set) AddSymbol(t Text) bool {
	return addText(&s.symbols, t)
}

func addText(dst *[]Text, t Text) bool {
	if t.Value == "" {
		return false
	}
	t.Language = CanonicalLanguage(t.Language)
	for _, existing := range *dst {
		if existing == t {
			return false
		}
	}
	*dst = append(*dst, t)
	return true
}

// Label returns the preferred label without language preference
func (s *Set) Label() (Text, bool) {
	return s.PreferredLabel("")
}

// PreferredLabel returns the preferred label in lang. With an empty lang the
// last untagged label wins, then the last English one.
func (s *Set) PreferredLabel(lang string) (Text, bool) {
	return preferred(s.preferred, lang)
}

// Symbol returns the preferred symbol without language preference
func (s *Set) Symbol() (Text, bool) {
	return s.PreferredSymbol("")
}

// PreferredSymbol returns the preferred symbol in lang, with the same
// fallback rules as PreferredLabel
func (s *Set) PreferredSymbol(lang string) (Text, bool) {
	return preferred(s.symbols, lang)
}

func preferred(texts []Text, lang string) (Text, bool) {
	var result Text
	found := false
	if lang != "" {
		lang = CanonicalLanguage(lang)
		for _, t := range texts {
			if t.Language == lang {
				result, found = t, true
			}
		}
		return result, found
	}
	for _, t := range texts {
		if t.Language == "" {
			result, found = t, true
		}
	}
	if found {
		return result, true
	}
	for _, t := range texts {
		if t.Language == "en" {
			result, found = t, true
		}
	}
	return result, found
}

// AllLabels returns preferred labels followed by alternative labels
func (s *Set) AllLabels() []Text {
	out := make([]Text, 0, len(s.preferred)+len(s.alternative))
	out = append(out, s.preferred...)
	return append(out, s.alternative...)
}

// AllSymbols returns all symbols
func (s *Set) AllSymbols() []Text {
	out := make([]Text, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// HasLabel reports whether any label has the given value
func (s *Set) HasLabel(value string) bool {
	return containsValue(s.preferred, value) || containsValue(s.alternative, value)
}

// HasSymbol reports whether any symbol has the given value
func (s *Set) HasSymbol(value string) bool {
	return containsValue(s.symbols, value)
}

// SharesText reports whether the sets have at least one equal label or symbol
func (s *Set) SharesText(other *Set) bool {
	for _, t := range s.AllLabels() {
		if containsText(other.preferred, t) || containsText(other.alternative, t) {
			return true
		}
	}
	for _, t := range s.symbols {
		if containsText(other.symbols, t) {
			return true
		}
	}
	return false
}

// Merge adds every text of other that s does not hold yet
func (s *Set) Merge(other Set) {
	for _, t := range other.preferred {
		s.AddPreferredLabel(t)
	}
	for _, t := range other.alternative {
		s.AddAlternativeLabel(t)
	}
	for _, t := range other.symbols {
		s.AddSymbol(t)
	}
}

// Clone returns an independent copy
func (s *Set) Clone() Set {
	return Set{
		preferred:   append([]Text(nil), s.preferred...),
		alternative: append([]Text(nil), s.alternative...),
		symbols:     append([]Text(nil), s.symbols...),
	}
}

func containsValue(texts []Text, value string) bool {
	for _, t := range texts {
		if t.Value == value {
			return true
		}
	}
	return false
}

func containsText(texts []Text, text Text) bool {
	for _, t := range texts {
		if t == text {
			return true
		}
	}
	return false
}
