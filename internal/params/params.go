// Package params holds the per-tool parameter sets the tools read their
// colour, width and effect settings from. Parameters can depend on each
// other: a parameter with ShowWhen is only visible, and only editable from
// the toolbar, while another parameter has one of the listed values.
package params

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/example/shotmark/internal/scene"
)

var (
	ErrUnknownTool  = errors.New("params: unknown tool")
	ErrUnknownParam = errors.New("params: unknown parameter")
)

// Kind is the value type of a parameter.
type Kind int

const (
	KindChoice Kind = iota
	KindNumber
	KindColor
	KindBool
)

// Spec declares one parameter.
type Spec struct {
	Key     string
	Label   string
	Kind    Kind
	Default string
	// Choices lists the allowed values of a KindChoice parameter.
	Choices []string
	// Min and Max bound a KindNumber parameter when Max > Min.
	Min, Max float64
	// ShowWhen maps another key of the same tool to the values for which this
	// parameter is shown.
	ShowWhen map[string][]string
}

func (s Spec) validate(v string) (string, error) {
	v = strings.TrimSpace(v)
	switch s.Kind {
	case KindChoice:
		for _, c := range s.Choices {
			if strings.EqualFold(c, v) {
				return c, nil
			}
		}
		return "", fmt.Errorf("%s: %q is not one of %s", s.Key, v, strings.Join(s.Choices, ", "))
	case KindNumber:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.Key, err)
		}
		if s.Max > s.Min && (f < s.Min || f > s.Max) {
			return "", fmt.Errorf("%s: %v outside [%v, %v]", s.Key, f, s.Min, s.Max)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case KindColor:
		c, err := scene.ParseColor(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.Key, err)
		}
		return scene.FormatColor(c), nil
	case KindBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.Key, err)
		}
		return strconv.FormatBool(b), nil
	}
	return v, nil
}

// Values is a snapshot of one tool's parameters.
type Values map[string]string

// String returns the raw value of key.
func (v Values) String(key string) string { return v[key] }

// Float parses key as a number, returning def when it is missing or invalid.
func (v Values) Float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(v[key], 64)
	if err != nil {
		return def
	}
	return f
}

// Int is Float rounded to the nearest integer.
func (v Values) Int(key string, def int) int {
	f, err := strconv.ParseFloat(v[key], 64)
	if err != nil {
		return def
	}
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// Bool parses key, returning def when it is missing or invalid.
func (v Values) Bool(key string, def bool) bool {
	b, err := strconv.ParseBool(v[key])
	if err != nil {
		return def
	}
	return b
}

// Color parses key, returning def when it is missing or invalid.
func (v Values) Color(key string, def color.RGBA) color.RGBA {
	c, err := scene.ParseColor(v[key])
	if err != nil {
		return def
	}
	return c
}

// Source is what tools read parameters from.
type Source interface {
	Values(tool string) Values
	Subscribe(tool string, fn func(Values)) (unsubscribe func())
}

type subscriber struct {
	id int
	fn func(Values)
}

type toolParams struct {
	specs  []Spec
	values Values
	subs   []subscriber
}

// Store is the in-memory parameter source.
type Store struct {
	mu     sync.Mutex
	tools  map[string]*toolParams
	nextID int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tools: map[string]*toolParams{}}
}

// Define declares the parameters of tool, resetting values to defaults.
func (s *Store) Define(tool string, specs ...Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tp := s.tools[tool]
	if tp == nil {
		tp = &toolParams{}
		s.tools[tool] = tp
	}
	tp.specs = slices.Clone(specs)
	tp.values = Values{}
	for _, sp := range specs {
		tp.values[sp.Key] = sp.Default
	}
}

// Tools returns the defined tool names.
func (s *Store) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tools))
	for n := range s.tools {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Specs returns the declared parameters of tool.
func (s *Store) Specs(tool string) []Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tp := s.tools[tool]; tp != nil {
		return slices.Clone(tp.specs)
	}
	return nil
}

// Values returns a copy of the current values of tool.
func (s *Store) Values(tool string) Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Values{}
	if tp := s.tools[tool]; tp != nil {
		for k, v := range tp.values {
			out[k] = v
		}
	}
	return out
}

// Set validates and stores one value, then notifies subscribers.
func (s *Store) Set(tool, key, value string) error {
	return s.SetAll(tool, map[string]string{key: value})
}

// SetAll validates every value before storing any of them and notifies
// subscribers once.
func (s *Store) SetAll(tool string, values map[string]string) error {
	s.mu.Lock()
	tp := s.tools[tool]
	if tp == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	clean := make(map[string]string, len(values))
	for k, v := range values {
		i := slices.IndexFunc(tp.specs, func(sp Spec) bool { return sp.Key == k })
		if i < 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s.%s", ErrUnknownParam, tool, k)
		}
		nv, err := tp.specs[i].validate(v)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%s: %w", tool, err)
		}
		clean[k] = nv
	}
	changed := false
	for k, v := range clean {
		if tp.values[k] != v {
			tp.values[k] = v
			changed = true
		}
	}
	subs := slices.Clone(tp.subs)
	snapshot := Values{}
	for k, v := range tp.values {
		snapshot[k] = v
	}
	s.mu.Unlock()
	if changed {
		for _, sub := range subs {
			sub.fn(snapshot)
		}
	}
	return nil
}

// Visible returns the parameters of tool whose ShowWhen conditions hold.
func (s *Store) Visible(tool string) []Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	tp := s.tools[tool]
	if tp == nil {
		return nil
	}
	var out []Spec
	for _, sp := range tp.specs {
		if visible(sp, tp.values) {
			out = append(out, sp)
		}
	}
	return out
}

func visible(sp Spec, values Values) bool {
	for key, allowed := range sp.ShowWhen {
		if !slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, values[key]) }) {
			return false
		}
	}
	return true
}

// Subscribe calls fn with the new values whenever tool's parameters change.
func (s *Store) Subscribe(tool string, fn func(Values)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	tp := s.tools[tool]
	if tp == nil {
		tp = &toolParams{values: Values{}}
		s.tools[tool] = tp
	}
	s.nextID++
	id := s.nextID
	tp.subs = append(tp.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		tp.subs = slices.DeleteFunc(tp.subs, func(sub subscriber) bool { return sub.id == id })
	}
}
