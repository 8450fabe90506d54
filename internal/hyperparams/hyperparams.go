package hyperparams

import (
	"fmt"
	"sort"
	"strconv"
)

// ValidationError reports a hyperparameter that is missing, has the wrong
// type, or falls outside its allowed domain. It is always raised before any
// remote call is made.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hyperparameter %q: %s", e.Name, e.Reason)
}

func errorf(name, format string, args ...any) *ValidationError {
	return &ValidationError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// Spec declares a single hyperparameter: its name, whether it must be
// present, and the predicate its value must satisfy.
type Spec struct {
	Name     string
	Required bool
	Validate func(v any) error
}

// Table is the declarative hyperparameter table for one algorithm.
type Table struct {
	specs  []Spec
	byName map[string]Spec
}

func NewTable(specs ...Spec) *Table {
	byName := make(map[string]Spec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	return &Table{specs: specs, byName: byName}
}

// Set holds validated values against a table. Values are checked eagerly in
// Set; Validate only re-checks that required parameters were supplied.
type Set struct {
	table  *Table
	values map[string]any
}

func (t *Table) NewSet() *Set {
	return &Set{table: t, values: make(map[string]any)}
}

func (s *Set) Set(name string, v any) error {
	spec, ok := s.table.byName[name]
	if !ok {
		return errorf(name, "unknown hyperparameter")
	}
	if spec.Validate != nil {
		if err := spec.Validate(v); err != nil {
			return errorf(name, "%v", err)
		}
	}
	s.values[name] = v
	return nil
}

func (s *Set) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Validate checks that every required hyperparameter has a value.
func (s *Set) Validate() error {
	for _, spec := range s.table.specs {
		if _, ok := s.values[spec.Name]; spec.Required && !ok {
			return errorf(spec.Name, "required hyperparameter is missing")
		}
	}
	return nil
}

// Serialize produces the wire form: each supplied value stringified, keyed by
// its declared name. Absent optionals are omitted, never defaulted.
func (s *Set) Serialize() map[string]string {
	out := make(map[string]string, len(s.values))
	for name, v := range s.values {
		out[name] = formatValue(v)
	}
	return out
}

// Names returns the declared parameter names in table order, mostly useful
// for logging.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.specs))
	for _, s := range t.specs {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}
