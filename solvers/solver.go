// Package solvers rewrites string values held in a koanf instance after it
// was loaded: variable references, expressions and URI indirections.
package solvers

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
)

// Solver rewrites values in place.
type Solver interface {
	Solve(k *koanf.Koanf) error
}

// SolverFunc adapts a function into a Solver.
type SolverFunc func(k *koanf.Koanf) error

func (f SolverFunc) Solve(k *koanf.Koanf) error {
	return f(k)
}

// Default returns the variables, URI and expression solvers with their
// standard delimiters.
func Default() []Solver {
	return []Solver{
		NewVariables("${", "}"),
		NewURIs("@", "://", nil),
		NewExpressions("{{", "}}"),
	}
}

// Run applies solvers in order, repeating up to passes times until a pass
// leaves the values unchanged.
func Run(k *koanf.Koanf, passes int, solvers ...Solver) error {
	if k == nil || len(solvers) == 0 {
		return nil
	}
	if passes < 1 {
		passes = 1
	}
	for pass := 0; pass < passes; pass++ {
		before, err := copystructure.Copy(k.Raw())
		if err != nil {
			return fmt.Errorf("solvers: snapshot before pass %d: %w", pass, err)
		}
		for _, s := range solvers {
			if s == nil {
				continue
			}
			if err := s.Solve(k); err != nil {
				return err
			}
		}
		if reflect.DeepEqual(before, k.Raw()) {
			break
		}
	}
	return nil
}

func toString(v any) string {
	return fmt.Sprintf("%v", v)
}

type delimiters struct {
	start string
	end   string
}

// stringKeys returns the flattened paths of string leaves, sorted. Solvers
// read each value when they reach its key so earlier rewrites are seen.
func stringKeys(k *koanf.Koanf) []string {
	all := k.All()
	keys := make([]string, 0, len(all))
	for key, val := range all {
		if _, ok := val.(string); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func stringAt(k *koanf.Koanf, key string) (string, bool) {
	s, ok := k.Get(key).(string)
	return s, ok
}
