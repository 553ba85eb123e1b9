package tree

import (
	"testing"
)

// testCase standardises table-driven tests across the package.
type testCase struct {
	name string
	run  func(t *testing.T)
}

func runTestCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.run == nil {
				t.Skip("no-op test case")
				return
			}
			tc.run(t)
		})
	}
}

// mapFeeder resolves match labels against an in-memory map.
type mapFeeder struct {
	*Registry
	values map[string]string
	opts   ResolveOptions
	calls  []string
}

func newMapFeeder(name string, values map[string]string) *mapFeeder {
	return &mapFeeder{Registry: NewRegistry(name), values: values}
}

func (f *mapFeeder) Resolve(node Node) error {
	f.calls = append(f.calls, node.Name())
	return Resolve(node, f.Name(), func(m Match) ([]string, bool) {
		label, ok := f.Label(m.ID())
		if !ok {
			return nil, false
		}
		v, ok := f.values[label]
		if !ok {
			return nil, false
		}
		return []string{v}, true
	}, f.opts)
}

func quietBuilder() *Builder {
	return NewBuilder(WithLogger(nopLogger{}))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func pairs(values []Value) [][2]string {
	out := make([][2]string, 0, len(values))
	for _, v := range values {
		out = append(out, [2]string{v.Feeder(), v.Raw()})
	}
	return out
}
