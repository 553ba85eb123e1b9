package solvers

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/v2"
)

// errCycle aborts the expansion of a value whose references lead back to it.
var errCycle = errors.New("solvers: reference cycle")

type variables struct {
	delimiters
}

// NewVariables replaces references such as ${server.host} with the value
// stored at that path. A value made of a single reference takes the type of
// the referenced value; otherwise references are interpolated as text.
// References are followed through other references, so one pass resolves a
// chain. Unknown paths and cycles are left untouched.
func NewVariables(start, end string) Solver {
	return &variables{delimiters{start: start, end: end}}
}

func (s *variables) Solve(k *koanf.Koanf) error {
	for _, key := range stringKeys(k) {
		val, ok := stringAt(k, key)
		if !ok {
			continue
		}
		next, changed, err := s.expand(val, k, map[string]bool{key: true})
		if err != nil || !changed {
			continue
		}
		if err := k.Set(key, next); err != nil {
			return err
		}
	}
	return nil
}

func (s *variables) expand(val string, k *koanf.Koanf, seen map[string]bool) (any, bool, error) {
	if path, ok := s.whole(val); ok {
		v, found, err := s.lookup(path, k, seen)
		if err != nil || !found {
			return nil, false, err
		}
		return v, true, nil
	}

	var b strings.Builder
	changed := false
	rest := val
	for {
		i := strings.Index(rest, s.start)
		if i == -1 {
			break
		}
		j := strings.Index(rest[i+len(s.start):], s.end)
		if j == -1 {
			break
		}
		path := rest[i+len(s.start) : i+len(s.start)+j]
		b.WriteString(rest[:i])
		v, found, err := s.lookup(path, k, seen)
		if err != nil {
			return nil, false, err
		}
		if found {
			b.WriteString(toString(v))
			changed = true
		} else {
			b.WriteString(rest[i : i+len(s.start)+j+len(s.end)])
		}
		rest = rest[i+len(s.start)+j+len(s.end):]
	}
	b.WriteString(rest)
	return b.String(), changed, nil
}

// lookup returns the fully expanded value stored at path.
func (s *variables) lookup(path string, k *koanf.Koanf, seen map[string]bool) (any, bool, error) {
	if path == "" || !k.Exists(path) {
		return nil, false, nil
	}
	if seen[path] {
		return nil, false, errCycle
	}
	v := k.Get(path)
	str, ok := v.(string)
	if !ok {
		return v, true, nil
	}

	seen[path] = true
	defer delete(seen, path)
	next, changed, err := s.expand(str, k, seen)
	if err != nil {
		return nil, false, err
	}
	if changed {
		return next, true, nil
	}
	return str, true, nil
}

func (s *variables) whole(val string) (string, bool) {
	if len(val) < len(s.start)+len(s.end) ||
		!strings.HasPrefix(val, s.start) || !strings.HasSuffix(val, s.end) {
		return "", false
	}
	path := val[len(s.start) : len(val)-len(s.end)]
	if path == "" || strings.Contains(path, s.start) || strings.Contains(path, s.end) {
		return "", false
	}
	return path, true
}
