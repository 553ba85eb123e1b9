package env

import (
	"errors"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

// provider renders environment variables as a JSON document for koanf.
//
// In flat mode every variable becomes a top level key named exactly like the
// variable. In nested mode the prefix is stripped, names are lowercased and
// delim splits them into paths, so with prefix "APP_" and delim "__":
//
//	APP_DATABASE__DSN=x        -> {"database":{"dsn":"x"}}
//	APP_SERVERS__0__HOST=a     -> {"servers":[{"host":"a"}]}
type provider struct {
	prefix  string
	delim   string
	nested  bool
	environ func() []string
}

// ReadBytes writes variables in path order, so a nested variable such as
// APP_DB__DSN always replaces a plain APP_DB whatever the environment order.
func (p *provider) ReadBytes() ([]byte, error) {
	type entry struct {
		name, path, value string
	}
	var entries []entry
	for _, kv := range p.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !strings.HasPrefix(name, p.prefix) {
			continue
		}
		path := p.path(name)
		if path == "" {
			continue
		}
		entries = append(entries, entry{name: name, path: path, value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].path != entries[j].path {
			return entries[i].path < entries[j].path
		}
		return entries[i].name < entries[j].name
	})

	out := "{}"
	for _, e := range entries {
		next, err := sjson.Set(out, e.path, e.value)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return []byte(out), nil
}

func (p *provider) path(name string) string {
	if !p.nested {
		return escape(name)
	}
	key := strings.ToLower(strings.TrimPrefix(name, p.prefix))
	if key == "" {
		return ""
	}
	if p.delim == "" {
		return escape(key)
	}
	parts := strings.Split(key, p.delim)
	for i, part := range parts {
		parts[i] = escape(part)
	}
	return strings.Join(parts, ".")
}

// Read is not supported, koanf reads the JSON through ReadBytes.
func (p *provider) Read() (map[string]any, error) {
	return nil, errors.New("env provider does not support this method")
}

// escape makes name a single literal sjson path component.
func escape(name string) string {
	var b strings.Builder
	for _, r := range name {
		if !isPlain(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isPlain(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
