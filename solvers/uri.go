package solvers

import (
	"encoding/base64"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/v2"
)

// Protocol turns the part after the scheme separator into a value.
type Protocol func(fsys fs.FS, target string) (string, error)

type uris struct {
	delimiters
	fsys      fs.FS
	protocols map[string]Protocol
}

// NewURIs resolves values such as @file://secrets/token or @base64://aGk=.
// fsys defaults to the working directory. Failures keep the original value.
func NewURIs(start, end string, fsys fs.FS) Solver {
	if fsys == nil {
		fsys = os.DirFS(".")
	}
	return &uris{
		delimiters: delimiters{start: start, end: end},
		fsys:       fsys,
		protocols: map[string]Protocol{
			"file":   ReadFile,
			"base64": DecodeBase64,
		},
	}
}

func (s *uris) Solve(k *koanf.Koanf) error {
	for _, key := range stringKeys(k) {
		val, ok := stringAt(k, key)
		if !ok {
			continue
		}
		if !strings.HasPrefix(val, s.start) {
			continue
		}
		scheme, target, ok := strings.Cut(val[len(s.start):], s.end)
		if !ok {
			continue
		}
		protocol, ok := s.protocols[scheme]
		if !ok {
			continue
		}
		content, err := protocol(s.fsys, target)
		if err != nil {
			continue
		}
		if err := k.Set(key, content); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns the file content without trailing newlines.
func ReadFile(fsys fs.FS, target string) (string, error) {
	b, err := fs.ReadFile(fsys, target)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func DecodeBase64(_ fs.FS, target string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(target)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
