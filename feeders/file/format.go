package file

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func (f Format) String() string {
	return string(f)
}

func (f Format) Valid() error {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML:
		return nil
	default:
		return errors.New("invalid config file format", errors.CategoryValidation).
			WithTextCode("INVALID_FILE_FORMAT").
			WithMetadata(map[string]any{
				"format": string(f),
				"valid_formats": []string{
					string(FormatJSON),
					string(FormatYAML),
					string(FormatTOML),
				},
			})
	}
}

// Parser returns nil for invalid formats; call Valid first.
func (f Format) Parser() koanf.Parser {
	switch f {
	case FormatJSON:
		return json.Parser()
	case FormatTOML:
		return toml.Parser()
	case FormatYAML:
		return yaml.Parser()
	default:
		return nil
	}
}

// FormatFromPath infers the format from the extension, falling back to
// fallback (JSON when omitted).
func FormatFromPath(path string, fallback ...Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return FormatJSON
}
