package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// File is the on-disk configuration. Preset selects the starting point and
// every non-nil flag overrides it.
//
//	preset: inline-only
//	trim_lines: false
type File struct {
	Preset                 string `yaml:"preset" toml:"preset"`
	RemoveInlineCitations  *bool  `yaml:"remove_inline_citations" toml:"remove_inline_citations"`
	RemoveReferenceLinks   *bool  `yaml:"remove_reference_links" toml:"remove_reference_links"`
	RemoveReferenceHeaders *bool  `yaml:"remove_reference_headers" toml:"remove_reference_headers"`
	RemoveReferenceEntries *bool  `yaml:"remove_reference_entries" toml:"remove_reference_entries"`
	NormalizeWhitespace    *bool  `yaml:"normalize_whitespace" toml:"normalize_whitespace"`
	RemoveBlankLines       *bool  `yaml:"remove_blank_lines" toml:"remove_blank_lines"`
	TrimLines              *bool  `yaml:"trim_lines" toml:"trim_lines"`
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		_, err = toml.Decode(string(data), &f)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", internalerr.ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &f, nil
}

// Apply overlays the file's flags onto base.
func (f *File) Apply(base Config) Config {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.RemoveInlineCitations, f.RemoveInlineCitations)
	set(&base.RemoveReferenceLinks, f.RemoveReferenceLinks)
	set(&base.RemoveReferenceHeaders, f.RemoveReferenceHeaders)
	set(&base.RemoveReferenceEntries, f.RemoveReferenceEntries)
	set(&base.NormalizeWhitespace, f.NormalizeWhitespace)
	set(&base.RemoveBlankLines, f.RemoveBlankLines)
	set(&base.TrimLines, f.TrimLines)
	return base
}

// Load reads a configuration file and resolves it against its preset.
func Load(path string) (Config, error) {
	f, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mode, err := ParseMode(f.Preset)
	if err != nil {
		return Config{}, err
	}
	return f.Apply(Preset(mode)), nil
}
