package config

import "fmt"

// Loader resolves the effective configuration from command-line inputs.
type Loader struct {
	ConfigPath string // optional YAML or TOML file
	Preset     string // optional preset name; overrides the file's preset
}

// Load returns the configuration described by the loader. With no inputs it
// returns Default.
func (l *Loader) Load() (Config, error) {
	var file *File
	if l.ConfigPath != "" {
		f, err := LoadFile(l.ConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		file = f
	}

	name := l.Preset
	if name == "" && file != nil {
		name = file.Preset
	}
	mode, err := ParseMode(name)
	if err != nil {
		return Config{}, err
	}

	cfg := Preset(mode)
	if file != nil {
		cfg = file.Apply(cfg)
	}
	return cfg, nil
}
