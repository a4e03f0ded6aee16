package compiler

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadOptions resolves Options the way §10.3 specifies: flags (already
// parsed into overrides by the caller) take precedence over an optional
// robinc.yaml/robinc.json config file, which in turn only fills in whatever
// DefaultOptions leaves as the documented default. An empty configPath is
// not an error — the zero-config path never touches viper's file reader — but
// a configPath that cannot be read is returned as an error.
func LoadOptions(configPath string, overrides Options) (Options, error) {
	opts := DefaultOptions()

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("compiler: reading config %q: %w", configPath, err)
		}

		if s := v.GetString("scanner"); s != "" {
			kind, err := ParseScannerKind(s)
			if err != nil {
				return Options{}, fmt.Errorf("compiler: config %q: %w", configPath, err)
			}
			opts.Scanner = kind
		}
		if s := v.GetString("parser"); s != "" {
			kind, err := ParseParserKind(s)
			if err != nil {
				return Options{}, fmt.Errorf("compiler: config %q: %w", configPath, err)
			}
			opts.Parser = kind
		}
		if s := v.GetString("optimization"); s != "" {
			level, err := ParseOptimizationLevel(s)
			if err != nil {
				return Options{}, fmt.Errorf("compiler: config %q: %w", configPath, err)
			}
			opts.Optimization = level
		}
	}

	if overrides.Scanner != "" {
		opts.Scanner = overrides.Scanner
	}
	if overrides.Parser != "" {
		opts.Parser = overrides.Parser
	}
	if overrides.Optimization != "" {
		opts.Optimization = overrides.Optimization
	}
	if overrides.Logger != nil {
		opts.Logger = overrides.Logger
	}

	return opts, nil
}
