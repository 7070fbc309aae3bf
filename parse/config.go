package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/selparse/internal"
	"github.com/gnoswap-labs/selparse/internal/grammar"
)

// DefaultConfigFile is the configuration file name looked up when none is given.
const DefaultConfigFile = ".selparse.yaml"

// ErrInvalidConfig reports a configuration file that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the overall configuration of the parser tool.
type Config struct {
	Name   string       `yaml:"name" validate:"required"`
	Parser ParserConfig `yaml:"parser"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ParserConfig tunes the grammar.
type ParserConfig struct {
	Start    string `yaml:"start" validate:"omitempty,oneof=SELECT FROM ENUM WHERE EXPR COND LOGICAL_OP"`
	MaxDepth int    `yaml:"max_depth" validate:"gte=0"`
	Memoize  bool   `yaml:"memoize"`
	Trace    bool   `yaml:"trace"`
}

// CacheConfig controls the on-disk report cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir" validate:"required_if=Enabled true"`
	MaxAge  time.Duration `yaml:"max_age" validate:"gte=0"`
}

var validate = validator.New()

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name: "selparse",
		Parser: ParserConfig{
			Start:    grammar.Select,
			MaxDepth: grammar.DefaultMaxDepth,
		},
		Cache: CacheConfig{
			Dir:    ".selparse-cache",
			MaxAge: 24 * time.Hour,
		},
	}
}

// LoadConfig reads the configuration at path on top of DefaultConfig.
// An empty path or a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("error opening configuration file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error decoding configuration file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the configuration's field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c Config) Save(path string) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// EngineOptions converts the configuration into engine options. configPath,
// if set, invalidates cached reports whenever it changes.
func (c Config) EngineOptions(configPath string) internal.Options {
	opts := internal.Options{
		Start:    c.Parser.Start,
		MaxDepth: c.Parser.MaxDepth,
		Memoize:  c.Parser.Memoize,
		Trace:    c.Parser.Trace,
	}
	if c.Cache.Enabled {
		opts.CacheDir = c.Cache.Dir
		opts.CacheMaxAge = c.Cache.MaxAge
		if configPath != "" {
			opts.Dependencies = []string{configPath}
		}
	}
	return opts
}
