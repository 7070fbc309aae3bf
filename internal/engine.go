package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/internal/grammar"
	"github.com/gnoswap-labs/selparse/internal/token"
	tt "github.com/gnoswap-labs/selparse/internal/types"
)

// TokenFileExtensions lists the suffixes treated as token documents when
// walking directories or watching for changes.
var TokenFileExtensions = []string{".tok", ".tokens"}

// IsTokenFile reports whether path looks like a token document.
func IsTokenFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range TokenFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Options configure an Engine.
type Options struct {
	Start    string
	MaxDepth int
	Memoize  bool
	// Trace forwards per-token debug output from the parser to the engine logger.
	Trace bool

	// CacheDir enables the on-disk report cache when non-empty.
	CacheDir    string
	CacheMaxAge time.Duration
	// Dependencies are files whose change invalidates every cached report,
	// typically the configuration file.
	Dependencies []string
}

// Engine manages parsing of token documents.
type Engine struct {
	opts   Options
	logger *zap.Logger
	cache  *Cache

	mu          sync.RWMutex
	ignoredPath map[string]bool
}

// NewEngine creates a new parse engine.
func NewEngine(opts Options, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		opts:        opts,
		logger:      logger,
		ignoredPath: make(map[string]bool),
	}

	if opts.CacheDir != "" {
		cache, err := NewCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		cache.SetMaxAge(opts.CacheMaxAge)
		if err := cache.SetDependencies(opts.Dependencies...); err != nil {
			return nil, err
		}
		engine.cache = cache
	}

	return engine, nil
}

// Run parses the token document stored in filename.
// It returns a nil report for ignored paths.
func (e *Engine) Run(filename string) (*tt.Report, error) {
	if e.isIgnored(filename) {
		e.logger.Debug("skipping ignored path", zap.String("file", filename))
		return nil, nil
	}

	variant := e.variant()
	if e.cache != nil {
		if report, ok := e.cache.Get(filename, variant); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return report, nil
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading token file: %w", err)
	}
	tokens, err := token.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filename, err)
	}

	report := e.RunTokens(filename, tokens)

	if e.cache != nil {
		if err := e.cache.Set(filename, variant, report); err != nil {
			e.logger.Warn("failed to cache report", zap.String("file", filename), zap.Error(err))
		}
	}
	return report, nil
}

// RunSource parses an in-memory token document.
func (e *Engine) RunSource(source []byte) (*tt.Report, error) {
	tokens, err := token.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("error decoding content: %w", err)
	}
	return e.RunTokens("", tokens), nil
}

// RunTokens parses an already decoded token sequence.
func (e *Engine) RunTokens(filename string, tokens []token.Token) *tt.Report {
	opts := grammar.Options{
		Start:    e.opts.Start,
		MaxDepth: e.opts.MaxDepth,
		Memoize:  e.opts.Memoize,
	}
	if e.opts.Trace {
		opts.Logger = e.logger.With(zap.String("file", filename))
	}

	report := tt.NewReport(filename, grammar.Parse(tokens, opts))
	if !report.Complete {
		e.logger.Debug("incomplete parse",
			zap.String("file", filename),
			zap.Int("position", report.Position),
			zap.Int("total", report.Total),
			zap.String("diagnostic", report.Diagnostic),
		)
	}
	return report
}

// IgnorePath excludes path from Run.
func (e *Engine) IgnorePath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignoredPath[filepath.Clean(path)] = true
}

func (e *Engine) isIgnored(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ignoredPath[filepath.Clean(path)]
}

// variant identifies the parse options a cached report was produced with.
func (e *Engine) variant() string {
	return strings.Join([]string{
		e.opts.Start,
		strconv.Itoa(e.opts.MaxDepth),
		strconv.FormatBool(e.opts.Memoize),
	}, "|")
}
