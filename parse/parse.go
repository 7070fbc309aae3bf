package parse

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/internal"
	tt "github.com/gnoswap-labs/selparse/internal/types"
)

// ProgressOutput receives the progress bar drawn while walking directories.
var ProgressOutput io.Writer = os.Stderr

type ParseEngine interface {
	Run(filePath string) (*tt.Report, error)
	RunSource(source []byte) (*tt.Report, error)
	IgnorePath(path string)
}

// New creates an engine from the configuration file at configPath.
func New(configPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(config, configPath, logger)
}

// NewWithConfig creates an engine from an already loaded configuration.
func NewWithConfig(config Config, configPath string, logger *zap.Logger) (*internal.Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return internal.NewEngine(config.EngineOptions(configPath), logger)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine ParseEngine,
	sources [][]byte,
	processor func(ParseEngine, []byte) (*tt.Report, error),
) ([]*tt.Report, error) {
	reports := make([]*tt.Report, 0, len(sources))
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine ParseEngine,
	paths []string,
	processor func(ParseEngine, string) (*tt.Report, error),
) ([]*tt.Report, error) {
	var allReports []*tt.Report
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allReports, err
		}
		allReports = append(allReports, reports...)
	}

	return allReports, nil
}

// ProcessPath parses a single token file, or every token file below a
// directory using one worker per CPU. Files that fail to load are logged and
// skipped. Reports come back sorted by file name.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine ParseEngine,
	path string,
	processor func(ParseEngine, string) (*tt.Report, error),
) ([]*tt.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.IsTokenFile(path) {
			if logger != nil {
				logger.Warn("Skipping non-token file", zap.String("file", path))
			}
			return nil, nil
		}
		report, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		if report == nil {
			return nil, nil
		}
		return []*tt.Report{report}, nil
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && internal.IsTokenFile(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	type result struct {
		report *tt.Report
		err    error
	}
	results := make(chan result, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	dispatched := 0
	var ctxErr error
dispatch:
	for _, filePath := range files {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case sem <- struct{}{}:
		}
		dispatched++
		go func(fp string) {
			defer func() { <-sem }()
			report, err := processor(engine, fp)
			if err != nil && logger != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			results <- result{report: report, err: err}
			_ = bar.Add(1)
		}(filePath)
	}

	reports := make([]*tt.Report, 0, dispatched)
	for i := 0; i < dispatched; i++ {
		r := <-results
		if r.err != nil || r.report == nil {
			continue
		}
		reports = append(reports, r.report)
	}
	_ = bar.Finish()

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Filename < reports[j].Filename
	})
	return reports, ctxErr
}

func ProcessFile(engine ParseEngine, filePath string) (*tt.Report, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine ParseEngine, source []byte) (*tt.Report, error) {
	return engine.RunSource(source)
}
