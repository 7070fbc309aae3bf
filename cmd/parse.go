package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/formatter"
	"github.com/gnoswap-labs/selparse/internal/tree"
	tt "github.com/gnoswap-labs/selparse/internal/types"
	"github.com/gnoswap-labs/selparse/parse"
)

var (
	ignorePaths     string
	parseJSONOutput bool
	outPath         string
	startProduction string
	maxDepth        int
	memoize         bool
	trace           bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Parse token files and print their parse trees",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := loadConfig(cmd)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine, err := parse.NewWithConfig(config, cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize parse engine", zap.Error(err))
		}

		if ignorePaths != "" {
			for _, path := range strings.Split(ignorePaths, ",") {
				engine.IgnorePath(strings.TrimSpace(path))
			}
		}

		incomplete, err := runParseProcess(ctx, logger, engine, args, os.Stdout, parseJSONOutput, outPath)
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}
		if incomplete > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	addParserFlags(parseCmd)
	parseCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	parseCmd.Flags().BoolVar(&parseJSONOutput, "json", false, "Output parse trees in JSON format")
	parseCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

// addParserFlags registers the flags that override the parser section of the
// configuration file.
func addParserFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startProduction, "start", "", "Production to start parsing from")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum production nesting depth")
	cmd.Flags().BoolVar(&memoize, "memo", false, "Memoize production results (packrat parsing)")
	cmd.Flags().BoolVar(&trace, "trace", false, "Log every processed token at debug level")
}

// loadConfig reads the configuration file and applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (parse.Config, error) {
	config, err := parse.LoadConfig(cfgFile)
	if err != nil {
		return config, err
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		config.Parser.Start = strings.ToUpper(startProduction)
	}
	if flags.Changed("max-depth") {
		config.Parser.MaxDepth = maxDepth
	}
	if flags.Changed("memo") {
		config.Parser.Memoize = memoize
	}
	if flags.Changed("trace") {
		config.Parser.Trace = trace
	}
	return config, nil
}

// runParseProcess parses every path and writes the results to w, or to
// jsonOutput when set in JSON mode. It returns how many reports are incomplete.
func runParseProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine parse.ParseEngine,
	paths []string,
	w io.Writer,
	isJSON bool,
	jsonOutput string,
) (int, error) {
	reports, err := parse.ProcessFiles(ctx, logger, engine, paths, parse.ProcessFile)
	if err != nil {
		return 0, err
	}

	incomplete := 0
	for _, r := range reports {
		if !r.Complete {
			incomplete++
		}
	}

	if err := printReports(reports, w, isJSON, jsonOutput); err != nil {
		return incomplete, err
	}
	return incomplete, nil
}

type jsonReport struct {
	Filename   string       `json:"filename"`
	Complete   bool         `json:"complete"`
	Position   int          `json:"position"`
	Total      int          `json:"total"`
	Diagnostic string       `json:"diagnostic,omitempty"`
	Nodes      []tree.Entry `json:"nodes"`
}

func printReports(reports []*tt.Report, w io.Writer, isJSON bool, jsonOutput string) error {
	if !isJSON {
		// text output
		_, err := fmt.Fprint(w, formatter.FormatReports(reports))
		return err
	}

	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, jsonReport{
			Filename:   r.Filename,
			Complete:   r.Complete,
			Position:   r.Position,
			Total:      r.Total,
			Diagnostic: r.Diagnostic,
			Nodes:      r.Tree.Flatten(),
		})
	}

	d, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("error marshalling reports to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
