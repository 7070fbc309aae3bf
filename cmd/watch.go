package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/formatter"
	tt "github.com/gnoswap-labs/selparse/internal/types"
	"github.com/gnoswap-labs/selparse/parse"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-parse token files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config, err := loadConfig(cmd)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine, err := parse.NewWithConfig(config, cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize parse engine", zap.Error(err))
		}

		err = engine.Watch(ctx, args, func(r *tt.Report) {
			fmt.Println(formatter.FormatReport(r))
		})
		if err != nil {
			logger.Error("Error watching files", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	addParserFlags(watchCmd)
}
