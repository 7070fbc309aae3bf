package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/selparse/internal/token"
	"github.com/gnoswap-labs/selparse/parse"
)

const exampleTokenFile = "example.tok"

var withExample bool

// initCmd: selparse init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new parser configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)

		if withExample {
			if err := writeExampleTokens(exampleTokenFile); err != nil {
				logger.Error("Error writing example token file", zap.Error(err))
				os.Exit(1)
			}
			fmt.Printf("Example token file created: %s\n", exampleTokenFile)
		}
	},
}

func init() {
	initCmd.Flags().BoolVar(&withExample, "example", false, "Also write an example token file")
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = parse.DefaultConfigFile
	}
	return parse.DefaultConfig().Save(configurationPath)
}

func writeExampleTokens(path string) error {
	doc := struct {
		Tokens []token.Token `yaml:"tokens"`
	}{Tokens: token.Example()}

	d, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
