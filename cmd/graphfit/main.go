package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/graphfit/cmd/graphfit/commands"
	"github.com/teranos/graphfit/logger"
)

var rootCmd = &cobra.Command{
	Use:   "graphfit",
	Short: "graphfit - Expectation-propagation factor graph fitting",
	Long: `graphfit - Fit factorised probabilistic models with expectation propagation.

graphfit builds a factor graph from a declarative model definition, refines
per-factor Gaussian approximations until the evidence stabilises, and reports
posterior marginals and log evidence.

Available commands:
  fit     - Run an EP fit against a model definition
  am      - Manage graphfit configuration ("I am")
  version - Show version information

Examples:
  graphfit fit                                  # Fit model.yaml from the working directory
  graphfit fit --model gaussian.yaml --observe centre=1.2,0.3
  graphfit am show                              # Show current configuration
  graphfit fit --json                           # Machine-readable output`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
		verbosity, _ := cmd.Root().PersistentFlags().GetCount("verbose")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")

	rootCmd.AddCommand(commands.FitCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
