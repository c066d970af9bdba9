package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/graphfit/am"
	"github.com/teranos/graphfit/display"
	"github.com/teranos/graphfit/errors"
)

// AmCmd manages graphfit configuration ("I am")
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage graphfit configuration",
	Long: `Inspect and adjust graphfit configuration.

Configuration merges, in precedence order: /etc/graphfit/config.toml, the
user config under ~/.graphfit, overrides persisted by the set-* commands,
the nearest project graphfit.toml, and GRAPHFIT_* environment variables.`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "loading configuration")
		}

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cfg)
		}

		fmt.Println(cfg.String())
		fmt.Printf("  model path:   %s\n", cfg.GetModelPath())
		fmt.Printf("  output dir:   %s\n", cfg.GetOutputDir())
		fmt.Printf("  theme:        %s\n", cfg.GetDisplayTheme())
		fmt.Printf("  progress:     %v\n", cfg.Display.Progress)
		return nil
	},
}

var amSetStepsCmd = &cobra.Command{
	Use:   "set-steps <max-steps>",
	Short: "Persist a fit.max_steps override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxSteps int
		if _, err := fmt.Sscanf(args[0], "%d", &maxSteps); err != nil {
			return errors.Newf("invalid max-steps %q", args[0])
		}
		if maxSteps <= 0 {
			return errors.Newf("max-steps must be positive, got %d", maxSteps)
		}
		if err := am.UpdateFitMaxSteps(maxSteps); err != nil {
			return err
		}
		fmt.Printf("fit.max_steps set to %d\n", maxSteps)
		return nil
	},
}

var amSetThemeCmd = &cobra.Command{
	Use:   "set-theme <theme>",
	Short: "Persist a display.theme override (gruvbox, everforest)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := args[0]
		probe := &am.Config{Display: am.DisplayConfig{Theme: theme}}
		if err := probe.Validate(); err != nil {
			return err
		}
		if err := am.UpdateDisplayTheme(theme); err != nil {
			return err
		}
		fmt.Printf("display.theme set to %s\n", theme)
		return nil
	},
}

func init() {
	amShowCmd.Flags().Bool("json", false, "Output configuration as JSON")
	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amSetStepsCmd)
	AmCmd.AddCommand(amSetThemeCmd)
}
