package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/graphfit/am"
	"github.com/teranos/graphfit/display"
	"github.com/teranos/graphfit/ep"
	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/logger"
	"github.com/teranos/graphfit/mapper"
	"github.com/teranos/graphfit/message"
)

// FitCmd runs an EP fit against a model definition
var FitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Run an EP fit against a model definition",
	Long: `Build a factor graph from a YAML model definition, attach Gaussian
observations, and refine the approximation with expectation propagation.

Each model parameter contributes a prior factor. Observations add likelihood
factors and are given as name=mean,sigma:

  graphfit fit --model gaussian.yaml --observe centre=1.2,0.3`,
	RunE: runFit,
}

func init() {
	FitCmd.Flags().String("model", "", "Model definition path (default: model.path from config)")
	FitCmd.Flags().StringArray("observe", nil, "Gaussian observation as name=mean,sigma (repeatable)")
	FitCmd.Flags().Int("max-steps", 0, "Override fit.max_steps from config")
	FitCmd.Flags().Bool("json", false, "Output result as JSON")
	FitCmd.Flags().Bool("watch", false, "Reload persisted overrides during the fit (graphfit am set-*)")
}

// observation is one parsed --observe flag.
type observation struct {
	name  string
	mean  float64
	sigma float64
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "validating configuration")
	}

	jsonOutput := resolveJSONOutput(cmd, cfg)
	verbosity, _ := cmd.Root().PersistentFlags().GetCount("verbose")
	var emitter display.ProgressEmitter
	if jsonOutput {
		emitter = display.NewJSONEmitter()
	} else {
		emitter = display.NewCLIEmitter(verbosity, cfg.GetDisplayTheme(), cfg.Display.Progress)
	}

	modelPath, _ := cmd.Flags().GetString("model")
	if modelPath == "" {
		modelPath = cfg.GetModelPath()
	}

	emitter.EmitStage("model", fmt.Sprintf("loading %s", modelPath))
	m, err := mapper.LoadModel(modelPath)
	if err != nil {
		emitter.EmitError("model", err)
		return err
	}

	observeFlags, _ := cmd.Flags().GetStringArray("observe")
	observations, err := parseObservations(observeFlags)
	if err != nil {
		emitter.EmitError("observations", err)
		return err
	}

	emitter.EmitStage("graph", fmt.Sprintf("building factor graph for %d parameters, %d observations",
		len(m.Variables()), len(observations)))
	fg, optimisers, err := buildFit(m, observations)
	if err != nil {
		emitter.EmitError("graph", err)
		return err
	}

	approx, err := ep.FromApproxDists(fg, m.MessageDict())
	if err != nil {
		emitter.EmitError("graph", err)
		return err
	}

	opts := ep.Options{
		MaxSteps:    cfg.Fit.MaxSteps,
		EvidenceTol: cfg.Fit.EvidenceTol,
		KLTol:       cfg.Fit.KLTol,
	}
	if maxSteps, _ := cmd.Flags().GetInt("max-steps"); maxSteps > 0 {
		opts.MaxSteps = maxSteps
	}

	optimiser := ep.NewEPOptimiser(fg, ep.IdentityOptimiser{}, optimisers, opts)
	optimiser.SetObserver(func(step int, factor *graph.Factor, status ep.Status, logEvidence float64) {
		emitter.EmitRound(step, factor.Name(), status.OK(), logEvidence)
	})

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		watcher, err := am.WatchOverrides()
		if err != nil {
			logger.Warnw("Override watching unavailable", "error", err)
		} else {
			defer watcher.Stop()
			watcher.OnReload(func(reloaded *am.Config) error {
				if err := reloaded.Validate(); err != nil {
					return err
				}
				optimiser.UpdateOptions(ep.Options{
					MaxSteps:    reloaded.Fit.MaxSteps,
					EvidenceTol: reloaded.Fit.EvidenceTol,
					KLTol:       reloaded.Fit.KLTol,
				})
				return nil
			})
		}
	}

	emitter.EmitStage("fit", fmt.Sprintf("run %s", optimiser.RunID()))
	fitted, err := optimiser.Run(approx)
	if err != nil {
		emitter.EmitError("fit", err)
		return err
	}

	result, err := display.NewFitResult(optimiser.RunID(), fitted)
	if err != nil {
		emitter.EmitError("result", err)
		return err
	}

	if path, err := writeResult(cfg.GetOutputDir(), result); err != nil {
		logger.Warnw("Failed to write result file", "error", err)
	} else {
		logger.Infow("Result written", "path", path)
	}

	if jsonOutput {
		return display.OutputJSON(result)
	}
	result.Render()
	summary := map[string]interface{}{"run_id": result.RunID}
	if result.LogEvidence != nil {
		summary["log_evidence"] = *result.LogEvidence
	}
	emitter.EmitComplete(summary)
	return nil
}

// resolveJSONOutput combines the --json flags with output.json from config.
// An explicitly set flag wins either way; otherwise config can opt in.
func resolveJSONOutput(cmd *cobra.Command, cfg *am.Config) bool {
	if cmd.Flags().Changed("json") {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return jsonOutput
	}
	if root := cmd.Root().PersistentFlags().Lookup("json"); root != nil && root.Changed {
		jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
		return jsonOutput
	}
	return cfg.Output.JSON
}

// parseObservations parses repeated name=mean,sigma flags.
func parseObservations(flags []string) ([]observation, error) {
	observations := make([]observation, 0, len(flags))
	for _, raw := range flags {
		name, params, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return nil, errors.Newf("observation %q is not of the form name=mean,sigma", raw)
		}
		meanStr, sigmaStr, ok := strings.Cut(params, ",")
		if !ok {
			return nil, errors.Newf("observation %q is not of the form name=mean,sigma", raw)
		}
		mean, err := strconv.ParseFloat(strings.TrimSpace(meanStr), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "observation %q mean", raw)
		}
		sigma, err := strconv.ParseFloat(strings.TrimSpace(sigmaStr), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "observation %q sigma", raw)
		}
		if sigma <= 0 {
			return nil, errors.Newf("observation %q sigma must be positive", raw)
		}
		observations = append(observations, observation{name: name, mean: mean, sigma: sigma})
	}
	return observations, nil
}

// buildFit assembles the factor graph: one prior factor per model parameter
// and one likelihood factor per observation, each with a conjugate exact
// optimiser.
func buildFit(
	m *mapper.ModelMapper,
	observations []observation,
) (*graph.FactorGraph, map[*graph.Factor]ep.FactorOptimiser, error) {
	byName := make(map[string]*graph.Variable, len(m.Variables()))
	for _, v := range m.Variables() {
		byName[v.Name()] = v
	}

	var factors []*graph.Factor
	optimisers := make(map[*graph.Factor]ep.FactorOptimiser)

	for _, v := range m.Variables() {
		prior, err := m.PriorOf(v)
		if err != nil {
			return nil, nil, err
		}
		factor := graph.NewFactor("prior_"+v.Name(), nil, v)
		factors = append(factors, factor)
		optimisers[factor] = ep.NewExactOptimiser(message.MeanField{v: prior.Message(v.Size())})
	}

	for _, obs := range observations {
		v, ok := byName[obs.name]
		if !ok {
			return nil, nil, errors.Newf("observation references unknown parameter %q", obs.name)
		}
		factor := graph.NewFactor("obs_"+obs.name, nil, v)
		factors = append(factors, factor)
		optimisers[factor] = ep.NewExactOptimiser(message.MeanField{
			v: message.NewNormalMessage(obs.mean, obs.sigma, v.Size()),
		})
	}

	return graph.NewFactorGraph(factors...), optimisers, nil
}

// writeResult persists the result JSON under the output directory.
func writeResult(dir string, result *display.FitResult) (string, error) {
	if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "creating output directory %q", dir)
	}
	data, err := display.MarshalJSON(result)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "result-"+result.RunID+".json")
	if err := os.WriteFile(path, data, am.DefaultFilePermissions); err != nil {
		return "", errors.Wrapf(err, "writing %q", path)
	}
	return path, nil
}
