package display

import (
	"fmt"
	"math"

	"github.com/pterm/pterm"

	"github.com/teranos/graphfit/ep"
	"github.com/teranos/graphfit/internal/util"
	"github.com/teranos/graphfit/message"
)

// ParameterSummary is the fitted marginal of one variable.
type ParameterSummary struct {
	Name  string    `json:"name"`
	Mean  []float64 `json:"mean,omitempty"`
	Sigma []float64 `json:"sigma,omitempty"`
}

// FitResult is the renderable outcome of an EP run.
type FitResult struct {
	RunID       string             `json:"run_id"`
	LogEvidence *float64           `json:"log_evidence,omitempty"`
	Parameters  []ParameterSummary `json:"parameters"`
}

// NewFitResult summarises a finished approximation: per-variable posterior
// mean and sigma plus the run's log evidence. Improper marginals get a
// summary without moments; evidence failures leave LogEvidence unset.
func NewFitResult(runID string, approx *ep.EPMeanField) (*FitResult, error) {
	joint, err := approx.MeanField()
	if err != nil {
		return nil, err
	}

	result := &FitResult{RunID: runID}
	if logEvidence, err := approx.LogEvidence(); err == nil {
		result.LogEvidence = util.Ptr(logEvidence)
	}

	for _, v := range approx.FactorGraph().AllVariables() {
		summary := ParameterSummary{Name: v.Name()}
		if m, ok := joint[v].(*message.NormalMessage); ok && m.IsProper() {
			mean, err := m.Mean()
			if err != nil {
				return nil, err
			}
			variance, err := m.Variance()
			if err != nil {
				return nil, err
			}
			sigma := make([]float64, len(variance))
			for i, va := range variance {
				sigma[i] = math.Sqrt(va)
			}
			summary.Mean = mean
			summary.Sigma = sigma
		}
		result.Parameters = append(result.Parameters, summary)
	}
	return result, nil
}

// Render prints the result as a pterm table.
func (r *FitResult) Render() {
	pterm.DefaultSection.Println("Fit result")
	if r.LogEvidence != nil {
		pterm.Printf("log evidence: %s\n", pterm.Green(fmt.Sprintf("%.6g", *r.LogEvidence)))
	} else {
		pterm.Printf("log evidence: %s\n", pterm.Yellow("unavailable"))
	}

	table := pterm.TableData{{"parameter", "mean", "sigma"}}
	for _, p := range r.Parameters {
		if p.Mean == nil {
			table = append(table, []string{p.Name, "improper", "improper"})
			continue
		}
		table = append(table, []string{
			p.Name,
			formatFloats(p.Mean),
			formatFloats(p.Sigma),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func formatFloats(vals []float64) string {
	if len(vals) == 1 {
		return fmt.Sprintf("%.6g", vals[0])
	}
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%.6g", v)
	}
	return out + "]"
}
