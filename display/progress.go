package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/pterm/pterm"
)

// ProgressEmitter receives fit lifecycle events. Two implementations:
//
//   - CLIEmitter: pretty-printed terminal output using pterm
//   - JSONEmitter: structured JSON events for machine consumption
type ProgressEmitter interface {
	// EmitStage announces a fit phase (loading model, building graph, running).
	EmitStage(stage string, message string)

	// EmitRound reports one factor update: the round index, factor name,
	// whether the local optimisation succeeded and the current log evidence
	// (NaN when unavailable).
	EmitRound(step int, factor string, ok bool, logEvidence float64)

	// EmitComplete reports the finished fit.
	EmitComplete(summary map[string]interface{})

	// EmitError reports a failure in a named stage.
	EmitError(stage string, err error)
}

// Theme holds the accent colors used by the CLI emitter.
type Theme struct {
	Accent  pterm.Color
	Success pterm.Color
	Warn    pterm.Color
}

// ThemeByName resolves a configured theme name. Unknown names fall back to
// everforest, matching the config default.
func ThemeByName(name string) Theme {
	switch name {
	case "gruvbox":
		return Theme{Accent: pterm.FgLightYellow, Success: pterm.FgGreen, Warn: pterm.FgLightRed}
	default:
		return Theme{Accent: pterm.FgLightCyan, Success: pterm.FgGreen, Warn: pterm.FgYellow}
	}
}

// CLIEmitter outputs pretty-printed progress to terminal using pterm
type CLIEmitter struct {
	verbosity int
	theme     Theme
	progress  bool
}

// NewCLIEmitter creates a CLI progress emitter for terminal output. theme
// is a configured theme name (display.theme) and progress toggles per-round
// output (display.progress).
func NewCLIEmitter(verbosity int, theme string, progress bool) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity, theme: ThemeByName(theme), progress: progress}
}

// roundsEnabled reports whether per-round lines should be printed: both
// display.progress and at least -v are required.
func (e *CLIEmitter) roundsEnabled() bool {
	return e.progress && e.verbosity >= 1
}

func (e *CLIEmitter) EmitStage(stage string, message string) {
	pterm.Printf("🔄 %s: %s\n", e.theme.Accent.Sprint(stage), message)
}

func (e *CLIEmitter) EmitRound(step int, factor string, ok bool, logEvidence float64) {
	if !e.roundsEnabled() {
		return
	}
	evidence := "n/a"
	if !math.IsNaN(logEvidence) {
		evidence = fmt.Sprintf("%.6g", logEvidence)
	}
	if ok {
		pterm.Printf("  round %s %s log_evidence=%s\n",
			e.theme.Success.Sprintf("%d", step), factor, evidence)
	} else {
		pterm.Printf("  round %s %s %s\n",
			e.theme.Warn.Sprintf("%d", step), factor, e.theme.Warn.Sprint("update failed"))
	}
}

func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	pterm.Success.Println("Fit complete!")
	if e.verbosity >= 1 {
		for key, value := range summary {
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

func (e *CLIEmitter) EmitError(stage string, err error) {
	pterm.Error.Printf("Error in %s: %v\n", stage, err)
}

// ProgressEvent represents a structured JSON progress event
type ProgressEvent struct {
	Type      string                 `json:"type"` // "stage", "round", "complete", "error"
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// JSONEmitter outputs structured JSON events for machine consumption
type JSONEmitter struct {
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON progress emitter writing to stdout
func NewJSONEmitter() *JSONEmitter {
	return NewJSONEmitterTo(os.Stdout)
}

// NewJSONEmitterTo creates a JSON progress emitter writing to w
func NewJSONEmitterTo(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w)}
}

func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.encoder.Encode(ProgressEvent{
		Type:      "stage",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
	})
}

func (e *JSONEmitter) EmitRound(step int, factor string, ok bool, logEvidence float64) {
	data := map[string]interface{}{
		"step":    step,
		"factor":  factor,
		"success": ok,
	}
	// NaN has no JSON representation; omit the field instead
	if !math.IsNaN(logEvidence) {
		data["log_evidence"] = logEvidence
	}
	e.encoder.Encode(ProgressEvent{
		Type:      "round",
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.encoder.Encode(ProgressEvent{
		Type:      "complete",
		Timestamp: time.Now(),
		Data:      summary,
	})
}

func (e *JSONEmitter) EmitError(stage string, err error) {
	e.encoder.Encode(ProgressEvent{
		Type:      "error",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		},
	})
}
