package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/sim"
	"github.com/san-kum/kapitza/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. In YAML a step names an optional preset
// and overrides any config field on top of it:
//
//   - name: damped-radau
//     preset: damped
//     method: Radau
//     interval: {end: 50}
type Step struct {
	Name   string
	Preset string
	Config *config.Config
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if head.Preset != "" {
		if cfg = config.GetPreset(head.Preset); cfg == nil {
			return fmt.Errorf("line %d: unknown preset %q", node.Line, head.Preset)
		}
	}
	if err := node.Decode(cfg); err != nil {
		return err
	}

	s.Name, s.Preset, s.Config = head.Name, head.Preset, cfg
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	for i := range scenario.Steps {
		if scenario.Steps[i].Name == "" {
			scenario.Steps[i].Name = fmt.Sprintf("step-%d", i+1)
		}
	}
	return &scenario, nil
}

// StepResult is what one step produced. Err carries a failed integration;
// RunID is set whenever something was saved, including partial runs.
type StepResult struct {
	Name    string
	RunID   string
	Method  string
	Stats   dynamo.Stats
	Metrics map[string]float64
	Err     error
}

// RunScenario executes the steps in order and saves each run to st. A step
// whose integration fails is recorded and the scenario continues; invalid
// configuration, storage failures and cancellation stop it.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, fallback bool) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		run, err := step.Config.Run(fallback)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		res := StepResult{Name: step.Name, Method: run.Method}
		tr, runErr := sim.IntegrateWith(run)
		if runErr != nil {
			var div *dynamo.DivergenceError
			if !errors.As(runErr, &div) || div.Partial == nil {
				return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, runErr)
			}
			slog.Warn("step failed", "name", step.Name, "t", div.Time, "err", div.Wrapped)
			tr = div.Partial
			res.Err = runErr
		}

		res.Stats = tr.Stats
		if res.Metrics, err = sim.Summarize(run.Params, tr); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		if res.RunID, err = st.Save(run, tr, res.Metrics, runErr); err != nil {
			return results, fmt.Errorf("step %d (%s) save: %w", i+1, step.Name, err)
		}

		results = append(results, res)
	}

	return results, nil
}
