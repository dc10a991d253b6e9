// Package evaluate contains the command for one-shot build evaluation
// from a YAML file, useful for tuning table review without a database.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/service"
)

// buildFile is the expected document layout: the vehicle, the catalog
// and the selected build in one self-contained file.
type buildFile struct {
	Vehicle *model.VehicleSpec     `yaml:"vehicle"`
	Catalog []*model.Modification  `yaml:"catalog"`
	Build   []string               `yaml:"build"`
	Track   string                 `yaml:"track,omitempty"`
	Skill   string                 `yaml:"skill,omitempty"`
	Stats   *model.PercentileStats `yaml:"stats,omitempty"`
}

var skill string

func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <buildfile>",
		Short: "evaluates a build described in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluateFile(args[0])
		},
	}
	cmd.Flags().StringVar(&skill,
		"skill",
		"",
		"driver skill for the lap time estimate (overrides the file value)")
	return cmd
}

func evaluateFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	var bf buildFile
	if err := yaml.Unmarshal(content, &bf); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	if bf.Vehicle == nil {
		return fmt.Errorf("%s contains no vehicle", filename)
	}
	if len(bf.Catalog) == 0 {
		return fmt.Errorf("%s contains no catalog", filename)
	}

	opts := []service.Option{
		service.WithCatalogSource(
			func(_ context.Context) ([]*model.Modification, error) {
				return bf.Catalog, nil
			}),
	}
	if bf.Stats != nil {
		opts = append(opts, service.WithAggregateLookup(
			func(_ context.Context, trackID string) (*model.PercentileStats, error) {
				if bf.Stats.TrackID == trackID {
					return bf.Stats, nil
				}
				return nil, nil
			}))
	}
	evaluator := service.NewEvaluator(opts...)

	ctx := context.Background()
	res, err := evaluator.Evaluate(ctx, bf.Vehicle, bf.Build)
	if err != nil {
		return err
	}
	out := map[string]any{"evaluation": res}

	if bf.Track != "" {
		skillArg := bf.Skill
		if skill != "" {
			skillArg = skill
		}
		est, unavail, lapErr := evaluator.EstimateLapTime(ctx,
			bf.Track, bf.Vehicle, bf.Build, model.ParseDriverSkill(skillArg))
		if lapErr != nil {
			log.Warn("lap time estimate failed", log.ErrorField(lapErr))
		} else if unavail != nil {
			out["lapTimeUnavailable"] = unavail
		} else {
			out["lapTime"] = est
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
