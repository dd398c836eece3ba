package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/vizboard/internal/core"
)

type renderOptions struct {
	outDir     string
	presetPath string
	format     string
	selections []string
}

// Manifest describes the files written by render.
type Manifest struct {
	Dataset string          `yaml:"dataset"`
	Rows    int             `yaml:"rows"`
	Variant string          `yaml:"variant"`
	Charts  []ManifestChart `yaml:"charts"`
	KPI     []core.Metric   `yaml:"kpi,omitempty"`
}

// ManifestChart is one section of the rendered dashboard.
type ManifestChart struct {
	Kind   string `yaml:"kind"`
	Title  string `yaml:"title,omitempty"`
	File   string `yaml:"file,omitempty"`
	Notice string `yaml:"notice,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

func newRenderCommand(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <file.csv>",
		Short: "Render the chart battery of a CSV file to image files",
		Long: `render writes one image per chart into --out along with manifest.yaml.
Selections come from --preset and from repeated --set key=value flags, using
the dashboard's query keys (bar.x, histogram.bins, kpi.column).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var preset *Preset
			if opts.presetPath != "" {
				p, err := LoadPreset(opts.presetPath)
				if err != nil {
					return err
				}
				preset = p
				if p.Variant != "" && !cmd.Flags().Changed("variant") {
					a.cfg.Dashboard.Variant = p.Variant
					if err := a.cfg.Validate(); err != nil {
						return fmt.Errorf("preset %s: %w", opts.presetPath, err)
					}
				}
			}
			format := a.settings.Format
			if cmd.Flags().Changed("format") {
				format = opts.format
			} else if preset != nil && preset.Format != "" {
				format = preset.Format
			}

			values, err := preset.Values(opts.selections)
			if err != nil {
				return err
			}

			svc, sessionID, summary, err := a.upload(ctx, args[0])
			if err != nil {
				return err
			}
			dash, err := svc.DashboardAs(ctx, sessionID, values, format)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			manifest, err := writeDashboard(opts.outDir, summary, dash)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range manifest.Charts {
				switch {
				case c.File != "":
					fmt.Fprintf(out, "wrote %s\n", filepath.Join(opts.outDir, c.File))
				case c.Notice != "":
					fmt.Fprintf(out, "%s: %s\n", c.Kind, c.Notice)
				case c.Error != "":
					fmt.Fprintf(out, "%s: %s\n", c.Kind, c.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "charts", "output directory")
	cmd.Flags().StringVar(&opts.presetPath, "preset", "", "YAML preset with saved selections")
	cmd.Flags().StringVar(&opts.format, "format", "png", "image format: png or svg")
	cmd.Flags().StringArrayVar(&opts.selections, "set", nil, "selection override key=value (repeatable)")
	return cmd
}

// writeDashboard writes the section images and manifest.yaml into dir.
// Skipped sections are left out of the manifest.
func writeDashboard(dir string, summary *core.DatasetSummary, dash *core.Dashboard) (*Manifest, error) {
	m := &Manifest{Dataset: summary.Name, Rows: summary.Rows, Variant: string(dash.Variant)}

	for i, sec := range dash.Sections {
		if sec.Skipped {
			continue
		}
		entry := ManifestChart{Kind: sec.Kind, Notice: sec.Notice, Error: sec.Err}
		if sec.Image != nil {
			entry.Title = sec.Image.Title
			entry.File = fmt.Sprintf("%02d-%s.%s", i+1, sec.Kind, sec.Image.Format)
			if err := os.WriteFile(filepath.Join(dir, entry.File), sec.Image.Data, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", entry.File, err)
			}
		}
		m.Charts = append(m.Charts, entry)
	}
	if dash.KPI != nil {
		m.KPI = dash.KPI.Metrics
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), b, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}
