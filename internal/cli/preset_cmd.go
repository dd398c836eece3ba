package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPresetCommand(a *app) *cobra.Command {
	var (
		outPath    string
		selections []string
	)

	cmd := &cobra.Command{
		Use:   "preset <file.csv>",
		Short: "Write the selections resolved for a CSV file as a YAML preset",
		Long: `preset resolves every chart selection for the file, starting from the
defaults and any --set overrides, and writes them as a preset that render
--preset accepts. Edit the file to change individual charts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			values, err := (*Preset)(nil).Values(selections)
			if err != nil {
				return err
			}
			svc, sessionID, _, err := a.upload(ctx, args[0])
			if err != nil {
				return err
			}
			dash, err := svc.Dashboard(ctx, sessionID, values)
			if err != nil {
				return err
			}

			preset := PresetFromDashboard(dash)
			preset.Format = a.settings.Format

			if outPath == "" || outPath == "-" {
				return WritePreset(cmd.OutOrStdout(), preset)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create preset: %w", err)
			}
			if err := WritePreset(f, preset); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "preset file to write (- for stdout)")
	cmd.Flags().StringArrayVar(&selections, "set", nil, "selection override key=value (repeatable)")
	return cmd
}
