package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/core"
)

type inspectOptions struct {
	column string
	asJSON bool
}

// inspectReport is the JSON form of the inspect output.
type inspectReport struct {
	Dataset *core.DatasetSummary `json:"dataset"`
	KPI     *core.KPI            `json:"kpi,omitempty"`
	Charts  []string             `json:"charts"`
}

func newInspectCommand(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Show columns, kinds, a preview and KPI cards for a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, sessionID, summary, err := a.upload(ctx, args[0])
			if err != nil {
				return err
			}

			report := inspectReport{Dataset: summary}
			kpi, err := svc.KPI(ctx, sessionID, opts.column)
			switch {
			case err == nil:
				report.KPI = kpi
			case errors.Is(err, core.ErrNotEnoughData) && opts.column == "":
			default:
				return err
			}

			ds, err := svc.Dataset(ctx, sessionID)
			if err != nil {
				return err
			}
			for _, def := range charts.ForVariant(svc.Variant()) {
				if charts.Available(def, ds) {
					report.Charts = append(report.Charts, def.Kind)
				}
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeInspect(out, report)
		},
	}

	cmd.Flags().StringVar(&opts.column, "column", "", "numeric column for the KPI cards (default: first numeric column)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	return cmd
}

func writeInspect(w io.Writer, r inspectReport) error {
	s := r.Dataset
	fmt.Fprintf(w, "%s: %d rows, %d columns, %s, %d bytes\n\n", s.Name, s.Rows, len(s.Columns), s.Encoding, s.SizeBytes)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tMISSING")
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.Kind, c.Missing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nData Preview")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(s.Header, "\t"))
	for _, row := range s.Preview {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.KPI != nil {
		fmt.Fprintln(w, "\nKPI Cards")
		for _, m := range r.KPI.Metrics {
			fmt.Fprintf(w, "  %s: %s\n", m.Label, m.Value)
		}
	}

	fmt.Fprintf(w, "\nCharts: %s\n", strings.Join(r.Charts, ", "))
	return nil
}
