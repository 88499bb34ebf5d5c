package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/flyingstars/internal/compass"
	"github.com/talgya/flyingstars/internal/flyingstar"
	"github.com/talgya/flyingstars/internal/minggua"
)

func chartCmd() *cobra.Command {
	var req flyingstar.Request
	var asJSON bool

	c := &cobra.Command{
		Use:   "chart",
		Short: "Calculate a Flying Star chart for a facing bearing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("facing") && req.MountainOverride == "" {
				return errors.New("one of --facing or --mountain is required")
			}

			chart, err := flyingstar.CalculateChecked(req)
			if err != nil {
				return err
			}
			slog.Debug("chart calculated",
				"period", chart.Period,
				"facing", chart.FacingMountain(),
				"sitting", chart.SittingMountain(),
				"replacement", chart.Replacement,
			)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, chart)
			}

			fmt.Fprintf(out, "Period %d  facing %s  sitting %s\n",
				chart.Period, chart.FacingMountain(), chart.SittingMountain())
			f := chart.Formation()
			fmt.Fprintf(out, "Mountain %d%s  Water %d%s  Formation %s (%s)\n",
				chart.MountainCenter, chart.MountainSign, chart.WaterCenter, chart.WaterSign, f, f.Label())
			if chart.NeedsReplace && !chart.Replacement {
				fmt.Fprintf(out, "Facing lies within %.0f° of a mountain boundary; consider --replacement\n",
					compass.VoidLineTolerance)
			}
			fmt.Fprintln(out, renderChart(chart))
			return nil
		},
	}

	c.Flags().IntVarP(&req.Period, "period", "p", 9, "Construction period (1-9)")
	c.Flags().Float64VarP(&req.FacingDegrees, "facing", "f", 0, "Facing bearing in degrees")
	c.Flags().StringVarP(&req.MountainOverride, "mountain", "m", "", `Facing mountain name, e.g. "S1 (Bing)"`)
	c.Flags().BoolVarP(&req.ForceReplacement, "replacement", "r", false, "Apply replacement stars")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return c
}

func annualCmd() *cobra.Command {
	var year int
	var asJSON bool

	c := &cobra.Command{
		Use:   "annual",
		Short: "Show the annual flying stars",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year = minggua.SolarYear(time.Now())
			}
			stars := flyingstar.AnnualChart(year)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]any{
					"year":  year,
					"star":  flyingstar.AnnualStar(year),
					"stars": stars.Map(),
				})
			}
			fmt.Fprintf(out, "Year %d (%s)  annual star %d\n", year, minggua.Zodiac(year), flyingstar.AnnualStar(year))
			fmt.Fprintln(out, renderStars(stars))
			return nil
		},
	}

	c.Flags().IntVarP(&year, "year", "y", 0, "Solar year (default: current)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return c
}

func sectorsCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "sectors",
		Short: "List the 24 mountains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, compass.Sectors)
			}
			for _, s := range compass.Sectors {
				fmt.Fprintf(out, "%-12s %6.1f–%5.1f  palace %d (%s)  %s\n",
					s.Name, s.Min, s.Max, s.Trigram, s.Direction(), s.Polarity)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return c
}
