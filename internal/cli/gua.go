package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/flyingstars/internal/compass"
	"github.com/talgya/flyingstars/internal/minggua"
)

func guaCmd() *cobra.Command {
	var birth, gender string
	var asJSON bool

	c := &cobra.Command{
		Use:   "gua",
		Short: "Calculate a person's Life Gua",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := minggua.ParseGender(gender)
			if err != nil {
				return err
			}
			date, err := time.Parse(time.DateOnly, birth)
			if err != nil {
				return fmt.Errorf("--birth must be YYYY-MM-DD: %w", err)
			}
			p, err := minggua.NewProfile(date, g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, p)
			}
			fmt.Fprintf(out, "Solar year %d (%s, %s)\n", p.SolarYear, p.Zodiac, p.YearElement)
			fmt.Fprintf(out, "Gua %d %s  %s  %s group\n", p.Gua, p.Attributes.Name, p.Attributes.Element, p.Attributes.Group)
			fmt.Fprintf(out, "Best:  %s\n", joinDirections(minggua.BestDirections(p.Gua)))
			fmt.Fprintf(out, "Worst: %s\n", joinDirections(minggua.WorstDirections(p.Gua)))
			fmt.Fprintf(out, "Year:  %s. %s\n", p.Relationship.Relationship, p.Relationship.Description)
			return nil
		},
	}

	c.Flags().StringVarP(&birth, "birth", "b", "", "Birth date YYYY-MM-DD (required)")
	c.Flags().StringVarP(&gender, "gender", "g", "", "m or f (required)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = c.MarkFlagRequired("birth")
	_ = c.MarkFlagRequired("gender")
	return c
}

func compatCmd() *cobra.Command {
	var person int
	var sector string
	var asJSON bool

	c := &cobra.Command{
		Use:   "compat",
		Short: "Rate a palace for a person's Gua",
		RunE: func(cmd *cobra.Command, _ []string) error {
			palace, err := parseSector(sector)
			if err != nil {
				return err
			}
			r, err := minggua.Analyze(person, palace)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, r)
			}
			fmt.Fprintf(out, "%s (%s, %s): %s\n", r.Rating, r.Direction, r.Direction.Name(), r.Description)
			return nil
		},
	}

	c.Flags().IntVar(&person, "person", 0, "Person's Gua (required)")
	c.Flags().StringVar(&sector, "sector", "", "Palace Gua 1-9 or compass code such as SE (required)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = c.MarkFlagRequired("person")
	_ = c.MarkFlagRequired("sector")
	return c
}

// parseSector accepts a palace number or a compass code (C is the centre).
func parseSector(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if t := compass.TrigramOf(compass.Direction(strings.ToUpper(strings.TrimSpace(s)))); t != 0 {
		return t, nil
	}
	return 0, fmt.Errorf("--sector %q is neither a palace number nor a compass code", s)
}

// joinDirections renders codes followed by their names: "NW SW (Northwest, Southwest)".
func joinDirections(ds []compass.Direction) string {
	codes := make([]string, len(ds))
	names := make([]string, len(ds))
	for i, d := range ds {
		codes[i] = string(d)
		names[i] = d.Name()
	}
	return fmt.Sprintf("%s (%s)", strings.Join(codes, " "), strings.Join(names, ", "))
}
