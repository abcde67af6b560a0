package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"schedule_mastery/internal/catalog"
	"schedule_mastery/internal/planner"
	"schedule_mastery/internal/timeline"
)

var routesJSON bool

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route catalog and fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		return printRoutes(cmd.OutOrStdout(), cat, routesJSON)
	},
}

func init() {
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "output as JSON")
}

func printRoutes(out io.Writer, cat *catalog.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"routes": cat.Routes(),
			"fleet":  cat.Fleet(),
		})
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tFROM\tTO\tBLOCK\tTYPE\tTRIPS\tSPAN A320\tSPAN A321")
	for _, r := range cat.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.From, r.To, timeline.FormatClock(r.BlockMinutes), r.Type, r.Requested,
			timeline.FormatDuration(planner.Span(r, "A320")),
			timeline.FormatDuration(planner.Span(r, "A321")))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "AIRPORT\tTURN A320\tTURN A321")
	for _, ap := range cat.Airports() {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", ap, cat.TurnMinutes(ap, "A320"), cat.TurnMinutes(ap, "A321"))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "AIRCRAFT\tTYPE")
	for _, ac := range cat.Fleet() {
		fmt.Fprintf(tw, "%s\t%s\n", ac.ID, ac.Type)
	}
	return tw.Flush()
}
