package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"schedule_mastery/internal/catalog"
	"schedule_mastery/internal/game"
	"schedule_mastery/internal/results"
	"schedule_mastery/internal/timeline"
)

var (
	planAircraft string
	planRoutes   []string
	planStart    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Place trips on an empty day and print the resulting timeline",
	Example: `  server plan --aircraft A1 --route NAPCTA --start 06:00
  server plan --aircraft A2 --route NAPLGW --route NAPCTA --route NAPPMO`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		var start *int
		if planStart != "" {
			m, err := timeline.ParseClock(planStart)
			if err != nil {
				return err
			}
			start = &m
		}
		return runPlan(cmd.OutOrStdout(), cat, planAircraft, planRoutes, start)
	},
}

func init() {
	planCmd.Flags().StringVar(&planAircraft, "aircraft", "A1", "aircraft id")
	planCmd.Flags().StringArrayVar(&planRoutes, "route", nil, "route id, repeat to chain trips")
	planCmd.Flags().StringVar(&planStart, "start", "", "desired start of the first trip (HH:MM)")
	_ = planCmd.MarkFlagRequired("route")
}

// runPlan adds each route in order on a scratch engine. Only the first trip
// uses start; the rest follow on.
func runPlan(out io.Writer, cat *catalog.Catalog, aircraftID string, routes []string, start *int) error {
	engine := game.NewEngine(cat, nil, results.NewMemory(), nil)
	for i, routeID := range routes {
		desired := start
		if i > 0 {
			desired = nil
		}
		if _, err := engine.Add(aircraftID, routeID, desired); err != nil {
			return fmt.Errorf("%s: %w", routeID, err)
		}
	}

	st, err := engine.Aircraft(aircraftID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tKIND\tFROM\tTO\tCREW")
	for _, s := range st.Segments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			timeline.FormatClock(s.Start), timeline.FormatClock(s.End), s.Kind, s.From, s.To, s.CrewIndex)
	}
	fmt.Fprintf(tw, "\npoints %d\tflight %s\tduty %s\tidle %s\n",
		st.Score.Points,
		timeline.FormatDuration(st.Score.FlightMinutes),
		timeline.FormatDuration(st.Score.DutyMinutes),
		timeline.FormatDuration(st.Score.IdleMinutes))
	return tw.Flush()
}
