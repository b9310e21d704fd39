package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roadnet",
		Short: "Road network index, nearest-street queries and traffic signal plans",
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(signalsCmd())
	rootCmd.AddCommand(overlayCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate the project config and its road network",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func queryCmd() *cobra.Command {
	var opts queryFlags

	cmd := &cobra.Command{
		Use:   "query [project-path] [x] [y]",
		Short: "Find the nearest street to a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return runQuery(args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "e", nil, "street types to skip (default from config)")
	cmd.Flags().BoolVar(&opts.mustBeOnMap, "must-be-on-map", false, "fail instead of clamping points outside the map")
	cmd.Flags().BoolVar(&opts.firstHit, "first-hit", false, "stop at the first ring with any candidate")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the match as JSON")
	return cmd
}

func slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots [project-path] [intersection-id...]",
		Short: "Show slot tables and phases of intersections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSlots(args[0], args[1:])
		},
	}
}

func signalsCmd() *cobra.Command {
	var duration, step float64

	cmd := &cobra.Command{
		Use:   "signals [project-path]",
		Short: "Print a timeline of signal states",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSignals(args[0], duration, step)
		},
	}

	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "simulated seconds to print (default one cycle)")
	cmd.Flags().Float64VarP(&step, "step", "s", 1, "seconds between rows")
	return cmd
}

func overlayCmd() *cobra.Command {
	var output string
	var asGeoJSON bool

	cmd := &cobra.Command{
		Use:   "overlay [project-path]",
		Short: "Write the debug overlay as JSON or GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runOverlay(args[0], output, asGeoJSON)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "write a GeoJSON FeatureCollection")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the dev server with the live signal stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, args[0], port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (default from config)")
	return cmd
}
