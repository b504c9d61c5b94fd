package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camsys-rove/rove/calendar"
	"github.com/camsys-rove/rove/metrics"
)

var rootCmd = &cobra.Command{
	Use:          "rove",
	Short:        "ROVE transit performance pipeline",
	Long:         "Ingests GTFS static feeds and optional AVL telemetry and produces stop/timepoint/route/corridor metrics",
	SilenceUsage: true,
	RunE:         run,
}

var (
	agency     string
	month      string
	year       string
	dateType   string
	dataOption []string
	gtfsPath   string
	avlPath    string
	outDir     string
	cacheDir   string
)

func init() {
	rootCmd.Flags().StringVarP(&agency, "agency", "", "", "Agency (CTA, MBTA, WMATA)")
	rootCmd.Flags().StringVarP(&month, "month", "", "", "Month (1-12)")
	rootCmd.Flags().StringVarP(&year, "year", "", "", "Year (e.g. 2026)")
	rootCmd.Flags().StringVarP(&dateType, "date-type", "", "Workday", "Day type: Workday, Saturday, or Sunday")
	rootCmd.Flags().StringSliceVarP(&dataOption, "data-option", "", []string{"GTFS"}, "Metric source(s): GTFS, AVL, ODX")
	rootCmd.Flags().StringVarP(&gtfsPath, "gtfs", "", "", "Path or http(s) URL to a GTFS static zip")
	rootCmd.Flags().StringVarP(&avlPath, "avl", "", "", "Path or http(s) URL to an agency AVL export (required when --data-option includes AVL)")
	rootCmd.Flags().StringVarP(&outDir, "out-dir", "", ".", "Directory to write output artifacts to")
	rootCmd.Flags().StringVarP(&cacheDir, "cache-dir", "", "", "Directory to cache http(s) --gtfs/--avl downloads in (memory-only cache if unset)")

	rootCmd.MarkFlagRequired("agency")
	rootCmd.MarkFlagRequired("month")
	rootCmd.MarkFlagRequired("year")
	rootCmd.MarkFlagRequired("gtfs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseDateType(s string) (calendar.DateType, error) {
	switch strings.ToLower(s) {
	case "workday":
		return calendar.Workday, nil
	case "saturday":
		return calendar.Saturday, nil
	case "sunday":
		return calendar.Sunday, nil
	default:
		return 0, fmt.Errorf("invalid date-type %q: want Workday, Saturday, or Sunday", s)
	}
}

func parseDataOptions(opts []string) ([]metrics.DataOption, error) {
	out := make([]metrics.DataOption, 0, len(opts))
	for _, o := range opts {
		switch strings.ToUpper(o) {
		case "GTFS":
			out = append(out, metrics.DataOptionGTFS)
		case "AVL":
			out = append(out, metrics.DataOptionAVL)
		case "ODX":
			out = append(out, metrics.DataOptionODX)
		default:
			return nil, fmt.Errorf("invalid data-option %q: want GTFS, AVL, or ODX", o)
		}
	}
	return out, nil
}
