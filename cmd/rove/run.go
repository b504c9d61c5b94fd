package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/camsys-rove/rove"
	"github.com/camsys-rove/rove/shape"
)

func run(cmd *cobra.Command, args []string) error {
	dt, err := parseDateType(dateType)
	if err != nil {
		return err
	}
	opts, err := parseDataOptions(dataOption)
	if err != nil {
		return err
	}

	params := rove.RunParams{
		Agency:      agency,
		Month:       month,
		Year:        year,
		DateType:    dt,
		DataOptions: opts,
		Mode:        "bus",
	}

	ctx := context.Background()

	gtfsZip, err := fetchArchive(ctx, gtfsPath, cacheDir)
	if err != nil {
		return err
	}

	var avlRaw []byte
	if avlPath != "" {
		avlRaw, err = fetchArchive(ctx, avlPath, cacheDir)
		if err != nil {
			return err
		}
	}

	p := rove.NewPipeline()
	if os.Getenv("ROVE_VALHALLA_URL") != "" {
		p.ShapeClient = shape.HTTPClient{URL: os.Getenv("ROVE_VALHALLA_URL")}
	}

	result, err := p.Run(ctx, params, gtfsZip, avlRaw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(outDir, "timepoints.json"), result.Timepoints); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "stop_name_lookup.json"), result.StopNameLookup); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "shapes.json"), result.Shapes); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "metrics.json"), result.AggregatedMetrics); err != nil {
		return err
	}

	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
