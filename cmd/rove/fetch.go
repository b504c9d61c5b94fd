package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/camsys-rove/rove/downloader"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// fetchArchive resolves --gtfs/--avl into bytes. A bare filesystem path is
// read directly; an http(s) URL is fetched through a caching Downloader so
// a re-run against the same agency-month within cacheTTL doesn't re-pull a
// multi-megabyte GTFS zip from the agency's feed host. This is the CLI's
// only use of the downloader package; ShapeGenerator's Valhalla client
// (shape.HTTPClient) has its own non-caching POST path since every
// trace_attributes request body differs per pattern.
func fetchArchive(ctx context.Context, pathOrURL, cacheDir string) ([]byte, error) {
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		return readFile(pathOrURL)
	}

	var dl downloader.Downloader
	if cacheDir != "" {
		fs, err := downloader.NewFilesystem(cacheDir + "/rove-fetch-cache.json")
		if err != nil {
			return nil, err
		}
		dl = fs
	} else {
		dl = downloader.NewMemory()
	}

	return dl.Get(ctx, pathOrURL, nil, downloader.GetOptions{
		Timeout:  60 * time.Second,
		MaxSize:  256 << 20, // 256 MiB: generously above any agency-month GTFS/AVL export
		Cache:    true,
		CacheTTL: 6 * time.Hour,
	})
}
