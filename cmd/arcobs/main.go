// SPDX-License-Identifier: MIT

// Command arcobs runs one pipeline operation and exits. It works on
// the same blob store and catalog as the daemon, so it suits batch
// reprocessing and cron use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/rinman24/arcobs/internal/access/blob"
	"github.com/rinman24/arcobs/internal/catalog"
	"github.com/rinman24/arcobs/internal/config"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/obs"
)

const usage = `usage: arcobs <command> [flags]

commands:
  rename   rename raw instrument files into the canonical grammar
  daily    build daily files for one instrument month
  masks    build cloud masks for one instrument month
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log.Configure(log.Config{Service: "arcobs"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "rename":
		err = runRename(os.Args[2:])
	case "daily":
		err = runMonth(ctx, os.Args[2:], "daily")
	case "masks":
		err = runMonth(ctx, os.Args[2:], "masks")
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRename(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	dir := fs.String("dir", "", "directory with raw files")
	ext := fs.String("ext", ".ncdf", "file extension, leading period included")
	year := fs.Int("year", 0, "year for name formats that omit it")
	layout := fs.String("format", "", "filename layout: yyyymmdd, mmddhhmm, or ddmonyyyy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Rename touches only the local directory; no store needed.
	m := obs.NewManager(nil, nil)
	renamed, err := m.RenameRawFiles(obs.RenameRequest{
		Directory: *dir,
		Extension: *ext,
		Year:      *year,
		Format:    *layout,
	})
	if err != nil {
		return err
	}
	for _, name := range renamed {
		fmt.Println(name)
	}
	return nil
}

func runMonth(ctx context.Context, args []string, kind string) error {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	observatory := fs.String("observatory", "", "observatory name")
	instrument := fs.String("instrument", "", "instrument name")
	year := fs.Int("year", 0, "year")
	month := fs.Int("month", 0, "month number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	o, err := obs.ParseObservatory(*observatory)
	if err != nil {
		return err
	}
	i, err := obs.ParseInstrument(*instrument)
	if err != nil {
		return err
	}
	req := obs.DailyRequest{
		Observatory: o,
		Instrument:  i,
		Year:        *year,
		Month:       time.Month(*month),
	}

	store, err := blob.Open(cfg.DataDir, blob.WithListingTTL(cfg.ListingTTL))
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close() //nolint:errcheck

	opts := []obs.Option{obs.WithWorkers(cfg.DownloadWorkers)}
	if cfg.UploadRate > 0 {
		opts = append(opts,
			obs.WithUploadLimiter(rate.NewLimiter(rate.Limit(cfg.UploadRate), cfg.UploadBurst)))
	}
	m := obs.NewManager(store, cat, opts...)

	if kind == "masks" {
		return m.CreateDailyMasks(ctx, req)
	}
	return m.CreateDailyFiles(ctx, req)
}
