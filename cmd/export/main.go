// Command export produces a CSV report or a JSON backup straight from the
// logbook database, for scripted reporting without the server running.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/saviobatista/rpas-logbook/internal/config"
	"github.com/saviobatista/rpas-logbook/internal/dashboard"
	"github.com/saviobatista/rpas-logbook/internal/export"
	"github.com/saviobatista/rpas-logbook/internal/lists"
	"github.com/saviobatista/rpas-logbook/internal/store"
)

func main() {
	if err := runExport(os.Args[1:]); err != nil {
		log.Printf("Export failed: %v", err)
		os.Exit(1)
	}
}

// runExport contains the main application logic
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "csv", "output format: csv or backup")
	outDir := fs.String("out", ".", "output directory")
	dbPath := fs.String("db", "", "database path (defaults to DB_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	path := *dbPath
	if path == "" {
		path = cfg.DBPath
	}

	st, err := store.OpenSQLite(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	name, err := writeExport(context.Background(), st, *format, *outDir, cfg.ExportPrefix, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(name)
	return nil
}

// writeExport reads the store and writes one dated export file, returning
// its path.
func writeExport(ctx context.Context, st store.Store, format, dir, prefix string, now time.Time) (string, error) {
	missions, err := st.ListMissions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list missions: %w", err)
	}
	ordered := dashboard.Filter(missions, "")

	var name string
	switch format {
	case "csv":
		name = filepath.Join(dir, export.CSVFilename(prefix, now))
	case "backup":
		name = filepath.Join(dir, export.BackupFilename(prefix, now))
	default:
		return "", fmt.Errorf("unknown format %q (want csv or backup)", format)
	}

	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch format {
	case "csv":
		err = export.WriteCSV(f, ordered)
	case "backup":
		persisted, lerr := st.GetLists(ctx)
		if lerr != nil {
			err = fmt.Errorf("failed to load lists: %w", lerr)
			break
		}
		err = export.WriteBackup(f, ordered, lists.MergeDefaults(persisted), now)
	}
	if err != nil {
		_ = os.Remove(name) // no partial file on failure
		return "", err
	}

	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("failed to flush output file: %w", err)
	}
	return name, nil
}
