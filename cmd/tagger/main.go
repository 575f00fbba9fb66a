// Package main provides the batch tagger. It builds the zone table from a
// map archive, tags every track of a recording and writes the per-frame
// tags as CSV, optionally also to a SQLite tag store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/banshee-data/velocity.tags/internal/config"
	"github.com/banshee-data/velocity.tags/internal/hdmap"
	"github.com/banshee-data/velocity.tags/internal/storage/sqlite"
	"github.com/banshee-data/velocity.tags/internal/tagging"
	"github.com/banshee-data/velocity.tags/internal/tagreport"
	"github.com/banshee-data/velocity.tags/internal/trackio"
	"github.com/banshee-data/velocity.tags/internal/version"
	"github.com/banshee-data/velocity.tags/internal/zoneplot"
	"github.com/banshee-data/velocity.tags/internal/zones"
	"github.com/paulmach/orb"
)

// Config holds the command line options.
type Config struct {
	MapFile        string
	MetaFile       string
	OriginX        float64
	OriginY        float64
	TracksFile     string
	ConfigFile     string
	MembershipFile string
	Target         string
	OutputCSV      string
	DBPath         string
	GeoJSON        string
	PlotDir        string
	PlotLimit      int
	ReportFile     string
	Workers        int
	ShowVersion    bool
}

// Summary is what a run produced.
type Summary struct {
	tagreport.Counts
	RunID string
	Plots int
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Println(version.String("tagger"))
		return
	}
	if cfg.MapFile == "" || cfg.TracksFile == "" {
		log.Fatal("-map and -tracks are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	sum, err := run(ctx, cfg)
	if err != nil {
		log.Fatalf("Tagging failed: %v", err)
	}
	log.Printf("Tagged %d tracks (%d skipped), %d frames, %d matched windows, %d plots in %v",
		sum.Tracks, sum.Skipped, sum.Frames, sum.Matched, sum.Plots, time.Since(start).Round(time.Millisecond))
	if sum.RunID != "" {
		log.Printf("Stored as run %s in %s", sum.RunID, cfg.DBPath)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.MapFile, "map", "", "Path to the lane map archive (JSON)")
	flag.StringVar(&cfg.MetaFile, "meta", "", "Recording meta CSV providing xUtmOrigin/yUtmOrigin")
	flag.Float64Var(&cfg.OriginX, "origin-x", 0, "Map origin x, used when -meta is not given")
	flag.Float64Var(&cfg.OriginY, "origin-y", 0, "Map origin y, used when -meta is not given")
	flag.StringVar(&cfg.TracksFile, "tracks", "", "Path to the tracks CSV")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Tagging config JSON (defaults built in)")
	flag.StringVar(&cfg.MembershipFile, "membership", "", "Zone membership JSON (defaults to location 18)")
	flag.StringVar(&cfg.Target, "target", "", "Target turn: left, right or straight (overrides config)")
	flag.StringVar(&cfg.OutputCSV, "out", "tags.csv", "Output CSV path")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite tag store path (optional)")
	flag.StringVar(&cfg.GeoJSON, "geojson", "", "Write the zone table as GeoJSON to this path")
	flag.StringVar(&cfg.PlotDir, "plot-dir", "", "Write a PNG for each matched window into this directory")
	flag.IntVar(&cfg.PlotLimit, "plot-limit", 50, "Maximum number of window plots")
	flag.StringVar(&cfg.ReportFile, "report", "", "Write an HTML tag frequency report to this path")
	flag.IntVar(&cfg.Workers, "workers", 0, "Worker goroutines (0 uses the config value)")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()

	return cfg
}

func loadTuning(cfg Config) (*config.TaggingConfig, error) {
	tuning := config.EmptyTaggingConfig()
	if cfg.ConfigFile != "" {
		var err error
		if tuning, err = config.LoadTaggingConfig(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	if cfg.Target != "" {
		if _, ok := tagging.ParseTurnTag(cfg.Target); !ok || cfg.Target == string(tagging.TurnNone) {
			return nil, fmt.Errorf("invalid -target %q", cfg.Target)
		}
		target := cfg.Target
		tuning.TargetTag = &target
	}
	if cfg.Workers > 0 {
		workers := cfg.Workers
		tuning.Workers = &workers
	}
	return tuning, nil
}

func loadMembership(path string) (zones.Membership, error) {
	if path == "" {
		return zones.DefaultMembership(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open membership: %w", err)
	}
	defer f.Close()
	return zones.LoadMembership(f)
}

func origin(cfg Config) (orb.Point, error) {
	if cfg.MetaFile == "" {
		return orb.Point{cfg.OriginX, cfg.OriginY}, nil
	}
	return trackio.LoadOrigin(cfg.MetaFile)
}

func run(ctx context.Context, cfg Config) (Summary, error) {
	var sum Summary

	tuning, err := loadTuning(cfg)
	if err != nil {
		return sum, err
	}
	membership, err := loadMembership(cfg.MembershipFile)
	if err != nil {
		return sum, err
	}
	org, err := origin(cfg)
	if err != nil {
		return sum, err
	}

	memo := zones.NewMemo(func() (*zones.Table, error) {
		m, err := hdmap.LoadFile(cfg.MapFile, org)
		if err != nil {
			return nil, err
		}
		b := &zones.Builder{Map: m, Membership: membership}
		table, stats := b.BuildWithStats()
		log.Printf("Built %d zones from %d members (%d missing, %d repaired, %d skipped, %d unmerged, %d empty)",
			table.Len(), stats.Members, stats.Missing, stats.Repaired, stats.Skipped, stats.Unmerged, stats.Empty)
		return table, nil
	})
	table, err := memo.Table()
	if err != nil {
		return sum, err
	}

	if cfg.GeoJSON != "" {
		if err := writeGeoJSON(cfg.GeoJSON, table); err != nil {
			return sum, err
		}
		log.Printf("Zones exported to: %s", cfg.GeoJSON)
	}

	tracks, err := trackio.LoadTracks(cfg.TracksFile)
	if err != nil {
		return sum, err
	}
	log.Printf("Loaded %d tracks from %s", len(tracks), cfg.TracksFile)

	tcfg := tagging.ConfigFromTuning(tuning)
	tagger := tagging.NewTagger(zones.NewLocator(table), tcfg)
	results, err := tagging.TagTracks(ctx, tagger, tracks, tcfg.Workers)
	if err != nil {
		return sum, err
	}

	if err := writeCSV(cfg.OutputCSV, results); err != nil {
		return sum, err
	}

	if cfg.DBPath != "" {
		runID, err := store(cfg, tuning, results)
		if err != nil {
			return sum, err
		}
		sum.RunID = runID
	}

	sum.Counts = tagreport.Count(results)
	if cfg.ReportFile != "" {
		title := fmt.Sprintf("Tags for %s (target %s)", filepath.Base(cfg.TracksFile), tcfg.TargetTag)
		if err := tagreport.WriteFile(cfg.ReportFile, title, sum.Counts); err != nil {
			return sum, err
		}
		log.Printf("Report written to: %s", cfg.ReportFile)
	}

	for i, res := range results {
		if res.Err != nil {
			log.Printf("Skipping track %d: %v", res.TrackID, res.Err)
			continue
		}
		for _, v := range res.Verdicts {
			if !v.Matched || cfg.PlotDir == "" || sum.Plots >= cfg.PlotLimit {
				continue
			}
			if _, err := zoneplot.SaveWindow(cfg.PlotDir, table, res.TrackID, tracks[i].Points, v); err != nil {
				log.Printf("Warning: failed to plot track %d window %d: %v", res.TrackID, v.StartFrame, err)
				continue
			}
			sum.Plots++
		}
	}
	return sum, nil
}

func writeCSV(path string, results []tagging.TrackResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	w, err := trackio.NewTagWriter(f)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write(res.Frames); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeGeoJSON(path string, table *zones.Table) error {
	data, err := json.MarshalIndent(table.FeatureCollection(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode zones: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func store(cfg Config, tuning *config.TaggingConfig, results []tagging.TrackResult) (string, error) {
	db, err := sqlite.OpenDB(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer db.Close()
	if err := sqlite.MigrateUp(db); err != nil {
		return "", err
	}

	configJSON, err := json.Marshal(tuning)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	ts := sqlite.NewTagStore(db)
	run := &sqlite.TagRun{
		Source:     filepath.Base(cfg.TracksFile),
		TargetTag:  tuning.GetTargetTag(),
		ConfigJSON: configJSON,
	}
	if err := ts.CreateRun(run); err != nil {
		return "", err
	}
	for _, res := range results {
		if err := ts.SaveTrackResult(run.RunID, res); err != nil {
			return "", err
		}
	}
	return run.RunID, nil
}
