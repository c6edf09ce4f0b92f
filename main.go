// Command umascan watches a screenshot inbox and appends one record to the
// CSV for every new summary-screen capture.
package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"umascan/internal/config"
	"umascan/internal/dictionary"
	"umascan/internal/extract"
	"umascan/internal/marker"
	"umascan/internal/recognize"
	"umascan/internal/store"
	"umascan/internal/watch"
)

func main() {
	cfg := config.Load()

	inbox := flag.String("inbox", cfg.Inbox, "Screenshot inbox directory")
	csvPath := flag.String("csv", cfg.CSVPath, "Output CSV path")
	skillsDB := flag.String("skills", cfg.SkillsDB, "Skill alias list (id -> names JSON)")
	runnersDB := flag.String("runners", cfg.RunnersDB, "Runner alias list (id -> names JSON)")
	interval := flag.Duration("interval", time.Second, "Inbox poll interval")
	flag.Parse()

	log := cfg.Logger()
	slog.SetDefault(log)

	skills, runners, err := loadDictionaries(*skillsDB, *runnersDB, log)
	if err != nil {
		log.Error("cannot load dictionaries", "error", err)
		os.Exit(1)
	}

	engine, err := recognize.NewEngine()
	if err != nil {
		log.Error("cannot start OCR engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	extractor, err := extract.New(engine, marker.NewHoughDetector(), skills, runners, extract.DefaultParams(), log)
	if err != nil {
		log.Error("cannot build extractor", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*inbox, 0755); err != nil {
		log.Error("cannot create inbox", "dir", *inbox, "error", err)
		os.Exit(1)
	}

	watcher := watch.New(*inbox, *interval, log)
	watcher.OnImage(func(path string, img image.Image) error {
		rec, err := extractor.Extract(img)
		if err != nil {
			return err
		}
		if err := store.Append(*csvPath, rec); err != nil {
			return err
		}
		log.Info("record added",
			"name", rec.Name,
			"speed", rec.Stats.Speed,
			"skills", len(rec.Skills),
			"csv", *csvPath)
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("watcher stopped", "error", err)
		os.Exit(1)
	}

	c := extractor.Counters()
	log.Info("shutting down",
		"images", c.Images,
		"below_cutoff", c.BelowCutoff,
		"empty_skill_lists", c.EmptySkillLists,
		"unresolved_runners", c.UnresolvedRunner)
}

// loadDictionaries builds the skill dictionary (required) and the runner
// dictionary (optional; extraction proceeds without name resolution).
func loadDictionaries(skillsPath, runnersPath string, log *slog.Logger) (*dictionary.Dictionary, *dictionary.Dictionary, error) {
	skillSrc, err := dictionary.LoadSource(skillsPath)
	if err != nil {
		return nil, nil, err
	}
	skills, collisions, err := dictionary.New(skillSrc)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range collisions {
		log.Debug("alias collision", "key", c.Key, "winner", c.WinnerID, "discarded", c.DiscardedID)
	}

	var runners *dictionary.Dictionary
	if runnerSrc, err := dictionary.LoadSource(runnersPath); err != nil {
		log.Warn("runner alias list unavailable, names will be left blank", "error", err)
	} else if runners, _, err = dictionary.New(runnerSrc); err != nil {
		log.Warn("runner dictionary unusable, names will be left blank", "error", err)
		runners = nil
	}

	return skills, runners, nil
}
