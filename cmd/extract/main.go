// Command extract runs the extraction pipeline over one or more screenshots
// and appends the records to a CSV.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"umascan/internal/config"
	"umascan/internal/dictionary"
	"umascan/internal/extract"
	"umascan/internal/marker"
	"umascan/internal/recognize"
	"umascan/internal/store"
)

func main() {
	cfg := config.Load()

	csvPath := flag.String("csv", cfg.CSVPath, "Output CSV path (empty writes to stdout only)")
	skillsDB := flag.String("skills", cfg.SkillsDB, "Skill alias list (id -> names JSON)")
	runnersDB := flag.String("runners", cfg.RunnersDB, "Runner alias list (id -> names JSON)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: extract [-csv out.csv] <image> [image...]")
		os.Exit(1)
	}

	log := cfg.Logger()
	slog.SetDefault(log)

	skillSrc, err := dictionary.LoadSource(*skillsDB)
	if err != nil {
		log.Error("cannot load skill aliases", "error", err)
		os.Exit(1)
	}
	skills, _, err := dictionary.New(skillSrc)
	if err != nil {
		log.Error("cannot build skill dictionary", "error", err)
		os.Exit(1)
	}

	var runners *dictionary.Dictionary
	if runnerSrc, err := dictionary.LoadSource(*runnersDB); err == nil {
		if runners, _, err = dictionary.New(runnerSrc); err != nil {
			log.Warn("runner dictionary unusable", "error", err)
		}
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

	failed := 0
	for _, path := range flag.Args() {
		rec, err := extractOne(extractor, path)
		if err != nil {
			// Per-image failures skip the image; the batch continues.
			log.Error("image skipped", "path", path, "error", err)
			failed++
			continue
		}

		fmt.Printf("%s: name=%q speed=%s stamina=%s power=%s guts=%s wit=%s skills=%s\n",
			path, rec.Name,
			rec.Stats.Speed, rec.Stats.Stamina, rec.Stats.Power, rec.Stats.Guts, rec.Stats.Wit,
			rec.SkillList())

		if *csvPath != "" {
			if err := store.Append(*csvPath, rec); err != nil {
				log.Error("cannot append record", "path", path, "error", err)
				failed++
			}
		}
	}

	c := extractor.Counters()
	fmt.Printf("\nProcessed %d image(s), %d failed\n", c.Images, failed)
	fmt.Printf("  empty stat zones: %d, empty skill zones: %d, no numerals: %d\n",
		c.EmptyStatZone, c.EmptySkillZone, c.NoNumerals)
	fmt.Printf("  below-cutoff candidates: %d, duplicate skills: %d, unresolved runners: %d\n",
		c.BelowCutoff, c.DuplicateSkills, c.UnresolvedRunner)

	if failed > 0 {
		os.Exit(1)
	}
}

func extractOne(extractor *extract.Extractor, path string) (*extract.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	return extractor.Extract(img)
}
