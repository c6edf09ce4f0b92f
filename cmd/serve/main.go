// Command serve hosts the local simulator UI and prints a share URL built
// from the first two records of a CSV.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"umascan/internal/config"
	"umascan/internal/dictionary"
	"umascan/internal/server"
	"umascan/internal/simulator"
	"umascan/internal/store"
)

func main() {
	cfg := config.Load()

	csvPath := flag.String("csv", cfg.CSVPath, "Record CSV path")
	assets := flag.String("assets", cfg.AssetsDir, "Simulator-tools checkout directory")
	bundle := flag.String("bundle", cfg.Bundle, "UI bundle directory inside the checkout")
	skillsDB := flag.String("skills", cfg.SkillsDB, "Skill alias list (id -> names JSON)")
	port := flag.Int("port", cfg.Port, "Listen port (0 picks an ephemeral one)")
	noBrowser := flag.Bool("no-browser", false, "Print the URL without opening a browser")
	flag.Parse()

	log := cfg.Logger()
	slog.SetDefault(log)

	records, err := store.Load(*csvPath)
	if err != nil {
		log.Error("cannot load records", "csv", *csvPath, "error", err)
		os.Exit(1)
	}
	if len(records) < 2 {
		log.Error("csv must contain at least two records", "csv", *csvPath, "records", len(records))
		os.Exit(1)
	}

	skillSrc, err := dictionary.LoadSource(*skillsDB)
	if err != nil {
		log.Error("cannot load skill aliases", "error", err)
		os.Exit(1)
	}
	skillIDs := simulator.SkillIDsFromSource(skillSrc)

	srv := server.New(*assets, *bundle)
	boundPort, err := srv.Start(*port)
	if err != nil {
		log.Error("cannot start server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	url, err := simulator.ShareURL(boundPort, records[0], records[1], skillIDs, simulator.DefaultOptions())
	if err != nil {
		log.Error("cannot build share URL", "error", err)
		os.Exit(1)
	}

	fmt.Println(url)
	if !*noBrowser {
		if err := server.OpenBrowser(url); err != nil {
			log.Warn("cannot open browser", "error", err)
		}
	}

	// Serve until interrupted.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
