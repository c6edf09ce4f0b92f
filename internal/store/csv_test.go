package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"umascan/internal/extract"
)

func TestAppendLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "runners.csv")

	recs := []*extract.Record{
		{
			Name:   "Special Week",
			Stats:  extract.Stats{Speed: "1200", Stamina: "850", Power: "900", Guts: "700", Wit: "600"},
			Skills: []string{"Early Lead", "Escape Artist"},
		},
		{
			// Unresolved name and partial stats round-trip as blanks.
			Stats:  extract.Stats{Speed: "1000"},
			Skills: nil,
		},
	}
	for _, rec := range recs {
		if err := Append(path, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}

	if got[0].Name != "Special Week" || got[0].Stats != recs[0].Stats {
		t.Fatalf("record 0 = %+v", got[0])
	}
	if len(got[0].Skills) != 2 || got[0].Skills[0] != "Early Lead" || got[0].Skills[1] != "Escape Artist" {
		t.Fatalf("record 0 skills = %v", got[0].Skills)
	}

	if got[1].Name != "" || got[1].Stats.Stamina != "" || got[1].Stats.Speed != "1000" {
		t.Fatalf("record 1 = %+v", got[1])
	}
	if got[1].Skills != nil {
		t.Fatalf("record 1 skills = %v, want nil", got[1].Skills)
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runners.csv")
	rec := &extract.Record{Name: "Special Week"}
	if err := Append(path, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(path, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("file has %d lines, want 3:\n%s", len(lines), raw)
	}
	if !strings.HasPrefix(lines[0], "Name,") {
		t.Fatalf("first line is not the header: %q", lines[0])
	}
	if strings.HasPrefix(lines[2], "Name,") {
		t.Fatalf("header repeated: %q", lines[2])
	}
}

func TestLoadRejectsShortRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	data := strings.Join(Header, ",") + "\nSpecial Week,1200\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for short row")
	}
}
