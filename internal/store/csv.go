// Package store persists extracted records to a CSV file, one record per row.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"umascan/internal/extract"
)

// Header is the column layout of the record CSV.
var Header = []string{"Name", "Speed", "Stamina", "Power", "Guts", "Wit", "Skills"}

// Append writes one record to the CSV at path, creating the file (and its
// directory) with a header row when it does not exist yet.
func Append(path string, rec *extract.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("cannot write header: %w", err)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		return fmt.Errorf("cannot write record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Load reads all records back from the CSV at path. A missing header or a
// short row is an error; the file is ours and should round-trip.
func Load(path string) ([]*extract.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]*extract.Record, 0, len(rows)-1)
	for _, cols := range rows[1:] {
		if len(cols) != len(Header) {
			return nil, fmt.Errorf("row has %d columns, want %d", len(cols), len(Header))
		}
		rec := &extract.Record{
			Name: cols[0],
			Stats: extract.Stats{
				Speed:   cols[1],
				Stamina: cols[2],
				Power:   cols[3],
				Guts:    cols[4],
				Wit:     cols[5],
			},
		}
		if cols[6] != "" {
			rec.Skills = splitSkills(cols[6])
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitSkills(s string) []string {
	var skills []string
	for _, part := range strings.Split(s, "|") {
		if part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}

func row(rec *extract.Record) []string {
	return []string{
		rec.Name,
		rec.Stats.Speed,
		rec.Stats.Stamina,
		rec.Stats.Power,
		rec.Stats.Guts,
		rec.Stats.Wit,
		rec.SkillList(),
	}
}
