package simulator

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"

	"umascan/internal/dictionary"
	"umascan/internal/extract"
)

func decodeShareHash(t *testing.T, hash string) sharePayload {
	t.Helper()

	unescaped, err := url.QueryUnescape(hash)
	if err != nil {
		t.Fatalf("QueryUnescape: %v", err)
	}
	zipped, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(zipped))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}

	var payload sharePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	return payload
}

func TestHorseFromRecord(t *testing.T) {
	t.Parallel()

	ids := SkillIDsFromSource(dictionary.Source{
		"100011": {"Early Lead"},
		"100022": {"Escape Artist"},
	})
	rec := &extract.Record{
		Name:   "Special Week",
		Stats:  extract.Stats{Speed: "1200", Stamina: "850", Power: "900", Guts: "700", Wit: "600"},
		Skills: []string{"Early Lead", "Escape Artist", "Unknown Skill"},
	}

	h := HorseFromRecord(rec, ids)
	if h.Speed != 1200 || h.Stamina != 850 || h.Power != 900 || h.Guts != 700 || h.Wisdom != 600 {
		t.Fatalf("stats = %+v", h)
	}
	if h.Strategy != "Senkou" || h.DistanceAptitude != "S" {
		t.Fatalf("defaults = %+v", h)
	}
	if len(h.Skills) != 2 || h.Skills[0] != "100011" || h.Skills[1] != "100022" {
		t.Fatalf("skills = %v", h.Skills)
	}
}

func TestHorseFromRecord_BlankStatsAndNoSkills(t *testing.T) {
	t.Parallel()

	h := HorseFromRecord(&extract.Record{}, nil)
	if h.Speed != 0 || h.Wisdom != 0 {
		t.Fatalf("blank stats must map to zero: %+v", h)
	}
	// The simulator rejects a null skill list, so it must serialize as [].
	if h.Skills == nil {
		t.Fatalf("skills must be an empty slice, not nil")
	}
	raw, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"skills":[]`) {
		t.Fatalf("serialized horse = %s", raw)
	}
}

func TestBuildShareHashRoundTrip(t *testing.T) {
	t.Parallel()

	ids := SkillIDsFromSource(dictionary.Source{"100011": {"Early Lead"}})
	rec1 := &extract.Record{
		Stats:  extract.Stats{Speed: "1200", Stamina: "850", Power: "900", Guts: "700", Wit: "600"},
		Skills: []string{"Early Lead"},
	}
	rec2 := &extract.Record{
		Stats: extract.Stats{Speed: "1000", Stamina: "1000", Power: "800", Guts: "650", Wit: "550"},
	}

	hash, err := BuildShareHash(HorseFromRecord(rec1, ids), HorseFromRecord(rec2, ids), DefaultOptions())
	if err != nil {
		t.Fatalf("BuildShareHash: %v", err)
	}

	payload := decodeShareHash(t, hash)
	if payload.CourseID != 10606 || payload.NSamples != 500 || !payload.UsePosKeep {
		t.Fatalf("options = %+v", payload)
	}
	if payload.RaceDef != (RaceDef{Mood: 2, Ground: 1, Weather: 1, Season: 1, Time: 2, Grade: 100}) {
		t.Fatalf("racedef = %+v", payload.RaceDef)
	}
	if payload.Uma1.Speed != 1200 || len(payload.Uma1.Skills) != 1 || payload.Uma1.Skills[0] != "100011" {
		t.Fatalf("uma1 = %+v", payload.Uma1)
	}
	if payload.Uma2.Stamina != 1000 || len(payload.Uma2.Skills) != 0 {
		t.Fatalf("uma2 = %+v", payload.Uma2)
	}
}

func TestShareURL(t *testing.T) {
	t.Parallel()

	u, err := ShareURL(8123, &extract.Record{}, &extract.Record{}, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("ShareURL: %v", err)
	}
	if !strings.HasPrefix(u, "http://127.0.0.1:8123/index.html#") {
		t.Fatalf("url = %q", u)
	}
}
