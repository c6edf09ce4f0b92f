// Package simulator builds share links for the local race-simulator UI from
// extracted records. The payload layout mirrors the simulator's own
// serializer: compact JSON, gzipped, base64, percent-encoded into the URL
// fragment.
package simulator

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"umascan/internal/dictionary"
	"umascan/internal/extract"
)

// Horse is one simulator entrant. Field names and defaults match the
// simulator's expected shape.
type Horse struct {
	OutfitID         string   `json:"outfitId"`
	Speed            int      `json:"speed"`
	Stamina          int      `json:"stamina"`
	Power            int      `json:"power"`
	Guts             int      `json:"guts"`
	Wisdom           int      `json:"wisdom"`
	Strategy         string   `json:"strategy"`
	DistanceAptitude string   `json:"distanceAptitude"`
	SurfaceAptitude  string   `json:"surfaceAptitude"`
	StrategyAptitude string   `json:"strategyAptitude"`
	Skills           []string `json:"skills"`
}

// RaceDef carries the race conditions. Values are the simulator's enum codes.
type RaceDef struct {
	Mood    int `json:"mood"`
	Ground  int `json:"ground"`
	Weather int `json:"weather"`
	Season  int `json:"season"`
	Time    int `json:"time"`
	Grade   int `json:"grade"`
}

// Options selects course and sampling for the generated link.
type Options struct {
	CourseID   int     `json:"courseId"`
	NSamples   int     `json:"nsamples"`
	UsePosKeep bool    `json:"usePosKeep"`
	RaceDef    RaceDef `json:"racedef"`
}

// DefaultOptions returns the simulator's own defaults: Tokyo Turf 1600m,
// 500 samples, position keep on, good spring midday G1.
func DefaultOptions() Options {
	return Options{
		CourseID:   10606,
		NSamples:   500,
		UsePosKeep: true,
		RaceDef: RaceDef{
			Mood:    2,
			Ground:  1,
			Weather: 1,
			Season:  1,
			Time:    2,
			Grade:   100,
		},
	}
}

// HorseFromRecord converts a record into an entrant. Blank stat fields become
// zero here because the simulator form needs a number; skill names that the
// id map does not know are dropped.
func HorseFromRecord(rec *extract.Record, skillIDs map[string]string) Horse {
	var ids []string
	for _, name := range rec.Skills {
		if id, ok := skillIDs[strings.ToLower(name)]; ok {
			ids = append(ids, id)
		}
	}
	if ids == nil {
		ids = []string{}
	}
	return Horse{
		Speed:            atoiOrZero(rec.Stats.Speed),
		Stamina:          atoiOrZero(rec.Stats.Stamina),
		Power:            atoiOrZero(rec.Stats.Power),
		Guts:             atoiOrZero(rec.Stats.Guts),
		Wisdom:           atoiOrZero(rec.Stats.Wit),
		Strategy:         "Senkou",
		DistanceAptitude: "S",
		SurfaceAptitude:  "A",
		StrategyAptitude: "A",
		Skills:           ids,
	}
}

// SkillIDsFromSource flattens an alias source into a lower-cased display
// name -> identifier map, the lookup the simulator link needs.
func SkillIDsFromSource(src dictionary.Source) map[string]string {
	ids := make(map[string]string)
	for id, names := range src {
		for _, name := range names {
			ids[strings.ToLower(name)] = id
		}
	}
	return ids
}

type sharePayload struct {
	CourseID   int     `json:"courseId"`
	NSamples   int     `json:"nsamples"`
	UsePosKeep bool    `json:"usePosKeep"`
	RaceDef    RaceDef `json:"racedef"`
	Uma1       Horse   `json:"uma1"`
	Uma2       Horse   `json:"uma2"`
}

// BuildShareHash serializes a two-entrant comparison into the URL fragment
// the simulator UI decodes on load.
func BuildShareHash(uma1, uma2 Horse, opts Options) (string, error) {
	payload := sharePayload{
		CourseID:   opts.CourseID,
		NSamples:   opts.NSamples,
		UsePosKeep: opts.UsePosKeep,
		RaceDef:    opts.RaceDef,
		Uma1:       uma1,
		Uma2:       uma2,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cannot serialize share payload: %w", err)
	}

	var zipped bytes.Buffer
	zw := gzip.NewWriter(&zipped)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("cannot compress share payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("cannot compress share payload: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(zipped.Bytes())
	return url.QueryEscape(encoded), nil
}

// ShareURL builds the full local simulator URL for two records.
func ShareURL(port int, rec1, rec2 *extract.Record, skillIDs map[string]string, opts Options) (string, error) {
	hash, err := BuildShareHash(
		HorseFromRecord(rec1, skillIDs),
		HorseFromRecord(rec2, skillIDs),
		opts,
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%d/index.html#%s", port, hash), nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
