// Command skillnames validates a skill alias list, reports normalized-key
// collisions, and writes the sorted canonical names to a text file.
package main

import (
	"flag"
	"fmt"
	"os"

	"umascan/internal/dictionary"
)

func main() {
	in := flag.String("in", "data/skillnames.json", "Skill alias list (id -> names JSON)")
	out := flag.String("out", "skill_names.txt", "Output text file, one canonical name per line")
	cutoff := flag.Int("cutoff", dictionary.DefaultCutoff, "Similarity cutoff stored with the dictionary")
	flag.Parse()

	src, err := dictionary.LoadSource(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load alias list: %v\n", err)
		os.Exit(1)
	}

	dict, collisions, err := dictionary.New(src, dictionary.WithCutoff(*cutoff))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dictionary: %v\n", err)
		os.Exit(1)
	}

	for _, c := range collisions {
		fmt.Printf("collision: key %q kept %s, discarded %s\n", c.Key, c.WinnerID, c.DiscardedID)
	}

	names := dict.Names()
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	for _, name := range names {
		fmt.Fprintln(f, name)
	}

	fmt.Printf("Wrote %d names (%d keys, %d collisions) to %s\n",
		len(names), dict.Len(), len(collisions), *out)
}
