// universegen emits a sector definition YAML file from a seed, so a fresh
// deployment can start from a generated galaxy layout instead of a
// hand-written one.
//
// Produces:
//   - data/yaml/sector_list.yaml — sector definitions
//
// Usage:
//
//	go run ./cmd/universegen -seed 42 -sectors 8
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ematoledor/starflight-server/internal/data"
)

// Galaxy shape. Sectors are placed on a loose disc with jittered height so
// neighbouring spheres rarely overlap; when they do, declaration order
// resolves containment.
const (
	ringRadius   = 30000.0
	ringJitter   = 8000.0
	heightJitter = 4000.0
	minRadius    = 3000.0
	maxRadius    = 6000.0
)

var sectorNames = []string{
	"Altair Reach", "Betel Verge", "Cygnus Drift", "Deneb Shallows",
	"Eridani Span", "Fomalhaut Rim", "Grus Expanse", "Hydrae Deep",
	"Izar Corridor", "Jabbah Cluster", "Kepler Wastes", "Lyra Hollow",
	"Mirach Belt", "Naos Frontier", "Orionis Veil", "Procyon Banks",
}

func main() {
	seed := flag.Int64("seed", 1, "generation seed")
	count := flag.Int("sectors", 8, "number of sectors to emit")
	out := flag.String("out", "data/yaml/sector_list.yaml", "output path")
	flag.Parse()

	if *count < 1 || *count > len(sectorNames) {
		fmt.Fprintf(os.Stderr, "sectors must be 1..%d\n", len(sectorNames))
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	var file struct {
		Sectors []data.SectorDef `yaml:"sectors"`
	}
	for i := 0; i < *count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(*count)
		dist := ringRadius + (rng.Float64()*2-1)*ringJitter

		// Danger grows with distance from the origin ring's inner edge.
		danger := 1 + rng.Intn(2)
		if dist > ringRadius {
			danger = 2 + rng.Intn(3)
		}
		if danger > 4 {
			danger = 4
		}

		def := data.SectorDef{
			Name:           sectorNames[i],
			CenterX:        math.Round(dist * math.Cos(angle)),
			CenterY:        math.Round((rng.Float64()*2 - 1) * heightJitter),
			CenterZ:        math.Round(dist * math.Sin(angle)),
			Radius:         math.Round(minRadius + rng.Float64()*(maxRadius-minRadius)),
			Danger:         danger,
			Planets:        5,
			AsteroidFields: 1 + rng.Intn(3),
			Nebulae:        rng.Intn(3),
			Anomalies:      rng.Intn(2),
		}
		file.Sectors = append(file.Sectors, def)
	}

	raw, err := yaml.Marshal(&file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, raw, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d sectors to %s (seed %d)\n", *count, *out, *seed)
}
