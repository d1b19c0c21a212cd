// Command worldgen generates a world, prints a debug summary, and
// optionally persists it to the save store.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"worldforge/internal/store"
	"worldforge/pkg/worldgen"
)

func main() {
	seed := flag.Int64("seed", 1, "world seed (0..4294967295)")
	width := flag.Int("width", 512, "world width in cells")
	height := flag.Int("height", 512, "world height in cells")
	erosion := flag.Bool("erosion", true, "enable hydraulic erosion")
	dbPath := flag.String("db", "data/worldgen.db", "save database path")
	save := flag.Bool("save", false, "persist the generated world")
	load := flag.String("load", "", "load a saved world by id instead of generating")
	flag.Parse()

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if *load != "" {
		rec, err := st.Get(*load)
		if err != nil {
			log.Fatalf("Failed to load save %s: %v", *load, err)
		}
		record, err := worldgen.Decode(rec.Blob)
		if err != nil {
			log.Fatalf("Failed to decode save %s: %v", *load, err)
		}
		w, err := worldgen.LoadFromRecord(record)
		if err != nil {
			log.Fatalf("Failed to materialise save %s: %v", *load, err)
		}
		log.Printf("Loaded world %s", *load)
		fmt.Println(w.Debug())
		return
	}

	if *seed < 0 || *seed > math.MaxUint32 {
		log.Fatalf("%v", worldgen.ErrInvalidSeed)
	}

	cfg := worldgen.Config{
		Seed:          uint32(*seed),
		Width:         *width,
		Height:        *height,
		EnableErosion: *erosion,
	}

	w, err := worldgen.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build world: %v", err)
	}

	log.Printf("Generated world seed=%d size=%dx%d", w.Seed, w.Width, w.Height)
	fmt.Println(w.Debug())

	if *save {
		rec := w.SaveRecord(time.Now().UnixMilli())
		blob, err := worldgen.Encode(rec)
		if err != nil {
			log.Fatalf("Failed to encode save: %v", err)
		}
		id, err := st.Save(w.Seed, w.Width, w.Height, blob)
		if err != nil {
			log.Fatalf("Failed to persist save: %v", err)
		}
		log.Printf("Saved world as %s", id)
	}
}
