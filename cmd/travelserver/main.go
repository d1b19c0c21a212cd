// Command travelserver generates a world and serves it over websocket
// for shortest-path queries and time-tick broadcasts.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"worldforge/internal/travelserver"
	"worldforge/pkg/worldgen"
)

func main() {
	port := flag.String("port", "8081", "Server port")
	seed := flag.Int64("seed", 1, "world seed (0..4294967295)")
	width := flag.Int("width", 512, "world width in cells")
	height := flag.Int("height", 512, "world height in cells")
	erosion := flag.Bool("erosion", true, "enable hydraulic erosion")
	flag.Parse()

	if *seed < 0 || *seed > math.MaxUint32 {
		log.Fatalf("%v", worldgen.ErrInvalidSeed)
	}

	w, err := worldgen.Build(worldgen.Config{
		Seed:          uint32(*seed),
		Width:         *width,
		Height:        *height,
		EnableErosion: *erosion,
	})
	if err != nil {
		log.Fatalf("Failed to build world: %v", err)
	}
	log.Printf("Generated world seed=%d size=%dx%d, %d settlements, %d roads",
		w.Seed, w.Width, w.Height, len(w.Settlements), len(w.Roads))

	srv, err := travelserver.New(travelserver.Config{
		Addr:  ":" + *port,
		World: w,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	var g errgroup.Group

	g.Go(func() error {
		log.Printf("Worldgen travel server running on %s", ":"+*port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-done
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
