package main

// dataset_gen.go generates deterministic synthetic event streams for
// load-testing and benchmarking affinity-core outside `go test` — the same
// same role this tool's predecessor played for arena-cache key datasets, now
// emitting Event-shaped JSON lines instead of bare uint64 keys. Nothing in
// this module reads the output; bench/ builds its own events in memory.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 100000 -dist=zipf -seed=42 -out events.jsonl
//
// Flags:
//
//	-n        number of events to generate (default 100000)
//	-dist     actor-id distribution: "uniform" or "zipf" (skewed toward a
//	          small set of frequent actors, modeling regular visitors)
//	-zipfs    Zipf s parameter (>1) (default 1.2)
//	-zipfv    Zipf v parameter (>=1) (default 1.0)
//	-actors   size of the actor id pool (default 1000)
//	-seed     RNG seed (default current time)
//	-out      output file (default stdout)
//
// © 2025 affinity-core authors. MIT License.

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// eventTypesByCategory mirrors the closed category-prefix vocabulary
// (spec.md §6): one representative dotted event type per category.
var eventTypesByCategory = []string{
	"harm.fire", "heal.bandage", "death.slain", "extract.gather",
	"create.build", "trespass.enter", "offer.tribute", "trade.barter",
	"magic.ward", "social.greet", "move.pass",
}

type syntheticEvent struct {
	Type      string  `json:"type"`
	ActorID   string  `json:"actor_id"`
	Intensity float64 `json:"intensity"`
	Timestamp float64 `json:"timestamp"`
}

func main() {
	var (
		n       = flag.Int("n", 100_000, "number of events to generate")
		dist    = flag.String("dist", "uniform", "actor distribution: uniform or zipf")
		zipfS   = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		actors  = flag.Int("actors", 1000, "size of the actor id pool")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var actorIdx func() uint64
	switch *dist {
	case "uniform":
		actorIdx = func() uint64 { return uint64(rnd.Intn(*actors)) }
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, uint64(*actors-1))
		actorIdx = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()
	enc := json.NewEncoder(w)

	timestamp := 0.0
	for i := 0; i < *n; i++ {
		timestamp += rnd.Float64() * 30
		ev := syntheticEvent{
			Type:      eventTypesByCategory[rnd.Intn(len(eventTypesByCategory))],
			ActorID:   fmt.Sprintf("actor_%d", actorIdx()),
			Intensity: rnd.Float64(),
			Timestamp: timestamp,
		}
		if err := enc.Encode(ev); err != nil {
			fmt.Fprintln(os.Stderr, "encode error:", err)
			os.Exit(1)
		}
	}
}
