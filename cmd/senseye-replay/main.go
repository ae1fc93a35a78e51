// Command senseye-replay feeds a recorded newline-delimited JSON
// measurement stream into a Kalman bank and local inference engine at the
// original (or scaled) pace, printing the resulting belief on exit.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"senseye/infer"
	"senseye/kalman"
	"senseye/replay"
)

func main() {
	in := flag.String("in", "", "recorded measurement JSONL file (required)")
	speed := flag.Float64("speed", 1.0, "replay speed multiplier; 0 disables pacing")
	selfID := flag.String("self", "replay", "node id to attribute the resulting belief to")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "--in required")
		os.Exit(1)
	}

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *in, err)
		os.Exit(1)
	}
	defer f.Close()

	bank := kalman.NewBank(kalman.DefaultConfig())
	player := replay.NewPlayer(f, *speed)
	lastMS := int64(0)
	count := 0
	for {
		m, err := player.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			os.Exit(1)
		}
		bank.Observe(m)
		lastMS = m.TimestampMS
		count++
	}

	engine := infer.NewEngine(infer.DefaultConfig(), nil)
	b := engine.BuildBelief(bank, *selfID, uint64(count), lastMS, infer.Positions{}, 5)

	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal belief: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("replayed %d measurements through %s\n", count, *in)
	fmt.Println(string(out))
}
