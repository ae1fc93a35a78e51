// Command senseye-calibrate runs the calibration orchestrator over a
// JSON file of distance observations and writes the recovered floor plan.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"senseye/calibration"
	"senseye/geo"
)

type observationFile struct {
	Nodes        []string                           `json:"nodes"`
	Observations []calibration.DistanceObservation   `json:"observations"`
	Anchors      map[string][2]float64               `json:"anchors"`
}

func main() {
	in := flag.String("in", "", "input JSON file of distance observations (required)")
	out := flag.String("out", "floorplan.json", "output floor plan JSON path")
	pathLossExp := flag.Float64("path-loss-exp", 2.0, "path-loss exponent used for wall detection")
	refAtten := flag.Float64("ref-atten", 45.0, "reference attenuation at 1m, dB")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "--in required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *in, err)
		os.Exit(1)
	}
	var of observationFile
	if err := json.Unmarshal(data, &of); err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", *in, err)
		os.Exit(1)
	}

	anchors := make(map[string]geo.Point, len(of.Anchors))
	for id, xy := range of.Anchors {
		anchors[id] = geo.Point{X: xy[0], Y: xy[1]}
	}

	res, err := calibration.Run(calibration.DefaultConfig(), of.Nodes, of.Observations, anchors, nil, *pathLossExp, *refAtten)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calibration failed: %v\n", err)
		os.Exit(1)
	}

	outData, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal result: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, outData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("calibration: wrote %d node positions, %d walls to %s\n", len(res.Positions), len(res.Walls), *out)
}
