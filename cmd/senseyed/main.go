// Command senseyed runs one node of the sensing mesh: it scans for
// RF/acoustic measurements, filters and infers locally, gossips its
// beliefs to peers, fuses them into a consensus world view, and
// optionally serves that view to a browser over renderview.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"senseye/collab"
	"senseye/config"
	"senseye/geo"
	"senseye/gossip"
	"senseye/infer"
	"senseye/pipeline"
	"senseye/renderview"
	"senseye/worldstate"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("senseyed: %v", err)
	}

	log.Printf("senseyed: starting node %q as %s (acoustic=%v headless=%v)", cfg.NodeName, cfg.Role, cfg.Acoustic, cfg.Headless)

	store := collab.NewMockFloorPlanStore()
	positions, err := store.Load(context.Background())
	if err != nil {
		log.Fatalf("senseyed: load floor plan: %v", err)
	}
	if positions == nil {
		positions = map[string]geo.Point{cfg.NodeName: {X: 0, Y: 0}}
	}

	meshCfg := gossip.DefaultConfig()
	meshCfg.ListenAddr = cfg.ListenAddr
	mesh := gossip.NewMesh(cfg.NodeName, meshCfg)
	for _, addr := range cfg.PeerAddrs {
		mesh.AddPeer(addr)
	}

	fp := worldstate.FloorPlan{NodePositions: positions}
	world := worldstate.NewState(fp, 5000)

	var hub *renderview.Hub
	if !cfg.Headless {
		server := renderview.NewServer()
		hub = server.Hub
		go func() {
			if err := server.Start(cfg.RenderPort, cfg.RenderDist); err != nil {
				log.Printf("senseyed: renderview server exited: %v", err)
			}
		}()
	}

	scanner := collab.NewMockScanner(nil) // TODO: wire a real Scanner implementation per platform.

	pcfg := pipeline.DefaultConfig(cfg.NodeName)
	p := pipeline.New(pcfg, scanner, nil, mesh, world, hub, infer.Positions(positions))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mesh.Start(ctx); err != nil {
		log.Fatalf("senseyed: mesh listen failed: %v", err)
	}
	defer mesh.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("senseyed: shutting down")
		cancel()
	}()

	p.Run(ctx)
}
