// Package config defines the senseyed CLI surface: flag parsing and
// fail-fast validation, in the same style as ApiStack-engine-go/cmd/fuse/
// main.go's flag-based command binaries.
package config

import (
	"flag"
	"fmt"

	"github.com/google/uuid"
)

// Role identifies what a node primarily contributes to the mesh.
type Role string

const (
	RoleSensor Role = "sensor"
	RoleRelay  Role = "relay"
	RoleAnchor Role = "anchor"
)

// Config is the fully parsed and validated senseyed configuration.
type Config struct {
	NodeName   string
	Role       Role
	Headless   bool
	Acoustic   bool
	ListenAddr string
	PeerAddrs  []string
	RenderPort int
	RenderDist string
	StatePath  string
}

// Parse parses args (typically os.Args[1:]) into a Config and validates
// it, returning a descriptive error on the first violation rather than
// letting an invalid config reach the pipeline.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("senseyed", flag.ContinueOnError)
	name := fs.String("name", "", "node name (auto-generated when omitted)")
	role := fs.String("role", string(RoleSensor), "node role: sensor, relay, or anchor")
	headless := fs.Bool("headless", false, "disable the renderview HTTP/websocket server")
	acoustic := fs.Bool("acoustic", false, "enable the acoustic ranging channel")
	listen := fs.String("listen", ":7500", "gossip mesh listen address")
	renderPort := fs.Int("render-port", 8080, "renderview HTTP port")
	renderDist := fs.String("render-dist", "", "path to the renderview static frontend bundle")
	statePath := fs.String("state", "senseye-state.json", "path to persist the calibrated floor plan")
	var peers stringList
	fs.Var(&peers, "peer", "gossip peer address (repeatable)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	nodeName := *name
	if nodeName == "" {
		// Unnamed nodes still need a stable-for-the-process identity to
		// sign their gossip messages with; generate one rather than
		// forcing every ad hoc/test node to pass --name.
		nodeName = "senseye-" + uuid.NewString()[:8]
	}

	cfg := Config{
		NodeName:   nodeName,
		Role:       Role(*role),
		Headless:   *headless,
		Acoustic:   *acoustic,
		ListenAddr: *listen,
		PeerAddrs:  []string(peers),
		RenderPort: *renderPort,
		RenderDist: *renderDist,
		StatePath:  *statePath,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on any configuration that would leave the pipeline
// unable to start.
func (c Config) Validate() error {
	switch c.Role {
	case RoleSensor, RoleRelay, RoleAnchor:
	default:
		return fmt.Errorf("config: invalid --role %q, want sensor, relay, or anchor", c.Role)
	}
	if c.RenderPort <= 0 || c.RenderPort > 65535 {
		return fmt.Errorf("config: --render-port %d out of range", c.RenderPort)
	}
	return nil
}

// stringList implements flag.Value to collect a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
