package config

import "testing"

func TestParseGeneratesNameWhenOmitted(t *testing.T) {
	cfg, err := Parse([]string{"--role", "sensor"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NodeName == "" {
		t.Fatal("expected an auto-generated node name when --name is omitted")
	}
}

func TestParseRejectsInvalidRole(t *testing.T) {
	_, err := Parse([]string{"--name", "n1", "--role", "bogus"})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseCollectsRepeatedPeers(t *testing.T) {
	cfg, err := Parse([]string{"--name", "n1", "--peer", "10.0.0.1:7500", "--peer", "10.0.0.2:7500"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.PeerAddrs) != 2 {
		t.Fatalf("expected 2 peers, got %+v", cfg.PeerAddrs)
	}
}

func TestParseDefaultsRoleToSensor(t *testing.T) {
	cfg, err := Parse([]string{"--name", "n1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Role != RoleSensor {
		t.Errorf("default role = %q, want sensor", cfg.Role)
	}
}
