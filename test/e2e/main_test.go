package e2e

import (
	"os"
	"os/exec"
	"testing"
)

var cadenceBin string

func TestMain(m *testing.M) {
	cadenceBin = envOrLookPath("CADENCE_BIN", "cadence")
	os.Exit(m.Run())
}

func envOrLookPath(envVar, name string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return ""
}

func requireCadence(t *testing.T) {
	t.Helper()
	if cadenceBin == "" {
		t.Skip("cadence binary not available (set CADENCE_BIN or add to PATH)")
	}
}
