package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/rigidsim/internal/storage"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("rigidsim %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestRunListExport(t *testing.T) {
	data := t.TempDir()

	out := execute(t, "--data", data, "run", "drop", "--time", "0.5")
	if !strings.Contains(out, "run id: drop_") {
		t.Fatalf("run output:\n%s", out)
	}
	if !strings.Contains(out, "energy_drift") {
		t.Error("run should print the standard metrics")
	}

	out = execute(t, "--data", data, "list")
	if !strings.Contains(out, "drop") {
		t.Errorf("list output:\n%s", out)
	}

	out = execute(t, "--data", data, "export-json")
	if !strings.Contains(out, `"scenario": "drop"`) {
		t.Errorf("export-json output starts:\n%.200s", out)
	}

	svg := filepath.Join(t.TempDir(), "drop.svg")
	execute(t, "--data", data, "export-svg", "--axes", "xy", "-o", svg)
	b, err := os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("<path")) {
		t.Error("svg has no trajectory")
	}

	out = execute(t, "--data", data, "plot", "--axis", "py")
	if !strings.Contains(out, "py") {
		t.Errorf("plot output:\n%s", out)
	}
}

func TestRun_BodiesOverride(t *testing.T) {
	data := t.TempDir()
	execute(t, "--data", data, "run", "orbit-kick", "--bodies", "3", "--time", "0.1", "--integrator", "verlet")

	st := storage.New(data)
	runID, err := st.Latest()
	if err != nil {
		t.Fatal(err)
	}
	info, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Bodies != 3 || info.Integrator != "verlet" {
		t.Errorf("run info = %+v", info)
	}
}

func TestRun_UnknownPreset(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data", t.TempDir(), "run", "no-such-preset"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestPresetsAndSweep(t *testing.T) {
	out := execute(t, "presets")
	for _, name := range []string{"drop", "hover", "station-keep"} {
		if !strings.Contains(out, name) {
			t.Errorf("presets output missing %s", name)
		}
	}

	out = execute(t, "sweep", "drop", "--param", "dt", "--min", "0.01", "--max", "0.02", "--steps", "2")
	if !strings.Contains(out, "ENERGY DRIFT") || strings.Count(out, "\n") != 3 {
		t.Errorf("sweep output:\n%s", out)
	}

	out = execute(t, "montecarlo", "drop", "--trials", "3", "--seed", "5", "--radius", "100")
	if !strings.Contains(out, "3 stable, 0 unstable") {
		t.Errorf("montecarlo output:\n%s", out)
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	src := "name: pair\nsteps:\n  - preset: drop\n    duration: 0.1\n  - preset: spin\n    duration: 0.1\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	data := filepath.Join(dir, "data")
	out := execute(t, "--data", data, "batch", path)
	if !strings.Contains(out, "drop_") || !strings.Contains(out, "spin_") {
		t.Errorf("batch output:\n%s", out)
	}
	runs, err := storage.New(data).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 stored runs, got %d", len(runs))
	}
}
