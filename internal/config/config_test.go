package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "euler" {
		t.Errorf("expected integrator euler, got %s", cfg.Integrator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("drop")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Bodies[0].Position[1] != 10 {
		t.Errorf("expected y 10, got %f", cfg.Bodies[0].Position[1])
	}

	cfg.Dt = 1
	cfg.Bodies[0].Box[0] = 99
	again := GetPreset("drop")
	if again.Dt == 1 || again.Bodies[0].Box[0] == 99 {
		t.Error("GetPreset must return an independent copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("preset %s invalid: %v", name, err)
			}
			if _, err := cfg.NewRunner(); err != nil {
				t.Errorf("preset %s: %v", name, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk4" }},
		{"no bodies", func(c *Config) { c.Bodies = nil }},
		{"zero mass", func(c *Config) { c.Bodies[0].Mass = 0 }},
		{"singular inertia", func(c *Config) { c.Bodies[0].Inertia = V(1, 0, 1) }},
		{"flat box", func(c *Config) { c.Bodies[0].Box = box(0, 0, 1) }},
		{"impulse body", func(c *Config) { c.Impulses = []ImpulseConfig{{Body: 1}} }},
		{"impulse time", func(c *Config) { c.Impulses = []ImpulseConfig{{Time: -1}} }},
		{"controller body", func(c *Config) { c.Controllers = []ControllerConfig{{Type: "pid", Body: 2}} }},
		{"controller type", func(c *Config) { c.Controllers = []ControllerConfig{{Type: "bang-bang"}} }},
		{"lqr weights", func(c *Config) { c.Controllers = []ControllerConfig{{Type: "lqr", Q: 1}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestBoxInertia(t *testing.T) {
	got := BoxInertia(12, 1, 2, 3)
	want := vecmath.Diag3(13, 10, 5)
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("BoxInertia = %v, want %v", got, want)
	}
}

func TestBuild(t *testing.T) {
	off := false
	cfg := &Config{
		Dt: 0.1, Duration: 1,
		Bodies: []BodyConfig{
			{Position: V(0, 1, 0), Mass: 2, Count: 3, Spacing: V(2, 0, 0), AngularVelocity: V(0, 1, 0)},
			{Position: V(5, 5, 5), Mass: 1, Inertia: V(1, 2, 3), Active: &off},
		},
	}

	w := physics.NewWorld()
	ids, err := cfg.Build(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 4 || cfg.TotalBodies() != 4 {
		t.Fatalf("expected 4 bodies, got %d", len(ids))
	}

	st := w.Data()
	if got := st.Positions().At(ids[2]); got != vecmath.V3(4, 1, 0) {
		t.Errorf("third copy at %v, want (4,1,0)", got)
	}
	if got := st.AngularVelocities().At(ids[1]); got != vecmath.V3(0, 1, 0) {
		t.Errorf("angular velocity = %v", got)
	}
	if st.ActiveFlags().At(ids[3]) {
		t.Error("expected last body inactive")
	}
	if got := st.Inertias().At(ids[3]); got != vecmath.Diag3(1, 2, 3) {
		t.Errorf("inertia = %v", got)
	}
	if got := st.Inertias().At(ids[0]); !got.ApproxEqual(BoxInertia(2, 1, 1, 1), 1e-12) {
		t.Errorf("default inertia = %v", got)
	}
}

func TestSetBodyCount(t *testing.T) {
	cfg := GetPreset("orbit-kick")
	cfg.SetBodyCount(10)
	if cfg.TotalBodies() != 10 {
		t.Errorf("expected 10 bodies, got %d", cfg.TotalBodies())
	}
	if cfg.Bodies[0].Spacing.IsZero() {
		t.Error("expected a default spacing")
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	cfg := GetPreset("orbit-kick")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != cfg.Name || loaded.Dt != cfg.Dt {
		t.Errorf("loaded %s/%v, want %s/%v", loaded.Name, loaded.Dt, cfg.Name, cfg.Dt)
	}
	if len(loaded.Bodies) != 2 || len(loaded.Impulses) != 2 {
		t.Fatalf("loaded %d bodies, %d impulses", len(loaded.Bodies), len(loaded.Impulses))
	}
	if *loaded.Bodies[1].Box != V(2, 2, 2) {
		t.Errorf("box = %v", *loaded.Bodies[1].Box)
	}
	if loaded.Impulses[1].Contact != V(1, 0, 0) {
		t.Errorf("contact = %v", loaded.Impulses[1].Contact)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	src := `
name: hand
integrator: verlet
dt: 0.01
duration: 2
gravity: [0, -1, 0]
bodies:
  - position: [0, 10, 0]
    mass: 2
    inertia: [1, 1, 1]
    count: 2
    spacing: [1, 0, 0]
impulses:
  - time: 0.5
    body: 1
    impulse: [0, 5, 0]
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Gravity.Vec3() != vecmath.V3(0, -1, 0) {
		t.Errorf("gravity = %v", cfg.Gravity)
	}
	if cfg.SampleEvery != 1 {
		t.Errorf("sample_every default lost: %d", cfg.SampleEvery)
	}

	sc := cfg.SimConfig()
	if sc.Dt != 0.01 || !sc.ValidateState {
		t.Errorf("sim config = %+v", sc)
	}
	imps := cfg.SimImpulses()
	if len(imps) != 1 || imps[0].Impulse != vecmath.V3(0, 5, 0) {
		t.Errorf("impulses = %+v", imps)
	}
}

func TestLoad_BadVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("gravity: [0, 1]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for a two-element vector")
	}
}

func TestNewRunner_Runs(t *testing.T) {
	cfg := GetPreset("drop")
	r, err := cfg.NewRunner()
	if err != nil {
		t.Fatal(err)
	}
	if r.World().Len() != 1 {
		t.Fatalf("expected 1 body, got %d", r.World().Len())
	}
	if err := r.Step(cfg.Dt); err != nil {
		t.Fatal(err)
	}
	y := r.World().Data().Positions().At(0).Y
	want := 10 + DefaultGravity*cfg.Dt*cfg.Dt
	if math.Abs(y-want) > 1e-12 {
		t.Errorf("y after one step = %v, want %v", y, want)
	}
}

func TestNewRunner_Controllers(t *testing.T) {
	cfg := GetPreset("hover")
	r, err := cfg.NewRunner()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Step(cfg.Dt); err != nil {
		t.Fatal(err)
	}
	// The pid pushes up harder than gravity pulls on the first step.
	if y := r.World().Data().Positions().At(0).Y; y <= 0 {
		t.Errorf("hover body fell to y=%v", y)
	}

	cfg = GetPreset("station-keep")
	w := physics.NewWorld()
	if _, err := cfg.Build(w); err != nil {
		t.Fatal(err)
	}
	ctrls, err := cfg.NewControllers(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctrls) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(ctrls))
	}

	cfg.Controllers[0].Body = 5
	if _, err := cfg.NewControllers(w); err == nil {
		t.Error("expected an error for a controller on a missing body")
	}
}

func TestLoad_Controllers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	src := `
bodies:
  - mass: 1
controllers:
  - type: lqr
    body: 0
    target: [1, 2, 3]
    q: 4
    r: 1
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Controllers) != 1 || cfg.Controllers[0].Target != V(1, 2, 3) {
		t.Errorf("controllers = %+v", cfg.Controllers)
	}

	cp := cfg.Clone()
	cp.Controllers[0].Q = 9
	if cfg.Controllers[0].Q != 4 {
		t.Error("clone shares the controller slice")
	}
}
