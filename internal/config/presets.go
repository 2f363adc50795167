package config

import "sort"

func box(w, h, d float64) *Vector {
	v := V(w, h, d)
	return &v
}

var Presets = map[string]*Config{
	"drop": {
		Name: "drop", Integrator: "euler", Dt: DefaultDt, Duration: 2.0,
		Gravity: V(0, DefaultGravity, 0), SampleEvery: 1,
		Bodies: []BodyConfig{
			{Position: V(0, 10, 0), Velocity: V(1, 0, 0), Mass: 2, Box: box(1, 1, 1)},
		},
	},
	"verlet-drop": {
		Name: "verlet-drop", Integrator: "verlet", Dt: DefaultDt, Duration: 2.0,
		Gravity: V(0, DefaultGravity, 0), SampleEvery: 1,
		Bodies: []BodyConfig{
			{Position: V(0, 10, 0), Mass: 2, Box: box(1, 1, 1)},
		},
	},
	"spin": {
		Name: "spin", Integrator: "euler", Dt: 0.005, Duration: 10.0,
		SampleEvery: 4,
		Bodies: []BodyConfig{
			{Mass: 1, Box: box(2, 1, 0.5), AngularVelocity: V(0, 3, 0.2)},
		},
	},
	"cloud": {
		Name: "cloud", Integrator: "euler", Dt: DefaultDt, Duration: 3.0,
		Gravity: V(0, DefaultGravity, 0), SampleEvery: 6,
		Bodies: []BodyConfig{
			{Position: V(-25, 0, 0), Velocity: V(0, 12, 0), Mass: 1, Count: 50, Spacing: V(1, 0, 0.5)},
		},
	},
	"orbit-kick": {
		Name: "orbit-kick", Integrator: "euler", Dt: 0.01, Duration: 6.0,
		SampleEvery: 2,
		Bodies: []BodyConfig{
			{Position: V(-3, 0, 0), Mass: 1, Box: box(1, 1, 1)},
			{Position: V(3, 0, 0), Velocity: V(0, 0, 1), Mass: 4, Box: box(2, 2, 2)},
		},
		Impulses: []ImpulseConfig{
			{Time: 1.0, Body: 0, Impulse: V(2, 0, 0), Contact: V(0, 0.5, 0)},
			{Time: 3.0, Body: 1, Impulse: V(0, 0, -4), Contact: V(1, 0, 0)},
		},
	},
	"hover": {
		Name: "hover", Integrator: "euler", Dt: 0.01, Duration: 8.0,
		Gravity: V(0, DefaultGravity, 0), SampleEvery: 2,
		Bodies: []BodyConfig{
			{Mass: 1, Box: box(1, 0.3, 1)},
		},
		Controllers: []ControllerConfig{
			{Type: "pid", Body: 0, Target: V(0, 5, 0), Kp: 20, Ki: 10, Kd: 8, MaxForce: 60},
		},
	},
	"station-keep": {
		Name: "station-keep", Integrator: "euler", Dt: 0.01, Duration: 10.0,
		SampleEvery: 2,
		Bodies: []BodyConfig{
			{Position: V(-4, 2, 1), Velocity: V(0, 0, 3), Mass: 2, Box: box(1, 1, 2)},
		},
		Impulses: []ImpulseConfig{
			{Time: 5.0, Body: 0, Impulse: V(0, 6, 0), Contact: V(0, 0, 1)},
		},
		Controllers: []ControllerConfig{
			{Type: "lqr", Body: 0, Q: 1, R: 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
