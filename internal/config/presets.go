package config

import (
	"math"
	"sort"
)

var walls = &BoundsConfig{Min: Vec2{-500, -250}, Max: Vec2{500, 250}}

var Presets = map[string]*Config{
	"bounce": {
		Name: "bounce", Mode: ModeKinematic, Dt: 0.01, Duration: 20.0, SampleEvery: 1,
		Bounds: walls, Spin: 0.25,
		Bodies: []BodyConfig{
			{
				Name: "star", Shape: ShapeConfig{Kind: "star", Points: 5, Radius: 30},
				Mass: 1, Velocity: Vec2{-100, 100}, Elasticity: Vec2{1, 1},
				Color: &RGB{0.75, 0, 0.75},
			},
		},
	},
	"freefall": {
		Name: "freefall", Mode: ModeForces, Dt: 0.001, Duration: 20.0, SampleEvery: 10,
		Bounds: walls, Spin: math.Pi / 4,
		Bodies: []BodyConfig{
			{
				Name: "star", Shape: ShapeConfig{Kind: "star", Points: 5, Radius: 50},
				Mass: 1, Position: Vec2{-440, 190}, Velocity: Vec2{80, 0},
				Elasticity: Vec2{1, 0.85},
			},
		},
		Forces: []ForceConfig{
			{Kind: "field", Field: Vec2{0, -98.1}, Bodies: []string{"star"}},
		},
	},
	"orbit": {
		Name: "orbit", Mode: ModeForces, Dt: 0.001, Duration: 20.0, SampleEvery: 20,
		Bodies: []BodyConfig{
			{Name: "sun", Shape: ShapeConfig{Kind: "circle", Radius: 10}, Mass: 1e6, Color: &RGB{1, 0.8, 0.2}},
			{
				Name: "planet", Shape: ShapeConfig{Kind: "circle", Radius: 3, Segments: 12},
				Mass: 1, Position: Vec2{100, 0}, Velocity: Vec2{0, 100},
				Color: &RGB{0.2, 0.6, 1},
			},
		},
		Forces: []ForceConfig{
			{Kind: "gravity", Constant: 1, Bodies: []string{"sun", "planet"}},
		},
	},
	"binary": {
		Name: "binary", Mode: ModeForces, Dt: 0.001, Duration: 30.0, SampleEvery: 20,
		Bodies: []BodyConfig{
			{
				Name: "a", Shape: ShapeConfig{Kind: "regular", Sides: 6, Radius: 8},
				Mass: 1e5, Position: Vec2{-50, 0}, Velocity: Vec2{0, -22.36068},
			},
			{
				Name: "b", Shape: ShapeConfig{Kind: "regular", Sides: 6, Radius: 8},
				Mass: 1e5, Position: Vec2{50, 0}, Velocity: Vec2{0, 22.36068},
			},
		},
		Forces: []ForceConfig{
			{Kind: "gravity", Constant: 1, Bodies: []string{"a", "b"}},
		},
	},
	"oscillator": {
		Name: "oscillator", Mode: ModeForces, Dt: 0.001, Duration: 20.0, SampleEvery: 10,
		Bodies: oscillatorBodies(),
		Forces: []ForceConfig{
			{Kind: "spring", Constant: 10, Bodies: []string{"bob", "anchor"}},
		},
	},
	"damped": {
		Name: "damped", Mode: ModeForces, Dt: 0.001, Duration: 20.0, SampleEvery: 10,
		Bodies: oscillatorBodies(),
		Forces: []ForceConfig{
			{Kind: "spring", Constant: 10, Bodies: []string{"bob", "anchor"}},
			{Kind: "drag", Constant: 2, Bodies: []string{"bob"}},
		},
	},
	"drag": {
		Name: "drag", Mode: ModeForces, Dt: 0.001, Duration: 10.0, SampleEvery: 10,
		Bodies: []BodyConfig{
			{
				Name: "puck", Shape: ShapeConfig{Kind: "circle", Radius: 10, Segments: 20},
				Mass: 4, Position: Vec2{-200, -100}, Velocity: Vec2{100, 50},
			},
		},
		Forces: []ForceConfig{
			{Kind: "drag", Constant: 2, Bodies: []string{"puck"}},
		},
	},
}

func oscillatorBodies() []BodyConfig {
	return []BodyConfig{
		{
			Name: "anchor", Shape: ShapeConfig{Kind: "rect", Width: 10, Height: 10},
			Mass: Mass(math.Inf(1)), Color: &RGB{0.5, 0.5, 0.5},
		},
		{
			Name: "bob", Shape: ShapeConfig{Kind: "rect", Width: 20, Height: 20},
			Mass: 10, Position: Vec2{100, 0}, Velocity: Vec2{0, 40},
		},
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
