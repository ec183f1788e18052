package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	DefaultDt          = 0.001
	DefaultDuration    = 10.0
	DefaultSampleEvery = 10

	ModeForces    = "forces"
	ModeKinematic = "kinematic"
)

// Config describes a scene and how to run it.
type Config struct {
	Name        string        `yaml:"name"`
	Mode        string        `yaml:"mode"`
	Dt          float64       `yaml:"dt"`
	Duration    float64       `yaml:"duration"`
	SampleEvery int           `yaml:"sample_every"`
	Bounds      *BoundsConfig `yaml:"bounds,omitempty"`
	Spin        float64       `yaml:"spin,omitempty"`
	Bodies      []BodyConfig  `yaml:"bodies"`
	Forces      []ForceConfig `yaml:"forces,omitempty"`
}

type BoundsConfig struct {
	Min Vec2 `yaml:"min"`
	Max Vec2 `yaml:"max"`
}

type BodyConfig struct {
	Name         string      `yaml:"name"`
	Shape        ShapeConfig `yaml:"shape"`
	Mass         Mass        `yaml:"mass"`
	Position     Vec2        `yaml:"position"`
	Velocity     Vec2        `yaml:"velocity,omitempty"`
	Acceleration Vec2        `yaml:"acceleration,omitempty"`
	Elasticity   Vec2        `yaml:"elasticity,omitempty"`
	Rotation     float64     `yaml:"rotation,omitempty"`
	Color        *RGB        `yaml:"color,omitempty"`
}

// ShapeConfig selects a shape builder. Only the fields of the chosen kind are
// read: width/height for rect, sides/radius for regular, points/radius for
// star, radius/segments for circle, vertices for polygon.
type ShapeConfig struct {
	Kind     string  `yaml:"kind"`
	Width    float64 `yaml:"width,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
	Radius   float64 `yaml:"radius,omitempty"`
	Sides    int     `yaml:"sides,omitempty"`
	Points   int     `yaml:"points,omitempty"`
	Segments int     `yaml:"segments,omitempty"`
	Vertices []Vec2  `yaml:"vertices,omitempty"`
}

// ForceConfig binds a force generator to bodies by name. Field is the
// acceleration of a uniform field.
type ForceConfig struct {
	Kind     string   `yaml:"kind"`
	Constant float64  `yaml:"constant,omitempty"`
	Field    Vec2     `yaml:"field,omitempty"`
	Bodies   []string `yaml:"bodies"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		Mode:        ModeForces,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Bodies: []BodyConfig{
			{
				Name:     "body",
				Shape:    ShapeConfig{Kind: "rect", Width: 2, Height: 2},
				Mass:     1,
				Position: Vec2{0, 0},
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. A file that lists bodies replaces the
// default body.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// SimConfig returns the run settings for the simulator.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		Kinematic:     c.Mode == ModeKinematic,
		ValidateState: true,
	}
}

func (c *Config) BodyNames() []string {
	names := make([]string, len(c.Bodies))
	for i, b := range c.Bodies {
		names[i] = b.Name
	}
	return names
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Bounds != nil {
		b := *c.Bounds
		out.Bounds = &b
	}
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Color != nil {
			col := *b.Color
			b.Color = &col
		}
		b.Shape.Vertices = append([]Vec2(nil), b.Shape.Vertices...)
		out.Bodies[i] = b
	}
	out.Forces = make([]ForceConfig, len(c.Forces))
	for i, f := range c.Forces {
		f.Bodies = append([]string(nil), f.Bodies...)
		out.Forces[i] = f
	}
	return &out
}

// Vec2 is written as a two-element flow sequence: [x, y].
type Vec2 [2]float64

func (v *Vec2) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 2 {
		return fmt.Errorf("line %d: expected [x, y], got %d values", node.Line, len(xs))
	}
	*v = Vec2{xs[0], xs[1]}
	return nil
}

func (v Vec2) MarshalYAML() (any, error) {
	return flowSeq(v[:]...), nil
}

func (v Vec2) IsZero() bool { return v[0] == 0 && v[1] == 0 }

// RGB is a color with components in [0, 1], written as [r, g, b].
type RGB [3]float64

func (c *RGB) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: expected [r, g, b], got %d values", node.Line, len(xs))
	}
	*c = RGB{xs[0], xs[1], xs[2]}
	return nil
}

func (c RGB) MarshalYAML() (any, error) {
	return flowSeq(c[:]...), nil
}

func flowSeq(xs ...float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, x := range xs {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(x, 'g', -1, 64),
		})
	}
	return n
}

// Mass accepts a number or "inf" for an immovable anchor.
type Mass float64

func (m *Mass) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch strings.ToLower(node.Value) {
		case "inf", "infinite", "+inf", ".inf":
			*m = Mass(math.Inf(1))
			return nil
		}
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("line %d: mass must be a number or \"inf\"", node.Line)
	}
	*m = Mass(f)
	return nil
}

func (m Mass) MarshalYAML() (any, error) {
	if m.IsInf() {
		return "inf", nil
	}
	return float64(m), nil
}

func (m Mass) IsInf() bool { return math.IsInf(float64(m), 1) }
