package pathfinder

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// XY is a plan coordinate pair in configuration files.
type XY [2]Real

type BuildingCfg struct {
	ID        int    `yaml:"id"`
	Footprint [][]XY `yaml:"footprint"` // outer ring first, then holes
	Height    Real   `yaml:"height"`
	Alphas    []Real `yaml:"alphas,omitempty"`
}

type WallCfg struct {
	ID     int    `yaml:"id"`
	Line   []XY   `yaml:"line"`
	Height Real   `yaml:"height"`
	Alphas []Real `yaml:"alphas,omitempty"`
}

type GroundCfg struct {
	ID      int    `yaml:"id"`
	Polygon [][]XY `yaml:"polygon"`
	G       Real   `yaml:"g"`
}

type SceneCfg struct {
	DefaultGroundCoefficient Real          `yaml:"defaultGroundCoefficient,omitempty"`
	DefaultGroundElevation   Real          `yaml:"defaultGroundElevation,omitempty"`
	Buildings                []BuildingCfg `yaml:"buildings,omitempty"`
	Walls                    []WallCfg     `yaml:"walls,omitempty"`
	Topography               [][3]Real     `yaml:"topography,omitempty"`
	Ground                   []GroundCfg   `yaml:"ground,omitempty"`
}

type PointCfg struct {
	ID int64 `yaml:"id"`
	X  Real  `yaml:"x"`
	Y  Real  `yaml:"y"`
	Z  Real  `yaml:"z"`
	// source orientation in degrees, ignored for receivers
	Yaw   Real `yaml:"yaw,omitempty"`
	Pitch Real `yaml:"pitch,omitempty"`
	Roll  Real `yaml:"roll,omitempty"`
}

type OutputCfg struct {
	Path     string `yaml:"path,omitempty"`     // GeoJSON file, empty for a summary only
	Queue    int    `yaml:"queue,omitempty"`    // bounded queue between workers and writer
	Overflow string `yaml:"overflow,omitempty"` // "block" or "drop"
	MaxPaths int64  `yaml:"maxPaths,omitempty"` // 0 = unlimited
}

type Config struct {
	Settings  Settings   `yaml:"settings"`
	Scene     SceneCfg   `yaml:"scene"`
	Sources   []PointCfg `yaml:"sources"`
	Receivers []PointCfg `yaml:"receivers"`
	Output    OutputCfg  `yaml:"output,omitempty"`
}

// Build converts the rings, closing them.
func (c BuildingCfg) Build() (orb.Polygon, error) { return polygonFromCfg(c.Footprint) }

// Build converts the polyline.
func (c WallCfg) Build() (orb.LineString, error) {
	if len(c.Line) < 2 {
		return nil, fmt.Errorf("wall %d: %d points: %w", c.ID, len(c.Line), ErrDegenerate)
	}
	ls := make(orb.LineString, len(c.Line))
	for i, p := range c.Line {
		ls[i] = orb.Point{p[0], p[1]}
	}
	return ls, nil
}

// Build converts the rings, closing them.
func (c GroundCfg) Build() (orb.Polygon, error) { return polygonFromCfg(c.Polygon) }

func (p PointCfg) Point() Point3 { return Point3{X: p.X, Y: p.Y, Z: p.Z} }

func (p PointCfg) Orientation() Orientation {
	return Orientation{Yaw: p.Yaw, Pitch: p.Pitch, Roll: p.Roll}
}

func polygonFromCfg(rings [][]XY) (orb.Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("no ring: %w", ErrDegenerate)
	}
	poly := make(orb.Polygon, len(rings))
	for i, r := range rings {
		ring := make(orb.Ring, len(r))
		for j, p := range r {
			ring[j] = orb.Point{p[0], p[1]}
		}
		poly[i] = ring
	}
	return poly, nil
}

// LoadConfig reads a YAML (or JSON) file over the default settings and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a configuration document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{Settings: DefaultSettings()}
	cfg.Scene.DefaultGroundCoefficient = DefaultGroundCoefficient
	cfg.Scene.DefaultGroundElevation = DefaultGroundElevation
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if err := validatePoints(c.Sources); err != nil {
		return NewConfigError("sources", "", err)
	}
	if err := validatePoints(c.Receivers); err != nil {
		return NewConfigError("receivers", "", err)
	}
	if c.Output.Queue < 0 {
		return NewConfigError("output", "queue", fmt.Errorf("cannot be negative, got %d", c.Output.Queue))
	}
	if c.Output.MaxPaths < 0 {
		return NewConfigError("output", "maxPaths", fmt.Errorf("cannot be negative, got %d", c.Output.MaxPaths))
	}
	if _, err := ParseOverflowPolicy(c.Output.Overflow); err != nil {
		return NewConfigError("output", "overflow", err)
	}
	g := c.Scene.DefaultGroundCoefficient
	if !isFinite(g) || g < 0 || g > 1 {
		return NewConfigError("scene", "defaultGroundCoefficient", fmt.Errorf("must be in [0,1], got %v", g))
	}
	return nil
}

func validatePoints(pts []PointCfg) error {
	for i, p := range pts {
		if !p.Point().finite() || !p.Orientation().finite() {
			return fmt.Errorf("point %d (id %d) is not finite", i, p.ID)
		}
	}
	return nil
}

// BuildScene feeds every configured entity into a builder and finishes it.
// All geometry errors are reported together.
func (c *Config) BuildScene() (*Scene, error) {
	b := NewSceneBuilder(SceneOptions{
		DefaultGroundCoefficient: c.Scene.DefaultGroundCoefficient,
		DefaultGroundElevation:   c.Scene.DefaultGroundElevation,
	})
	var errs []error
	for _, bc := range c.Scene.Buildings {
		poly, err := bc.Build()
		if err == nil {
			err = b.AddBuilding(poly, bc.Height, bc.ID, bc.Alphas)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	for _, wc := range c.Scene.Walls {
		line, err := wc.Build()
		if err == nil {
			err = b.AddWall(line, wc.Height, wc.ID, wc.Alphas)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range c.Scene.Topography {
		if err := b.AddTopographicPoint(Point3{X: t[0], Y: t[1], Z: t[2]}); err != nil {
			errs = append(errs, err)
		}
	}
	for _, gc := range c.Scene.Ground {
		poly, err := gc.Build()
		if err == nil {
			err = b.AddGroundRegion(poly, gc.G, gc.ID)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	scene, err := b.Finish()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return scene, err
}

// SourceList converts the configured sources.
func (c *Config) SourceList() []Source {
	out := make([]Source, len(c.Sources))
	for i, p := range c.Sources {
		out[i] = Source{ID: p.ID, Pos: p.Point(), Orientation: p.Orientation()}
	}
	return out
}

// ReceiverList converts the configured receivers.
func (c *Config) ReceiverList() []Receiver {
	out := make([]Receiver, len(c.Receivers))
	for i, p := range c.Receivers {
		out[i] = Receiver{ID: p.ID, Pos: p.Point()}
	}
	return out
}
