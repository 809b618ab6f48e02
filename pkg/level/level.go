// Package level loads YAML scene definitions and materializes them into
// an engine.World.
package level

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-zenith/pkg/collider"
	"github.com/opd-ai/go-zenith/pkg/engine"
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/logging"
	"github.com/opd-ai/go-zenith/pkg/physics"
	"github.com/opd-ai/go-zenith/pkg/validation"
)

// ErrInvalidLevel is returned for definitions that cannot be applied
var ErrInvalidLevel = errors.New("invalid level")

// Definition is a scene as authored on disk. Colliders are stubs here and
// become real colliders when the definition is applied to a world.
type Definition struct {
	Objects  []ObjectDef  `yaml:"objects"`
	Statics  []StaticDef  `yaml:"statics"`
	Triggers []TriggerDef `yaml:"triggers"`
	Bodies   []BodyDef    `yaml:"bodies"`
}

// ObjectDef declares an owning game object. Active defaults to true.
type ObjectDef struct {
	ID      uint64 `yaml:"id"`
	Name    string `yaml:"name"`
	Active  *bool  `yaml:"active"`
	Trickle bool   `yaml:"trickle"`
}

// StaticDef declares a solid polygon. Points are [x, y] integer pairs.
type StaticDef struct {
	Owner      uint64  `yaml:"owner"`
	Points     [][]int `yaml:"points"`
	Bounciness float64 `yaml:"bounciness"`
	Friction   float64 `yaml:"friction"`
	Active     *bool   `yaml:"active"`
}

// TriggerDef declares an observational polygon
type TriggerDef struct {
	Owner         uint64  `yaml:"owner"`
	Points        [][]int `yaml:"points"`
	RefreshPeriod uint32  `yaml:"refresh_period"`
	Active        *bool   `yaml:"active"`
}

// BodyDef declares a moving circle
type BodyDef struct {
	Position []float64 `yaml:"position"`
	Velocity []float64 `yaml:"velocity"`
	Radius   float64   `yaml:"radius"`
}

// Load reads, parses and validates a level file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, logging.WrapError(err, "level %s", path)
	}
	if err := def.Validate(); err != nil {
		return nil, logging.WrapError(err, "level %s", path)
	}
	return def, nil
}

// Parse decodes a YAML level. Unknown keys are rejected; an empty
// document is an empty level.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	return &def, nil
}

// Validate checks references and ranges. Polygons with fewer than three
// points pass; they become inert colliders.
func (d *Definition) Validate() error {
	ids := make(map[uint64]bool, len(d.Objects))
	for i, o := range d.Objects {
		if ids[o.ID] {
			return fmt.Errorf("object %d: duplicate id %d: %w", i, o.ID, ErrInvalidLevel)
		}
		ids[o.ID] = true
	}

	for i, s := range d.Statics {
		if !ids[s.Owner] {
			return fmt.Errorf("static %d: unknown owner %d: %w", i, s.Owner, ErrInvalidLevel)
		}
		if _, err := toPoints(s.Points); err != nil {
			return fmt.Errorf("static %d: %w", i, err)
		}
		if err := validation.ValidateSurface(s.Bounciness, s.Friction); err != nil {
			return fmt.Errorf("static %d: %w", i, err)
		}
	}

	for i, t := range d.Triggers {
		if !ids[t.Owner] {
			return fmt.Errorf("trigger %d: unknown owner %d: %w", i, t.Owner, ErrInvalidLevel)
		}
		if _, err := toPoints(t.Points); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}

	for i, b := range d.Bodies {
		if _, err := toVector("position", b.Position); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		if _, err := toVector("velocity", b.Velocity); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		if err := validation.ValidateRadius(b.Radius); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	return nil
}

// Apply adds the definition's objects, colliders and bodies to w. It stops
// at the first error; whatever was added before it stays in the world.
func (d *Definition) Apply(ctx context.Context, w *engine.World) error {
	if err := d.Validate(); err != nil {
		return err
	}

	for _, o := range d.Objects {
		obj := entity.Object{ID: entity.ID(o.ID), Name: o.Name, Active: enabled(o.Active), Trickle: o.Trickle}
		if err := w.AddObject(obj); err != nil {
			return fmt.Errorf("apply level: %w", err)
		}
	}

	for i, s := range d.Statics {
		pts, _ := toPoints(s.Points)
		h, err := w.AddStatic(ctx, entity.ID(s.Owner), pts, collider.StaticSurface{
			Bounciness: s.Bounciness,
			Friction:   s.Friction,
		})
		if err != nil {
			return fmt.Errorf("apply static %d: %w", i, err)
		}
		if !enabled(s.Active) {
			if err := w.SetColliderActive(h, false); err != nil {
				return fmt.Errorf("apply static %d: %w", i, err)
			}
		}
	}

	for i, t := range d.Triggers {
		pts, _ := toPoints(t.Points)
		h, err := w.AddTrigger(ctx, entity.ID(t.Owner), pts, collider.TriggerVolume{RefreshPeriod: t.RefreshPeriod})
		if err != nil {
			return fmt.Errorf("apply trigger %d: %w", i, err)
		}
		if !enabled(t.Active) {
			if err := w.SetColliderActive(h, false); err != nil {
				return fmt.Errorf("apply trigger %d: %w", i, err)
			}
		}
	}

	for i, b := range d.Bodies {
		pos, _ := toVector("position", b.Position)
		vel, _ := toVector("velocity", b.Velocity)
		if _, err := w.AddBody(pos, vel, b.Radius); err != nil {
			return fmt.Errorf("apply body %d: %w", i, err)
		}
	}
	return nil
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func toPoints(raw [][]int) ([]physics.Vector2D, error) {
	out := make([]physics.Vector2D, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d has %d coordinates, want 2: %w", i, len(p), ErrInvalidLevel)
		}
		out[i] = physics.Point{X: p[0], Y: p[1]}.Vec()
	}
	return out, nil
}

// toVector accepts a missing vector as the origin
func toVector(name string, raw []float64) (physics.Vector2D, error) {
	switch len(raw) {
	case 0:
		return physics.Vector2D{}, nil
	case 2:
		v := physics.Vector2D{X: raw[0], Y: raw[1]}
		return v, validation.ValidateVector(name, v)
	default:
		return physics.Vector2D{}, fmt.Errorf("%s has %d components, want 2: %w", name, len(raw), ErrInvalidLevel)
	}
}
