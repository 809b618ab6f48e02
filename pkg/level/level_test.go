package level

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-zenith/pkg/config"
	"github.com/opd-ai/go-zenith/pkg/engine"
	"github.com/opd-ai/go-zenith/pkg/validation"
)

const floorLevel = `
objects:
  - id: 7
    name: floor
  - id: 8
    name: hidden
    active: false
    trickle: true
statics:
  - owner: 7
    points: [[-50, -20], [50, -20], [50, 0], [-50, 0]]
    bounciness: 0.5
  - owner: 8
    points: [[-50, 100], [50, 100], [0, 120]]
    bounciness: 1
triggers:
  - owner: 8
    points: [[0, 0], [1, 1]]
    refresh_period: 4
    active: false
bodies:
  - position: [0, 8]
    velocity: [0, -5]
    radius: 10
`

func newWorld(t *testing.T) *engine.World {
	t.Helper()
	w, err := engine.NewWorld(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestParse(t *testing.T) {
	def, err := Parse([]byte(floorLevel))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if len(def.Objects) != 2 || len(def.Statics) != 2 || len(def.Triggers) != 1 || len(def.Bodies) != 1 {
		t.Fatalf("unexpected section sizes: %+v", def)
	}
	if def.Objects[0].Active != nil || def.Objects[1].Active == nil || *def.Objects[1].Active {
		t.Errorf("active flags not decoded as written: %+v", def.Objects)
	}
	if def.Statics[0].Bounciness != 0.5 || len(def.Statics[0].Points) != 4 {
		t.Errorf("static not decoded: %+v", def.Statics[0])
	}
	if def.Triggers[0].RefreshPeriod != 4 {
		t.Errorf("RefreshPeriod = %d, want 4", def.Triggers[0].RefreshPeriod)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestParse_EmptyAndMalformed(t *testing.T) {
	def, err := Parse(nil)
	if err != nil || def == nil {
		t.Fatalf("Parse(nil) = %v, %v; want empty level", def, err)
	}
	if _, err := Parse([]byte("objects: [")); err == nil {
		t.Error("expected a syntax error")
	}
	if _, err := Parse([]byte("colliders: []")); err == nil {
		t.Error("expected unknown keys to be rejected")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"duplicate_object", "objects: [{id: 1}, {id: 1}]", ErrInvalidLevel},
		{"unknown_static_owner", "statics: [{owner: 3, points: [[0,0],[1,0],[0,1]]}]", ErrInvalidLevel},
		{"unknown_trigger_owner", "triggers: [{owner: 3, points: [[0,0],[1,0],[0,1]]}]", ErrInvalidLevel},
		{"short_point", "objects: [{id: 1}]\nstatics: [{owner: 1, points: [[0,0],[1],[0,1]]}]", ErrInvalidLevel},
		{"bounciness_range", "objects: [{id: 1}]\nstatics: [{owner: 1, points: [[0,0],[1,0],[0,1]], bounciness: 1.5}]", validation.ErrOutOfRange},
		{"friction_range", "objects: [{id: 1}]\nstatics: [{owner: 1, points: [[0,0],[1,0],[0,1]], friction: -0.1}]", validation.ErrOutOfRange},
		{"zero_radius", "bodies: [{position: [0, 0], radius: 0}]", validation.ErrInvalidRadius},
		{"bad_velocity", "bodies: [{velocity: [1, 2, 3], radius: 1}]", ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if err := def.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	def, err := Parse([]byte(floorLevel))
	if err != nil {
		t.Fatal(err)
	}
	w := newWorld(t)

	if err := def.Apply(ctx, w); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	objects, colliders, bodies := w.Counts()
	if objects != 2 || colliders != 3 || bodies != 1 {
		t.Errorf("Counts() = %d, %d, %d, want 2, 3, 1", objects, colliders, bodies)
	}

	if c, _ := w.Collider(0); !c.Active || c.Surface.Bounciness != 0.5 {
		t.Errorf("floor = %+v", c)
	}
	if c, _ := w.Collider(2); c.Active || c.Trigger.RefreshPeriod != 4 || !c.Boundary.Inert() {
		t.Errorf("trigger = %+v", c)
	}
	if o, ok := w.Object(8); !ok || o.Active || !o.Trickle {
		t.Errorf("object 8 = %+v", o)
	}

	if err := w.Step(ctx); err != nil {
		t.Fatal(err)
	}
	if c, _ := w.Collider(1); c.Active {
		t.Error("collider of an inactive Trickle object should be deactivated by Step")
	}
	snap, _ := w.Body(0)
	if len(snap.Contacts) != 1 || snap.Contacts[0].Owner != 7 {
		t.Errorf("Contacts = %+v, want a hit on object 7", snap.Contacts)
	}
}

func TestApply_ConflictsWithWorld(t *testing.T) {
	def, _ := Parse([]byte(floorLevel))
	w := newWorld(t)
	if err := def.Apply(context.Background(), w); err != nil {
		t.Fatal(err)
	}
	if err := def.Apply(context.Background(), w); err == nil {
		t.Error("applying the same objects twice should fail")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "floor.yaml")
		if err := os.WriteFile(path, []byte(floorLevel), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err != nil {
			t.Errorf("Load() failed: %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("statics: [{owner: 1, points: []}]"), 0o644)
		if _, err := Load(path); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Load() = %v, want ErrInvalidLevel", err)
		}
	})

	t.Run("bundled_arena", func(t *testing.T) {
		def, err := Load(filepath.Join("..", "..", "levels", "arena.yaml"))
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		w := newWorld(t)
		if err := def.Apply(context.Background(), w); err != nil {
			t.Fatalf("Apply() failed: %v", err)
		}
		for i := 0; i < 200; i++ {
			if err := w.Step(context.Background()); err != nil {
				t.Fatal(err)
			}
		}
		if _, _, bodies := w.Counts(); bodies != 3 {
			t.Errorf("bodies = %d, want 3", bodies)
		}
	})
}
