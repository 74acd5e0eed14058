package client

import (
	"testing"
	"time"

	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/world"
)

func TestParseSnapshotRebuildsViews(t *testing.T) {
	bounds := world.Bounds{Min: world.Vec2{X: -100, Y: -100}, Max: world.Vec2{X: 100, Y: 100}}
	now := time.Now()

	a := &world.ActorInfo{
		ID:     ecs.NewEntityID(3, 1),
		Name:   "英雄",
		Level:  7,
		HP:     80,
		MaxHP:  100,
		MP:     30,
		MaxMP:  50,
		State:  world.StateCasting,
		Mover:  world.NewSteeringMover(world.Vec2{X: 4, Y: -2}, 5, bounds),
		Target: ecs.NewEntityID(9, 0),

		CastEnd:  now.Add(700 * time.Millisecond),
		IsPlayer: true,
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SNAPSHOT)
	w.WriteH(1)
	handler.WriteActorSnapshot(w, a, now)

	views := ParseSnapshot(w.Bytes())
	if len(views) != 1 {
		t.Fatalf("views: got %d want 1", len(views))
	}
	v := views[0]
	if v.ID != a.ID || v.Name != "英雄" || v.Level != 7 {
		t.Fatalf("identity fields: %+v", v)
	}
	if v.State != world.StateCasting {
		t.Fatalf("state: got %v", v.State)
	}
	if v.Pos != (world.Vec2{X: 4, Y: -2}) {
		t.Fatalf("position: %v", v.Pos)
	}
	if v.HP != 80 || v.MaxHP != 100 || v.MP != 30 || v.MaxMP != 50 {
		t.Fatalf("vitals: %+v", v)
	}
	if v.Target != a.Target {
		t.Fatalf("target handle: %v", v.Target)
	}
	if v.CastRemaining != 700*time.Millisecond {
		t.Fatalf("cast remaining: %v", v.CastRemaining)
	}
	if !v.IsPlayer {
		t.Fatalf("player flag lost")
	}
}
