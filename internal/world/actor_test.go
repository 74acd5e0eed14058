package world

import (
	"testing"
	"time"
)

func TestSetTargetDeferredWhileCasting(t *testing.T) {
	a := actorAt(Vec2{}, true)
	b := actorAt(Vec2{X: 1}, false)
	c := actorAt(Vec2{X: 2}, false)
	b.ID, c.ID = 11, 22

	a.SetTargetDeferred(b.ID)
	if a.Target != b.ID || a.NextTarget != 0 {
		t.Fatalf("idle target change must apply immediately")
	}

	a.State = StateCasting
	a.SetTargetDeferred(c.ID)
	if a.Target != b.ID {
		t.Fatalf("casting target change must not touch current target")
	}
	if a.NextTarget != c.ID {
		t.Fatalf("casting target change must queue")
	}
}

func TestFlushNextTargetIdempotent(t *testing.T) {
	a := actorAt(Vec2{}, true)
	a.Target = 11
	a.NextTarget = 22

	a.FlushNextTarget()
	if a.Target != 22 || a.NextTarget != 0 {
		t.Fatalf("flush: target=%v next=%v", a.Target, a.NextTarget)
	}

	a.Target = 33
	a.FlushNextTarget() // 第二次沖洗不得覆寫
	if a.Target != 33 {
		t.Fatalf("second flush must be a no-op, got %v", a.Target)
	}
}

func TestSkillAtBounds(t *testing.T) {
	a := actorAt(Vec2{}, true)
	a.Skills = []LearnedSkill{
		{SkillID: 1, Level: 1},
		{SkillID: 2, Level: 0}, // 未習得
	}

	if a.SkillAt(0) == nil {
		t.Fatalf("learned slot must resolve")
	}
	if a.SkillAt(1) != nil {
		t.Fatalf("unlearned slot must resolve nil")
	}
	if a.SkillAt(-1) != nil || a.SkillAt(2) != nil {
		t.Fatalf("out-of-range index must resolve nil")
	}
}

func TestSteeringMoverArrives(t *testing.T) {
	m := testMoverAt(Vec2{})
	m.SetDestination(Vec2{X: 1})

	for i := 0; i < 20 && m.IsMoving(); i++ {
		m.Advance(100 * time.Millisecond)
	}
	if m.IsMoving() {
		t.Fatalf("mover never arrived")
	}
	if got := m.Position(); got != (Vec2{X: 1}) {
		t.Fatalf("final position: got %v", got)
	}
}

func TestSteeringMoverClampsToBounds(t *testing.T) {
	m := testMoverAt(Vec2{})
	m.SetDestination(Vec2{X: 500})
	if m.NearestValidDestination(Vec2{X: 500}) != (Vec2{X: 100}) {
		t.Fatalf("destination must clamp to bounds")
	}

	m.SetVelocity(Vec2{X: 50})
	for i := 0; i < 100; i++ {
		m.Advance(100 * time.Millisecond)
	}
	if p := m.Position(); p.X > 100 {
		t.Fatalf("velocity must not escape bounds: %v", p)
	}
}

func TestWarpStopsMovement(t *testing.T) {
	m := testMoverAt(Vec2{})
	m.SetDestination(Vec2{X: 50})
	m.Warp(Vec2{X: -10, Y: 5})
	if m.IsMoving() {
		t.Fatalf("warp must stop movement")
	}
	if m.Position() != (Vec2{X: -10, Y: 5}) {
		t.Fatalf("warp position: %v", m.Position())
	}
}
