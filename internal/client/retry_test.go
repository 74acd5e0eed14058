package client

import (
	"testing"

	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/world"
)

func retryFixture() (*world.ActorInfo, *world.ActorInfo, *data.SkillTable) {
	bounds := world.Bounds{Min: world.Vec2{X: -100, Y: -100}, Max: world.Vec2{X: 100, Y: 100}}
	mk := func(p world.Vec2, isPlayer bool) *world.ActorInfo {
		return &world.ActorInfo{
			Name:            "x",
			HP:              100,
			MaxHP:           100,
			MP:              50,
			Mover:           world.NewSteeringMover(p, 5, bounds),
			CollisionRadius: 0.5,
			Skills:          []world.LearnedSkill{{SkillID: 1, Level: 1}},
			IsPlayer:        isPlayer,
		}
	}
	self := mk(world.Vec2{}, true)
	target := mk(world.Vec2{X: 30}, false)
	self.ID, target.ID = ecs.NewEntityID(1, 0), ecs.NewEntityID(2, 0)
	table := data.NewSkillTable(&data.SkillInfo{
		SkillID: 1, CastRange: 10, Target: data.TargetEnemy, Damage: 5,
	})
	return self, target, table
}

func TestSkillRetryApproachesThenCasts(t *testing.T) {
	self, target, table := retryFixture()
	actors := map[ecs.EntityID]*world.ActorInfo{target.ID: target}
	resolve := func(id ecs.EntityID) *world.ActorInfo { return actors[id] }

	r := NewSkillRetry(0.8)
	r.Begin(0, target.ID)

	// 距離 30，射程 10：先走近
	decision, point := r.Tick(self, resolve, table)
	if decision != RetryApproach {
		t.Fatalf("decision: got %v want RetryApproach", decision)
	}
	// 趨近點用打折射程：距目標中心 10*0.8 + 1.0 碰撞半徑
	wantDist := 10*0.8 + 1.0
	if d := point.Dist(target.Position()); d < wantDist-1e-9 || d > wantDist+1e-9 {
		t.Fatalf("approach distance: got %v want %v", d, wantDist)
	}

	// 走到趨近點
	self.Mover.Warp(point)

	decision, _ = r.Tick(self, resolve, table)
	if decision != RetryCast {
		t.Fatalf("decision after approach: got %v want RetryCast", decision)
	}
	if r.SkillIndex() != 0 {
		t.Fatalf("skill index must survive for the cast request")
	}
	if r.Active() {
		t.Fatalf("retry must end after cast decision")
	}
}

func TestSkillRetryAbandonsOnTargetLoss(t *testing.T) {
	self, target, table := retryFixture()
	r := NewSkillRetry(0.8)
	r.Begin(0, target.ID)

	// 目標消失（handle 解析 nil）
	resolve := func(ecs.EntityID) *world.ActorInfo { return nil }
	decision, _ := r.Tick(self, resolve, table)
	if decision != RetryAbandon {
		t.Fatalf("decision: got %v want RetryAbandon", decision)
	}
	if r.Active() {
		t.Fatalf("retry must end after abandon")
	}
}

func TestSkillRetryAbandonsOnDeadTarget(t *testing.T) {
	self, target, table := retryFixture()
	target.State = world.StateDead
	target.HP = 0
	resolve := func(ecs.EntityID) *world.ActorInfo { return target }

	r := NewSkillRetry(0.8)
	r.Begin(0, target.ID)
	if decision, _ := r.Tick(self, resolve, table); decision != RetryAbandon {
		t.Fatalf("dead target must abandon, got %v", decision)
	}
}

func TestSkillRetryIdleWithoutBegin(t *testing.T) {
	self, target, table := retryFixture()
	resolve := func(ecs.EntityID) *world.ActorInfo { return target }

	r := NewSkillRetry(0.8)
	if decision, _ := r.Tick(self, resolve, table); decision != RetryIdle {
		t.Fatalf("no retry in flight, got %v", decision)
	}
}
