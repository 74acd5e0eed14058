package system

import (
	"testing"
	"time"

	"github.com/riftgo/server/internal/config"
	"github.com/riftgo/server/internal/core/event"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

func testSkills() *data.SkillTable {
	return data.NewSkillTable(
		&data.SkillInfo{SkillID: 1, Name: "attack", CastRange: 2, Cooldown: time.Second,
			Target: data.TargetEnemy, FollowupAttack: true, Damage: 12},
		&data.SkillInfo{SkillID: 2, Name: "bolt", CastRange: 10, CastTime: 1500 * time.Millisecond,
			Cooldown: 3 * time.Second, ManaCost: 8, Target: data.TargetEnemy, CancelOnLoss: true, Damage: 30},
		&data.SkillInfo{SkillID: 3, Name: "heal", CastRange: 8, CastTime: time.Second,
			Cooldown: 2 * time.Second, ManaCost: 10, Target: data.TargetAlly, Heal: 25},
	)
}

func testDeps() (*handler.Deps, *ActorSystem) {
	bounds := world.Bounds{Min: world.Vec2{X: -100, Y: -100}, Max: world.Vec2{X: 100, Y: 100}}
	st := world.NewState(bounds, []world.Vec2{{X: 0, Y: 0}})
	deps := &handler.Deps{
		Config: config.Default(),
		Log:    zap.NewNop(),
		World:  st,
		Skills: testSkills(),
		Curve:  data.DefaultExpCurve(),
		Bus:    event.NewBus(),
	}
	return deps, NewActorSystem(deps)
}

func spawnAt(deps *handler.Deps, name string, pos world.Vec2, isPlayer bool) *world.ActorInfo {
	a := &world.ActorInfo{
		Name:            name,
		Level:           10,
		HP:              100,
		MaxHP:           100,
		MP:              50,
		MaxMP:           50,
		Mover:           world.NewSteeringMover(pos, 5.0, deps.World.Bounds),
		CollisionRadius: 0.5,
		Speed:           5.0,
		Skills: []world.LearnedSkill{
			{SkillID: 1, Level: 1},
			{SkillID: 2, Level: 1},
			{SkillID: 3, Level: 1},
		},
		IsPlayer: isPlayer,
	}
	deps.World.SpawnActor(a, false)
	return a
}

func TestSkillRequestStartsCast(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1 // bolt

	if got := sys.Advance(caster, now); got != world.StateCasting {
		t.Fatalf("state: got %v want Casting", got)
	}
	if caster.CurrentSkill != 1 {
		t.Fatalf("current skill: got %d want 1", caster.CurrentSkill)
	}
	if caster.MP != 50 {
		t.Fatalf("mana must not be consumed at cast start, got %d", caster.MP)
	}
}

func TestCastCompletionAppliesEffectAndMana(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)

	if got := sys.Advance(caster, now.Add(2*time.Second)); got != world.StateIdle {
		t.Fatalf("state after completion: got %v want Idle", got)
	}
	if caster.MP != 42 {
		t.Fatalf("mana after completion: got %d want 42", caster.MP)
	}
	if enemy.HP != 70 {
		t.Fatalf("enemy hp: got %d want 70", enemy.HP)
	}
	if caster.CurrentSkill != world.NoSkill {
		t.Fatalf("current skill must reset after cast, got %d", caster.CurrentSkill)
	}
	if enemy.LastAttacker != caster.ID {
		t.Fatalf("last attacker not recorded")
	}
}

func TestCancelWhileCastingClearsSessionAndQueuedTarget(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)
	other := spawnAt(deps, "other", world.Vec2{X: 7}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)

	caster.SetTargetDeferred(other.ID)
	if caster.NextTarget != other.ID {
		t.Fatalf("target change during cast must defer")
	}

	caster.ReqCancel = true
	if got := sys.Advance(caster, now.Add(100*time.Millisecond)); got != world.StateIdle {
		t.Fatalf("state after cancel: got %v want Idle", got)
	}
	if caster.CurrentSkill != world.NoSkill {
		t.Fatalf("current skill after cancel: got %d", caster.CurrentSkill)
	}
	if caster.NextTarget != 0 {
		t.Fatalf("queued target must be consumed on cancel, got %v", caster.NextTarget)
	}
	if caster.Target != other.ID {
		t.Fatalf("queued target must merge exactly once, got %v", caster.Target)
	}
	if caster.MP != 50 {
		t.Fatalf("cancelled cast must not consume mana, got %d", caster.MP)
	}
}

func TestQueuedTargetConsumedOncePerCastResolution(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)
	other := spawnAt(deps, "other", world.Vec2{X: 7}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)
	caster.SetTargetDeferred(other.ID)

	sys.Advance(caster, now.Add(2*time.Second))
	if caster.Target != other.ID || caster.NextTarget != 0 {
		t.Fatalf("queued target merge: target=%v next=%v", caster.Target, caster.NextTarget)
	}

	// 下一次施法解決不得再動 Target（+6s 已過冷卻）
	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now.Add(6*time.Second))
	sys.Advance(caster, now.Add(8*time.Second))
	if caster.Target != enemy.ID {
		t.Fatalf("target re-merged a second time: %v", caster.Target)
	}
}

func TestTargetLossInterruptsCast(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1 // bolt, cancel_on_target_loss
	sys.Advance(caster, now)

	deps.World.Despawn(enemy.ID)
	deps.World.Entities().FlushDestroyQueue()

	if got := sys.Advance(caster, now.Add(100*time.Millisecond)); got != world.StateIdle {
		t.Fatalf("state after target loss: got %v want Idle", got)
	}
	if caster.CurrentSkill != world.NoSkill {
		t.Fatalf("current skill after interruption: got %d", caster.CurrentSkill)
	}
	if caster.MP != 50 {
		t.Fatalf("interrupted cast must not consume mana")
	}
}

func TestStunInterruptsCastAndRecovers(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)

	caster.StunUntil = now.Add(2 * time.Second)
	if got := sys.Advance(caster, now.Add(time.Millisecond)); got != world.StateStunned {
		t.Fatalf("state: got %v want Stunned", got)
	}
	if caster.CurrentSkill != world.NoSkill {
		t.Fatalf("stun must discard cast session")
	}

	// 暈眩結束回 Idle，該 tick 不重跑 Idle 檢查
	if got := sys.Advance(caster, now.Add(3*time.Second)); got != world.StateIdle {
		t.Fatalf("state after stun expiry: got %v want Idle", got)
	}
}

func TestMovementRequestWhileDeadRejected(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	a := spawnAt(deps, "victim", world.Vec2{}, true)

	a.HP = 0
	sys.Advance(a, now)
	if a.State != world.StateDead {
		t.Fatalf("state: got %v want Dead", a.State)
	}

	dest := world.Vec2{X: 10}
	a.ReqDestination = &dest
	if got := sys.Advance(a, now.Add(time.Second)); got != world.StateDead {
		t.Fatalf("dead actor must stay dead, got %v", got)
	}
	if a.ReqDestination != nil || a.Mover.IsMoving() {
		t.Fatalf("movement request while dead must be dropped")
	}
}

func TestDeathSideEffectsExactlyOnce(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	a := spawnAt(deps, "victim", world.Vec2{}, true)

	died := 0
	event.Subscribe(deps.Bus, func(event.ActorDied) { died++ })

	a.HP = 0
	sys.Advance(a, now)
	sys.Advance(a, now.Add(time.Second)) // 已死，不得再觸發

	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()
	if died != 1 {
		t.Fatalf("death event count: got %d want 1", died)
	}
}

func TestRespawnWarpsAndRestoresHealth(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	a := spawnAt(deps, "victim", world.Vec2{X: 50, Y: 50}, true)

	a.HP = 0
	sys.Advance(a, now)

	a.ReqRespawn = true
	if got := sys.Advance(a, now.Add(time.Second)); got != world.StateIdle {
		t.Fatalf("state after respawn: got %v want Idle", got)
	}
	if a.HP != 50 {
		t.Fatalf("respawn hp: got %d want 50", a.HP)
	}
	if pos := a.Position(); pos != (world.Vec2{}) {
		t.Fatalf("respawn position: got %v want revival point", pos)
	}
	if a.Target != 0 || a.NextTarget != 0 {
		t.Fatalf("respawn must clear targets")
	}
}

func TestSkillOutOfRangeWhileMovingStaysMoving(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 50}, false)

	dest := world.Vec2{X: 20}
	caster.ReqDestination = &dest
	if got := sys.Advance(caster, now); got != world.StateMoving {
		t.Fatalf("state: got %v want Moving", got)
	}

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1 // 射程 10，距離 50
	if got := sys.Advance(caster, now.Add(100*time.Millisecond)); got != world.StateMoving {
		t.Fatalf("failed cast must not interrupt movement, got %v", got)
	}
	if caster.ReqSkillIndex != world.NoSkill {
		t.Fatalf("failed request must be consumed")
	}
	if !caster.Mover.IsMoving() {
		t.Fatalf("mover must keep its destination")
	}
}

func TestMoveRequestWhileCastingIsRejected(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)

	dest := world.Vec2{X: 30}
	caster.ReqDestination = &dest
	if got := sys.Advance(caster, now.Add(100*time.Millisecond)); got != world.StateCasting {
		t.Fatalf("cast must continue, got %v", got)
	}
	if caster.ReqDestination != nil || caster.Mover.IsMoving() {
		t.Fatalf("movement during cast must be rejected")
	}
}

func TestFollowupAttackQueuesBasicAttackRequest(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 1.5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 0 // 普攻瞬發，帶 followup
	sys.Advance(caster, now)
	sys.Advance(caster, now.Add(50*time.Millisecond))

	if caster.ReqSkillIndex != 0 {
		t.Fatalf("followup attack must queue slot 0, got %d", caster.ReqSkillIndex)
	}
}

func TestCurrentSkillInvariantAcrossTransitions(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)
	caster.Target = enemy.ID

	check := func(step string) {
		if caster.State != world.StateCasting && caster.CurrentSkill != world.NoSkill {
			t.Fatalf("%s: state=%v currentSkill=%d", step, caster.State, caster.CurrentSkill)
		}
	}

	check("initial")

	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)
	now = now.Add(2 * time.Second)
	sys.Advance(caster, now)
	check("after completion")

	caster.ReqSkillIndex = 1
	now = now.Add(4 * time.Second)
	sys.Advance(caster, now)
	caster.ReqCancel = true
	now = now.Add(10 * time.Millisecond)
	sys.Advance(caster, now)
	check("after cancel")

	caster.ReqSkillIndex = 1
	now = now.Add(4 * time.Second)
	sys.Advance(caster, now)
	caster.HP = 0
	now = now.Add(10 * time.Millisecond)
	sys.Advance(caster, now)
	check("after death")
}

func TestCraftingBlocksMovementAndFinishes(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	a := spawnAt(deps, "crafter", world.Vec2{}, true)

	a.ReqCraft = true
	if got := sys.Advance(a, now); got != world.StateCrafting {
		t.Fatalf("state: got %v want Crafting", got)
	}

	dest := world.Vec2{X: 10}
	a.ReqDestination = &dest
	if got := sys.Advance(a, now.Add(time.Second)); got != world.StateCrafting {
		t.Fatalf("crafting must continue, got %v", got)
	}
	if a.Mover.IsMoving() {
		t.Fatalf("movement during crafting must be rejected")
	}

	if got := sys.Advance(a, now.Add(defaultCraftTime+time.Second)); got != world.StateIdle {
		t.Fatalf("state after craft: got %v want Idle", got)
	}
}

func TestCooldownBlocksRecast(t *testing.T) {
	deps, sys := testDeps()
	now := time.Now()
	caster := spawnAt(deps, "caster", world.Vec2{}, true)
	enemy := spawnAt(deps, "enemy", world.Vec2{X: 5}, false)

	caster.Target = enemy.ID
	caster.ReqSkillIndex = 1
	sys.Advance(caster, now)
	now = now.Add(2 * time.Second)
	sys.Advance(caster, now) // 完成，冷卻 3s 起跑

	caster.ReqSkillIndex = 1
	if got := sys.Advance(caster, now.Add(time.Second)); got != world.StateIdle {
		t.Fatalf("recast during cooldown must fail, got %v", got)
	}
	caster.ReqSkillIndex = 1
	if got := sys.Advance(caster, now.Add(4*time.Second)); got != world.StateCasting {
		t.Fatalf("recast after cooldown must start, got %v", got)
	}
}
