package system

import (
	"testing"

	"github.com/riftgo/server/internal/core/event"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/scripting"
	"github.com/riftgo/server/internal/world"
)

type fixedCalc struct{}

func (fixedCalc) CalcLevelUp(int) scripting.LevelUpResult {
	return scripting.LevelUpResult{HP: 10, MP: 5}
}

func (fixedCalc) CalcDeathExpPenalty(_ int, expMax int64) int64 {
	return expMax / 20
}

func TestBalanceExpReward(t *testing.T) {
	cases := []struct {
		reward           int64
		attacker, victim int16
		want             int64
	}{
		{100, 20, 20, 100}, // 同級不動
		{100, 10, 20, 200}, // 打高 10 級雙倍
		{100, 30, 20, 0},   // 打低 10 級歸零
		{100, 31, 20, 0},   // 差距夾取，不會變負
		{100, 5, 30, 200},  // 夾在 +10
		{100, 15, 20, 150},
		{100, 25, 20, 50},
	}
	for _, c := range cases {
		if got := BalanceExpReward(c.reward, c.attacker, c.victim); got != c.want {
			t.Errorf("BalanceExpReward(%d, %d, %d) = %d, want %d",
				c.reward, c.attacker, c.victim, got, c.want)
		}
	}
}

func TestPartyExperienceShare(t *testing.T) {
	// 5 經驗 2 人：向上取整 3，無加成，同級
	if got := CalculatePartyExperienceShare(5, 2, 0, 10, 10); got != 3 {
		t.Fatalf("share(5, 2, 0) = %d, want 3", got)
	}
	// 100 經驗 4 人 每人 +10%：25 * 1.3 = 32.5 → 33
	if got := CalculatePartyExperienceShare(100, 4, 0.1, 10, 10); got != 33 {
		t.Fatalf("share(100, 4, 0.1) = %d, want 33", got)
	}
	// 單人隊伍無加成
	if got := CalculatePartyExperienceShare(100, 1, 0.1, 10, 10); got != 100 {
		t.Fatalf("share(100, 1, 0.1) = %d, want 100", got)
	}
	if got := CalculatePartyExperienceShare(100, 0, 0.1, 10, 10); got != 0 {
		t.Fatalf("share with no members = %d, want 0", got)
	}
}

func testActor() *world.ActorInfo {
	bounds := world.Bounds{Min: world.Vec2{X: -10, Y: -10}, Max: world.Vec2{X: 10, Y: 10}}
	return &world.ActorInfo{
		Name:     "hero",
		Level:    1,
		HP:       100,
		MaxHP:    100,
		MP:       50,
		MaxMP:    50,
		Mover:    world.NewSteeringMover(world.Vec2{}, 5, bounds),
		IsPlayer: true,
	}
}

func TestAddExperienceDoubleLevelUp(t *testing.T) {
	bus := event.NewBus()
	ledger := NewLedger(data.DefaultExpCurve(), fixedCalc{}, bus, 60)

	var levels []int16
	event.Subscribe(bus, func(ev event.ActorLeveledUp) {
		levels = append(levels, ev.NewLevel)
	})

	a := testActor()
	// 等級 1 需 100、等級 2 需 400：600 直升兩級剩 100
	ledger.AddExperience(a, 600)

	bus.SwapBuffers()
	bus.DispatchAll()

	if a.Level != 3 {
		t.Fatalf("level: got %d want 3", a.Level)
	}
	if a.Exp != 100 {
		t.Fatalf("exp remainder: got %d want 100", a.Exp)
	}
	if len(levels) != 2 || levels[0] != 2 || levels[1] != 3 {
		t.Fatalf("level-up notifications: got %v want [2 3]", levels)
	}
	if a.MaxHP != 120 || a.MaxMP != 60 {
		t.Fatalf("growth: hp %d mp %d", a.MaxHP, a.MaxMP)
	}
	if a.HP != a.MaxHP || a.MP != a.MaxMP {
		t.Fatalf("level up must refill hp/mp")
	}
}

func TestAddExperienceNegativeClampsAtZero(t *testing.T) {
	ledger := NewLedger(data.DefaultExpCurve(), fixedCalc{}, nil, 60)
	a := testActor()
	a.Level = 5
	a.Exp = 30

	ledger.AddExperience(a, -100)
	if a.Exp != 0 {
		t.Fatalf("exp: got %d want 0", a.Exp)
	}
	if a.Level != 5 {
		t.Fatalf("level must never drop, got %d", a.Level)
	}
}

func TestAddExperienceLevelCap(t *testing.T) {
	ledger := NewLedger(data.DefaultExpCurve(), fixedCalc{}, nil, 3)
	a := testActor()

	ledger.AddExperience(a, 10_000_000)
	if a.Level != 3 {
		t.Fatalf("level cap: got %d want 3", a.Level)
	}
	if max := data.DefaultExpCurve().ExperienceMax(3); a.Exp != max {
		t.Fatalf("exp at cap: got %d want %d", a.Exp, max)
	}
}

func TestDeathPenalty(t *testing.T) {
	ledger := NewLedger(data.DefaultExpCurve(), fixedCalc{}, nil, 60)
	a := testActor()
	a.Level = 10
	a.Exp = 1000

	penalty := ledger.ApplyDeathPenalty(a)
	// 等級 10 上限 10000，5% = 500
	if penalty != 500 {
		t.Fatalf("penalty: got %d want 500", penalty)
	}
	if a.Exp != 500 {
		t.Fatalf("exp after penalty: got %d want 500", a.Exp)
	}
}
