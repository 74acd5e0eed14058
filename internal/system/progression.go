package system

import (
	"math"
	"time"

	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/scripting"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// 等級差平衡的夾取範圍：相差十級以上獎勵歸零或翻倍到上限。
const levelDiffClamp = 10

// Ledger 是經驗總帳：所有經驗變動都經過它，夾取與升等迴圈只存在
// 這一份。純計算函式（Balance/PartyShare）無副作用，可直接單測。
type Ledger struct {
	curve     *data.ExpCurve
	scripting LevelUpCalc
	bus       *event.Bus
	maxLevel  int16
}

// LevelUpCalc 是升等成長量的外部計算介面（Lua 腳本實作）。
type LevelUpCalc interface {
	CalcLevelUp(level int) scripting.LevelUpResult
	CalcDeathExpPenalty(level int, expMax int64) int64
}

func NewLedger(curve *data.ExpCurve, calc LevelUpCalc, bus *event.Bus, maxLevel int16) *Ledger {
	if maxLevel <= 0 || maxLevel > curve.MaxLevel() {
		maxLevel = curve.MaxLevel()
	}
	return &Ledger{curve: curve, scripting: calc, bus: bus, maxLevel: maxLevel}
}

// BalanceExpReward 依攻擊者與受害者的等級差調整基礎獎勵：每級差 ±10%，
// 差距夾在 ±10 級。打高 10 級以上拿雙倍，打低 10 級以上拿零。
func BalanceExpReward(reward int64, attackerLevel, victimLevel int16) int64 {
	diff := int(victimLevel) - int(attackerLevel)
	if diff > levelDiffClamp {
		diff = levelDiffClamp
	}
	if diff < -levelDiffClamp {
		diff = -levelDiffClamp
	}
	mult := 1.0 + 0.1*float64(diff)
	return int64(math.Round(float64(reward) * mult))
}

// CalculatePartyExperienceShare 計算隊伍中一名成員的經驗份額：
// 總獎勵向上取整均分，乘上隊伍加成（每多一人 +bonusPerMember），
// 再做等級差平衡。
func CalculatePartyExperienceShare(total int64, members int, bonusPerMember float64, memberLevel, victimLevel int16) int64 {
	if members <= 0 {
		return 0
	}
	base := ceilDiv(total, int64(members))
	withBonus := int64(math.Round(float64(base) * (1.0 + float64(members-1)*bonusPerMember)))
	return BalanceExpReward(withBonus, memberLevel, victimLevel)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// AddExperience 套用一筆經驗變動。負值從當前等級經驗扣除並夾在 0；
// 正值可能觸發連續升等，每升一級各發一次 ActorLeveledUp。
// 等級本身永不下降。
func (l *Ledger) AddExperience(a *world.ActorInfo, delta int64) {
	if delta <= 0 {
		a.Exp += delta
		if a.Exp < 0 {
			a.Exp = 0
		}
		a.Dirty = true
		return
	}

	a.Exp += delta
	for a.Level < l.maxLevel && a.Exp >= l.curve.ExperienceMax(a.Level) {
		a.Exp -= l.curve.ExperienceMax(a.Level)
		a.Level++
		gain := l.scripting.CalcLevelUp(int(a.Level))
		a.MaxHP += int32(gain.HP)
		a.MaxMP += int32(gain.MP)
		a.HP = a.MaxHP
		a.MP = a.MaxMP
		if l.bus != nil {
			event.Emit(l.bus, event.ActorLeveledUp{Actor: a.ID, NewLevel: a.Level})
		}
	}
	// 滿級後溢出的經驗夾在本級上限
	if max := l.curve.ExperienceMax(a.Level); a.Exp > max {
		a.Exp = max
	}
	a.Dirty = true
}

// ApplyDeathPenalty 扣除死亡經驗懲罰（由 Lua 決定數額）。
func (l *Ledger) ApplyDeathPenalty(a *world.ActorInfo) int64 {
	penalty := l.scripting.CalcDeathExpPenalty(int(a.Level), l.curve.ExperienceMax(a.Level))
	if penalty <= 0 {
		return 0
	}
	l.AddExperience(a, -penalty)
	return penalty
}

// ProgressionSystem 訂閱死亡事件完成經驗結算：擊殺者得獎勵（隊伍分配
// 之後接手）、死亡玩家吃懲罰。它不在 Update 裡做事，純事件驅動。
type ProgressionSystem struct {
	deps   *handler.Deps
	ledger *Ledger
}

func NewProgressionSystem(deps *handler.Deps, ledger *Ledger) *ProgressionSystem {
	s := &ProgressionSystem{deps: deps, ledger: ledger}
	event.Subscribe(deps.Bus, s.onActorDied)
	event.Subscribe(deps.Bus, s.onLeveledUp)
	return s
}

func (s *ProgressionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ProgressionSystem) Update(_ time.Duration) {}

// Ledger exposes the ledger for other systems and tests.
func (s *ProgressionSystem) Ledger() *Ledger { return s.ledger }

func (s *ProgressionSystem) onActorDied(ev event.ActorDied) {
	victim := s.deps.World.Get(ev.Actor)

	// 擊殺獎勵
	if killer := s.deps.World.Get(ev.Killer); killer != nil && killer.IsPlayer && victim != nil && victim.ExpReward > 0 {
		base := int64(math.Round(float64(victim.ExpReward) * s.deps.Config.Rates.ExpRate))
		award := BalanceExpReward(base, killer.Level, victim.Level)
		if award > 0 {
			s.ledger.AddExperience(killer, award)
			if link := s.deps.World.Link(killer.ID); link != nil {
				handler.SendExpUpdate(link.Session, killer.Exp, s.ledger.curve.ExperienceMax(killer.Level))
			}
			s.deps.Log.Info("擊殺經驗結算",
				zap.String("killer", killer.Name),
				zap.String("victim", victim.Name),
				zap.Int64("exp", award),
			)
		}
	}

	// 玩家死亡懲罰
	if victim != nil && victim.IsPlayer && s.deps.Config.Rates.DeathPenaltyOn {
		if penalty := s.ledger.ApplyDeathPenalty(victim); penalty > 0 {
			if link := s.deps.World.Link(victim.ID); link != nil {
				handler.SendExpUpdate(link.Session, victim.Exp, s.ledger.curve.ExperienceMax(victim.Level))
			}
			s.deps.Log.Info("死亡經驗懲罰",
				zap.String("char", victim.Name),
				zap.Int64("penalty", penalty),
			)
		}
	}
}

func (s *ProgressionSystem) onLeveledUp(ev event.ActorLeveledUp) {
	a := s.deps.World.Get(ev.Actor)
	if a == nil {
		return
	}
	s.deps.Log.Info("演員升級", zap.String("actor", a.Name), zap.Int16("level", ev.NewLevel))
	if link := s.deps.World.Link(a.ID); link != nil {
		handler.SendLevelUp(link.Session, uint64(a.ID), ev.NewLevel)
	}
}
