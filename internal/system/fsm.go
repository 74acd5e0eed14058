package system

import (
	"time"

	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// 製作沒有配方表時的預設完成時間。
const defaultCraftTime = 3 * time.Second

// ActorSystem 是權威狀態機（Phase 2）。每個 tick 對每個演員執行一次
// Advance：依固定優先序評估邊緣事件，第一個與當前狀態相關的事件決定
// 轉移；無關事件明確視為 no-op，未處理的組合不會默默破壞狀態。
// 所有「等待」（施法、暈眩、重生）都是時間比較,不存在阻塞。
type ActorSystem struct {
	deps *handler.Deps
}

func NewActorSystem(deps *handler.Deps) *ActorSystem {
	return &ActorSystem{deps: deps}
}

func (s *ActorSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ActorSystem) Update(_ time.Duration) {
	now := time.Now()
	s.deps.World.AllActors(func(a *world.ActorInfo) {
		s.Advance(a, now)
	})
}

// Advance 執行單一演員的一步狀態機並回傳新狀態。
// 伺服器專用；每個演員的轉移彼此串行（單一遊戲迴圈 goroutine）。
func (s *ActorSystem) Advance(a *world.ActorInfo, now time.Time) world.ActorState {
	switch a.State {
	case world.StateIdle:
		a.State = s.advanceIdle(a, now)
	case world.StateMoving:
		a.State = s.advanceMoving(a, now)
	case world.StateCasting:
		a.State = s.advanceCasting(a, now)
	case world.StateStunned:
		a.State = s.advanceStunned(a, now)
	case world.StateDead:
		a.State = s.advanceDead(a, now)
	case world.StateCrafting:
		a.State = s.advanceCrafting(a, now)
	default:
		s.deps.Log.Warn("未知演員狀態", zap.String("actor", a.Name), zap.Int32("state", int32(a.State)))
		a.State = world.StateIdle
	}
	return a.State
}

// ==================== 事件判定 ====================
// 邊緣事件：以當前世界事實推導，而非持續電平。

func eventDied(a *world.ActorInfo) bool {
	return a.HP <= 0
}

func eventStunned(a *world.ActorInfo, now time.Time) bool {
	return now.Before(a.StunUntil)
}

func eventMoveEnd(a *world.ActorInfo) bool {
	return !a.Mover.IsMoving()
}

func eventSkillRequest(a *world.ActorInfo) bool {
	return a.ReqSkillIndex != world.NoSkill
}

func eventSkillFinished(a *world.ActorInfo, now time.Time) bool {
	return !now.Before(a.CastEnd)
}

func eventCraftFinished(a *world.ActorInfo, now time.Time) bool {
	return !now.Before(a.CraftEnd)
}

// eventTargetGone 回報施法目標是否已消失或死亡（世代失效 = 消失）。
func (s *ActorSystem) eventTargetGone(a *world.ActorInfo, sk *data.SkillInfo) bool {
	target := s.deps.World.Get(a.Target)
	if target == nil {
		return true
	}
	if sk.RequiresDead {
		return target.State != world.StateDead
	}
	return !target.Alive()
}

// ==================== Idle ====================

func (s *ActorSystem) advanceIdle(a *world.ActorInfo, now time.Time) world.ActorState {
	if eventDied(a) {
		return s.applyDeath(a)
	}
	if eventStunned(a, now) {
		a.Mover.Stop()
		a.CurrentSkill = world.NoSkill
		return world.StateStunned
	}
	if a.ReqCancel {
		a.ReqCancel = false
		a.Target = 0 // 取消只清除目標
		a.CurrentSkill = world.NoSkill
		a.ReqSkillIndex = world.NoSkill
		return world.StateIdle
	}
	if s.applyMoveRequest(a) || a.Mover.IsMoving() {
		a.CurrentSkill = world.NoSkill
		return world.StateMoving
	}
	if eventSkillRequest(a) {
		if s.tryStartCast(a, now) {
			return world.StateCasting
		}
		return world.StateIdle
	}
	if a.ReqCraft {
		a.ReqCraft = false
		a.Mover.Stop()
		a.CraftEnd = now.Add(defaultCraftTime)
		return world.StateCrafting
	}
	a.ReqRespawn = false // 活著時的重生請求是無效輸入
	return world.StateIdle
}

// ==================== Moving ====================

func (s *ActorSystem) advanceMoving(a *world.ActorInfo, now time.Time) world.ActorState {
	if eventDied(a) {
		return s.applyDeath(a)
	}
	if eventStunned(a, now) {
		a.Mover.Stop()
		a.CurrentSkill = world.NoSkill
		return world.StateStunned
	}
	if a.ReqCancel {
		a.ReqCancel = false
		a.Mover.Stop()
		a.CurrentSkill = world.NoSkill
		a.ReqSkillIndex = world.NoSkill
		return world.StateIdle
	}
	s.applyMoveRequest(a) // 移動中改目的地不離開 Moving
	if eventSkillRequest(a) {
		if s.tryStartCast(a, now) {
			return world.StateCasting
		}
		// 驗證失敗不打斷移動
		return world.StateMoving
	}
	if eventMoveEnd(a) {
		return world.StateIdle
	}
	return world.StateMoving
}

// ==================== Casting ====================

func (s *ActorSystem) advanceCasting(a *world.ActorInfo, now time.Time) world.ActorState {
	ls := a.SkillAt(a.CurrentSkill)
	if ls == nil {
		// 技能列表在施法中被改動 — 視為過期請求，中止
		s.finishCast(a)
		return world.StateIdle
	}
	sk := s.deps.Skills.Get(ls.SkillID)
	if sk == nil {
		s.finishCast(a)
		return world.StateIdle
	}

	if eventDied(a) {
		// 離開前仍要沖洗排隊目標
		return s.applyDeath(a)
	}
	if eventStunned(a, now) {
		s.finishCast(a)
		return world.StateStunned
	}
	// 施法一旦開始即不可移動：移動請求被拒絕並強制停下
	if a.ReqDestination != nil || a.ReqVelocity != nil {
		a.ReqDestination = nil
		a.ReqVelocity = nil
		a.Mover.Stop()
	}
	if a.ReqCancel {
		a.ReqCancel = false
		s.finishCast(a)
		return world.StateIdle
	}
	if s.eventTargetGone(a, sk) && sk.Target != data.TargetSelf {
		if sk.CancelOnLoss {
			s.finishCast(a)
			return world.StateIdle
		}
		// 目標消失但技能允許繼續：施法持續到結束
	} else if target := s.deps.World.Get(a.Target); target != nil {
		// 施法期間持續面向目標
		s.faceTarget(a, target)
	}
	if eventSkillFinished(a, now) {
		s.completeCast(a, ls, sk, now)
		return world.StateIdle
	}
	return world.StateCasting
}

// ==================== Stunned ====================

// 暈眩結束回到 Idle 時不在同一 tick 重跑 Idle 的事件檢查；
// Idle 事件於下一 tick 評估。
func (s *ActorSystem) advanceStunned(a *world.ActorInfo, now time.Time) world.ActorState {
	if eventDied(a) {
		return s.applyDeath(a)
	}
	if eventStunned(a, now) {
		return world.StateStunned
	}
	return world.StateIdle
}

// ==================== Dead ====================

func (s *ActorSystem) advanceDead(a *world.ActorInfo, now time.Time) world.ActorState {
	// 死亡中的移動嘗試是上游邏輯不變量被破壞的徵兆 — 拒絕並記錄，絕不默默接受
	if a.ReqDestination != nil || a.ReqVelocity != nil || a.Mover.IsMoving() {
		a.ReqDestination = nil
		a.ReqVelocity = nil
		a.Mover.Stop()
		s.deps.Log.Warn("死亡狀態下的移動嘗試被拒絕", zap.String("actor", a.Name))
	}
	a.ReqSkillIndex = world.NoSkill
	a.ReqCancel = false
	if a.ReqRespawn {
		a.ReqRespawn = false
		s.applyRespawn(a)
		return world.StateIdle
	}
	return world.StateDead
}

// ==================== Crafting ====================

func (s *ActorSystem) advanceCrafting(a *world.ActorInfo, now time.Time) world.ActorState {
	if eventDied(a) {
		return s.applyDeath(a)
	}
	if eventStunned(a, now) {
		a.CraftEnd = time.Time{}
		return world.StateStunned
	}
	if a.ReqCancel {
		a.ReqCancel = false
		a.CraftEnd = time.Time{}
		return world.StateIdle
	}
	// 製作中拒絕移動
	if a.ReqDestination != nil || a.ReqVelocity != nil {
		a.ReqDestination = nil
		a.ReqVelocity = nil
		a.Mover.Stop()
	}
	if eventCraftFinished(a, now) {
		return world.StateIdle
	}
	return world.StateCrafting
}

// ==================== 轉移側效 ====================

// applyMoveRequest 套用信箱中的移動請求並回報是否真的開始移動。
func (s *ActorSystem) applyMoveRequest(a *world.ActorInfo) bool {
	moved := false
	if a.ReqDestination != nil {
		a.Mover.SetDestination(*a.ReqDestination)
		a.ReqDestination = nil
		moved = a.Mover.IsMoving()
	}
	if a.ReqVelocity != nil {
		a.Mover.SetVelocity(*a.ReqVelocity)
		a.ReqVelocity = nil
		moved = moved || a.Mover.IsMoving()
	}
	return moved
}

// tryStartCast 消化技能請求：三項判定全部通過才鎖定移動並進入施法。
// 任何失敗都優雅退化 — 請求被丟棄、CurrentSkill 重設，永不成為致命錯誤。
func (s *ActorSystem) tryStartCast(a *world.ActorInfo, now time.Time) bool {
	idx := a.ReqSkillIndex
	a.ReqSkillIndex = world.NoSkill

	ls := a.SkillAt(idx)
	if ls == nil {
		s.deps.Log.Debug("技能請求索引無效", zap.String("actor", a.Name), zap.Int("index", idx))
		a.CurrentSkill = world.NoSkill
		return false
	}
	sk := s.deps.Skills.Get(ls.SkillID)
	if sk == nil {
		a.CurrentSkill = world.NoSkill
		return false
	}

	var target *world.ActorInfo
	if sk.Target == data.TargetSelf {
		target = a
	} else {
		target = s.deps.World.Get(a.Target)
	}

	if !world.CheckCastSelf(a, ls, sk, now) {
		a.CurrentSkill = world.NoSkill
		return false
	}
	if !world.CheckCastTarget(a, target, sk) {
		a.CurrentSkill = world.NoSkill
		return false
	}
	if ok, _ := world.CheckCastDistance(a, target, sk); !ok {
		// 距離不足不是錯誤：客戶端會先走進範圍再重試
		a.CurrentSkill = world.NoSkill
		return false
	}

	a.Mover.Stop()
	a.CurrentSkill = idx
	a.CastEnd = now.Add(sk.CastTime)
	if target != nil && target != a {
		s.faceTarget(a, target)
	}
	return true
}

// completeCast 結算施法：重新驗證、套用效果到（可能已變更的）目標、
// 扣資源、設冷卻，然後經 finishCast 離開施法狀態。
func (s *ActorSystem) completeCast(a *world.ActorInfo, ls *world.LearnedSkill, sk *data.SkillInfo, now time.Time) {
	var target *world.ActorInfo
	if sk.Target == data.TargetSelf {
		target = a
	} else {
		target = s.deps.World.Get(a.Target)
	}

	// 結束時重新驗證：開始施法後世界可能已變
	if world.CheckCastTarget(a, target, sk) && a.MP >= int32(sk.ManaCost) {
		a.MP -= int32(sk.ManaCost)
		ls.ReadyAt = now.Add(sk.Cooldown)
		s.applySkillEffect(a, target, sk, now)
		if s.deps.Bus != nil {
			event.Emit(s.deps.Bus, event.CastCompleted{
				Caster:  a.ID,
				Target:  a.Target,
				SkillID: sk.SkillID,
			})
		}
		// 接續攻擊：技能定義要求時自動排入預設攻擊
		if sk.FollowupAttack && target != nil && target != a && target.Alive() {
			if a.SkillAt(0) != nil {
				a.ReqSkillIndex = 0
			}
		}
	}
	a.Dirty = true
	s.finishCast(a)
}

// applySkillEffect 套用傷害/治療/暈眩。
func (s *ActorSystem) applySkillEffect(a *world.ActorInfo, target *world.ActorInfo, sk *data.SkillInfo, now time.Time) {
	if target == nil {
		return
	}
	if sk.Damage > 0 && target != a {
		target.HP -= sk.Damage
		if target.HP < 0 {
			target.HP = 0
		}
		target.LastAttacker = a.ID
		target.Dirty = true
	}
	if sk.Heal > 0 {
		target.HP += sk.Heal
		if target.HP > target.MaxHP {
			target.HP = target.MaxHP
		}
		target.Dirty = true
	}
	if sk.Stuns && target != a {
		target.StunUntil = now.Add(s.deps.Config.Combat.StunDuration)
	}
}

// finishCast 是離開 Casting 的唯一出口：丟棄施法會話、清除技能索引、
// 將排隊目標恰好併入一次。完成、取消、暈眩、死亡、目標消失共用此路徑,
// 保證 NextTarget 不會被消費兩次。
func (s *ActorSystem) finishCast(a *world.ActorInfo) {
	a.CurrentSkill = world.NoSkill
	a.CastEnd = time.Time{}
	a.FlushNextTarget()
}

// applyDeath 套用死亡側效恰好一次並回傳 Dead 狀態。
func (s *ActorSystem) applyDeath(a *world.ActorInfo) world.ActorState {
	a.HP = 0
	a.Mover.Stop()
	if a.State == world.StateCasting {
		s.finishCast(a)
	} else {
		a.CurrentSkill = world.NoSkill
		a.FlushNextTarget()
	}
	a.ReqSkillIndex = world.NoSkill
	a.ReqDestination = nil
	a.ReqVelocity = nil
	a.ReqCraft = false
	a.Dirty = true

	if s.deps.Bus != nil {
		event.Emit(s.deps.Bus, event.ActorDied{
			Actor:    a.ID,
			Killer:   a.LastAttacker,
			Level:    a.Level,
			IsPlayer: a.IsPlayer,
		})
	}
	s.deps.Log.Info("演員死亡",
		zap.String("actor", a.Name),
		zap.Float64("x", a.Position().X),
		zap.Float64("y", a.Position().Y),
	)
	return world.StateDead
}

// applyRespawn 將死亡演員傳送到最近復活點並恢復部分生命。
func (s *ActorSystem) applyRespawn(a *world.ActorInfo) {
	point := s.deps.World.NearestRevivalPoint(a.Position())
	a.Mover.Warp(point)

	hp := int32(float64(a.MaxHP) * s.deps.Config.Progression.RespawnHealthPct)
	if hp < 1 {
		hp = 1
	}
	a.HP = hp
	a.LastAttacker = 0
	a.Target = 0
	a.NextTarget = 0
	a.Dirty = true

	if s.deps.Bus != nil {
		event.Emit(s.deps.Bus, event.ActorRespawned{Actor: a.ID, X: point.X, Y: point.Y})
	}
	s.deps.Log.Info("演員重生",
		zap.String("actor", a.Name),
		zap.Float64("x", point.X),
		zap.Float64("y", point.Y),
	)
}

// faceTarget 更新朝向向量（僅影響快照複寫，對模擬無影響）。
func (s *ActorSystem) faceTarget(a *world.ActorInfo, target *world.ActorInfo) {
	dir := target.Position().Sub(a.Position())
	if dir.IsZero() {
		return
	}
	a.Facing = dir.Normalized()
}
