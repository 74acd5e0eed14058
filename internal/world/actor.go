package world

import (
	"fmt"
	"time"

	"github.com/riftgo/server/internal/core/ecs"
)

// ActorState 是演員狀態機的封閉列舉。每個演員任一時刻恰好處於一個狀態。
type ActorState int32

const (
	StateIdle ActorState = iota
	StateMoving
	StateCasting
	StateStunned
	StateDead
	StateCrafting
)

func (s ActorState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateMoving:
		return "Moving"
	case StateCasting:
		return "Casting"
	case StateStunned:
		return "Stunned"
	case StateDead:
		return "Dead"
	case StateCrafting:
		return "Crafting"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// LearnedSkill 是演員技能列表中的一格。Level 0 = 未習得。
type LearnedSkill struct {
	SkillID int32
	Level   int16
	ReadyAt time.Time // 冷卻結束時間
}

// NoSkill marks "no skill requested / being cast" in CurrentSkill.
const NoSkill = -1

// ActorInfo holds in-memory data for one in-world actor (player or hostile
// creature). Mutated only from the game loop goroutine — no locks needed.
// The server instance is authoritative; client replicas are read-only
// projections rebuilt from snapshots.
type ActorInfo struct {
	ID   ecs.EntityID
	Name string

	Level int16
	Exp   int64 // 當前等級內的經驗值，夾在 [0, experienceMax(level)]

	HP    int32
	MaxHP int32
	MP    int32
	MaxMP int32

	State ActorState

	// Mover 是外部移動控制器能力（尋路/轉向原語）。
	Mover           Mover
	CollisionRadius float64
	Speed           float64

	WeaponCategory string // 目前裝備的武器類別（"" = 空手）

	// Skills 是已習得技能列表。CurrentSkill 是其索引：
	// 僅在請求中/施法中有效（>= 0），離開 Casting 時必須重設為 NoSkill。
	Skills       []LearnedSkill
	CurrentSkill int

	// CastEnd 是施法結束時間。僅在 State == StateCasting 時有意義；
	// 離開 Casting 時整個施法會話被丟棄，不做持久化。
	CastEnd time.Time

	// Target 是目前的戰鬥/互動焦點。NextTarget 是施法期間排隊的替換目標，
	// 在施法解決（完成/取消/死亡/目標消失）後恰好併入一次。
	// 兩者都是世代化 handle：目標消失時解析為 nil，不會懸空。
	Target     ecs.EntityID
	NextTarget ecs.EntityID

	StunUntil time.Time
	CraftEnd  time.Time

	// --- 請求信箱 ---
	// Handler 在 Input 階段寫入，狀態機在同一 tick 的 Update 階段消化。
	// 全部為不可信的客戶端輸入，套用前必須重新驗證。
	ReqSkillIndex  int   // NoSkill = 無請求
	ReqCancel      bool
	ReqRespawn     bool
	ReqCraft       bool
	ReqDestination *Vec2
	ReqVelocity    *Vec2

	// Facing 是單位朝向向量，施法期間每 tick 朝目標更新，供快照複寫。
	Facing Vec2

	// LastAttacker 記錄最後一次對本演員造成傷害的來源（經驗歸屬用）。
	LastAttacker ecs.EntityID

	// RespawnAt 僅對怪物有意義：死亡後到達此時間由 AI 自動重生。
	RespawnAt time.Time

	// ExpReward 是擊殺本演員的基礎經驗獎勵（玩家為 0）。
	ExpReward int64

	IsPlayer bool
	Dirty    bool // needs persistence
}

// Position returns the authoritative position from the movement controller.
func (a *ActorInfo) Position() Vec2 {
	return a.Mover.Position()
}

// Alive 回報演員是否存活（狀態機視角，不只是 HP）。
func (a *ActorInfo) Alive() bool {
	return a.State != StateDead && a.HP > 0
}

// HealthPct returns health as a fraction for display replication.
func (a *ActorInfo) HealthPct() float64 {
	if a.MaxHP <= 0 {
		return 0
	}
	return float64(a.HP) / float64(a.MaxHP)
}

// ManaPct returns mana as a fraction for display replication.
func (a *ActorInfo) ManaPct() float64 {
	if a.MaxMP <= 0 {
		return 0
	}
	return float64(a.MP) / float64(a.MaxMP)
}

// CastRemaining returns time left on the current cast, zero when not casting.
func (a *ActorInfo) CastRemaining(now time.Time) time.Duration {
	if a.State != StateCasting {
		return 0
	}
	d := a.CastEnd.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// SkillAt returns the learned-skill slot at index, or nil when the index is
// out of range or the skill is not learned. Bad indices are invalid requests,
// never panics.
func (a *ActorInfo) SkillAt(index int) *LearnedSkill {
	if index < 0 || index >= len(a.Skills) {
		return nil
	}
	ls := &a.Skills[index]
	if ls.Level <= 0 {
		return nil
	}
	return ls
}

// ==================== 目標仲裁 ====================

// SetTargetDeferred 套用「目標鎖定」規則：施法中選擇的新目標會被延遲到
// NextTarget，其他狀態立即生效。
func (a *ActorInfo) SetTargetDeferred(t ecs.EntityID) {
	if a.State == StateCasting {
		a.NextTarget = t
		return
	}
	a.Target = t
}

// FlushNextTarget 在施法解決後將排隊目標恰好併入一次。
// 重複呼叫是冪等的：NextTarget 用後即清為零。
func (a *ActorInfo) FlushNextTarget() {
	if a.NextTarget.IsZero() {
		return
	}
	a.Target = a.NextTarget
	a.NextTarget = 0
}

// ClearRequests drops the whole request mailbox. Used on despawn.
func (a *ActorInfo) ClearRequests() {
	a.ReqSkillIndex = NoSkill
	a.ReqCancel = false
	a.ReqRespawn = false
	a.ReqCraft = false
	a.ReqDestination = nil
	a.ReqVelocity = nil
}
