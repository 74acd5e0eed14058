package client

import (
	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/world"
)

// RetryDecision 是距離重試每 tick 的裁決。
type RetryDecision int

const (
	RetryIdle     RetryDecision = iota // 沒有進行中的重試
	RetryApproach                      // 還不夠近，往趨近點移動
	RetryCast                          // 已進入範圍，送出施法請求
	RetryAbandon                       // 目標失效，放棄
)

// SkillRetry 實作「走近再施放」：技能因距離失敗時記住意圖，每 tick
// 重新檢查目標與距離。趨近點用打折後的施法距離計算，抵達時留有餘裕，
// 不會在範圍邊界上抖動。
type SkillRetry struct {
	skillIndex    int
	target        ecs.EntityID
	approachRatio float64
	active        bool
}

// NewSkillRetry 建立重試器。ratio 是施法距離的折扣（0.8 = 走到八成距離）。
func NewSkillRetry(approachRatio float64) *SkillRetry {
	return &SkillRetry{skillIndex: world.NoSkill, approachRatio: approachRatio}
}

// Begin 記住一次因距離失敗的施法意圖。
func (r *SkillRetry) Begin(skillIndex int, target ecs.EntityID) {
	r.skillIndex = skillIndex
	r.target = target
	r.active = true
}

// Active 回報是否有進行中的重試。
func (r *SkillRetry) Active() bool { return r.active }

// SkillIndex 回傳重試中的技能索引。
func (r *SkillRetry) SkillIndex() int { return r.skillIndex }

// Cancel 放棄重試。玩家下達新指令時呼叫。
func (r *SkillRetry) Cancel() {
	r.skillIndex = world.NoSkill
	r.target = 0
	r.active = false
}

// Tick 重新評估重試。resolve 將 handle 解析為演員（消失時回傳 nil）。
// 回傳裁決與（RetryApproach 時的）移動點。RetryCast 與 RetryAbandon
// 都會結束重試。
func (r *SkillRetry) Tick(self *world.ActorInfo, resolve func(ecs.EntityID) *world.ActorInfo, table *data.SkillTable) (RetryDecision, world.Vec2) {
	if !r.active {
		return RetryIdle, world.Vec2{}
	}

	target := resolve(r.target)
	if target == nil {
		r.Cancel()
		return RetryAbandon, world.Vec2{}
	}
	ls := self.SkillAt(r.skillIndex)
	if ls == nil {
		r.Cancel()
		return RetryAbandon, world.Vec2{}
	}
	sk := table.Get(ls.SkillID)
	if sk == nil {
		r.Cancel()
		return RetryAbandon, world.Vec2{}
	}
	if !sk.RequiresDead && !target.Alive() {
		r.Cancel()
		return RetryAbandon, world.Vec2{}
	}

	if ok, _ := world.CheckCastDistance(self, target, sk); ok {
		// SkillIndex 保留到下一次 Begin，呼叫端拿它組施法請求
		r.target = 0
		r.active = false
		return RetryCast, world.Vec2{}
	}

	return RetryApproach, world.ApproachPoint(self, target, sk.CastRange*r.approachRatio)
}
