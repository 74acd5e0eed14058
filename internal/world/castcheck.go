package world

import (
	"time"

	"github.com/riftgo/server/internal/data"
)

// 施法前的三個獨立判定：自身、目標、距離。三者同時通過才能開始施法。
// 伺服器在開始與結束施法時都會重新驗證；客戶端用同一組判定做預檢，
// 但結果僅供提示，伺服器永遠是唯一權威。

// CheckCastSelf 驗證施法者自身：存活、法力足夠、武器類別符合、冷卻已過。
func CheckCastSelf(a *ActorInfo, ls *LearnedSkill, sk *data.SkillInfo, now time.Time) bool {
	if !a.Alive() {
		return false
	}
	if a.MP < int32(sk.ManaCost) {
		return false
	}
	if sk.WeaponCategory != "" && sk.WeaponCategory != a.WeaponCategory {
		return false
	}
	if now.Before(ls.ReadyAt) {
		return false
	}
	return true
}

// CheckCastTarget 驗證目標類型與生死需求。技能永遠不能以自己為敵對目標。
func CheckCastTarget(a *ActorInfo, target *ActorInfo, sk *data.SkillInfo) bool {
	switch sk.Target {
	case data.TargetSelf:
		return target == a || target == nil
	case data.TargetAlly, data.TargetEnemy, data.TargetAny:
		if target == nil || target == a {
			return false
		}
		if sk.Target == data.TargetAlly && target.IsPlayer != a.IsPlayer {
			return false
		}
		if sk.Target == data.TargetEnemy && target.IsPlayer == a.IsPlayer {
			return false
		}
	default:
		return false
	}
	if sk.RequiresDead {
		return target.State == StateDead
	}
	return target.Alive()
}

// CheckCastDistance 驗證歐氏距離（碰撞體最近點）是否在施法範圍內。
// 距離不足不是錯誤：回傳目前最佳接近點，呼叫端可先走過去再重試。
func CheckCastDistance(a *ActorInfo, target *ActorInfo, sk *data.SkillInfo) (bool, Vec2) {
	if target == nil || target == a {
		return true, a.Position()
	}
	gap := ColliderDistance(a, target)
	if gap <= sk.CastRange {
		return true, a.Position()
	}
	return false, ApproachPoint(a, target, sk.CastRange)
}

// ColliderDistance 回傳兩演員碰撞體最近點之間的距離（圓形碰撞體）。
func ColliderDistance(a, b *ActorInfo) float64 {
	d := a.Position().Dist(b.Position()) - a.CollisionRadius - b.CollisionRadius
	if d < 0 {
		return 0
	}
	return d
}

// ApproachPoint 回傳從 a 朝 b 走、剛好進入 rng 範圍的點。
// 兩演員重疊時退化為 b 的位置。
func ApproachPoint(a, b *ActorInfo, rng float64) Vec2 {
	to := a.Position().Sub(b.Position())
	dir := to.Normalized()
	if dir.IsZero() {
		return b.Position()
	}
	reach := rng + a.CollisionRadius + b.CollisionRadius
	if reach > to.Len() {
		reach = to.Len()
	}
	return b.Position().Add(dir.Scale(reach))
}
