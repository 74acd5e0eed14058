package system

import (
	"time"

	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
)

// 怪物 AI 參數。仇恨半徑外的玩家不會被追擊；脫離半徑後放棄回到原地。
const (
	aggroRadius  = 12.0
	leashRadius  = 25.0
	npcRespawnIn = 15 * time.Second
)

// NPCAISystem（Phase 1）替怪物填寫請求信箱：選目標、請求攻擊（slot 0）、
// 死亡計時重生。怪物走與玩家完全相同的狀態機與驗證路徑，AI 只是另一個
// 「客戶端」。
type NPCAISystem struct {
	deps *handler.Deps
}

func NewNPCAISystem(deps *handler.Deps) *NPCAISystem {
	s := &NPCAISystem{deps: deps}
	event.Subscribe(deps.Bus, s.onActorDied)
	return s
}

func (s *NPCAISystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *NPCAISystem) Update(_ time.Duration) {
	now := time.Now()
	s.deps.World.AllActors(func(a *world.ActorInfo) {
		if a.IsPlayer {
			return
		}
		if a.State == world.StateDead {
			if !a.RespawnAt.IsZero() && !now.Before(a.RespawnAt) {
				a.RespawnAt = time.Time{}
				a.ReqRespawn = true
			}
			return
		}
		s.think(a)
	})
}

func (s *NPCAISystem) think(a *world.ActorInfo) {
	target := s.deps.World.Get(a.Target)
	if target != nil && (!target.Alive() || a.Position().Dist(target.Position()) > leashRadius) {
		a.Target = 0
		a.ReqCancel = true
		target = nil
	}

	if target == nil {
		target = s.nearestPlayer(a, aggroRadius)
		if target == nil {
			return
		}
		a.SetTargetDeferred(target.ID)
	}

	// 攻擊距離外先走近；距離驗證由狀態機做，這裡只是省掉註定失敗的請求
	ls := a.SkillAt(0)
	if ls == nil {
		return
	}
	sk := s.deps.Skills.Get(ls.SkillID)
	if sk == nil {
		return
	}
	if ok, approach := world.CheckCastDistance(a, target, sk); !ok {
		d := approach
		a.ReqDestination = &d
		return
	}
	if a.State != world.StateCasting {
		a.ReqSkillIndex = 0
	}
}

func (s *NPCAISystem) nearestPlayer(a *world.ActorInfo, radius float64) *world.ActorInfo {
	var best *world.ActorInfo
	bestDist := radius
	pos := a.Position()
	s.deps.World.EachPlayer(func(p *world.ActorInfo, _ *world.PlayerLink) {
		if !p.Alive() {
			return
		}
		if d := pos.Dist(p.Position()); d <= bestDist {
			best, bestDist = p, d
		}
	})
	return best
}

// 怪物死亡後排入重生計時。
func (s *NPCAISystem) onActorDied(ev event.ActorDied) {
	a := s.deps.World.Get(ev.Actor)
	if a == nil || a.IsPlayer {
		return
	}
	a.RespawnAt = time.Now().Add(npcRespawnIn)
}
