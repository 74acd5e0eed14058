package system

import (
	"time"

	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
)

// 自然回復間隔與量。施法與暈眩中不回復，死亡更不會。
const (
	regenInterval = 3 * time.Second
	regenHP       = 2
	regenMP       = 3
)

// RegenSystem（Phase 3）處理 HP/MP 自然回復。
type RegenSystem struct {
	deps   *handler.Deps
	nextAt time.Time
}

func NewRegenSystem(deps *handler.Deps) *RegenSystem {
	return &RegenSystem{deps: deps}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(_ time.Duration) {
	now := time.Now()
	if now.Before(s.nextAt) {
		return
	}
	s.nextAt = now.Add(regenInterval)

	s.deps.World.AllActors(func(a *world.ActorInfo) {
		switch a.State {
		case world.StateDead, world.StateCasting, world.StateStunned:
			return
		}
		changed := false
		if a.HP < a.MaxHP {
			a.HP += regenHP
			if a.HP > a.MaxHP {
				a.HP = a.MaxHP
			}
			changed = true
		}
		if a.MP < a.MaxMP {
			a.MP += regenMP
			if a.MP > a.MaxMP {
				a.MP = a.MaxMP
			}
			changed = true
		}
		if changed {
			a.Dirty = true
		}
	})
}
