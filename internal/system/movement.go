package system

import (
	"time"

	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
)

// advancer 是可逐 tick 積分的移動控制器。外部尋路代理不需要實作它。
type advancer interface {
	Advance(dt time.Duration)
}

// MovementSystem（Phase 3）推進所有伺服器端轉向移動器。
// 位置是移動器的私有狀態，這裡是唯一的積分點。
type MovementSystem struct {
	deps *handler.Deps
}

func NewMovementSystem(deps *handler.Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.deps.World.AllActors(func(a *world.ActorInfo) {
		if a.State == world.StateDead {
			return
		}
		if m, ok := a.Mover.(advancer); ok {
			m.Advance(dt)
		}
	})
}
