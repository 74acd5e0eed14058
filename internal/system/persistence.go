package system

import (
	"context"
	"time"

	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// 週期性存檔間隔。斷線與登出另外立即存檔。
const saveInterval = 30 * time.Second

// PersistenceSystem（Phase 5）定期把髒的玩家狀態寫回資料庫。
// 只挑 Dirty 的演員，正常情況下每輪只有少數幾筆 UPDATE。
type PersistenceSystem struct {
	deps   *handler.Deps
	nextAt time.Time
}

func NewPersistenceSystem(deps *handler.Deps) *PersistenceSystem {
	return &PersistenceSystem{deps: deps, nextAt: time.Now().Add(saveInterval)}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	now := time.Now()
	if now.Before(s.nextAt) {
		return
	}
	s.nextAt = now.Add(saveInterval)
	s.SaveDirty()
}

// SaveDirty 立即寫回所有髒玩家。關機流程也會呼叫。
func (s *PersistenceSystem) SaveDirty() {
	ctx := context.Background()
	saved := 0
	s.deps.World.EachPlayer(func(a *world.ActorInfo, link *world.PlayerLink) {
		if !a.Dirty {
			return
		}
		if err := s.deps.Characters.Save(ctx, handler.CharacterRowFrom(a, link)); err != nil {
			s.deps.Log.Error("定期存檔失敗", zap.String("char", a.Name), zap.Error(err))
			return
		}
		a.Dirty = false
		saved++
	})
	if saved > 0 {
		s.deps.Log.Debug("定期存檔完成", zap.Int("count", saved))
	}
}
