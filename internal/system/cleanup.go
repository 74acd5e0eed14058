package system

import (
	"time"

	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
)

// CleanupSystem（Phase 6）在 tick 結尾執行延遲移除：本 tick 標記的
// 演員此刻才真正消失，世代遞增讓殘留參照下一 tick 讀為「目標消失」。
type CleanupSystem struct {
	deps *handler.Deps
}

func NewCleanupSystem(deps *handler.Deps) *CleanupSystem {
	return &CleanupSystem{deps: deps}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.deps.World.Entities().FlushDestroyQueue()
}
