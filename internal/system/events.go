package system

import (
	"time"

	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
)

// EventSystem 在每 tick 開頭交換事件緩衝並派送上一 tick 發出的事件。
// Tick N 的 Emit 於 tick N+1 派送，處理者看到的是穩定的世界狀態。
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
