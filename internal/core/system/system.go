package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session request queues
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: actor state machines, combat, progression
	PhasePostUpdate              // 3: movement integration, regen, respawn timers
	PhaseOutput                  // 4: build + send replication snapshots
	PhasePersist                 // 5: batch save dirty characters
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
