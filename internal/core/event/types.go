package event

import "github.com/riftgo/server/internal/core/ecs"

// Lifecycle events emitted by the actor state machine and progression ledger.

// ActorDied fires once per death, on the tick the die event is taken.
type ActorDied struct {
	Actor    ecs.EntityID
	Killer   ecs.EntityID // zero when environmental
	Level    int16
	IsPlayer bool
}

// ActorRespawned fires when a dead actor is warped back to a revival point.
type ActorRespawned struct {
	Actor ecs.EntityID
	X, Y  float64
}

// ActorLeveledUp fires once per level gained — an experience award that
// crosses two boundaries emits two of these.
type ActorLeveledUp struct {
	Actor    ecs.EntityID
	NewLevel int16
}

// CastCompleted fires when a cast resolves by completion (not cancel/abort).
type CastCompleted struct {
	Caster  ecs.EntityID
	Target  ecs.EntityID
	SkillID int32
}
