package world

import (
	"math/rand"

	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/net"
)

// PlayerLink binds an in-world actor to its network session and account row.
// Only player actors have one.
type PlayerLink struct {
	SessionID   uint64
	Session     *net.Session
	CharID      int32 // DB row ID
	AccountName string
}

// State 是顯式的世界註冊表：所有線上演員、session 對應、重生點。
// 由 tick 排程器持有並經 Deps 傳遞，不存在行程級可變全域狀態。
// 僅由遊戲迴圈 goroutine 存取。
type State struct {
	ents    *ecs.World
	actors  *ecs.PtrComponentStore[ActorInfo]
	players *ecs.PtrComponentStore[PlayerLink]

	bySession map[uint64]ecs.EntityID

	Bounds        Bounds
	RevivalPoints []Vec2
}

func NewState(bounds Bounds, revivals []Vec2) *State {
	s := &State{
		ents:          ecs.NewWorld(),
		actors:        ecs.NewPtrComponentStore[ActorInfo](),
		players:       ecs.NewPtrComponentStore[PlayerLink](),
		bySession:     make(map[uint64]ecs.EntityID, 256),
		Bounds:        bounds,
		RevivalPoints: revivals,
	}
	s.ents.Registry().Register(s.actors)
	s.ents.Registry().Register(s.players)
	return s
}

// Entities exposes the handle pool for cleanup and liveness checks.
func (s *State) Entities() *ecs.World { return s.ents }

// ==================== 生成 / 移除 ====================

// SpawnActor 將演員掛入世界並配發世代化 handle。spawnDead 供死亡下線
// 後重新進入世界的角色使用。
func (s *State) SpawnActor(a *ActorInfo, spawnDead bool) ecs.EntityID {
	id := s.ents.CreateEntity()
	a.ID = id
	a.CurrentSkill = NoSkill
	a.ReqSkillIndex = NoSkill
	if spawnDead {
		a.State = StateDead
		a.HP = 0
	} else if a.State != StateDead {
		a.State = StateIdle
	}
	s.actors.Set(id, a)
	return id
}

// BindSession attaches a player link to a spawned actor.
func (s *State) BindSession(id ecs.EntityID, link *PlayerLink) {
	s.players.Set(id, link)
	s.bySession[link.SessionID] = id
}

// Despawn 將演員排入本 tick 結尾的移除佇列。世代遞增讓所有殘留的
// Target/NextTarget 參照自動失效（讀為「目標消失」）。
func (s *State) Despawn(id ecs.EntityID) {
	if link, ok := s.players.Get(id); ok {
		delete(s.bySession, link.SessionID)
	}
	s.ents.MarkForDestruction(id)
}

// ==================== 查找 ====================

// Get resolves a handle. Stale or despawned handles return nil.
func (s *State) Get(id ecs.EntityID) *ActorInfo {
	if id.IsZero() || !s.ents.Alive(id) {
		return nil
	}
	a, ok := s.actors.Get(id)
	if !ok {
		return nil
	}
	return a
}

// GetBySession returns the actor bound to the given session, or nil.
func (s *State) GetBySession(sessID uint64) *ActorInfo {
	id, ok := s.bySession[sessID]
	if !ok {
		return nil
	}
	return s.Get(id)
}

// Link returns the player link for an actor, or nil for creatures.
func (s *State) Link(id ecs.EntityID) *PlayerLink {
	link, ok := s.players.Get(id)
	if !ok {
		return nil
	}
	return link
}

// AllActors iterates every live actor.
func (s *State) AllActors(fn func(*ActorInfo)) {
	s.actors.Each(func(id ecs.EntityID, a *ActorInfo) {
		if s.ents.Alive(id) {
			fn(a)
		}
	})
}

// EachPlayer iterates actors that have a bound session.
func (s *State) EachPlayer(fn func(*ActorInfo, *PlayerLink)) {
	ecs.Each2(s.actors, s.players, func(id ecs.EntityID, a *ActorInfo, link *PlayerLink) {
		if s.ents.Alive(id) {
			fn(a, link)
		}
	})
}

// ==================== 重生點 ====================

// NearestRevivalPoint 回傳離指定位置最近的復活點。未設定時回傳原點。
func (s *State) NearestRevivalPoint(p Vec2) Vec2 {
	if len(s.RevivalPoints) == 0 {
		return Vec2{}
	}
	best := s.RevivalPoints[0]
	bestDist := p.Dist(best)
	for _, rp := range s.RevivalPoints[1:] {
		if d := p.Dist(rp); d < bestDist {
			best, bestDist = rp, d
		}
	}
	return best
}

// RandInt returns a uniform int in [0, n). n <= 0 returns 0.
func RandInt(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n)
}
