package system

import (
	"time"

	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/world"
)

// ReplicationSystem（Phase 4）把權威狀態投影給客戶端：每 tick 一份
// 完整快照（latest-wins，丟包只意味晚一點收到下一份），加上離場通知，
// 最後沖洗所有 session 的輸出緩衝。客戶端副本是唯讀的顯示投影。
type ReplicationSystem struct {
	deps     *handler.Deps
	sessions *gonet.SessionStore

	prev map[ecs.EntityID]struct{} // 上一 tick 在場的演員
	cur  map[ecs.EntityID]struct{}
}

func NewReplicationSystem(deps *handler.Deps, sessions *gonet.SessionStore) *ReplicationSystem {
	s := &ReplicationSystem{
		deps:     deps,
		sessions: sessions,
		prev:     make(map[ecs.EntityID]struct{}, 256),
		cur:      make(map[ecs.EntityID]struct{}, 256),
	}
	event.Subscribe(deps.Bus, s.onActorDied)
	return s
}

func (s *ReplicationSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReplicationSystem) Update(_ time.Duration) {
	now := time.Now()

	// 單份快照全員共用：世界是單一可視區
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SNAPSHOT)
	count := 0
	countPos := len(w.Bytes())
	w.WriteH(0) // 名額先佔位，下面直接重寫
	s.deps.World.AllActors(func(a *world.ActorInfo) {
		handler.WriteActorSnapshot(w, a, now)
		s.cur[a.ID] = struct{}{}
		count++
	})
	snapshot := w.Bytes()
	snapshot[countPos] = byte(count)
	snapshot[countPos+1] = byte(count >> 8)

	s.deps.World.EachPlayer(func(_ *world.ActorInfo, link *world.PlayerLink) {
		link.Session.Send(snapshot)
		for id := range s.prev {
			if _, ok := s.cur[id]; !ok {
				handler.SendRemoveActor(link.Session, uint64(id))
			}
		}
	})

	s.prev, s.cur = s.cur, s.prev
	for id := range s.cur {
		delete(s.cur, id)
	}

	for _, sess := range s.sessions.Raw() {
		sess.FlushOutput()
	}
}

// 死亡通知立即廣播給所有在世界中的玩家。
func (s *ReplicationSystem) onActorDied(ev event.ActorDied) {
	s.deps.World.EachPlayer(func(_ *world.ActorInfo, link *world.PlayerLink) {
		handler.SendDeath(link.Session, uint64(ev.Actor), uint64(ev.Killer))
	})
}
