package system

import (
	"time"

	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/handler"
	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem（Phase 0）把網路世界接進遊戲迴圈：收編新連線、清理斷線、
// 將各 session 佇列中的封包經註冊表派發給處理器。這是封包唯一進入
// 遊戲狀態的地方，之後的階段不再碰 InQueue。
type InputSystem struct {
	deps     *handler.Deps
	server   *gonet.Server
	sessions *gonet.SessionStore
	registry *packet.Registry

	maxPerTick int // 單一 session 每 tick 處理的封包上限
}

func NewInputSystem(deps *handler.Deps, server *gonet.Server, sessions *gonet.SessionStore, registry *packet.Registry) *InputSystem {
	return &InputSystem{
		deps:       deps,
		server:     server,
		sessions:   sessions,
		registry:   registry,
		maxPerTick: deps.Config.Network.MaxPacketsPerTick,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.acceptNew()
	s.reapDead()
	s.drainPackets()
}

func (s *InputSystem) acceptNew() {
	for {
		select {
		case sess := <-s.server.NewSessions():
			// 讀寫 goroutine 已由 AcceptLoop 啟動，這裡只收編進遊戲迴圈
			s.sessions.Add(sess)
		default:
			return
		}
	}
}

func (s *InputSystem) reapDead() {
	for {
		select {
		case id := <-s.server.DeadSessions():
			sess := s.sessions.Get(id)
			if sess == nil {
				continue
			}
			handler.SaveAndDespawn(s.deps, sess)
			s.sessions.Remove(id)
			s.deps.Log.Info("玩家斷線", zap.Uint64("session", id))
		default:
			return
		}
	}
}

func (s *InputSystem) drainPackets() {
	for _, sess := range s.sessions.Raw() {
		if sess.IsClosed() {
			s.server.NotifyDead(sess.ID)
			continue
		}
	drain:
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.deps.Log.Warn("封包派發失敗",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				break drain
			}
		}
	}
}
