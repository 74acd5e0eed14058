package handler

import (
	"github.com/riftgo/server/internal/config"
	"github.com/riftgo/server/internal/core/event"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/persist"
	"github.com/riftgo/server/internal/scripting"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// Deps 封包處理器與系統共用的依賴。啟動時組裝一次，之後唯讀。
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	World     *world.State
	Skills    *data.SkillTable
	Curve     *data.ExpCurve
	Scripting *scripting.Engine
	Bus       *event.Bus

	Accounts   *persist.AccountRepo
	Characters *persist.CharacterRepo
}

// RegisterAll 將所有客戶端 opcode 掛進封包註冊表，並標注允許的會話狀態。
// 未列出的 opcode 一律丟棄（Registry 內建行為）。
func RegisterAll(r *packet.Registry, deps *Deps) {
	connected := []packet.SessionState{packet.StateConnected}
	authed := []packet.SessionState{packet.StateAuthenticated}
	inWorld := []packet.SessionState{packet.StateInWorld}

	r.Register(packet.C_OPCODE_LOGIN, connected, HandleLogin(deps))
	r.Register(packet.C_OPCODE_ENTER_WORLD, authed, HandleEnterWorld(deps))
	r.Register(packet.C_OPCODE_MOVE, inWorld, HandleMove(deps))
	r.Register(packet.C_OPCODE_SET_VELOCITY, inWorld, HandleSetVelocity(deps))
	r.Register(packet.C_OPCODE_USE_SKILL, inWorld, HandleUseSkill(deps))
	r.Register(packet.C_OPCODE_SET_TARGET, inWorld, HandleSetTarget(deps))
	r.Register(packet.C_OPCODE_CANCEL, inWorld, HandleCancel(deps))
	r.Register(packet.C_OPCODE_RESPAWN, inWorld, HandleRespawn(deps))
	r.Register(packet.C_OPCODE_CRAFT, inWorld, HandleCraft(deps))
	r.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateAuthenticated, packet.StateInWorld},
		HandleQuit(deps))
}
