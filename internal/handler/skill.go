package handler

import (
	"github.com/riftgo/server/internal/core/ecs"
	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
)

// HandleUseSkill 處理 C_OPCODE_USE_SKILL：index(int32)。
// 只做信箱寫入；完整驗證（資源、目標、距離）由狀態機執行。
func HandleUseSkill(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		a := deps.World.GetBySession(sess.ID)
		if a == nil {
			return
		}
		idx := int(r.ReadD())
		if idx < 0 || idx >= len(a.Skills) {
			return // 無效索引是無效請求，直接丟棄
		}
		a.ReqSkillIndex = idx
	}
}

// HandleSetTarget 處理 C_OPCODE_SET_TARGET：target(uint64 handle)。
// 零值 = 清除目標。施法中的選取會被延遲到施法解決後才生效。
func HandleSetTarget(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		a := deps.World.GetBySession(sess.ID)
		if a == nil {
			return
		}
		t := ecs.EntityID(r.ReadQ())
		if !t.IsZero() && deps.World.Get(t) == nil {
			return // 過期 handle：目標已消失
		}
		if t == a.ID {
			t = 0 // 不允許以自己為戰鬥目標
		}
		a.SetTargetDeferred(t)
	}
}
