package handler

import (
	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// HandleMove 處理 C_OPCODE_MOVE：x(f64) y(f64) 目的地請求。
// 座標先夾回世界邊界；是否接受由狀態機在本 tick 的 Update 階段裁決。
func HandleMove(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		a := deps.World.GetBySession(sess.ID)
		if a == nil {
			return
		}
		dest := deps.World.Bounds.Clamp(world.Vec2{X: r.ReadF(), Y: r.ReadF()})
		if a.State == world.StateDead {
			// 客戶端死亡時不該送移動，記錄以便抓出失控的客戶端
			deps.Log.Warn("死亡玩家送出移動請求", zap.String("char", a.Name))
			return
		}
		d := dest
		a.ReqDestination = &d
		a.ReqVelocity = nil
	}
}

// HandleSetVelocity 處理 C_OPCODE_SET_VELOCITY：vx(f64) vy(f64)。
// 零向量等同停止。速度大小由伺服器端的 Speed 上限截斷。
func HandleSetVelocity(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		a := deps.World.GetBySession(sess.ID)
		if a == nil {
			return
		}
		v := world.Vec2{X: r.ReadF(), Y: r.ReadF()}
		if a.State == world.StateDead {
			deps.Log.Warn("死亡玩家送出移動請求", zap.String("char", a.Name))
			return
		}
		if ln := v.Len(); ln > a.Speed {
			v = v.Scale(a.Speed / ln)
		}
		vv := v
		a.ReqVelocity = &vv
		a.ReqDestination = nil
	}
}
