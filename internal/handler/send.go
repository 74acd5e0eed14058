package handler

import (
	"time"

	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/world"
)

// ==================== 伺服器封包組裝 ====================
// 所有送出都經 Session.Send 緩衝，於 Output 階段一次沖洗。

func SendLoginResult(sess *gonet.Session, ok bool, reason string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGIN_RESULT)
	if ok {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteS(reason)
	sess.Send(w.Bytes())
}

func SendEnterWorld(sess *gonet.Session, a *world.ActorInfo, now time.Time) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTER_WORLD)
	w.WriteQ(uint64(a.ID))
	WriteActorSnapshot(w, a, now)
	sess.Send(w.Bytes())
}

// WriteActorSnapshot 寫入一個演員的最新快照（latest-wins，不做差分）。
func WriteActorSnapshot(w *packet.Writer, a *world.ActorInfo, now time.Time) {
	pos := a.Position()
	w.WriteQ(uint64(a.ID))
	w.WriteS(a.Name)
	w.WriteC(byte(a.State))
	w.WriteF(pos.X)
	w.WriteF(pos.Y)
	w.WriteF(a.Facing.X)
	w.WriteF(a.Facing.Y)
	w.WriteH(uint16(a.Level))
	w.WriteD(a.HP)
	w.WriteD(a.MaxHP)
	w.WriteD(a.MP)
	w.WriteD(a.MaxMP)
	w.WriteQ(uint64(a.Target))
	castMs := a.CastRemaining(now).Milliseconds()
	w.WriteD(int32(castMs))
	if a.IsPlayer {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
}

func SendRemoveActor(sess *gonet.Session, id uint64) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_REMOVE_ACTOR)
	w.WriteQ(id)
	sess.Send(w.Bytes())
}

func SendDeath(sess *gonet.Session, victim, killer uint64) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DEATH)
	w.WriteQ(victim)
	w.WriteQ(killer)
	sess.Send(w.Bytes())
}

func SendLevelUp(sess *gonet.Session, actor uint64, newLevel int16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LEVEL_UP)
	w.WriteQ(actor)
	w.WriteH(uint16(newLevel))
	sess.Send(w.Bytes())
}

func SendExpUpdate(sess *gonet.Session, exp, expMax int64) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_EXP_UPDATE)
	w.WriteQ(uint64(exp))
	w.WriteQ(uint64(expMax))
	sess.Send(w.Bytes())
}

func SendMessage(sess *gonet.Session, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MESSAGE)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}
