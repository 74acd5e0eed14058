package client

import (
	"time"

	"github.com/riftgo/server/internal/core/ecs"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/world"
)

// ActorView 是單一演員的顯示投影，由快照重建，唯讀。
type ActorView struct {
	ID     ecs.EntityID
	Name   string
	State  world.ActorState
	Pos    world.Vec2
	Facing world.Vec2
	Level  int16
	HP     int32
	MaxHP  int32
	MP     int32
	MaxMP  int32
	Target ecs.EntityID

	CastRemaining time.Duration
	IsPlayer      bool
}

// ParseSnapshot 解析 S_OPCODE_SNAPSHOT 封包為顯示投影列表。
// 快照是 latest-wins：呼叫端直接以回傳值整批取代舊投影。
func ParseSnapshot(data []byte) []ActorView {
	r := packet.NewReader(data)
	count := int(r.ReadH())
	views := make([]ActorView, 0, count)
	for i := 0; i < count; i++ {
		v := ActorView{
			ID:   ecs.EntityID(r.ReadQ()),
			Name: r.ReadS(),
		}
		v.State = world.ActorState(r.ReadC())
		v.Pos = world.Vec2{X: r.ReadF(), Y: r.ReadF()}
		v.Facing = world.Vec2{X: r.ReadF(), Y: r.ReadF()}
		v.Level = int16(r.ReadH())
		v.HP = r.ReadD()
		v.MaxHP = r.ReadD()
		v.MP = r.ReadD()
		v.MaxMP = r.ReadD()
		v.Target = ecs.EntityID(r.ReadQ())
		v.CastRemaining = time.Duration(r.ReadD()) * time.Millisecond
		v.IsPlayer = r.ReadC() != 0
		if v.ID.IsZero() {
			break // 截斷的快照，丟棄剩餘
		}
		views = append(views, v)
	}
	return views
}
