package client

import (
	"testing"

	"github.com/riftgo/server/internal/world"
)

func TestPendingQueueLastIntentWins(t *testing.T) {
	var q PendingQueue

	if _, ok := q.Peek(); ok {
		t.Fatalf("empty queue must report nothing")
	}

	q.SetDestination(world.Vec2{X: 1})
	q.SetSkill(2) // 覆蓋目的地
	act, ok := q.Peek()
	if !ok || act.Kind != ActionSkill || act.SkillIndex != 2 {
		t.Fatalf("latest intent must win: %+v", act)
	}

	q.SetVelocity(world.Vec2{X: 3})
	act, ok = q.Take()
	if !ok || act.Kind != ActionVelocity {
		t.Fatalf("take: %+v", act)
	}
	if _, ok := q.Take(); ok {
		t.Fatalf("take must clear the queue")
	}
}

func TestPendingQueueClearedOnCastEnd(t *testing.T) {
	var q PendingQueue
	q.SetDestination(world.Vec2{X: 5})

	// 施法結束：無論成功或中斷，舊意圖一律丟棄
	q.Clear()
	if _, ok := q.Peek(); ok {
		t.Fatalf("queue must be empty after cast resolution")
	}
}
