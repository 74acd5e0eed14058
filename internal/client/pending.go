// Package client 實作客戶端側的意圖緩衝。客戶端對世界沒有權威：
// 它送出請求、緩衝下一步意圖，並從伺服器快照重建顯示狀態。
package client

import (
	"github.com/riftgo/server/internal/world"
)

// ActionKind 標記待定動作的種類。
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDestination
	ActionVelocity
	ActionSkill
)

// Action 是一個緩衝的玩家意圖。
type Action struct {
	Kind        ActionKind
	Destination world.Vec2
	Velocity    world.Vec2
	SkillIndex  int
}

// PendingQueue 緩衝施法期間到達的玩家輸入：同一時間最多一個待定動作，
// 新輸入覆蓋舊的（玩家最後的意圖勝出）。施法結束時無條件清空 —
// 無論施法成功、取消或中斷，舊意圖都已過時。
type PendingQueue struct {
	act Action
}

func (q *PendingQueue) SetDestination(p world.Vec2) {
	q.act = Action{Kind: ActionDestination, Destination: p}
}

func (q *PendingQueue) SetVelocity(v world.Vec2) {
	q.act = Action{Kind: ActionVelocity, Velocity: v}
}

func (q *PendingQueue) SetSkill(index int) {
	q.act = Action{Kind: ActionSkill, SkillIndex: index}
}

// Peek 回傳目前的待定動作（若有）。
func (q *PendingQueue) Peek() (Action, bool) {
	return q.act, q.act.Kind != ActionNone
}

// Take 取出並清空待定動作。
func (q *PendingQueue) Take() (Action, bool) {
	act := q.act
	q.act = Action{}
	return act, act.Kind != ActionNone
}

// Clear 無條件丟棄待定動作。施法結束時呼叫。
func (q *PendingQueue) Clear() {
	q.act = Action{}
}
