package handler

import (
	"context"

	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/persist"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// HandleCancel 處理 C_OPCODE_CANCEL。取消是冪等的：沒有可取消的
// 動作時等同清除目標，永遠不是錯誤。
func HandleCancel(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		if a := deps.World.GetBySession(sess.ID); a != nil {
			a.ReqCancel = true
		}
	}
}

// HandleRespawn 處理 C_OPCODE_RESPAWN。活著時的重生請求被丟棄。
func HandleRespawn(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		if a := deps.World.GetBySession(sess.ID); a != nil {
			a.ReqRespawn = true
		}
	}
}

// HandleCraft 處理 C_OPCODE_CRAFT。只有 Idle 會接受，其他狀態丟棄。
func HandleCraft(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		if a := deps.World.GetBySession(sess.ID); a != nil {
			a.ReqCraft = true
		}
	}
}

// HandleQuit 處理 C_OPCODE_QUIT：立即存檔、移出世界、關閉連線。
func HandleQuit(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		SaveAndDespawn(deps, sess)
		sess.Close()
	}
}

// SaveAndDespawn 將 session 綁定的演員寫回資料庫並移出世界。
// 斷線清理與主動登出共用；session 未綁演員時為 no-op。
func SaveAndDespawn(deps *Deps, sess *gonet.Session) {
	a := deps.World.GetBySession(sess.ID)
	if a == nil {
		return
	}
	link := deps.World.Link(a.ID)
	if link != nil {
		if err := deps.Characters.Save(context.Background(), CharacterRowFrom(a, link)); err != nil {
			deps.Log.Error("離線存檔失敗", zap.String("char", a.Name), zap.Error(err))
		}
	}
	deps.World.Despawn(a.ID)
	deps.Log.Info("玩家離開世界", zap.String("char", a.Name))
}

// CharacterRowFrom 將演員即時狀態轉回持久化列。
func CharacterRowFrom(a *world.ActorInfo, link *world.PlayerLink) *persist.CharacterRow {
	pos := a.Position()
	skills := make([]persist.CharacterSkillRow, 0, len(a.Skills))
	for i, ls := range a.Skills {
		skills = append(skills, persist.CharacterSkillRow{
			Slot:       i,
			SkillID:    ls.SkillID,
			SkillLevel: ls.Level,
		})
	}
	return &persist.CharacterRow{
		ID:          link.CharID,
		AccountName: link.AccountName,
		Name:        a.Name,
		Level:       a.Level,
		Exp:         a.Exp,
		HP:          a.HP,
		MaxHP:       a.MaxHP,
		MP:          a.MP,
		MaxMP:       a.MaxMP,
		X:           pos.X,
		Y:           pos.Y,
		Dead:        a.State == world.StateDead,
		WeaponCat:   a.WeaponCategory,
		Skills:      skills,
	}
}
