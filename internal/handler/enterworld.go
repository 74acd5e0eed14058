package handler

import (
	"context"
	"time"

	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/persist"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
)

// 新角色的出生屬性。成長曲線由 Lua 腳本接手。
const (
	newCharHP = 100
	newCharMP = 50
)

// 新角色預設習得的技能槽（slot 0 必須是普通攻擊，接續攻擊依賴它）。
var newCharSkills = []persist.CharacterSkillRow{
	{Slot: 0, SkillID: 1, SkillLevel: 1},
	{Slot: 1, SkillID: 2, SkillLevel: 1},
	{Slot: 2, SkillID: 3, SkillLevel: 1},
}

// HandleEnterWorld 處理 C_OPCODE_ENTER_WORLD：charname\0。
// 讀取（或建立）角色列、生成演員、綁定 session。死亡下線的角色以死亡
// 狀態重新進入世界，等待重生請求。
func HandleEnterWorld(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		name := NormalizeName(r.ReadS())
		if !validName(name) {
			SendMessage(sess, "invalid character name")
			return
		}
		if deps.World.GetBySession(sess.ID) != nil {
			return // 已在世界中的重複請求
		}

		ctx := context.Background()
		row, err := deps.Characters.LoadByName(ctx, name)
		if err != nil {
			deps.Log.Error("角色讀取失敗", zap.String("char", name), zap.Error(err))
			SendMessage(sess, "server error")
			return
		}
		if row == nil {
			spawn := deps.World.NearestRevivalPoint(world.Vec2{})
			row = &persist.CharacterRow{
				AccountName: sess.AccountName,
				Name:        name,
				Level:       1,
				Exp:         0,
				HP:          newCharHP,
				MaxHP:       newCharHP,
				MP:          newCharMP,
				MaxMP:       newCharMP,
				X:           spawn.X,
				Y:           spawn.Y,
				WeaponCat:   "sword",
				Skills:      newCharSkills,
			}
			if err := deps.Characters.Create(ctx, row); err != nil {
				deps.Log.Error("角色建立失敗", zap.String("char", name), zap.Error(err))
				SendMessage(sess, "server error")
				return
			}
			deps.Log.Info("建立新角色", zap.String("account", sess.AccountName), zap.String("char", name))
		} else if row.AccountName != sess.AccountName {
			deps.Log.Warn("角色不屬於此帳號",
				zap.String("account", sess.AccountName),
				zap.String("char", name),
			)
			SendMessage(sess, "character not found")
			return
		}

		skills := make([]world.LearnedSkill, 0, len(row.Skills))
		for _, sr := range row.Skills {
			skills = append(skills, world.LearnedSkill{SkillID: sr.SkillID, Level: sr.SkillLevel})
		}

		pos := deps.World.Bounds.Clamp(world.Vec2{X: row.X, Y: row.Y})
		a := &world.ActorInfo{
			Name:            row.Name,
			Level:           row.Level,
			Exp:             row.Exp,
			HP:              row.HP,
			MaxHP:           row.MaxHP,
			MP:              row.MP,
			MaxMP:           row.MaxMP,
			Mover:           world.NewSteeringMover(pos, playerSpeed, deps.World.Bounds),
			CollisionRadius: playerRadius,
			Speed:           playerSpeed,
			WeaponCategory:  row.WeaponCat,
			Skills:          skills,
			IsPlayer:        true,
		}
		id := deps.World.SpawnActor(a, row.Dead)
		deps.World.BindSession(id, &world.PlayerLink{
			SessionID:   sess.ID,
			Session:     sess,
			CharID:      row.ID,
			AccountName: sess.AccountName,
		})

		sess.CharName = row.Name
		sess.SetState(packet.StateInWorld)
		deps.Log.Info("玩家進入世界",
			zap.String("char", row.Name),
			zap.Int16("level", row.Level),
			zap.Float64("x", pos.X),
			zap.Float64("y", pos.Y),
		)
		SendEnterWorld(sess, a, time.Now())
	}
}

const (
	playerSpeed  = 5.0
	playerRadius = 0.5
)
