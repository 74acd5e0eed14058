package handler

import (
	"context"
	"strings"

	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var nameCaser = cases.Lower(language.Und)

// NormalizeName 將帳號/角色名統一為 NFC 小寫形式。不同 Unicode 組字
// 序列的同形名稱會對應到同一個帳號，避免重複註冊與冒名。
func NormalizeName(s string) string {
	return nameCaser.String(norm.NFC.String(strings.TrimSpace(s)))
}

func validName(s string) bool {
	if s == "" || len(s) > 24 {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// HandleLogin 處理 C_OPCODE_LOGIN：account\0 password\0。
// 帳號不存在時自動註冊（開發環境慣例）。
func HandleLogin(deps *Deps) packet.HandlerFunc {
	return func(sessAny any, r *packet.Reader) {
		sess := sessAny.(*gonet.Session)
		account := NormalizeName(r.ReadS())
		password := r.ReadS()

		if !validName(account) || password == "" {
			SendLoginResult(sess, false, "invalid credentials")
			return
		}

		ctx := context.Background()
		row, err := deps.Accounts.Load(ctx, account)
		if err != nil {
			deps.Log.Error("帳號讀取失敗", zap.String("account", account), zap.Error(err))
			SendLoginResult(sess, false, "server error")
			return
		}
		if row == nil {
			row, err = deps.Accounts.Create(ctx, account, password)
			if err != nil {
				deps.Log.Error("帳號建立失敗", zap.String("account", account), zap.Error(err))
				SendLoginResult(sess, false, "server error")
				return
			}
			deps.Log.Info("自動註冊帳號", zap.String("account", account), zap.String("ip", sess.IP))
		} else {
			if row.Banned {
				SendLoginResult(sess, false, "account banned")
				sess.Close()
				return
			}
			if !deps.Accounts.ValidatePassword(row.PasswordHash, password) {
				deps.Log.Warn("密碼驗證失敗", zap.String("account", account), zap.String("ip", sess.IP))
				SendLoginResult(sess, false, "invalid credentials")
				return
			}
		}

		if err := deps.Accounts.UpdateLastActive(ctx, account); err != nil {
			deps.Log.Warn("更新最後登入時間失敗", zap.String("account", account), zap.Error(err))
		}

		sess.AccountName = account
		sess.SetState(packet.StateAuthenticated)
		deps.Log.Info("玩家登入", zap.String("account", account), zap.String("ip", sess.IP))
		SendLoginResult(sess, true, "")
	}
}
