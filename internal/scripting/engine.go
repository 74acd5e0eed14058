package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tunable game formulas: level-up
// vitals growth, death experience penalty, revival points. Deterministic
// combat/progression math stays in Go; the VM holds what operators retune
// without a rebuild. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// LevelUpResult 是升級時的 HP/MP 成長。
type LevelUpResult struct {
	HP int
	MP int
}

// CalcLevelUp 透過 Lua 計算升級成長（scripts/core/levelup.lua 的 calc_level_up）。
// 腳本缺席時使用固定成長。
func (e *Engine) CalcLevelUp(level int) LevelUpResult {
	fn := e.vm.GetGlobal("calc_level_up")
	if fn == lua.LNil {
		return LevelUpResult{HP: 10, MP: 5}
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, lua.LNumber(level)); err != nil {
		e.log.Warn("calc_level_up 執行失敗", zap.Error(err))
		return LevelUpResult{HP: 10, MP: 5}
	}
	mp := int(lua.LVAsNumber(e.vm.Get(-1)))
	hp := int(lua.LVAsNumber(e.vm.Get(-2)))
	e.vm.Pop(2)
	return LevelUpResult{HP: hp, MP: mp}
}

// CalcDeathExpPenalty 透過 Lua 計算死亡經驗懲罰（calc_death_penalty）。
// 腳本缺席時為等級經驗上限的 5%。
func (e *Engine) CalcDeathExpPenalty(level int, expMax int64) int64 {
	fn := e.vm.GetGlobal("calc_death_penalty")
	if fn == lua.LNil {
		return expMax / 20
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(level), lua.LNumber(expMax)); err != nil {
		e.log.Warn("calc_death_penalty 執行失敗", zap.Error(err))
		return expMax / 20
	}
	penalty := int64(lua.LVAsNumber(e.vm.Get(-1)))
	e.vm.Pop(1)
	if penalty < 0 {
		penalty = 0
	}
	return penalty
}

// RevivalPoint is a respawn location provided by scripts/world/respawn.lua.
type RevivalPoint struct {
	X, Y float64
}

// RevivalPoints 讀取 Lua 定義的復活點列表（revival_points 全域表）。
// 腳本缺席時回傳 nil，由呼叫端套用預設。
func (e *Engine) RevivalPoints() []RevivalPoint {
	tbl, ok := e.vm.GetGlobal("revival_points").(*lua.LTable)
	if !ok {
		return nil
	}
	var points []RevivalPoint
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		points = append(points, RevivalPoint{
			X: float64(lua.LVAsNumber(entry.RawGetString("x"))),
			Y: float64(lua.LVAsNumber(entry.RawGetString("y"))),
		})
	})
	return points
}
