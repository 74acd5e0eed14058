package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riftgo/server/internal/config"
	"github.com/riftgo/server/internal/core/event"
	coresys "github.com/riftgo/server/internal/core/system"
	"github.com/riftgo/server/internal/data"
	"github.com/riftgo/server/internal/handler"
	gonet "github.com/riftgo/server/internal/net"
	"github.com/riftgo/server/internal/net/packet"
	"github.com/riftgo/server/internal/persist"
	"github.com/riftgo/server/internal/scripting"
	"github.com/riftgo/server/internal/system"
	"github.com/riftgo/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             RiftGO  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      權威制即時戰鬥 · Go 遊戲伺服器       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RIFTGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)

	// 5. Load static data
	printSection("資料載入")

	skillTable, err := data.LoadSkillTable("data/skills.yaml")
	if err != nil {
		return fmt.Errorf("load skill table: %w", err)
	}
	printStat("技能", skillTable.Count())

	expCurve, err := data.LoadExpCurve("data/exp_curve.yaml")
	if err != nil {
		return fmt.Errorf("load exp curve: %w", err)
	}
	printStat("經驗等級", int(expCurve.MaxLevel()))

	// 5a. Lua scripting engine (growth formulas, revival points)
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua 腳本載入完成")

	// 5b. World state with revival points from script
	revivals := []world.Vec2{{X: 0, Y: 0}}
	if pts := luaEngine.RevivalPoints(); len(pts) > 0 {
		revivals = revivals[:0]
		for _, p := range pts {
			revivals = append(revivals, world.Vec2{X: p.X, Y: p.Y})
		}
	}
	bounds := world.Bounds{Min: world.Vec2{X: -500, Y: -500}, Max: world.Vec2{X: 500, Y: 500}}
	worldState := world.NewState(bounds, revivals)
	printStat("復活點", len(revivals))

	// 5c. Spawn hostile creatures
	npcCount := spawnCreatures(worldState, skillTable, bounds)
	printStat("怪物生成", npcCount)
	fmt.Println()

	// 6. Event bus, packet registry, shared deps
	bus := event.NewBus()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config:     cfg,
		Log:        log,
		World:      worldState,
		Skills:     skillTable,
		Curve:      expCurve,
		Scripting:  luaEngine,
		Bus:        bus,
		Accounts:   accountRepo,
		Characters: charRepo,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		pktPerSec,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	sessions := gonet.NewSessionStore()

	// 8. Systems, phase-ordered
	ledger := system.NewLedger(expCurve, luaEngine, bus, cfg.Progression.MaxLevel)

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(deps, netServer, sessions, pktReg))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewNPCAISystem(deps))
	runner.Register(system.NewActorSystem(deps))
	runner.Register(system.NewProgressionSystem(deps, ledger))
	runner.Register(system.NewMovementSystem(deps))
	runner.Register(system.NewRegenSystem(deps))
	runner.Register(system.NewReplicationSystem(deps, sessions))
	persistSys := system.NewPersistenceSystem(deps)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(deps))

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			persistSys.SaveDirty()
			netServer.Shutdown()
			log.Info("伺服器已停止")
			return nil
		}
	}
}

// 開發環境的固定怪物配置：沒有生成表時撒一圈基本怪。
func spawnCreatures(ws *world.State, skills *data.SkillTable, bounds world.Bounds) int {
	if skills.Get(1) == nil {
		return 0
	}
	spawns := []world.Vec2{
		{X: 30, Y: 30}, {X: -40, Y: 25}, {X: 60, Y: -15},
		{X: -25, Y: -50}, {X: 80, Y: 40}, {X: -70, Y: -30},
	}
	for i, p := range spawns {
		a := &world.ActorInfo{
			Name:            fmt.Sprintf("裂隙魔物%d", i+1),
			Level:           int16(3 + i*2),
			HP:              80,
			MaxHP:           80,
			MP:              20,
			MaxMP:           20,
			Mover:           world.NewSteeringMover(bounds.Clamp(p), 3.5, bounds),
			CollisionRadius: 0.5,
			Speed:           3.5,
			Skills:          []world.LearnedSkill{{SkillID: 1, Level: 1}},
			ExpReward:       int64(40 + i*20),
		}
		ws.SpawnActor(a, false)
	}
	return len(spawns)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
