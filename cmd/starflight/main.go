package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ematoledor/starflight-server/internal/config"
	"github.com/ematoledor/starflight-server/internal/core/event"
	coresys "github.com/ematoledor/starflight-server/internal/core/system"
	"github.com/ematoledor/starflight-server/internal/data"
	"github.com/ematoledor/starflight-server/internal/persist"
	"github.com/ematoledor/starflight-server/internal/physics"
	"github.com/ematoledor/starflight-server/internal/scripting"
	"github.com/ematoledor/starflight-server/internal/system"
	"github.com/ematoledor/starflight-server/internal/telemetry"
	"github.com/ematoledor/starflight-server/internal/universe"
	"github.com/ematoledor/starflight-server/internal/world"
)

const pilotWeaponID = "pulse_laser"

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
	fmt.Println("\033[36;1m  │\033[0m          Starflight Server v0.1.0         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mServer:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
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
	if p := os.Getenv("STARFLIGHT_CONFIG"); p != "" {
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
	printSection("Database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Load pilot profile
	pilotRepo := persist.NewPilotRepo(db)

	callsign := cfg.Server.Name
	if c := os.Getenv("STARFLIGHT_CALLSIGN"); c != "" {
		callsign = c
	}
	profile, err := pilotRepo.LoadOrCreate(ctx, callsign)
	if err != nil {
		return fmt.Errorf("pilot profile: %w", err)
	}
	session := world.NewPilotSession(profile.ID, profile.Callsign)
	session.Credits = profile.Credits
	session.Score = profile.Score
	session.Kills = int64(profile.Kills)
	session.Deaths = int64(profile.Deaths)

	discovered, err := pilotRepo.Discoveries(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("load discoveries: %w", err)
	}
	for _, name := range discovered {
		session.Discovered[name] = true
	}

	// 5. Load data tables
	printSection("Data")

	sectorTable, err := data.LoadSectorTable(cfg.Universe.SectorFile)
	if err != nil {
		return fmt.Errorf("load sector table: %w", err)
	}
	printStat("sector definitions", sectorTable.Count())

	shipTable, err := data.LoadShipTable(cfg.Universe.ShipFile)
	if err != nil {
		return fmt.Errorf("load ship table: %w", err)
	}
	printStat("ship templates", shipTable.Count())

	weaponTable, err := data.LoadWeaponTable(cfg.Universe.WeaponFile)
	if err != nil {
		return fmt.Errorf("load weapon table: %w", err)
	}
	printStat("weapon templates", weaponTable.Count())

	// 6. Lua scripting engine
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")

	// 7. Build the world
	state := world.NewState()
	space := physics.NewSpace(500, state.Entities.Registry())
	bus := event.NewBus()

	gen := universe.NewGenerator(state, space, sectorTable, shipTable, weaponTable,
		universe.Options{
			Seed:       cfg.Universe.Seed,
			TickRate:   cfg.Simulation.TickRate,
			RespawnMin: cfg.Universe.RespawnMin,
			RespawnMax: cfg.Universe.RespawnMax,
		}, log)
	if err := gen.Generate(); err != nil {
		return fmt.Errorf("generate universe: %w", err)
	}
	printStat("sectors populated", len(state.Sectors))
	printStat("aliens spawned", state.AlienCount())
	printStat("planets", len(state.Planets))
	printStat("asteroid fields", len(state.AsteroidFields))
	printStat("anomalies", len(state.Anomalies))

	if _, err := gen.SpawnPilot(pilotWeaponID); err != nil {
		return fmt.Errorf("spawn pilot: %w", err)
	}
	printOK(fmt.Sprintf("pilot %q in flight", callsign))
	fmt.Println()

	// 8. Telemetry hub
	hub := telemetry.NewHub(cfg.Telemetry, log)
	go func() {
		if err := hub.Serve(); err != nil {
			log.Error("telemetry hub stopped", zap.Error(err))
		}
	}()

	// 9. Systems, in phase order
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(state, hub, cfg.Simulation.MaxCommandsPerTick))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewAISystem(state, space, gen.Rand(), cfg.Universe.HysteresisMargin))
	runner.Register(system.NewMovementSystem(state, space))
	runner.Register(system.NewCombatSystem(state, space, bus, luaEngine, gen, session,
		cfg.Rates, cfg.Simulation.TickRate, log))
	runner.Register(system.NewRegenSystem(state))
	hazards := system.NewHazardSystem(state, space, gen, log)
	hazards.Prime()
	runner.Register(hazards)
	discovery := system.NewDiscoverySystem(state, bus, luaEngine, session, log)
	runner.Register(discovery)
	runner.Register(system.NewDeferredActionSystem(state))
	runner.Register(system.NewTelemetrySystem(state, hub, bus, session, discovery))
	persistence := system.NewPersistenceSystem(state, pilotRepo, session,
		cfg.Simulation.AutosaveInterval, log)
	runner.Register(persistence)
	runner.Register(system.NewCleanupSystem(state.Entities))

	// 10. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("telemetry on ws://%s/ws", cfg.Telemetry.BindAddress))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			state.AdvanceTick()
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			persistence.Flush()
			log.Info("server stopped")
			return nil
		}
	}
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
