package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tunable game rules: damage
// resolution, kill rewards, and discovery hooks live in scripts so they can
// change without a rebuild. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Missing subdirectories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"combat", "world"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
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

// HitContext holds pre-packed data for a projectile hit calculation.
type HitContext struct {
	WeaponDamage int32
	TargetHull   int32
	TargetMax    int32
	Shielded     bool
	Danger       int // danger level of the sector the hit happened in (0 in deep space)
}

// CalcHitDamage calls the Lua calc_hit_damage function. Falls back to the
// raw weapon damage when the hook is missing or broken.
func (e *Engine) CalcHitDamage(ctx HitContext) int32 {
	fn := e.vm.GetGlobal("calc_hit_damage")
	if fn == lua.LNil {
		return ctx.WeaponDamage
	}

	t := e.vm.NewTable()
	t.RawSetString("weapon_damage", lua.LNumber(ctx.WeaponDamage))
	t.RawSetString("target_hull", lua.LNumber(ctx.TargetHull))
	t.RawSetString("target_max", lua.LNumber(ctx.TargetMax))
	t.RawSetString("shielded", lua.LBool(ctx.Shielded))
	t.RawSetString("danger", lua.LNumber(ctx.Danger))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_hit_damage failed", zap.Error(err))
		return ctx.WeaponDamage
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if n, ok := ret.(lua.LNumber); ok && n > 0 {
		return int32(n)
	}
	return ctx.WeaponDamage
}

// RewardContext holds pre-packed data for a kill reward calculation.
type RewardContext struct {
	Class   string
	Credits int64 // template base reward
	Score   int64
	Danger  int
}

// KillReward calls the Lua kill_reward function, which may scale the
// template values. Falls back to the base values.
func (e *Engine) KillReward(ctx RewardContext) (credits, score int64) {
	fn := e.vm.GetGlobal("kill_reward")
	if fn == lua.LNil {
		return ctx.Credits, ctx.Score
	}

	t := e.vm.NewTable()
	t.RawSetString("class", lua.LString(ctx.Class))
	t.RawSetString("credits", lua.LNumber(ctx.Credits))
	t.RawSetString("score", lua.LNumber(ctx.Score))
	t.RawSetString("danger", lua.LNumber(ctx.Danger))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, t); err != nil {
		e.log.Error("lua kill_reward failed", zap.Error(err))
		return ctx.Credits, ctx.Score
	}
	scoreRet := e.vm.Get(-1)
	creditsRet := e.vm.Get(-2)
	e.vm.Pop(2)

	credits, score = ctx.Credits, ctx.Score
	if n, ok := creditsRet.(lua.LNumber); ok && n >= 0 {
		credits = int64(n)
	}
	if n, ok := scoreRet.(lua.LNumber); ok && n >= 0 {
		score = int64(n)
	}
	return credits, score
}

// OnSectorDiscovered calls the optional Lua discovery hook. Script errors
// are logged, never propagated; discovery itself already happened.
func (e *Engine) OnSectorDiscovered(name string, danger int) {
	fn := e.vm.GetGlobal("on_sector_discovered")
	if fn == lua.LNil {
		return
	}
	err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
		lua.LString(name), lua.LNumber(danger))
	if err != nil {
		e.log.Error("lua on_sector_discovered failed", zap.Error(err))
	}
}
