package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
)

const luaEntityType = "ember.entity"

// Engine wraps a single gopher-lua VM for entity behavior scripts.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all .lua files from the given
// directory. A missing directory yields an engine with no scripts loaded.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerEntityType()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
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

// Script binds a global Lua table to the entity script interface. The table
// may define init(e), update(dt, e), and destroy(e) functions; missing
// functions are skipped.
func (e *Engine) Script(table string) (entity.Script, error) {
	v := e.vm.GetGlobal(table)
	if _, ok := v.(*lua.LTable); !ok {
		return nil, fmt.Errorf("lua script table %q not found", table)
	}
	return &luaScript{eng: e, table: table}, nil
}

type luaScript struct {
	eng   *Engine
	table string
}

func (s *luaScript) Init(ent *entity.Entity) {
	s.call("init", ent, nil)
}

func (s *luaScript) Update(dt float64, ent *entity.Entity) {
	d := lua.LNumber(dt)
	s.call("update", ent, &d)
}

func (s *luaScript) Destroy(ent *entity.Entity) {
	s.call("destroy", ent, nil)
}

func (s *luaScript) call(fn string, ent *entity.Entity, dt *lua.LNumber) {
	vm := s.eng.vm
	tbl, ok := vm.GetGlobal(s.table).(*lua.LTable)
	if !ok {
		return
	}
	f := vm.GetField(tbl, fn)
	if f == lua.LNil {
		return
	}

	args := make([]lua.LValue, 0, 2)
	if dt != nil {
		args = append(args, *dt)
	}
	args = append(args, s.eng.wrap(ent))

	if err := vm.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, args...); err != nil {
		s.eng.log.Error("lua script failed",
			zap.String("script", s.table),
			zap.String("fn", fn),
			zap.Error(err))
	}
}

// wrap builds the entity userdata handed to script functions.
func (e *Engine) wrap(ent *entity.Entity) *lua.LUserData {
	ud := e.vm.NewUserData()
	ud.Value = ent
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(luaEntityType))
	return ud
}

func (e *Engine) registerEntityType() {
	mt := e.vm.NewTypeMetatable(luaEntityType)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"name":        entName,
		"position":    entPosition,
		"setPosition": entSetPosition,
		"rotation":    entRotation,
		"setRotation": entSetRotation,
		"scale":       entScale,
		"setScale":    entSetScale,
		"enabled":     entEnabled,
		"setEnabled":  entSetEnabled,
		"visible":     entVisible,
		"setVisible":  entSetVisible,
		"hasTag":      entHasTag,
		"tag":         entTag,
		"untag":       entUntag,
	}))
}

func checkEntity(L *lua.LState) *entity.Entity {
	ud := L.CheckUserData(1)
	if ent, ok := ud.Value.(*entity.Entity); ok {
		return ent
	}
	L.ArgError(1, "entity expected")
	return nil
}

func entName(L *lua.LState) int {
	L.Push(lua.LString(checkEntity(L).Name()))
	return 1
}

func pushVec3(L *lua.LState, v mgl64.Vec3) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}

func checkVec3(L *lua.LState) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(L.CheckNumber(2)),
		float64(L.CheckNumber(3)),
		float64(L.CheckNumber(4)),
	}
}

func entPosition(L *lua.LState) int {
	return pushVec3(L, checkEntity(L).Position())
}

func entSetPosition(L *lua.LState) int {
	checkEntity(L).SetPosition(checkVec3(L))
	return 0
}

func entRotation(L *lua.LState) int {
	return pushVec3(L, checkEntity(L).Rotation())
}

func entSetRotation(L *lua.LState) int {
	checkEntity(L).SetRotation(checkVec3(L))
	return 0
}

func entScale(L *lua.LState) int {
	return pushVec3(L, checkEntity(L).Scale())
}

func entSetScale(L *lua.LState) int {
	checkEntity(L).SetScale(checkVec3(L))
	return 0
}

func entEnabled(L *lua.LState) int {
	L.Push(lua.LBool(checkEntity(L).Enabled()))
	return 1
}

func entSetEnabled(L *lua.LState) int {
	checkEntity(L).SetEnabled(L.CheckBool(2))
	return 0
}

func entVisible(L *lua.LState) int {
	L.Push(lua.LBool(checkEntity(L).Visible()))
	return 1
}

func entSetVisible(L *lua.LState) int {
	checkEntity(L).SetVisible(L.CheckBool(2))
	return 0
}

func entHasTag(L *lua.LState) int {
	L.Push(lua.LBool(checkEntity(L).HasTag(L.CheckString(2))))
	return 1
}

func entTag(L *lua.LState) int {
	checkEntity(L).Tag(L.CheckString(2))
	return 0
}

func entUntag(L *lua.LState) int {
	checkEntity(L).Untag(L.CheckString(2))
	return 0
}
