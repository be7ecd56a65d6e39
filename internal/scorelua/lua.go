// Package scorelua builds songs from Lua scripts. Every assembler mnemonic
// is exposed as a global function, so
//
//	channel(0)
//	wave("tri")
//	for _, p in ipairs({"C4", "E4", "G4"}) do note(p, 2) end
//	stop()
//
// assembles like the equivalent text source. "end" is a Lua keyword, so
// the End command is spelled stop().
package scorelua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/icco/scoresynth/internal/score"
	lua "github.com/yuin/gopher-lua"
)

var mnemonics = []string{
	"channel", "sub",
	"note", "rest",
	"wave", "vol", "fade", "tempo",
	"loop", "endloop", "call", "ret", "restart",
	"attack", "release", "transpose", "debug", "db",
}

// Compile runs src and returns the song it assembled. name is used in
// error messages and as the song name.
func Compile(src, name string) (*score.Song, error) {
	L := lua.NewState()
	defer L.Close()

	a := score.NewAssembler()
	for _, m := range mnemonics {
		L.SetGlobal(m, L.NewFunction(command(a, m)))
	}
	L.SetGlobal("stop", L.NewFunction(command(a, "end")))
	L.SetGlobal("pitch", L.NewFunction(pitch))

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("error running %s: %w", name, err)
	}

	song := a.Song()
	song.Name = name
	return song, nil
}

// ReadFile compiles the Lua script at path.
func ReadFile(path string) (*score.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading song: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Compile(string(data), name)
}

func command(a *score.Assembler, mnemonic string) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]string, L.GetTop())
		for i := range args {
			args[i] = L.Get(i + 1).String()
		}
		if err := a.Exec(mnemonic, args); err != nil {
			L.RaiseError("%s: %s", mnemonic, err.Error())
		}
		return 0
	}
}

// pitch converts a note name to its index, for arithmetic in scripts.
func pitch(L *lua.LState) int {
	p, err := score.ParsePitch(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LNumber(p))
	return 1
}
