// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

package regression

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/session"
)

// ScriptError is the sentinal error pattern for problems running a Lua script.
const ScriptError = "script: %v"

// runScript runs the Lua script with the result global. returns the boolean
// interpretation of the first value returned by the script.
func runScript(filename string, res *session.Result) (bool, error) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("result", resultTable(L, res))

	if err := L.DoFile(filename); err != nil {
		return false, curated.Errorf(ScriptError, err)
	}

	if L.GetTop() == 0 {
		return false, curated.Errorf(ScriptError, "no value returned")
	}

	return lua.LVAsBool(L.Get(1)), nil
}

func resultTable(L *lua.LState, res *session.Result) *lua.LTable {
	t := L.NewTable()

	L.SetField(t, "reason", lua.LString(res.Reason.String()))
	L.SetField(t, "core", lua.LString(res.Core))
	L.SetField(t, "instructions", lua.LNumber(res.Instructions))
	L.SetField(t, "rounds", lua.LNumber(res.Rounds))
	L.SetField(t, "digest", lua.LString(res.Digest))

	reached := L.NewTable()
	for i, c := range res.Reached {
		reached.RawSetInt(i+1, lua.LString(c))
	}
	L.SetField(t, "reached", reached)

	L.SetField(t, "arm9", registerTable(L, res.ARM9))
	L.SetField(t, "arm11", registerTable(L, res.ARM11))

	L.SetField(t, "read", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		width := L.OptInt(2, 4)
		v, ok := res.Read(addr, width)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	return t
}

func registerTable(L *lua.LState, s arm.State) *lua.LTable {
	t := L.NewTable()
	for i, r := range s.Registers {
		L.SetField(t, fmt.Sprintf("r%d", i), lua.LNumber(r))
	}
	L.SetField(t, "cpsr", lua.LNumber(s.CPSR))
	L.SetField(t, "spsr", lua.LNumber(s.SPSR))
	return t
}
