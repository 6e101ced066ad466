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

package hardware

import (
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/dma"
)

// ChannelState is the state of a single DMA channel.
type ChannelState struct {
	Engine      string
	Index       int
	State       dma.State
	Transferred uint32
	Err         error
}

// State is a copy of the visible state of the console. It is produced by the
// Snapshot() function.
type State struct {
	ARM9  arm.State
	ARM11 arm.State
	DMA   []ChannelState
}

// Snapshot the state of the console.
func (con *Console) Snapshot() State {
	s := State{
		ARM9:  con.ARM9.State(),
		ARM11: con.ARM11.State(),
	}

	for _, e := range con.Engines() {
		for _, ch := range e.Channels() {
			cs := ChannelState{
				Engine:      ch.Engine(),
				Index:       ch.Index(),
				State:       ch.State(),
				Transferred: ch.Transferred(),
			}
			if err := ch.Err(); err != nil {
				cs.Err = *err
			}
			s.DMA = append(s.DMA, cs)
		}
	}

	return s
}

// CoreStates implements the digest.Machine interface.
func (con *Console) CoreStates() []arm.State {
	return []arm.State{con.ARM9.State(), con.ARM11.State()}
}

// Coprocessors implements the digest.Machine interface.
func (con *Console) Coprocessors() [][]uint32 {
	return [][]uint32{con.ARM9.CP15.Registers(), con.ARM11.CP15.Registers()}
}

// RAM implements the digest.Machine interface. The TCM of the ARM9 follows
// the RAM regions of the bus.
func (con *Console) RAM() [][]byte {
	var r [][]byte
	for _, ram := range con.Bus.Regions() {
		r = append(r, ram.Data())
	}
	return append(r, con.ARM9.TCM.ITCM[:], con.ARM9.TCM.DTCM[:])
}
