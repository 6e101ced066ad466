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

package bus

import (
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
)

// Port is a view of the Bus from the point of view of a single bus master.
// Accesses made through a Port are subject to the visibility of the master.
type Port struct {
	bus    *Bus
	master string
	access memorymap.Access

	// number of successful accesses since the last call to ResetAccesses()
	accesses int
}

// NewPort returns a Port for the named master.
func (b *Bus) NewPort(master string, access memorymap.Access) *Port {
	return &Port{
		bus:    b,
		master: master,
		access: access,
	}
}

// Master returns the name of the bus master using the port.
func (p *Port) Master() string {
	return p.master
}

// Access returns the visibility of the port.
func (p *Port) Access() memorymap.Access {
	return p.access
}

// Read value of width bytes from the address.
func (p *Port) Read(addr uint32, width int) (uint32, error) {
	v, err := p.bus.read(p.master, p.access, addr, width)
	if err != nil {
		return 0, err
	}
	p.accesses++
	return v, nil
}

// Write value of width bytes to the address.
func (p *Port) Write(addr uint32, width int, value uint32) error {
	err := p.bus.write(p.master, p.access, addr, width, value)
	if err != nil {
		return err
	}
	p.accesses++
	return nil
}

// Accesses returns the number of successful accesses since the last call to
// ResetAccesses().
func (p *Port) Accesses() int {
	return p.accesses
}

// ResetAccesses sets the access count to zero.
func (p *Port) ResetAccesses() {
	p.accesses = 0
}

// CheckRAM returns a Fault for the first address in the range that is not in
// a RAM region visible to the master. The range may cross from one RAM region
// into an adjacent one. Peripheral windows are not RAM even when they accept
// writes.
func (p *Port) CheckRAM(addr uint32, length int) error {
	a := uint64(addr)
	end := uint64(addr) + uint64(length)
	for a < end {
		e := p.bus.lookup(uint32(a))
		if e == nil || e.ram == nil || !e.access.Sees(p.access) {
			return Fault{Kind: Unmapped, Master: p.master, Address: uint32(a), Width: 1, Write: true}
		}
		a = uint64(e.area.Origin) + uint64(e.area.Size)
	}
	return nil
}

// WriteBytes copies data to the address. Whole words are written where the
// address is word aligned and bytes are written otherwise.
func (p *Port) WriteBytes(addr uint32, data []byte) error {
	i := 0
	for i < len(data) {
		a := addr + uint32(i)
		if a&0x03 == 0 && len(data)-i >= 4 {
			v := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
			if err := p.Write(a, 4, v); err != nil {
				return err
			}
			i += 4
			continue
		}
		if err := p.Write(a, 1, uint32(data[i])); err != nil {
			return err
		}
		i++
	}
	return nil
}

// ReadBytes reads length bytes from the address, one byte at a time.
func (p *Port) ReadBytes(addr uint32, length int) ([]byte, error) {
	d := make([]byte, length)
	for i := range d {
		v, err := p.Read(addr+uint32(i), 1)
		if err != nil {
			return nil, err
		}
		d[i] = uint8(v)
	}
	return d, nil
}
