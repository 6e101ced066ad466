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

package dma

import (
	"fmt"
)

// TransferError is recorded on a channel when a bus access made on behalf of
// the channel fails. The error affects only the channel and is not returned to
// either core.
type TransferError struct {
	Engine  string
	Channel int

	// the address of the failed access
	Address uint32

	// the error returned by the bus. usually a bus.Fault
	Err error
}

func (e TransferError) Error() string {
	return fmt.Sprintf("%s channel %d: transfer error at %08x: %v", e.Engine, e.Channel, e.Address, e.Err)
}

// Unwrap returns the bus error.
func (e TransferError) Unwrap() error {
	return e.Err
}
