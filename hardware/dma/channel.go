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

// Package dma contains the parts shared by the two DMA engines of the console:
// the channel state machine and the burst transfer logic. The engines
// themselves are in the ndma and xdma sub-packages.
//
// DMA engines are bus masters. They read and write memory through their own
// bus.Port and never see the TCM of the ARM9. An engine is advanced by calling
// its Tick() function once per scheduler round. Every Running channel moves
// one burst per tick. Channels are advanced in index order.
//
// Completion is a level in a status register. No interrupt is delivered to
// either core.
package dma

import (
	"fmt"

	"github.com/jetsetilly/threemu/logger"
)

// State of a DMA channel.
type State int

// List of valid State values.
//
//	Idle -> Configured -> Running -> Complete | Error -> Idle
const (
	Idle State = iota
	Configured
	Running
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Configured:
		return "Configured"
	case Running:
		return "Running"
	case Complete:
		return "Complete"
	case Error:
		return "Error"
	}
	panic("unknown DMA channel state")
}

// Bits of the STATUS register of a channel.
const (
	StatusStateMask = 0x07
	StatusError     = 0x08
	StatusAck       = 0x01
)

// Channel implements the state machine of a single DMA channel. The
// register layout and the transfer itself are the responsibility of the
// engine.
type Channel struct {
	engine string
	index  int

	state State

	// the error that caused the channel to enter the Error state
	err *TransferError

	// number of bytes moved since the channel was started
	transferred uint32
}

// NewChannel is the preferred method of initialisation for the Channel type.
func NewChannel(engine string, index int) *Channel {
	return &Channel{
		engine: engine,
		index:  index,
	}
}

func (ch *Channel) String() string {
	if ch.err != nil {
		return fmt.Sprintf("%s%d: %s (%v)", ch.engine, ch.index, ch.state, ch.err)
	}
	return fmt.Sprintf("%s%d: %s", ch.engine, ch.index, ch.state)
}

// Engine returns the name of the engine the channel belongs to.
func (ch *Channel) Engine() string {
	return ch.engine
}

// Index returns the channel number.
func (ch *Channel) Index() int {
	return ch.index
}

// State returns the current state of the channel.
func (ch *Channel) State() State {
	return ch.state
}

// Err returns the error recorded when the channel entered the Error state.
// Returns nil in every other state.
func (ch *Channel) Err() *TransferError {
	return ch.err
}

// Transferred returns the number of bytes moved since the channel was
// started.
func (ch *Channel) Transferred() uint32 {
	return ch.transferred
}

// Advance records the number of bytes moved by a burst.
func (ch *Channel) Advance(n uint32) {
	ch.transferred += n
}

// Status returns the value of the STATUS register: the state in the low three
// bits and the error flag in bit 3.
func (ch *Channel) Status() uint32 {
	v := uint32(ch.state) & StatusStateMask
	if ch.state == Error {
		v |= StatusError
	}
	return v
}

// Configure moves the channel from Idle to Configured. Has no effect in any
// other state.
func (ch *Channel) Configure() {
	if ch.state == Idle {
		ch.state = Configured
	}
}

// Start moves the channel from Configured to Running. A start in any other
// state is ignored and logged. Returns true if the channel was started.
func (ch *Channel) Start() bool {
	if ch.state != Configured {
		logger.Logf(logger.Allow, ch.engine, "channel %d: start ignored in %s state", ch.index, ch.state)
		return false
	}
	ch.state = Running
	ch.transferred = 0
	return true
}

// Finish moves a Running channel to Complete.
func (ch *Channel) Finish() {
	if ch.state == Running {
		ch.state = Complete
	}
}

// Fail moves a Running channel to Error and records the reason.
func (ch *Channel) Fail(err *TransferError) {
	if ch.state == Running {
		ch.state = Error
		ch.err = err
		logger.Log(logger.Allow, ch.engine, err.Error())
	}
}

// Acknowledge moves a Complete or Error channel back to Idle. The channel
// must be configured again before it can be started.
func (ch *Channel) Acknowledge() {
	switch ch.state {
	case Complete, Error:
		ch.state = Idle
		ch.err = nil
	}
}

// Reset the channel to Idle without acknowledgement.
func (ch *Channel) Reset() {
	ch.state = Idle
	ch.err = nil
	ch.transferred = 0
}
