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

package session

import (
	"context"
	"image"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/digest"
	"github.com/jetsetilly/threemu/hardware"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/hardware/peripherals/gpu"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/logger"
	"github.com/jetsetilly/threemu/sdcard"
)

// Sentinal error patterns.
const (
	SessionError = "session: %v"
)

// Session is a single emulation of the console.
type Session struct {
	cfg Config

	Console *hardware.Console
	Image   boot.BootImage

	card  *sdcard.Card
	sched *scheduler.Scheduler
}

// New creates the console, boots the image and applies the pokes.
func New(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}

	if err := s.cfg.Image.Load(); err != nil {
		return nil, curated.Errorf(SessionError, err)
	}

	var err error
	s.Image, err = s.cfg.Image.BootImage()
	if err != nil {
		return nil, curated.Errorf(SessionError, err)
	}

	sd := cfg.SDCard
	if sd == "" {
		sd = cfg.Image.SDImage
	}
	if sd != "" {
		s.card, err = sdcard.Open(sd, cfg.SDReadOnly)
		if err != nil {
			return nil, curated.Errorf(SessionError, err)
		}
	}

	// a nil *sdcard.Card must not be given to the console as a non-nil
	// interface
	if s.card != nil {
		s.Console, err = hardware.NewConsole(s.card)
	} else {
		s.Console, err = hardware.NewConsole(nil)
	}
	if err != nil {
		_ = s.Close()
		return nil, curated.Errorf(SessionError, err)
	}

	if cfg.Trace {
		s.Console.ARM9.SetTrace(true)
		s.Console.ARM11.SetTrace(true)
	}

	if err := s.Console.Boot(s.Image); err != nil {
		_ = s.Close()
		return nil, curated.Errorf(SessionError, err)
	}
	logger.Logf(logger.Allow, "session", "booted %s: %s", cfg.Image.ShortName(), s.Image.String())

	for _, p := range cfg.Pokes {
		if err := s.Console.Poke(p.Address, p.Width, p.Value); err != nil {
			_ = s.Close()
			return nil, curated.Errorf(SessionError, curated.Errorf(BadPoke, err))
		}
	}

	s.sched = s.Console.NewScheduler(cfg.Stop)

	return s, nil
}

// Close the session. The SD card image is closed.
func (s *Session) Close() error {
	if s.card != nil {
		err := s.card.Close()
		s.card = nil
		return err
	}
	return nil
}

// Config returns the configuration of the session.
func (s *Session) Config() Config {
	return s.cfg
}

// Scheduler returns the scheduler of the session. Useful for stepping the
// session one round at a time.
func (s *Session) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// Run the session until the stop condition is met, a core faults, the
// timeout expires or the context is done. A fault is not an error. The
// returned error is for problems creating the Result.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	o := s.sched.Run(ctx)
	logger.Logf(logger.Allow, "session", "%s", o.String())

	return s.Result(o)
}

// Result creates a Result for the current state of the session.
func (s *Session) Result(o scheduler.Outcome) (*Result, error) {
	snap := s.Console.Snapshot()

	res := &Result{
		Reason:       o.Reason,
		Core:         o.Core,
		Err:          o.Err,
		Instructions: o.Instructions,
		Rounds:       o.Rounds,
		Reached:      o.Reached,
		ARM9:         snap.ARM9,
		ARM11:        snap.ARM11,
		DMA:          snap.DMA,
	}

	if s.cfg.Stop.ARM9 != nil {
		res.Targets = append(res.Targets, "ARM9")
	}
	if s.cfg.Stop.ARM11 != nil {
		res.Targets = append(res.Targets, "ARM11")
	}

	for _, c := range s.cfg.Captures {
		data, err := s.Console.Bus.Dump(c.Address, c.Length)
		if err != nil {
			return nil, curated.Errorf(BadCapture, err)
		}
		res.Captures = append(res.Captures, Captured{Capture: c, Data: data})
	}

	res.digest.Update(s.Console)
	res.Digest = res.digest.Hash()

	return res, nil
}

// Screenshot of one of the screens.
func (s *Session) Screenshot(screen gpu.Screen, scale int) (*image.RGBA, error) {
	return s.Console.GPU.Screenshot(s.Console.Bus, screen, scale)
}

// ScreenDigest returns the SHA-1 of the unscaled screen.
func (s *Session) ScreenDigest(screen gpu.Screen) (string, error) {
	img, err := s.Screenshot(screen, 1)
	if err != nil {
		return "", err
	}
	var dig digest.Image
	dig.Update(img)
	return dig.Hash(), nil
}
