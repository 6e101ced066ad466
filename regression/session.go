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
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/database"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/imageloader"
	"github.com/jetsetilly/threemu/session"
)

const sessionEntryType = "session"

const (
	sessionFieldImage int = iota
	sessionFieldSDImage
	sessionFieldFormat
	sessionFieldCore
	sessionFieldBase
	sessionFieldHash
	sessionFieldSDCard
	sessionFieldARM9Stop
	sessionFieldARM11Stop
	sessionFieldMax
	sessionFieldRequireAll
	sessionFieldPokes
	sessionFieldCaptures
	sessionFieldReason
	sessionFieldDigest
	sessionFieldScript
	sessionFieldNotes
	numSessionFields
)

// SessionRegression runs a session to completion and compares the terminal
// reason and digest of the final machine state with the recorded values.
type SessionRegression struct {
	Image    imageloader.Loader
	SDCard   string
	Stop     scheduler.StopCondition
	Pokes    []session.Poke
	Captures []session.Capture
	Notes    string

	// path to the Lua expectation script. empty if there is no script. the
	// script is copied into the regression scripts directory when the entry
	// is added and the field is updated to name the copy
	Script string

	// recorded when the regression is added
	Reason scheduler.Reason
	Digest string
}

// NewSessionRegression is the preferred method of initialisation for the
// SessionRegression type.
func NewSessionRegression(ld imageloader.Loader) *SessionRegression {
	return &SessionRegression{
		Image: ld,
	}
}

func deserialiseSessionEntry(fields database.SerialisedEntry) (database.Entry, error) {
	if len(fields) != numSessionFields {
		return nil, curated.Errorf("session: wrong number of fields (%d)", len(fields))
	}

	reg := &SessionRegression{}

	reg.Image = imageloader.Loader{
		Filename: fields[sessionFieldImage],
		SDImage:  fields[sessionFieldSDImage],
		Format:   fields[sessionFieldFormat],
		Core:     fields[sessionFieldCore],
		Hash:     fields[sessionFieldHash],
	}

	base, err := strconv.ParseUint(fields[sessionFieldBase], 16, 32)
	if err != nil {
		return nil, curated.Errorf("session: invalid base address (%s)", fields[sessionFieldBase])
	}
	reg.Image.Base = uint32(base)

	reg.SDCard = fields[sessionFieldSDCard]

	reg.Stop.ARM9, err = deserialiseStop(fields[sessionFieldARM9Stop])
	if err != nil {
		return nil, err
	}
	reg.Stop.ARM11, err = deserialiseStop(fields[sessionFieldARM11Stop])
	if err != nil {
		return nil, err
	}

	reg.Stop.MaxInstructions, err = strconv.ParseUint(fields[sessionFieldMax], 10, 64)
	if err != nil {
		return nil, curated.Errorf("session: invalid instruction budget (%s)", fields[sessionFieldMax])
	}

	reg.Stop.RequireAll, err = strconv.ParseBool(fields[sessionFieldRequireAll])
	if err != nil {
		return nil, curated.Errorf("session: invalid require all flag (%s)", fields[sessionFieldRequireAll])
	}

	for _, s := range strings.Fields(fields[sessionFieldPokes]) {
		p, err := session.ParsePoke(s)
		if err != nil {
			return nil, err
		}
		reg.Pokes = append(reg.Pokes, p)
	}

	for _, s := range strings.Fields(fields[sessionFieldCaptures]) {
		c, err := session.ParseCapture(s)
		if err != nil {
			return nil, err
		}
		reg.Captures = append(reg.Captures, c)
	}

	var ok bool
	reg.Reason, ok = scheduler.ParseReason(fields[sessionFieldReason])
	if !ok {
		return nil, curated.Errorf("session: invalid reason (%s)", fields[sessionFieldReason])
	}

	reg.Digest = fields[sessionFieldDigest]
	reg.Script = fields[sessionFieldScript]
	reg.Notes = fields[sessionFieldNotes]

	return reg, nil
}

func deserialiseStop(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, curated.Errorf("session: invalid stop address (%s)", s)
	}
	a := uint32(v)
	return &a, nil
}

func serialiseStop(a *uint32) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%08x", *a)
}

// EntryType implements the database.Entry interface.
func (reg *SessionRegression) EntryType() string {
	return sessionEntryType
}

// Serialise implements the database.Entry interface.
func (reg *SessionRegression) Serialise() (database.SerialisedEntry, error) {
	var pokes []string
	for _, p := range reg.Pokes {
		pokes = append(pokes, fmt.Sprintf("0x%08x/%d=0x%08x", p.Address, p.Width, p.Value))
	}

	var captures []string
	for _, c := range reg.Captures {
		captures = append(captures, fmt.Sprintf("0x%08x+0x%x", c.Address, c.Length))
	}

	return database.SerialisedEntry{
		reg.Image.Filename,
		reg.Image.SDImage,
		reg.Image.Format,
		reg.Image.Core,
		fmt.Sprintf("%08x", reg.Image.Base),
		reg.Image.Hash,
		reg.SDCard,
		serialiseStop(reg.Stop.ARM9),
		serialiseStop(reg.Stop.ARM11),
		strconv.FormatUint(reg.Stop.MaxInstructions, 10),
		strconv.FormatBool(reg.Stop.RequireAll),
		strings.Join(pokes, " "),
		strings.Join(captures, " "),
		reg.Reason.String(),
		reg.Digest,
		reg.Script,
		reg.Notes,
	}, nil
}

// CleanUp implements the database.Entry interface. The copy of the Lua script
// is removed.
func (reg *SessionRegression) CleanUp() error {
	if reg.Script == "" {
		return nil
	}
	err := os.Remove(reg.Script)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// String implements the database.Entry interface.
func (reg *SessionRegression) String() string {
	s := strings.Builder{}

	s.WriteString(fmt.Sprintf("[%s] %s", reg.EntryType(), reg.Image.ShortName()))
	if reg.Image.SDImage != "" {
		s.WriteString(" (sd)")
	}
	s.WriteString(fmt.Sprintf(" %s", reg.Stop))
	if reg.Script != "" {
		s.WriteString(" [lua]")
	}
	if reg.Notes != "" {
		s.WriteString(fmt.Sprintf(" [%s]", reg.Notes))
	}

	return s.String()
}

// regress implements the Regressor interface.
func (reg *SessionRegression) regress(ctx context.Context, newRegression bool) (bool, string, error) {
	// a session that never ends can not be a regression test
	if reg.Stop.MaxInstructions == 0 {
		return false, "", curated.Errorf("session: an instruction budget is required")
	}

	cfg := session.Config{
		Image:      reg.Image,
		SDCard:     reg.SDCard,
		SDReadOnly: true,
		Stop:       reg.Stop,
		Pokes:      reg.Pokes,
		Captures:   reg.Captures,
	}

	sess, err := session.New(cfg)
	if err != nil {
		return false, "", err
	}
	defer func() {
		_ = sess.Close()
	}()

	res, err := sess.Run(ctx)
	if err != nil {
		return false, "", err
	}

	if newRegression {
		// the hash of the image is recorded so that a modified image is not
		// mistaken for a regression
		reg.Image.Hash = sess.Config().Image.Hash
		reg.Reason = res.Reason
		reg.Digest = res.Digest

		if reg.Script != "" {
			if err := reg.copyScript(); err != nil {
				return false, "", err
			}
		}
	} else {
		if res.Reason != reg.Reason {
			return false, fmt.Sprintf("reason %s does not match %s", res.Reason, reg.Reason), nil
		}
		if res.Digest != reg.Digest {
			return false, "digest mismatch", nil
		}
	}

	if reg.Script != "" {
		ok, err := runScript(reg.Script, res)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, "script did not return true", nil
		}
	}

	return true, "", nil
}

func (reg *SessionRegression) copyScript() error {
	dst, err := uniqueFilename("script", reg.Image)
	if err != nil {
		return curated.Errorf("session: %v", err)
	}
	dst = dst + ".lua"

	src, err := os.Open(reg.Script)
	if err != nil {
		return curated.Errorf("session: %v", err)
	}
	defer src.Close()

	f, err := os.Create(dst)
	if err != nil {
		return curated.Errorf("session: %v", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return curated.Errorf("session: %v", err)
	}

	if err := f.Close(); err != nil {
		return curated.Errorf("session: %v", err)
	}

	reg.Script = dst

	return nil
}
