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

package database_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/threemu/database"
	"github.com/jetsetilly/threemu/test"
)

type noteEntry struct {
	text    string
	cleaned *int
}

func (e *noteEntry) EntryType() string {
	return "note"
}

func (e *noteEntry) String() string {
	return fmt.Sprintf("[note] %s", e.text)
}

func (e *noteEntry) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{e.text}, nil
}

func (e *noteEntry) CleanUp() error {
	if e.cleaned != nil {
		*e.cleaned++
	}
	return nil
}

func initNotes(db *database.Session) error {
	return db.RegisterEntryType("note", func(fields database.SerialisedEntry) (database.Entry, error) {
		if len(fields) != 1 {
			return nil, fmt.Errorf("wrong number of fields (%d)", len(fields))
		}
		return &noteEntry{text: fields[0]}, nil
	})
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "db")

	db, err := database.StartSession(path, database.ActivityCreating, initNotes)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 0)

	// commas and quotes must survive the CSV encoding
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "first, with comma"}))
	test.ExpectSuccess(t, db.Add(&noteEntry{text: `second "quoted"`}))
	test.ExpectSuccess(t, db.EndSession(true))

	db, err = database.StartSession(path, database.ActivityReading, initNotes)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, db.NumEntries(), 2)

	ent, err := db.Get(0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ent.String(), "[note] first, with comma")

	ent, err = db.Get(1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ent.String(), `[note] second "quoted"`)

	_, err = db.Get(2)
	test.ExpectFailure(t, err)

	// reading sessions cannot modify the database
	test.ExpectFailure(t, db.Add(&noteEntry{text: "third"}))
	test.ExpectFailure(t, db.Delete(0))
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(path, database.ActivityCreating, initNotes)
	test.DemandSuccess(t, err)

	var cleaned int
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "a", cleaned: &cleaned}))
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "b", cleaned: &cleaned}))
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "c", cleaned: &cleaned}))

	test.ExpectSuccess(t, db.Delete(1))
	test.ExpectEquality(t, cleaned, 1)
	test.ExpectFailure(t, db.Delete(1))

	// the free key is reused
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "d"}))
	ent, err := db.Get(1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ent.String(), "[note] d")
}

func TestList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(path, database.ActivityCreating, initNotes)
	test.DemandSuccess(t, err)

	var s strings.Builder
	test.ExpectSuccess(t, db.List(&s))
	test.ExpectEquality(t, s.String(), "database is empty\n")

	test.ExpectSuccess(t, db.Add(&noteEntry{text: "a"}))
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "b"}))

	s.Reset()
	test.ExpectSuccess(t, db.List(&s))
	test.ExpectEquality(t, s.String(), "000 [note] a\n001 [note] b\nTotal: 2\n")
}

func TestSelect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(path, database.ActivityCreating, initNotes)
	test.DemandSuccess(t, err)

	for _, s := range []string{"a", "b", "c"} {
		test.ExpectSuccess(t, db.Add(&noteEntry{text: s}))
	}

	var seen []string
	_, err = db.SelectAll(func(e database.Entry) error {
		seen = append(seen, e.(*noteEntry).text)
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, strings.Join(seen, ""), "abc")

	seen = seen[:0]
	ent, err := db.SelectKeys(func(e database.Entry) error {
		seen = append(seen, e.(*noteEntry).text)
		return nil
	}, 2, 0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, strings.Join(seen, ""), "ca")
	test.ExpectEquality(t, ent.String(), "[note] a")

	_, err = db.SelectKeys(nil, 5)
	test.ExpectFailure(t, err)

	// select stops on the first error
	seen = seen[:0]
	_, err = db.SelectAll(func(e database.Entry) error {
		seen = append(seen, e.(*noteEntry).text)
		return fmt.Errorf("stop")
	})
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, len(seen), 1)
}

func TestUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	db, err := database.StartSession(path, database.ActivityCreating, initNotes)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, db.Add(&noteEntry{text: "a"}))
	test.ExpectSuccess(t, db.EndSession(true))

	// a session without the note type registered cannot read the file
	_, err = database.StartSession(path, database.ActivityReading, nil)
	test.ExpectFailure(t, err)

	// a missing database is only acceptable when creating
	_, err = database.StartSession(filepath.Join(t.TempDir(), "missing"), database.ActivityModifying, initNotes)
	test.ExpectFailure(t, err)

	// duplicate registration
	_, err = database.StartSession(path, database.ActivityReading, func(db *database.Session) error {
		if err := initNotes(db); err != nil {
			return err
		}
		return initNotes(db)
	})
	test.ExpectFailure(t, err)
}
