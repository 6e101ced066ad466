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

package database

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jetsetilly/threemu/curated"
)

// Activity is used to specify the general activity of what will be occurring
// during the database session.
type Activity int

// Valid activities: the "higher level" activities inherit the activity
// allowances of the lower levels.
const (
	ActivityReading Activity = iota
	ActivityModifying
	ActivityCreating
)

// Session keeps track of a database session.
type Session struct {
	path     string
	activity Activity

	entries    map[int]Entry
	entryTypes map[string]Deserialiser
}

// StartSession starts/initialises a new DB session. The init function is
// called before the database file is read and is the place to register the
// entry types.
func StartSession(path string, activity Activity, init func(*Session) error) (*Session, error) {
	db := &Session{
		path:       path,
		activity:   activity,
		entries:    make(map[int]Entry),
		entryTypes: make(map[string]Deserialiser),
	}

	if init != nil {
		if err := init(db); err != nil {
			return nil, curated.Errorf("database: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && activity == ActivityCreating {
			return db, nil
		}
		return nil, curated.Errorf("database: %v", err)
	}
	defer f.Close()

	if err := db.readDBFile(f); err != nil {
		return nil, err
	}

	return db, nil
}

// EndSession closes the database. Changes are written to the database file
// if commitChanges is true and the activity of the session allows it.
func (db *Session) EndSession(commitChanges bool) error {
	if !commitChanges || db.activity == ActivityReading {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return curated.Errorf("database: %v", err)
	}

	// write to a temporary file and then move it over the database file so
	// that a failed write does not destroy the database
	tmp := db.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return curated.Errorf("database: %v", err)
	}

	w := csv.NewWriter(f)
	for _, key := range db.SortedKeyList() {
		ent := db.entries[key]

		fields, err := ent.Serialise()
		if err != nil {
			f.Close()
			return curated.Errorf("database: %v", err)
		}

		rec := append([]string{recordHeader(key), ent.EntryType()}, fields...)
		if err := w.Write(rec); err != nil {
			f.Close()
			return curated.Errorf("database: %v", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return curated.Errorf("database: %v", err)
	}
	if err := f.Close(); err != nil {
		return curated.Errorf("database: %v", err)
	}

	if err := os.Rename(tmp, db.path); err != nil {
		return curated.Errorf("database: %v", err)
	}

	return nil
}

func (db *Session) readDBFile(r io.Reader) error {
	cr := csv.NewReader(r)

	// entry types have different numbers of fields
	cr.FieldsPerRecord = -1

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return curated.Errorf("database: %v", err)
		}

		if len(rec) < numLeaderFields {
			return curated.Errorf("database: malformed record (%d fields)", len(rec))
		}

		key, err := strconv.Atoi(rec[leaderFieldKey])
		if err != nil {
			return curated.Errorf("database: invalid key (%s)", rec[leaderFieldKey])
		}
		if _, ok := db.entries[key]; ok {
			return curated.Errorf("database: duplicate key (%d)", key)
		}

		des, ok := db.entryTypes[rec[leaderFieldID]]
		if !ok {
			return curated.Errorf("database: unrecognised entry type (%s)", rec[leaderFieldID])
		}

		ent, err := des(rec[numLeaderFields:])
		if err != nil {
			return curated.Errorf("database: %v", err)
		}

		db.entries[key] = ent
	}

	return nil
}

// Get returns the entry with the specified key.
func (db Session) Get(key int) (Entry, error) {
	ent, ok := db.entries[key]
	if !ok {
		return nil, curated.Errorf("database: key not available (%d)", key)
	}
	return ent, nil
}
