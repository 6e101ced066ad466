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
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/database"
	"github.com/jetsetilly/threemu/debugger/terminal/easyterm/ansi"
	"github.com/jetsetilly/threemu/paths"
)

// Sentinal error patterns.
const (
	RegressionError = "regression: %v"
	InvalidKey      = "regression: invalid key (%s)"
)

// resource names.
const (
	regressionPath    = ""
	regressionDBFile  = "regressionDB"
	regressionScripts = "regressionScripts"
	fails             = "regressionFails"
)

// Regressor represents the generic entry in the regression database.
type Regressor interface {
	database.Entry

	// perform the regression test for the regression type. the newRegression
	// flag is for convenience really (or "logical binding", as the structured
	// programmers would have it)
	//
	// returns success, a failure description if the regression failed, and
	// any error that prevented the regression from running
	regress(ctx context.Context, newRegression bool) (bool, string, error)
}

// when starting a database session we need to register what entries we will
// find in the database.
func initDBSession(db *database.Session) error {
	return db.RegisterEntryType(sessionEntryType, deserialiseSessionEntry)
}

func dbPath() (string, error) {
	p, err := paths.ResourcePath(regressionPath, regressionDBFile)
	if err != nil {
		return "", curated.Errorf(RegressionError, err)
	}
	return p, nil
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer) error {
	if output == nil {
		return curated.Errorf(RegressionError, "io.Writer should not be nil (use a nopWriter)")
	}

	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return curated.Errorf(RegressionError, err)
	}
	defer func() {
		_ = db.EndSession(false)
	}()

	return db.List(output)
}

// RegressDelete removes an entry from the regression db. The user is asked
// for confirmation through the confirmation reader.
func RegressDelete(output io.Writer, confirmation io.Reader, key string) error {
	if output == nil {
		return curated.Errorf(RegressionError, "io.Writer should not be nil (use a nopWriter)")
	}

	v, err := strconv.Atoi(key)
	if err != nil {
		return curated.Errorf(InvalidKey, key)
	}

	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityModifying, initDBSession)
	if err != nil {
		return curated.Errorf(RegressionError, err)
	}

	ent, err := db.Get(v)
	if err != nil {
		_ = db.EndSession(false)
		return curated.Errorf(RegressionError, err)
	}

	output.Write([]byte(fmt.Sprintf("%s\ndelete? (y/n): ", ent)))

	confirm := make([]byte, 32)
	_, err = confirmation.Read(confirm)
	if err != nil {
		_ = db.EndSession(false)
		return curated.Errorf(RegressionError, err)
	}

	if confirm[0] != 'y' && confirm[0] != 'Y' {
		return db.EndSession(false)
	}

	if err := db.Delete(v); err != nil {
		_ = db.EndSession(false)
		return curated.Errorf(RegressionError, err)
	}

	if err := db.EndSession(true); err != nil {
		return curated.Errorf(RegressionError, err)
	}

	output.Write([]byte(fmt.Sprintf("deleted test #%s from regression database\n", key)))

	return nil
}

// RegressAdd adds a new regression handler to the database. The regression is
// run and the results recorded before the entry is added.
func RegressAdd(ctx context.Context, output io.Writer, reg Regressor) error {
	if output == nil {
		return curated.Errorf(RegressionError, "io.Writer should not be nil (use a nopWriter)")
	}

	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return curated.Errorf(RegressionError, err)
	}

	output.Write([]byte(fmt.Sprintf("adding: %s", reg)))

	ok, fail, err := reg.regress(ctx, true)
	output.Write([]byte(ansi.ClearLine))
	if err != nil {
		_ = db.EndSession(false)
		return curated.Errorf(RegressionError, err)
	}
	if !ok {
		_ = db.EndSession(false)
		_ = reg.CleanUp()
		return curated.Errorf(RegressionError, fail)
	}

	if err := db.Add(reg); err != nil {
		_ = db.EndSession(false)
		_ = reg.CleanUp()
		return curated.Errorf(RegressionError, err)
	}

	if err := db.EndSession(true); err != nil {
		return curated.Errorf(RegressionError, err)
	}

	output.Write([]byte(fmt.Sprintf("\radded: %s\n", reg)))

	return nil
}

// outcome of a single regression.
type outcome struct {
	key  int
	reg  Regressor
	ok   bool
	fail string
	err  error
}

// RegressRun runs all the tests in the regression database. The filterKeys
// list specifies which entries to test. An empty keys list means that every
// entry should be tested. The special key "FAILS" adds the keys of the entries
// that failed on the previous run.
//
// Returns the number of failed (or errored) regressions.
func RegressRun(ctx context.Context, output io.Writer, verbose bool, filterKeys []string) (int, error) {
	if output == nil {
		return 0, curated.Errorf(RegressionError, "io.Writer should not be nil (use a nopWriter)")
	}

	filterKeys, err := addFailsToKeys(filterKeys)
	if err != nil {
		if err == errNoPreviousFails {
			output.Write([]byte("no previous fails\n"))
			return 0, nil
		}
		return 0, curated.Errorf(RegressionError, err)
	}

	p, err := dbPath()
	if err != nil {
		return 0, err
	}

	db, err := database.StartSession(p, database.ActivityReading, initDBSession)
	if err != nil {
		return 0, curated.Errorf(RegressionError, err)
	}
	defer func() {
		_ = db.EndSession(false)
	}()

	// convert filter keys to integers
	keysV := make([]int, 0, len(filterKeys))
	for _, k := range filterKeys {
		v, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return 0, curated.Errorf(InvalidKey, k)
		}
		keysV = append(keysV, v)
	}

	var outcomes []*outcome
	numSkipped := 0

	for _, key := range db.SortedKeyList() {
		if len(keysV) > 0 && !slices.Contains(keysV, key) {
			numSkipped++
			continue
		}

		ent, err := db.Get(key)
		if err != nil {
			return 0, curated.Errorf(RegressionError, err)
		}

		// database entry should also satisfy Regressor interface
		reg, ok := ent.(Regressor)
		if !ok {
			return 0, curated.Errorf(RegressionError, "database entry does not satisfy Regressor interface")
		}

		outcomes = append(outcomes, &outcome{key: key, reg: reg})
	}

	// sessions are independent of one another and can be run in parallel
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	output.Write([]byte(fmt.Sprintf("running %d regression tests", len(outcomes))))

	for _, o := range outcomes {
		g.Go(func() error {
			o.ok, o.fail, o.err = o.reg.regress(ctx, false)
			return nil
		})
	}
	_ = g.Wait()

	output.Write([]byte(ansi.ClearLine))
	output.Write([]byte("\r"))

	var numSucceed, numFail, numError int
	var failedKeys []string

	for _, o := range outcomes {
		switch {
		case o.err != nil:
			numError++
			failedKeys = append(failedKeys, strconv.Itoa(o.key))
			output.Write([]byte(fmt.Sprintf(" ERROR: %03d %s\n", o.key, o.reg)))
			if verbose {
				output.Write([]byte(fmt.Sprintf("  ^^ %v\n", o.err)))
			}
		case !o.ok:
			numFail++
			failedKeys = append(failedKeys, strconv.Itoa(o.key))
			output.Write([]byte(fmt.Sprintf("failure: %03d %s\n", o.key, o.reg)))
			if verbose && o.fail != "" {
				output.Write([]byte(fmt.Sprintf("  ^^ %s\n", o.fail)))
			}
		default:
			numSucceed++
			output.Write([]byte(fmt.Sprintf("succeed: %03d %s\n", o.key, o.reg)))
		}
	}

	output.Write([]byte(fmt.Sprintf("regression tests: %d succeed, %d fail, %d skipped", numSucceed, numFail, numSkipped)))
	if numError > 0 {
		output.Write([]byte(fmt.Sprintf(" [%d with errors]", numError)))
	}
	output.Write([]byte("\n"))

	if err := saveFails(failedKeys); err != nil {
		return numFail + numError, curated.Errorf(RegressionError, err)
	}

	return numFail + numError, nil
}
