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

package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jetsetilly/threemu/debugger"
	"github.com/jetsetilly/threemu/debugger/terminal/easyterm"
	"github.com/jetsetilly/threemu/firm"
	"github.com/jetsetilly/threemu/hardware/peripherals/gpu"
	"github.com/jetsetilly/threemu/hardware/scheduler"
	"github.com/jetsetilly/threemu/imageloader"
	"github.com/jetsetilly/threemu/logger"
	"github.com/jetsetilly/threemu/modalflag"
	"github.com/jetsetilly/threemu/paths"
	"github.com/jetsetilly/threemu/regression"
	"github.com/jetsetilly/threemu/session"
	"github.com/jetsetilly/threemu/statsview"
)

func main() {
	// #ctrlc cancels the context. modes that put the terminal into raw mode
	// handle the interrupt key themselves
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	exitVal := launch(ctx, os.Args[1:], os.Stdout)

	stop()
	os.Exit(exitVal)
}

// launch is separate to main() so that the exit value can be returned to
// main() after all deferred functions have run.
func launch(ctx context.Context, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output, Program: "threemu"}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "STEP", "INFO", "REGRESS")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return session.ExitStopped

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return session.ExitFault
	}

	var exitVal int

	switch md.Mode() {
	case "RUN":
		exitVal, err = run(ctx, md)

	case "STEP":
		exitVal, err = step(ctx, md)

	case "INFO":
		err = info(md)

	case "REGRESS":
		exitVal, err = regress(ctx, md)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return session.ExitFault
	}

	return exitVal
}

// the flags used to create a session
type sessionFlags struct {
	format     *string
	core       *string
	base       *modalflag.Address
	sd         *string
	sdfirm     *bool
	sdro       *bool
	arm9stop   *modalflag.Address
	arm11stop  *modalflag.Address
	max        *uint64
	requireAll *bool
	pokes      *modalflag.Strings
	captures   *modalflag.Strings
	trace      *bool
	log        *bool
}

func addSessionFlags(md *modalflag.Modes) *sessionFlags {
	f := &sessionFlags{
		format:     md.AddString("format", imageloader.FormatAuto, "image format: AUTO, FIRM, ELF, RAW"),
		core:       md.AddString("core", imageloader.ARM9, "core that runs ELF and RAW images: ARM9, ARM11"),
		base:       md.AddAddress("base", "load address of RAW images"),
		sd:         md.AddString("sd", "", "SD card image to insert"),
		sdfirm:     md.AddBool("sdfirm", false, "the image is a path inside the SD card image"),
		sdro:       md.AddBool("sdro", false, "write protect the SD card"),
		arm9stop:   md.AddAddress("arm9stop", "stop when the ARM9 reaches the address"),
		arm11stop:  md.AddAddress("arm11stop", "stop when the ARM11 reaches the address"),
		max:        md.AddUint64("max", 0, "instruction budget (zero for no budget)"),
		requireAll: md.AddBool("requireall", false, "stop only when every core has reached its stop address"),
		pokes:      md.AddStrings("poke", "write ADDR=VAL or ADDR/WIDTH=VAL after boot (repeatable)"),
		captures:   md.AddStrings("capture", "copy ADDR+LEN of memory into the result (repeatable)"),
		trace:      md.AddBool("trace", false, "log every instruction"),
		log:        md.AddBool("log", false, "echo debugging log to stdout"),
	}
	return f
}

func (f *sessionFlags) config(filename string) (session.Config, error) {
	ld := imageloader.NewLoader(filename, *f.format)
	ld.Core = strings.ToUpper(*f.core)
	if v := f.base.Value(); v != nil {
		ld.Base = *v
	}

	if *f.sdfirm {
		if *f.sd == "" {
			return session.Config{}, fmt.Errorf("-sdfirm requires an SD card image (-sd)")
		}
		ld.SDImage = *f.sd
	}

	cfg := session.Config{
		Image:      ld,
		SDCard:     *f.sd,
		SDReadOnly: *f.sdro,
		Stop: scheduler.StopCondition{
			ARM9:            f.arm9stop.Value(),
			ARM11:           f.arm11stop.Value(),
			MaxInstructions: *f.max,
			RequireAll:      *f.requireAll,
		},
		Trace: *f.trace,
	}

	for _, s := range *f.pokes {
		p, err := session.ParsePoke(s)
		if err != nil {
			return session.Config{}, err
		}
		cfg.Pokes = append(cfg.Pokes, p)
	}

	for _, s := range *f.captures {
		c, err := session.ParseCapture(s)
		if err != nil {
			return session.Config{}, err
		}
		cfg.Captures = append(cfg.Captures, c)
	}

	return cfg, nil
}

func (f *sessionFlags) echo(output io.Writer) {
	if *f.log {
		logger.SetEcho(output, false)
	} else {
		logger.SetEcho(nil, false)
	}
}

func run(ctx context.Context, md *modalflag.Modes) (int, error) {
	md.NewMode()

	flgs := addSessionFlags(md)
	timeout := md.AddDuration("timeout", 0, "wall clock limit (zero for no limit)")
	mv := md.AddString("memviz", "", "write a graphviz representation of the result to file")
	screenshot := md.AddString("screenshot", "", "save a PNG of the screen to file (AUTO for a unique name)")
	screen := md.AddString("screen", "top", "screen to save: top, bottom")
	scale := md.AddInt("scale", 1, "screenshot scaling")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%t)", statsview.Available()))

	md.AdditionalHelp(
		`The exit value is 0 if every requested stop address was reached, 1 if the instruction
budget or timeout ended the session before that, and 2 if a core faulted or the session
could not be created.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return session.ExitStopped, err
	}

	if len(md.RemainingArgs()) != 1 {
		return session.ExitFault, fmt.Errorf("a single boot image is required for %s mode", md)
	}

	scr, ok := gpu.ParseScreen(*screen)
	if !ok {
		return session.ExitFault, fmt.Errorf("unknown screen (%s)", *screen)
	}

	cfg, err := flgs.config(md.GetArg(0))
	if err != nil {
		return session.ExitFault, err
	}
	cfg.Timeout = *timeout

	flgs.echo(md.Output)

	if *stats {
		statsview.Launch(ctx, md.Output)
	}

	s, err := session.New(cfg)
	if err != nil {
		return session.ExitFault, err
	}
	defer func() {
		_ = s.Close()
	}()

	res, err := s.Run(ctx)
	if err != nil {
		return session.ExitFault, err
	}

	md.Output.Write([]byte(res.String()))

	if *mv != "" {
		f, err := os.Create(*mv)
		if err != nil {
			return session.ExitFault, err
		}
		res.Memviz(f)
		if err := f.Close(); err != nil {
			return session.ExitFault, err
		}
	}

	if *screenshot != "" {
		fn := *screenshot
		if strings.ToUpper(fn) == "AUTO" {
			fn, err = paths.ResourcePath("screenshots", paths.UniqueFilename("screenshot", cfg.Image.ShortName())+".png")
			if err != nil {
				return session.ExitFault, err
			}
		}

		img, err := s.Screenshot(scr, *scale)
		if err != nil {
			return session.ExitFault, err
		}

		f, err := os.Create(fn)
		if err != nil {
			return session.ExitFault, err
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return session.ExitFault, err
		}
		if err := f.Close(); err != nil {
			return session.ExitFault, err
		}

		dig, err := s.ScreenDigest(scr)
		if err != nil {
			return session.ExitFault, err
		}
		md.Output.Write([]byte(fmt.Sprintf("screenshot saved to %s (%s)\n", fn, dig)))
	}

	return res.ExitCode(), nil
}

func step(ctx context.Context, md *modalflag.Modes) (int, error) {
	md.NewMode()

	flgs := addSessionFlags(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return session.ExitStopped, err
	}

	if len(md.RemainingArgs()) != 1 {
		return session.ExitFault, fmt.Errorf("a single boot image is required for %s mode", md)
	}

	cfg, err := flgs.config(md.GetArg(0))
	if err != nil {
		return session.ExitFault, err
	}

	s, err := session.New(cfg)
	if err != nil {
		return session.ExitFault, err
	}
	defer func() {
		_ = s.Close()
	}()

	var dbg *debugger.Debugger

	// keys are read one at a time from a terminal in raw mode. any other
	// input (a pipe for example) is read as it is
	if easyterm.IsTerminal(os.Stdin) {
		var et easyterm.EasyTerm
		if err := et.Initialise("/dev/tty", os.Stdout); err != nil {
			return session.ExitFault, err
		}
		defer et.CleanUp()

		if err := et.RawMode(); err != nil {
			return session.ExitFault, err
		}

		flgs.echo(&et)
		dbg = debugger.NewDebugger(s, &et, &et, true)
	} else {
		flgs.echo(md.Output)
		dbg = debugger.NewDebugger(s, os.Stdin, md.Output, false)
	}

	res, err := dbg.Run(ctx)
	if err != nil {
		return session.ExitFault, err
	}

	return res.ExitCode(), nil
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	format := md.AddString("format", imageloader.FormatAuto, "image format: AUTO, FIRM, ELF, RAW")
	core := md.AddString("core", imageloader.ARM9, "core that runs ELF and RAW images: ARM9, ARM11")
	sd := md.AddString("sd", "", "the image is a path inside this SD card image")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("a single boot image is required for %s mode", md)
	}

	ld := imageloader.NewLoader(md.GetArg(0), *format)
	ld.Core = strings.ToUpper(*core)
	ld.SDImage = *sd

	if err := ld.Load(); err != nil {
		return err
	}

	md.Output.Write([]byte(fmt.Sprintf("%s\n", ld.Filename)))
	md.Output.Write([]byte(fmt.Sprintf("format: %s\n", ld.Format)))
	md.Output.Write([]byte(fmt.Sprintf("size: %d\n", len(ld.Data))))
	md.Output.Write([]byte(fmt.Sprintf("sha1: %s\n", ld.Hash)))

	if ld.Format == imageloader.FormatFIRM {
		f, err := firm.Parse(ld.Data)
		if err != nil {
			return err
		}
		md.Output.Write([]byte(f.String()))
		return nil
	}

	img, err := ld.BootImage()
	if err != nil {
		return err
	}
	md.Output.Write([]byte(img.String()))
	md.Output.Write([]byte("\n"))

	return nil
}

func regress(ctx context.Context, md *modalflag.Modes) (int, error) {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return session.ExitStopped, err
	}

	switch md.Mode() {
	case "RUN":
		md.NewMode()

		verbose := md.AddBool("verbose", false, "output more detail (eg. error messages)")

		md.AdditionalHelp(
			`Remaining arguments are the keys of the tests to run. The special key FAILS runs
the tests that failed on the previous run. With no keys every test is run.`)

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return session.ExitStopped, err
		}

		n, err := regression.RegressRun(ctx, md.Output, *verbose, md.RemainingArgs())
		if err != nil {
			return session.ExitFault, err
		}
		if n > 0 {
			return session.ExitFault, nil
		}

	case "LIST":
		md.NewMode()

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return session.ExitStopped, err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			err := regression.RegressList(md.Output)
			if err != nil {
				return session.ExitFault, err
			}
		default:
			return session.ExitFault, fmt.Errorf("no additional arguments required for %s mode", md)
		}

	case "DELETE":
		md.NewMode()

		answerYes := md.AddBool("yes", false, "answer yes to confirmation")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return session.ExitStopped, err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return session.ExitFault, fmt.Errorf("database key required for %s mode", md)
		case 1:
			// use stdin for confirmation unless "yes" flag has been sent
			var confirmation io.Reader
			if *answerYes {
				confirmation = &yesReader{}
			} else {
				confirmation = os.Stdin
			}

			err := regression.RegressDelete(md.Output, confirmation, md.GetArg(0))
			if err != nil {
				return session.ExitFault, err
			}
		default:
			return session.ExitFault, fmt.Errorf("only one entry can be deleted at at time")
		}

	case "ADD":
		return regressAdd(ctx, md)
	}

	return session.ExitStopped, nil
}

func regressAdd(ctx context.Context, md *modalflag.Modes) (int, error) {
	md.NewMode()

	flgs := addSessionFlags(md)
	notes := md.AddString("notes", "", "additional annotation for the database")
	script := md.AddString("script", "", "Lua script to run with the result of every session")

	md.AdditionalHelp(
		`The session is run and the stop reason and digest of the machine state are recorded.
An instruction budget (-max) is required. The SD card is always write protected.

The Lua script is given a global table called result and must return true.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return session.ExitStopped, err
	}

	// logging output would interfere with the regression progress output
	if *flgs.log {
		logger.SetEcho(os.Stdout, false)
		md.Output = &nopWriter{}
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return session.ExitFault, fmt.Errorf("boot image required for %s mode", md)
	case 1:
		cfg, err := flgs.config(md.GetArg(0))
		if err != nil {
			return session.ExitFault, err
		}

		reg := regression.NewSessionRegression(cfg.Image)
		reg.SDCard = cfg.SDCard
		reg.Stop = cfg.Stop
		reg.Pokes = cfg.Pokes
		reg.Captures = cfg.Captures
		reg.Notes = *notes
		reg.Script = *script

		err = regression.RegressAdd(ctx, md.Output, reg)
		if err != nil {
			// using carriage return (without newline) at beginning of error
			// message because we want to overwrite the last output from
			// RegressAdd()
			return session.ExitFault, fmt.Errorf("\rerror adding regression test: %v", err)
		}
	default:
		return session.ExitFault, fmt.Errorf("regression tests can only be added one at a time")
	}

	return session.ExitStopped, nil
}

// yesReader always returns 'y' when it is read.
type yesReader struct{}

func (*yesReader) Read(p []byte) (n int, err error) {
	p[0] = 'y'
	return 1, nil
}

// nopWriter is an empty writer.
type nopWriter struct{}

func (*nopWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}
