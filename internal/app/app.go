// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package app is the distiller's command line interface.
package app

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cristalhq/acmd"
	"golang.org/x/term"

	"codeberg.org/readeck/distiller/configs"
)

var commands = []acmd.Command{}

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// appFlags holds the flags shared by every command.
type appFlags struct {
	ConfigFile string
}

// Flags returns a new [flag.FlagSet] with the common flags.
func (f *appFlags) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.ConfigFile, "config", "", "configuration file path")
	return fs
}

// stringsFlag is a flag that can be repeated.
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringsFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Run starts the command line runner.
func Run() error {
	return run(context.Background(), os.Args[1:])
}

func run(ctx context.Context, args []string) error {
	r := acmd.RunnerOf(commands, acmd.Config{
		AppName:        "distiller",
		AppDescription: "Extracts the microdata of HTML documents as RDF.",
		Version:        configs.Version(),
		Context:        ctx,
		Args:           append([]string{"distiller"}, args...),
		Output:         stderr,
	})
	return r.Run()
}

// appPreRun loads the configuration and sets up the logger.
func appPreRun(flags *appFlags) error {
	if flags.ConfigFile != "" {
		if err := configs.LoadConfiguration(flags.ConfigFile); err != nil {
			return err
		}
	}
	if err := configs.LoadEnv(); err != nil {
		return err
	}
	if err := configs.InitConfiguration(); err != nil {
		return err
	}

	initLogger(stderr)
	return nil
}

// initLogger installs the default logger. The colored theme is only
// used in dev mode, on a terminal.
func initLogger(out io.Writer) {
	colors := false
	if fd, ok := out.(*os.File); ok && configs.Config.Main.DevMode {
		colors = term.IsTerminal(int(fd.Fd()))
	}
	slog.SetDefault(slog.New(newLogHandler(out, configs.Config.Main.LogLevel, colors)))
}
