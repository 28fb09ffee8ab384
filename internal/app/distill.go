// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/pkg/distiller"
	"codeberg.org/readeck/distiller/pkg/rdf"
	"codeberg.org/readeck/distiller/pkg/source"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "distill",
		Description: "Extract the microdata of HTML documents as RDF",
		ExecFunc:    runDistill,
	})
}

func runDistill(ctx context.Context, args []string) error {
	var format string
	var base string
	var rdfOutput bool
	var prefixes stringsFlag

	var flags appFlags
	fs := flags.Flags()
	// nolint: errcheck
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: distill [arguments...] SOURCE...")
		fmt.Fprintln(fs.Output(), "  SOURCE")
		fmt.Fprintln(fs.Output(), "    \tURL or file to read, \"-\" reads the standard input")
		fs.PrintDefaults()
	}
	fs.StringVar(&format, "format", "", "output format (turtle, nt, xml, json-ld)")
	fs.StringVar(&format, "f", "", "output format (shorthand)")
	fs.StringVar(&base, "base", "", "base URI of the document read from the standard input")
	fs.BoolVar(&rdfOutput, "rdf-output", false, "describe errors in the RDF output")
	fs.Var(&prefixes, "prefix", "prefix binding of the output, as name=namespace")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	names := fs.Args()
	if len(names) == 0 {
		return errors.New("at least one source is required")
	}
	if base != "" && (len(names) != 1 || names[0] != source.Stdin) {
		return errors.New("-base only applies to a single \"-\" source")
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}

	f := rdf.ParseFormat(configs.Config.Distiller.DefaultFormat)
	if format != "" {
		var ok bool
		if f, ok = rdf.LookupFormat(format); !ok {
			return fmt.Errorf("unknown format %q", format)
		}
	}

	bindings := map[string]string{}
	for _, p := range prefixes {
		name, ns, ok := strings.Cut(p, "=")
		if !ok || name == "" || ns == "" {
			return fmt.Errorf("invalid prefix %q", p)
		}
		bindings[name] = ns
	}

	options := []distiller.Option{
		distiller.WithPrefixes(bindings),
		distiller.WithOpener(source.NewOpener(source.WithStdin(stdin))),
	}
	if rdfOutput {
		options = append(options, distiller.WithRDFOutput(true))
	}
	p := distiller.New(options...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	buf := new(bytes.Buffer)
	var err error
	if base != "" {
		err = p.RDFFromReader(ctx, buf, stdin, base, f)
	} else {
		err = p.RDFFromSources(ctx, buf, names, f)
	}
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(stdout)
	return err
}
