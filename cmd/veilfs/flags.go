// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"strings"
)

type config struct {
	configPath   string
	instance     string
	debug        bool
	fileLinks    []link
	dirLinks     []link
	skipSuffixes []string
	skipDirs     []string
	dump         bool
	exportPath   string
	compress     bool
	versionFlag  bool
	paths        []string
}

type link struct {
	source      string
	destination string
	flags       uint32
}

// parseLink splits a "destination=source" flag value.
func parseLink(value string, flags uint32) (link, error) {
	destination, source, found := strings.Cut(value, "=")
	if !found || destination == "" || source == "" {
		return link{}, fmt.Errorf("expected destination=source, got %q", value)
	}

	return link{
		source:      source,
		destination: destination,
		flags:       flags,
	}, nil
}

func (cfg *config) parseArgs(args []string) error {
	fsName := fmt.Sprintf("%s [flags...] [paths...]", args[0])
	fs := flag.NewFlagSet(fsName, flag.ContinueOnError)

	fs.StringVar(
		&cfg.configPath,
		"config",
		cfg.configPath,
		"path to TOML instance configuration",
	)

	fs.StringVar(
		&cfg.instance,
		"instance",
		cfg.instance,
		"instance name (ignored with -config)",
	)

	fs.BoolVar(
		&cfg.debug,
		"debug",
		cfg.debug,
		"enable debug log output",
	)

	fs.Func(
		"file",
		"file link as destination=source, repeatable",
		func(s string) error {
			lnk, err := parseLink(s, 0)
			if err != nil {
				return err
			}

			cfg.fileLinks = append(cfg.fileLinks, lnk)

			return nil
		},
	)

	fs.Func(
		"dir",
		"recursive directory link as destination=source, repeatable",
		func(s string) error {
			lnk, err := parseLink(s, flagRecursive)
			if err != nil {
				return err
			}

			cfg.dirLinks = append(cfg.dirLinks, lnk)

			return nil
		},
	)

	fs.Func(
		"create-target",
		"create-target directory link as destination=source, repeatable",
		func(s string) error {
			lnk, err := parseLink(s, flagCreateTarget)
			if err != nil {
				return err
			}

			cfg.dirLinks = append(cfg.dirLinks, lnk)

			return nil
		},
	)

	fs.Func(
		"skip-suffix",
		"file suffix to omit from directory links, repeatable",
		func(s string) error {
			cfg.skipSuffixes = append(cfg.skipSuffixes, s)
			return nil
		},
	)

	fs.Func(
		"skip-dir",
		"directory name to omit from directory links, repeatable",
		func(s string) error {
			cfg.skipDirs = append(cfg.skipDirs, s)
			return nil
		},
	)

	fs.BoolVar(
		&cfg.dump,
		"dump",
		cfg.dump,
		"print the mapping tree after applying all links",
	)

	fs.StringVar(
		&cfg.exportPath,
		"export",
		cfg.exportPath,
		"write the virtual layout as a cpio archive to the given file",
	)

	fs.BoolVar(
		&cfg.compress,
		"zstd",
		cfg.compress,
		"zstd-compress the exported archive",
	)

	fs.BoolVar(
		&cfg.versionFlag,
		"version",
		cfg.versionFlag,
		"show version and exit",
	)

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg.paths = fs.Args()

	return nil
}
