// SPDX-License-Identifier: MIT

// Command veilfs builds a virtual filesystem overlay from link flags and
// reports how paths would resolve through it. It is a planning and
// diagnostics tool: nothing is mounted and no process is hooked.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/veilfs/veilfs"
)

const (
	flagCreateTarget = uint32(veilfs.FlagCreateTarget)
	flagRecursive    = uint32(veilfs.FlagRecursive)
)

func run() (int, error) {
	cfg := config{
		instance: "veilfs",
	}

	// parseArgs already prints errors, so just exit.
	if err := cfg.parseArgs(os.Args); err != nil {
		if err == flag.ErrHelp {
			return 0, nil
		}

		return 1, nil
	}

	if cfg.versionFlag {
		fmt.Println(veilfs.Version())
		return 0, nil
	}

	instanceCfg := veilfs.Config{
		InstanceName: cfg.instance,
		DebugMode:    cfg.debug,
	}

	if cfg.configPath != "" {
		var err error

		instanceCfg, err = veilfs.LoadConfig(cfg.configPath)
		if err != nil {
			return 1, err
		}
	}

	session, err := veilfs.NewEngine().NewHub().Create(instanceCfg)
	if err != nil {
		return 1, err
	}
	defer session.Disconnect()

	for _, suffix := range cfg.skipSuffixes {
		_ = session.AddSkipSuffix(suffix)
	}

	for _, name := range cfg.skipDirs {
		_ = session.AddSkipDirectory(name)
	}

	for _, lnk := range cfg.fileLinks {
		err := session.LinkFile(lnk.source, lnk.destination, veilfs.LinkFlags(lnk.flags))
		if err != nil {
			return 1, fmt.Errorf("link file %s: %w", lnk.destination, err)
		}
	}

	for _, lnk := range cfg.dirLinks {
		err := session.LinkDirectory(lnk.source, lnk.destination, veilfs.LinkFlags(lnk.flags))
		if err != nil {
			return 1, fmt.Errorf("link directory %s: %w", lnk.destination, err)
		}
	}

	for _, path := range cfg.paths {
		resolved, err := session.Resolve(path)
		if err != nil {
			return 1, err
		}

		fmt.Printf("%s -> %s\n", path, resolved)
	}

	if cfg.dump {
		dump, err := session.Dump()
		if err != nil {
			return 1, err
		}

		os.Stdout.Write(dump)
	}

	if cfg.exportPath != "" {
		file, err := os.Create(cfg.exportPath)
		if err != nil {
			return 1, err
		}

		if err := session.ExportArchive(file, cfg.compress); err != nil {
			file.Close()
			return 1, err
		}

		if err := file.Close(); err != nil {
			return 1, err
		}
	}

	return 0, nil
}

func main() {
	rc, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(rc)
}
