// Package main implements the main entry point for a CHIP-8 interpreter and disassembler
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/fileprocessor"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/script"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/video"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, emuOpts, listingOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts, emuOpts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts, emuOpts)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if opts.Mode == options.ModeDisasm {
		disassembleFiles(logger, opts, listingOptions)
		return
	}

	if err := runROM(ctx, logger, opts, emuOpts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal("Running ROM failed", log.Err(err))
	}
}

func disassembleFiles(logger *log.Logger, opts options.Program, listingOptions disasm.Options) {
	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		opts.Input = file
		if len(files) > 1 {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(logger, opts, listingOptions); err != nil {
			logger.Error("Disassembling failed", log.String("file", file), log.Err(err))
		}
	}
}

func runROM(ctx context.Context, logger *log.Logger, opts options.Program, emuOpts options.Emulator) error {
	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	if err := detector.New(logger).Check(opts.Input, rom); err != nil {
		return err
	}

	machine, err := chip8.New(
		chip8.WithDisplaySize(emuOpts.Width, emuOpts.Height),
		chip8.WithQuirks(chip8.Quirks{InclusiveTransfer: emuOpts.InclusiveTransfer}),
	)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}

	r, err := runner.New(logger, machine, rom, emuOpts)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	if opts.Script != "" {
		s, err := script.Load(logger, r, opts.Script)
		if err != nil {
			return err
		}
		defer s.Close()
	}

	logger.Info("Running ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.String("frontend", opts.Frontend))

	switch opts.Frontend {
	case options.FrontendTerminal:
		err = terminal.New(logger, r, os.Stdin, os.Stdout).Run(ctx)
	case options.FrontendNone:
		err = r.Run(ctx)
	default:
		title := "retrochip8 - " + filepath.Base(opts.Input)
		err = video.New(ctx, logger, r).Run(emuOpts.FrameRate, title)
	}
	if err != nil {
		return err
	}

	logger.Info("Run finished", log.Int("frames", int(r.Frame())))
	return nil
}
