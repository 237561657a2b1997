// Package fileprocessor handles the disassembly workflow of ROM files
package fileprocessor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile writes the listing of a ROM file and optionally verifies it
func ProcessFile(logger *log.Logger, opts options.Program, listingOptions disasm.Options) error {
	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	if err := detector.New(logger).Check(opts.Input, rom); err != nil {
		return err
	}

	var listing bytes.Buffer
	if err := disasm.WriteListing(&listing, rom, listingOptions); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}

	if err := writeOutput(opts, listing.Bytes()); err != nil {
		return err
	}

	if opts.AssembleTest {
		if err := verification.VerifyOutput(logger, rom, listing.String()); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful", log.String("file", opts.Input))
	}

	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".asm"
}

func writeOutput(opts options.Program, data []byte) error {
	var writer io.Writer = os.Stdout
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", opts.Output, err)
		}
		defer func() { _ = file.Close() }()
		writer = file
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8",
		log.String("version", buildinfo.Version(version, commit, date)),
		log.String("system", string(opts.System)))
}
