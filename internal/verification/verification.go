// Package verification verifies that the generated listing recreates the input.
package verification

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/assembler"
	"github.com/retroenv/retrogolib/log"
)

// maxLoggedDiffs limits the logged mismatches of a single comparison.
const maxLoggedDiffs = 10

// VerifyOutput assembles the listing and verifies that the result matches
// the program bytes.
func VerifyOutput(logger *log.Logger, rom []byte, listing string) error {
	output, err := assembler.Assemble(listing)
	if err != nil {
		return fmt.Errorf("reassembling listing: %w", err)
	}

	if err := checkBufferEqual(logger, rom, output); err != nil {
		return fmt.Errorf("program mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxLoggedDiffs {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
