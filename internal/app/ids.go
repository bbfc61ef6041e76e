package app

import (
	"fmt"
	"strings"

	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/utils"
)

// collectItemIDs flattens command-line arguments into unique ids, keeping their order.
// An argument ending in .txt is read as a list with one id per line; '#' starts a comment line.
func collectItemIDs(args []string) ([]string, error) {
	var (
		seen      = make(map[string]struct{}, len(args))
		readFiles = make(map[string]struct{})
		ids       = make([]string, 0, len(args))
	)

	add := func(id string) {
		if id == "" {
			return
		}

		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}

		ids = append(ids, id)
	}

	for _, arg := range utils.Map(args, strings.TrimSpace) {
		if !strings.HasSuffix(arg, constants.ExtensionText) {
			add(arg)

			continue
		}

		if _, ok := readFiles[arg]; ok {
			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read ids from %s: %w", arg, err)
		}

		for _, line := range lines {
			add(line)
		}

		readFiles[arg] = struct{}{}
	}

	return ids, nil
}
