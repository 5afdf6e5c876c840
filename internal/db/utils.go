package db

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// GetRunID parses the run ID from the first argument
func GetRunID(c *cli.Context) (int64, error) {
	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil || runID <= 0 {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
