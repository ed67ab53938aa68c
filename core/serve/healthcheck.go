package serve

import (
	"context"
	"fmt"
	"os"
)

// Healthcheck returns a readiness check that verifies root is present and is
// a directory. Suitable for readiness probes when the served tree lives on
// removable or network storage.
func Healthcheck(root string) func(context.Context) error {
	return func(context.Context) error {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("serve root %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("serve root %s: %w", root, ErrRootNotDirectory)
		}
		return nil
	}
}
