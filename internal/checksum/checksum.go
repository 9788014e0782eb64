// Package checksum snapshots note content so callers can tell whether an edit changed it.
package checksum

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// File streams the file at path through xxhash64.
func File(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("checksum: open %s: %w", path, err)
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, fmt.Errorf("checksum: read %s: %w", path, err)
	}
	return d.Sum64(), nil
}
