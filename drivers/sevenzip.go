package drivers

import (
	"fmt"

	"github.com/bodgit/sevenzip"
)

// walk7z visits every regular file in a 7z archive
func walk7z(path string, visit visitFunc) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		err = visit(f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
