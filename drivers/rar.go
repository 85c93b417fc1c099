package drivers

import (
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// walkRAR visits every regular file in a RAR archive
func walkRAR(path string, visit visitFunc) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}

		if header.IsDir {
			continue
		}
		if err := visit(header.Name, r); err != nil {
			return err
		}
	}
}
