package drivers

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// walkGzip visits the files of a tar.gz archive, or the single
// decompressed stream of a plain .gz file
func walkGzip(path string, visit visitFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return walkTar(gr, visit)
	}

	// Plain .gz: the stream is the library, named after the file
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return visit(name, gr)
}

// walkTar visits every regular file in a tar stream
func walkTar(r io.Reader, visit visitFunc) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := visit(header.Name, tr); err != nil {
			return err
		}
	}
}
