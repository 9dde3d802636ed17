// Package textio reads and writes the UTF-8 documents the CLIs operate on.
package textio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// ReadInput reads the whole of path, or of stdin when path is "" or "-".
func ReadInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == "" || path == "-" {
		name = "stdin"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", internalerr.ErrIO, name, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", internalerr.ErrEncoding, name)
	}
	return string(data), nil
}

// WriteOutput writes text to path, or to stdout when path is "" or "-".
// Parent directories are created as needed.
func WriteOutput(path, text string, stdout io.Writer) error {
	if path == "" || path == "-" {
		if _, err := io.WriteString(stdout, text); err != nil {
			return fmt.Errorf("%w: write stdout: %v", internalerr.ErrIO, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", internalerr.ErrIO, dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", internalerr.ErrIO, path, err)
	}
	return nil
}
