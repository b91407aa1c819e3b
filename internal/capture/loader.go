// internal/capture/loader.go
package capture

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

// Load reads one capture file. The compression wrapper follows the file
// name: plain JSON by default, gzip for .gz, brotli for .br.
func Load(path string) (*schemas.Capture, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding capture path %q: %w", path, err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	capture, err := Decode(f, filepath.Ext(expanded))
	if err != nil {
		return nil, fmt.Errorf("reading capture %s: %w", filepath.Base(expanded), err)
	}
	return capture, nil
}

// Decode reads one capture from r, unwrapping the compression named by ext
// (".gz" or ".br"; anything else is plain JSON). The capture is validated
// before it is returned.
func Decode(r io.Reader, ext string) (*schemas.Capture, error) {
	switch strings.ToLower(ext) {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("reading gzip header: %w", err)
		}
		defer zr.Close()
		r = zr
	case ".br":
		r = brotli.NewReader(r)
	}

	var capture schemas.Capture
	if err := json.NewDecoder(r).Decode(&capture); err != nil {
		return nil, fmt.Errorf("decoding capture json: %w", err)
	}
	if err := capture.Validate(); err != nil {
		return nil, err
	}
	return &capture, nil
}

// Save writes a capture next to conversion outputs, mostly so a live
// capture session can be replayed offline. Compression follows the target
// file name the same way Load does.
func Save(path string, capture *schemas.Capture) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expanding capture path %q: %w", path, err)
	}

	f, err := os.Create(expanded)
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}

	var w io.Writer = f
	var closers []io.Closer
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".gz", ".gzip":
		zw := gzip.NewWriter(f)
		w = zw
		closers = append(closers, zw)
	case ".br":
		bw := brotli.NewWriter(f)
		w = bw
		closers = append(closers, bw)
	}
	closers = append(closers, f)

	err = json.NewEncoder(w).Encode(capture)
	for _, c := range closers {
		if closeErr := c.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return fmt.Errorf("writing capture %s: %w", filepath.Base(expanded), err)
	}
	return nil
}
