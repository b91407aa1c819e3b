// internal/capture/script.go
package capture

import (
	_ "embed"
	"fmt"
)

//go:embed capture.js
var captureScript string

// Script returns the embedded page serializer evaluated by the live
// capturer.
func Script() (string, error) {
	if captureScript == "" {
		return "", fmt.Errorf("embedded capture.js is empty or failed to load")
	}
	return captureScript, nil
}
