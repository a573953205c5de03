// Package imageconv converts SVG cover images to PNG for platforms that
// reject vector uploads. The conversion itself is delegated to an external
// rasterizer binary; the rest of the application only sees bytes in, bytes
// out via interfaces.ImageConverter.
package imageconv

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/learnedgeek/site/internal/interfaces"
)

// DefaultBinary is the rasterizer invoked when none is configured.
const DefaultBinary = "rsvg-convert"

// Converter implements interfaces.ImageConverter.
type Converter struct {
	binary string
}

// NewConverter creates a converter using the given rasterizer binary, or the
// default when empty.
func NewConverter(binary string) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Converter{binary: binary}
}

// SVGToPNG rasterizes SVG bytes to PNG bytes.
func (c *Converter) SVGToPNG(ctx context.Context, svg []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, "--format", "png")
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("svg conversion failed: %w (%s)", err, stderr.String())
	}

	return out.Bytes(), nil
}

// Ensure Converter implements ImageConverter
var _ interfaces.ImageConverter = (*Converter)(nil)
