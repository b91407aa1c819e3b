// internal/layers/corners.go
package layers

import (
	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// ApplyCornerRadii writes each corner radius that parses to a non-zero pixel
// length. Corners that fail to parse (percentages, keywords, empty values)
// keep whatever the node already carries. Each corner stands alone; one bad
// value never blocks the others.
func ApplyCornerRadii(node *schemas.LayerNode, topLeft, topRight, bottomRight, bottomLeft string) {
	if v, ok := style.ParseLength(topLeft); ok && v > 0 {
		node.TopLeftRadius = v
	}
	if v, ok := style.ParseLength(topRight); ok && v > 0 {
		node.TopRightRadius = v
	}
	if v, ok := style.ParseLength(bottomRight); ok && v > 0 {
		node.BottomRightRadius = v
	}
	if v, ok := style.ParseLength(bottomLeft); ok && v > 0 {
		node.BottomLeftRadius = v
	}
}
