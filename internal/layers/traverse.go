// internal/layers/traverse.go
package layers

import "github.com/xkilldash9x/layerlift/api/schemas"

// Walk visits every node reachable from roots exactly once, pre-order,
// parents before children. The constraint inferencer is the main consumer.
func Walk(roots []*schemas.LayerNode, visit func(*schemas.LayerNode)) {
	for _, root := range roots {
		walkNode(root, visit)
	}
}

func walkNode(n *schemas.LayerNode, visit func(*schemas.LayerNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		walkNode(c, visit)
	}
}
