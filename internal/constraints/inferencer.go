// internal/constraints/inferencer.go
package constraints

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/dom"
	"github.com/xkilldash9x/layerlift/internal/layers"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// Inferencer finishes a built layer tree by deciding, per node, how it
// anchors to its parent on each axis. Inference is best effort: a node whose
// element cannot be resolved keeps the constraints it already has.
type Inferencer struct {
	resolver *style.Resolver
	sizer    IntrinsicSizer
	log      *zap.Logger
}

// NewInferencer wires an inferencer to a resolver. A nil sizer gets the
// resolver-backed probe; a nil logger disables logging.
func NewInferencer(resolver *style.Resolver, sizer IntrinsicSizer, logger *zap.Logger) *Inferencer {
	if sizer == nil {
		sizer = StyleSizer{Resolve: resolver.Resolve}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inferencer{
		resolver: resolver,
		sizer:    sizer,
		log:      logger.Named("constraints"),
	}
}

// Infer walks every root pre-order and sets constraints in place. Each
// node's outcome depends only on itself and its immediate DOM parent, so
// sibling order never matters.
func (inf *Inferencer) Infer(roots []*schemas.LayerNode) {
	layers.Walk(roots, inf.inferNode)
}

func (inf *Inferencer) inferNode(node *schemas.LayerNode) {
	// Vectors always center horizontally and pin to the top.
	if node.Kind == schemas.KindSVG {
		node.Constraints = &schemas.Constraints{
			Horizontal: schemas.HorizontalCenter,
			Vertical:   schemas.VerticalMin,
		}
		return
	}

	ref, ok := dom.AsRef(node.Ref)
	if !ok {
		node.Constraints = &schemas.Constraints{
			Horizontal: schemas.HorizontalScale,
			Vertical:   schemas.VerticalMin,
		}
		return
	}

	el := ref.Resolve()
	if el == nil || el.Parent() == nil {
		inf.log.Debug("constraint inference skipped, unresolvable element",
			zap.String("layer", node.Name))
		return
	}
	parent := el.Parent()

	size := inf.sizer.MeasureIntrinsicSize(el)
	if size.FixedWidth {
		node.Annotate("widthType", "fixed")
	}
	if size.FixedHeight {
		node.Annotate("heightType", "fixed")
	}

	// Everything below reads post-restore styles.
	if position := inf.resolver.Resolve(el, "position"); position == "absolute" || position == "fixed" {
		node.Annotate("position", position)
	}
	if strings.Contains(inf.resolver.Resolve(el, "display"), "inline") {
		node.Annotate("widthType", "shrink")
	}

	h, v := applyAlignmentRules(ruleContext{
		node:   node,
		el:     el,
		parent: parent,
		style:  inf.resolver.Resolve,
	})
	node.Constraints = &schemas.Constraints{
		Horizontal: h.horizontal(),
		Vertical:   v.vertical(),
	}
}
