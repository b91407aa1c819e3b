// internal/layers/shadows.go
package layers

import (
	"github.com/xkilldash9x/layerlift/api/schemas"
	"github.com/xkilldash9x/layerlift/internal/style"
)

// ShadowEffectFor translates a resolved box-shadow value into at most one
// drop-shadow effect. Absent values, "none", and shadows whose color does not
// resolve yield nil. Stacked shadows collapse to the first layer.
func ShadowEffectFor(value string) *schemas.ShadowEffect {
	shadow, ok := style.ParseBoxShadow(value)
	if !ok {
		return nil
	}
	color, ok := style.ParseColor(shadow.Color)
	if !ok {
		return nil
	}
	return &schemas.ShadowEffect{
		Type:      schemas.EffectDropShadow,
		Color:     color.Normalized(),
		Opacity:   color.Opacity(),
		Radius:    shadow.Blur,
		BlendMode: schemas.BlendNormal,
		Visible:   true,
		Offset:    schemas.Vector{X: shadow.OffsetX, Y: shadow.OffsetY},
	}
}
