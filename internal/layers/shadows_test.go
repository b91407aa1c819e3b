package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

func TestShadowEffectFor(t *testing.T) {
	effect := ShadowEffectFor("0px 4px 8px rgba(0, 0, 0, 0.25)")
	require.NotNil(t, effect)

	assert.Equal(t, schemas.EffectDropShadow, effect.Type)
	assert.Equal(t, schemas.BlendNormal, effect.BlendMode)
	assert.True(t, effect.Visible)
	assert.Equal(t, schemas.Vector{X: 0, Y: 4}, effect.Offset)
	assert.Equal(t, 8.0, effect.Radius)
	assert.Equal(t, schemas.Color{R: 0, G: 0, B: 0}, effect.Color)
	assert.InDelta(t, 0.25, effect.Opacity, 0.01)
}

func TestShadowEffectForNone(t *testing.T) {
	assert.Nil(t, ShadowEffectFor("none"))
	assert.Nil(t, ShadowEffectFor(""))
	assert.Nil(t, ShadowEffectFor("   "))
}

func TestShadowEffectForUnresolvableColor(t *testing.T) {
	// A shadow with no color token cannot be painted.
	assert.Nil(t, ShadowEffectFor("2px 2px 4px"))
	assert.Nil(t, ShadowEffectFor("2px 2px 4px shiny"))
}

// Stacked shadows collapse to the first layer; the rest are dropped.
func TestShadowStackCollapsesToFirstLayer(t *testing.T) {
	effect := ShadowEffectFor("1px 2px 3px red, 0px 0px 9px blue")
	require.NotNil(t, effect)

	assert.Equal(t, schemas.Vector{X: 1, Y: 2}, effect.Offset)
	assert.Equal(t, 3.0, effect.Radius)
	assert.Equal(t, schemas.Color{R: 1, G: 0, B: 0}, effect.Color)
}
