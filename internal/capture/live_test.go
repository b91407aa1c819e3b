// internal/capture/live_test.go
package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

func TestOptionsSetDefaults(t *testing.T) {
	t.Run("zero value gets workable defaults", func(t *testing.T) {
		var opts Options
		opts.SetDefaults()
		assert.Equal(t, schemas.Viewport{Width: 1280, Height: 800}, opts.Viewport)
		assert.Equal(t, 60*time.Second, opts.NavigationTimeout)
		assert.Equal(t, 1500*time.Millisecond, opts.SettleDelay)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		opts := Options{
			Viewport:          schemas.Viewport{Width: 375, Height: 812},
			NavigationTimeout: 10 * time.Second,
			SettleDelay:       250 * time.Millisecond,
		}
		opts.SetDefaults()
		assert.Equal(t, schemas.Viewport{Width: 375, Height: 812}, opts.Viewport)
		assert.Equal(t, 10*time.Second, opts.NavigationTimeout)
		assert.Equal(t, 250*time.Millisecond, opts.SettleDelay)
	})
}

func TestNewCapturerRateLimiter(t *testing.T) {
	unpaced := NewCapturer(Options{}, nil)
	assert.Equal(t, rate.Inf, unpaced.limiter.Limit())

	paced := NewCapturer(Options{RateLimit: 2}, nil)
	assert.Equal(t, rate.Limit(2), paced.limiter.Limit())
}

func TestScriptEmbedded(t *testing.T) {
	script, err := Script()
	require.NoError(t, err)

	// The serializer must produce every top-level field of the capture
	// contract and pair boxes by the same walk the parser performs.
	for _, marker := range []string{
		"boxes", "textBoxes", "stylesheets", "viewport",
		"rootFontSize", "outerHTML", "getBoundingClientRect",
	} {
		assert.Contains(t, script, marker)
	}
}

func TestExecOptionsFlagForms(t *testing.T) {
	base := execOptions(Options{})

	opts := execOptions(Options{
		Headless:   true,
		DisableGPU: true,
		ExtraArgs:  []string{"no-zygote", "--lang=en-US", ""},
	})

	// headless + gpu + two parsed extra flags; the empty arg is dropped.
	assert.Len(t, opts, len(base)+4)
}
