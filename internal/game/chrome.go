package game

import (
	"fmt"

	"github.com/Faultbox/railview/internal/engine/scene"
)

// titleChrome reports frame statistics in the window title once per second.
type titleChrome struct {
	base     string
	setTitle func(string)
	pipeline *scene.Pipeline

	elapsed float64
}

func (c *titleChrome) DrawChrome(dt float64) {
	c.elapsed += dt
	if c.elapsed < 1 {
		return
	}
	c.elapsed = 0
	c.setTitle(formatTitle(c.base, c.pipeline.Options(), c.pipeline.LastFrame()))
}

// PreservesState reports that only the window title changes.
func (c *titleChrome) PreservesState() bool {
	return true
}

func formatTitle(base string, opts scene.Options, st scene.FrameStats) string {
	return fmt.Sprintf("%s | %.0f fps | %d faces | %d state calls | %s transparency | blur %s",
		base, st.FrameRate, st.Faces, st.StateCalls, opts.Transparency, opts.MotionBlur)
}
