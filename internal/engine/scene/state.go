package scene

import "github.com/Faultbox/railview/internal/engine/world"

// State caches the last fixed-function state sent to a Backend and forwards
// only changes. Every value starts unknown, so the first request of each
// kind always reaches the backend.
type State struct {
	backend Backend

	caps     [capabilityCount]bool
	capKnown [capabilityCount]bool

	depthMask      bool
	depthMaskKnown bool

	blend      BlendFunc
	blendKnown bool

	alpha      AlphaFunc
	alphaKnown bool

	texture      uint32
	textureKnown bool

	emissive      world.ColorRGB
	emissiveOn    bool
	emissiveKnown bool

	calls int
}

// NewState returns a State with nothing cached.
func NewState(backend Backend) *State {
	return &State{backend: backend}
}

// Invalidate forgets every cached value. Use it on the first frame and
// whenever something outside the State touched the context.
func (s *State) Invalidate() {
	s.capKnown = [capabilityCount]bool{}
	s.depthMaskKnown = false
	s.blendKnown = false
	s.alphaKnown = false
	s.textureKnown = false
	s.emissiveKnown = false
}

// Calls returns the number of calls forwarded to the backend.
func (s *State) Calls() int {
	return s.calls
}

// Set enables or disables a capability.
func (s *State) Set(c Capability, on bool) {
	if s.capKnown[c] && s.caps[c] == on {
		return
	}
	s.caps[c], s.capKnown[c] = on, true
	s.calls++
	s.backend.SetCapability(c, on)
}

// Enabled returns the cached value of a capability. Unknown reads as off.
func (s *State) Enabled(c Capability) bool {
	return s.capKnown[c] && s.caps[c]
}

// DepthMask sets whether depth writes are on.
func (s *State) DepthMask(on bool) {
	if s.depthMaskKnown && s.depthMask == on {
		return
	}
	s.depthMask, s.depthMaskKnown = on, true
	s.calls++
	s.backend.SetDepthMask(on)
}

// BlendFunc sets the blend equation.
func (s *State) BlendFunc(f BlendFunc) {
	if s.blendKnown && s.blend == f {
		return
	}
	s.blend, s.blendKnown = f, true
	s.calls++
	s.backend.SetBlendFunc(f)
}

// AlphaFunc sets the alpha test.
func (s *State) AlphaFunc(f AlphaFunc) {
	if s.alphaKnown && s.alpha == f {
		return
	}
	s.alpha, s.alphaKnown = f, true
	s.calls++
	s.backend.SetAlphaFunc(f)
}

// CurrentAlphaFunc returns the cached alpha test.
func (s *State) CurrentAlphaFunc() AlphaFunc {
	return s.alpha
}

// BindTexture binds a texture handle.
func (s *State) BindTexture(handle uint32) {
	if s.textureKnown && s.texture == handle {
		return
	}
	s.texture, s.textureKnown = handle, true
	s.calls++
	s.backend.BindTexture(handle)
}

// forgetTexture drops the cached binding after the backend bound a texture
// of its own.
func (s *State) forgetTexture() {
	s.textureKnown = false
}

// Emission sets or, with nil, clears the emissive color.
func (s *State) Emission(c *world.ColorRGB) {
	on := c != nil
	if s.emissiveKnown && s.emissiveOn == on && (!on || s.emissive == *c) {
		return
	}
	s.emissiveOn, s.emissiveKnown = on, true
	if on {
		s.emissive = *c
	}
	s.calls++
	s.backend.SetEmission(c)
}
