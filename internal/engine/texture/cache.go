package texture

import (
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/engine/world"
)

// Uploader moves decoded pixels to the GPU. The GL backend implements it.
// Upload may leave the new texture bound.
type Uploader interface {
	Upload(img *image.RGBA) (handle uint32, err error)
	Delete(handle uint32)
}

// Loader reads the raw bytes of a texture file.
type Loader func(path string) ([]byte, error)

type cacheKey struct {
	path  string
	key   world.ColorRGB
	keyed bool
}

type entry struct {
	path         string
	key          *world.ColorRGB
	handle       uint32
	transparency Transparency
	decoded      bool
	ignore       bool
}

// Cache owns every registered texture. The renderer refers to textures by
// world.TextureID only; decoding happens on first use.
type Cache struct {
	entries  []entry
	byKey    map[cacheKey]world.TextureID
	load     Loader
	uploader Uploader
	uploads  uint64
	log      *zap.Logger
}

// NewCache creates a texture cache. A nil load reads from the filesystem and
// a nil uploader keeps the cache headless (decode and classify only).
func NewCache(uploader Uploader, load Loader, log *zap.Logger) *Cache {
	if load == nil {
		load = os.ReadFile
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		byKey:    make(map[cacheKey]world.TextureID),
		load:     load,
		uploader: uploader,
		log:      log,
	}
}

// Register adds a texture file and returns its ID. Registering the same
// path and key twice returns the same ID.
func (c *Cache) Register(path string, key *world.ColorRGB) world.TextureID {
	k := cacheKey{path: path}
	if key != nil {
		k.key, k.keyed = *key, true
	}
	if id, ok := c.byKey[k]; ok {
		return id
	}
	id := world.TextureID(len(c.entries))
	c.entries = append(c.entries, entry{path: path, key: key})
	c.byKey[k] = id
	return id
}

// Resolve returns the native handle of a texture, decoding and uploading it
// on first use. ready is false for unknown, failed or not yet uploaded textures.
func (c *Cache) Resolve(id world.TextureID) (handle uint32, ready bool) {
	e := c.use(id)
	if e == nil || e.handle == 0 {
		return 0, false
	}
	return e.handle, true
}

// Transparency returns the transparency class of a texture, decoding it on
// first use. Unknown or undecodable textures report TransparencyNone.
func (c *Cache) Transparency(id world.TextureID) Transparency {
	e := c.use(id)
	if e == nil {
		return TransparencyNone
	}
	return e.transparency
}

func (c *Cache) use(id world.TextureID) *entry {
	if id < 0 || int(id) >= len(c.entries) {
		return nil
	}
	e := &c.entries[id]
	if e.ignore {
		return nil
	}
	if !e.decoded || (e.handle == 0 && c.uploader != nil) {
		if err := c.loadEntry(e); err != nil {
			c.log.Warn("texture unavailable", zap.String("path", e.path), zap.Error(err))
			e.ignore = true
			return nil
		}
	}
	return e
}

func (c *Cache) loadEntry(e *entry) error {
	data, err := c.load(e.path)
	if err != nil {
		return err
	}
	img, err := Decode(data, e.key)
	if err != nil {
		return err
	}
	e.transparency = DetectTransparency(img)
	e.decoded = true
	if c.uploader != nil {
		h, err := c.uploader.Upload(img)
		if err != nil {
			return fmt.Errorf("uploading: %w", err)
		}
		e.handle = h
		c.uploads++
	}
	c.log.Debug("texture loaded",
		zap.String("path", e.path),
		zap.Stringer("transparency", e.transparency),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return nil
}

// Uploads counts successful uploads. Callers that cache the bound texture
// compare it across calls to notice bindings made behind their back.
func (c *Cache) Uploads() uint64 {
	return c.uploads
}

// SetUploader attaches the GPU uploader once a context exists. Textures that
// were decoded headless are uploaded on their next use.
func (c *Cache) SetUploader(u Uploader) {
	c.uploader = u
}

// Unload frees the GPU copy of a texture and clears its failure mark so the
// next use retries.
func (c *Cache) Unload(id world.TextureID) {
	if id < 0 || int(id) >= len(c.entries) {
		return
	}
	e := &c.entries[id]
	if e.handle != 0 && c.uploader != nil {
		c.uploader.Delete(e.handle)
	}
	e.handle = 0
	e.decoded = false
	e.ignore = false
}

// UnloadAll unloads every registered texture.
func (c *Cache) UnloadAll() {
	for i := range c.entries {
		c.Unload(world.TextureID(i))
	}
}

// Stats reports registered and uploaded texture counts.
func (c *Cache) Stats() (registered, loaded int) {
	for i := range c.entries {
		if c.entries[i].handle != 0 {
			loaded++
		}
	}
	return len(c.entries), loaded
}
