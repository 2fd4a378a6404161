package scene

import "fmt"

// Bucket is one of the four render partitions.
type Bucket uint8

const (
	BucketOpaque Bucket = iota
	BucketTransparentColor
	BucketAlpha
	BucketOverlay

	bucketCount = 4
)

func (b Bucket) String() string {
	switch b {
	case BucketOpaque:
		return "opaque"
	case BucketTransparentColor:
		return "transparent-color"
	case BucketAlpha:
		return "alpha"
	case BucketOverlay:
		return "overlay"
	}
	return fmt.Sprintf("Bucket(%d)", uint8(b))
}

// Handle packs a bucket and an index within that bucket. It is the only
// reference an object keeps to its own face entries.
type Handle uint32

const (
	handleBucketBits = 2
	handleBucketMask = 1<<handleBucketBits - 1

	// NoHandle marks an unused slot.
	NoHandle Handle = ^Handle(0)
)

// MakeHandle packs (b, index).
func MakeHandle(b Bucket, index int) Handle {
	return Handle(uint32(index)<<handleBucketBits | uint32(b))
}

// Bucket returns the bucket part of h.
func (h Handle) Bucket() Bucket {
	return Bucket(h & handleBucketMask)
}

// Index returns the index part of h.
func (h Handle) Index() int {
	return int(h >> handleBucketBits)
}

func (h Handle) String() string {
	if h == NoHandle {
		return "none"
	}
	return fmt.Sprintf("%s[%d]", h.Bucket(), h.Index())
}
