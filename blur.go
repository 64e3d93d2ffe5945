package morph

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen images keyed by power-of-two
// dimensions. After warmup, acquire/release do not allocate.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *renderTexturePool) acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// release returns an image to the pool. It is cleared on the next acquire.
func (p *renderTexturePool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// dispose deallocates every pooled image.
func (p *renderTexturePool) dispose() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Blur ---

// blurFilter applies a Kawase iterative blur using downscale/upscale passes.
// Bilinear filtering during DrawImage does the work, no shader is needed.
type blurFilter struct {
	radius int
	temps  []*ebiten.Image
	op     ebiten.DrawImageOptions
}

// blurPasses returns the number of halvings for radius: log2(radius),
// minimum 1.
func blurPasses(radius int) int {
	return max(int(math.Ceil(math.Log2(float64(radius)))), 1)
}

// apply renders a blur of src into dst. src and dst may differ in size; the
// result is stretched to dst.
func (f *blurFilter) apply(src, dst *ebiten.Image) {
	op := &f.op
	if f.radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Blend = ebiten.BlendSourceOver
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(f.radius)
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	// Deallocate excess temps from a previous larger radius.
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear

	current := src
	for i := range passes {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		f.stretch(current, f.temps[i])
		current = f.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		f.stretch(current, f.temps[i])
		current = f.temps[i]
	}
	f.stretch(current, dst)
}

// stretch draws src scaled to cover dst.
func (f *blurFilter) stretch(src, dst *ebiten.Image) {
	op := &f.op
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	dst.DrawImage(src, op)
}

// dispose releases the intermediate images.
func (f *blurFilter) dispose() {
	for i, t := range f.temps {
		if t != nil {
			t.Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:0]
}

// effectiveBlurRadius is the pixel radius an effect element blurs with at
// its current amount.
func effectiveBlurRadius(e *Element) int {
	return int(math.Round(clamp01(e.BlurAmount) * float64(e.BlurRadius)))
}
