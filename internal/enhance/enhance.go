// Package enhance maps enhancement percentages to an ordered chain of
// raster filter operations. The chain order is fixed at brightness,
// contrast, saturate, sharpen so preview and export stay visually
// consistent.
package enhance

import (
	"image"

	"cardsmith/internal/card"

	"github.com/disintegration/imaging"
)

// OpName identifies one filter operation in a chain.
type OpName string

const (
	OpBrightness OpName = "brightness"
	OpContrast   OpName = "contrast"
	OpSaturate   OpName = "saturate"
	OpSharpen    OpName = "sharpen"
)

// Op is a single named filter with its percentage parameter (100 = neutral).
type Op struct {
	Name    OpName
	Percent float64
}

// Chain is the ordered list of non-neutral filter operations derived from a
// set of enhancement parameters.
type Chain []Op

// NewChain clamps the parameters to [0, max] and returns the resulting
// chain. A parameter at exactly 100 contributes no op, so neutral
// enhancements yield an empty chain and a strict no-op.
func NewChain(e card.Enhancements, max float64) Chain {
	e = e.Clamped(max)

	var chain Chain
	add := func(name OpName, pct float64) {
		if pct != card.NeutralPercent {
			chain = append(chain, Op{Name: name, Percent: pct})
		}
	}
	add(OpBrightness, e.Brightness)
	add(OpContrast, e.Contrast)
	add(OpSaturate, e.Saturation)
	add(OpSharpen, e.Sharpness)
	return chain
}

// Apply runs the chain over the image and returns the filtered result. An
// empty chain returns the input unchanged.
func (c Chain) Apply(img image.Image) image.Image {
	if len(c) == 0 {
		return img
	}

	out := imaging.Clone(img)
	for _, op := range c {
		switch op.Name {
		case OpBrightness:
			// imaging expects [-100, 100]; 100% maps to 0.
			out = imaging.AdjustBrightness(out, op.Percent-card.NeutralPercent)
		case OpContrast:
			out = imaging.AdjustContrast(out, op.Percent-card.NeutralPercent)
		case OpSaturate:
			out = imaging.AdjustSaturation(out, op.Percent-card.NeutralPercent)
		case OpSharpen:
			// Sharpness below neutral is a passthrough; above neutral is a
			// convolution with sigma growing to 2.0 at 200%.
			if op.Percent > card.NeutralPercent {
				sigma := (op.Percent - card.NeutralPercent) / 50.0
				out = imaging.Sharpen(out, sigma)
			}
		}
	}
	return out
}
