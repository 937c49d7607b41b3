package render

import "image/color"

// divergingAnchors is a blue-white-red diverging ramp (ColorBrewer RdBu,
// reversed): low values map to blue, zero to near-white, high to red.
var divergingAnchors = []color.RGBA{
	{R: 5, G: 48, B: 97, A: 255},
	{R: 33, G: 102, B: 172, A: 255},
	{R: 67, G: 147, B: 195, A: 255},
	{R: 146, G: 197, B: 222, A: 255},
	{R: 209, G: 229, B: 240, A: 255},
	{R: 247, G: 247, B: 247, A: 255},
	{R: 253, G: 219, B: 199, A: 255},
	{R: 244, G: 165, B: 130, A: 255},
	{R: 214, G: 96, B: 77, A: 255},
	{R: 178, G: 24, B: 43, A: 255},
	{R: 103, G: 0, B: 31, A: 255},
}

// divergingColor maps v within [vmin, vmax] onto the ramp, clamping values
// outside the range to the end colors.
func divergingColor(v, vmin, vmax float64) color.RGBA {
	if vmax <= vmin {
		return divergingAnchors[len(divergingAnchors)/2]
	}

	u := (v - vmin) / (vmax - vmin)
	if u <= 0 {
		return divergingAnchors[0]
	}
	if u >= 1 {
		return divergingAnchors[len(divergingAnchors)-1]
	}

	pos := u * float64(len(divergingAnchors)-1)
	i := int(pos)
	frac := pos - float64(i)

	lo, hi := divergingAnchors[i], divergingAnchors[i+1]

	return color.RGBA{
		R: lerpByte(lo.R, hi.R, frac),
		G: lerpByte(lo.G, hi.G, frac),
		B: lerpByte(lo.B, hi.B, frac),
		A: 255,
	}
}

func lerpByte(a, b uint8, frac float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*frac + 0.5)
}
