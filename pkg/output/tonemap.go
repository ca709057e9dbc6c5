// Package output maps linear framebuffer radiance to display colors and
// encodes the result.
package output

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/pkg/errors"
)

// ToneMapper converts linear radiance into display values. Results may still
// fall outside [0,1]; quantization clamps them.
type ToneMapper interface {
	Map(pixels []core.Vec3) []core.Vec3
}

// NewToneMapper returns the operator registered under name
func NewToneMapper(name string) (ToneMapper, error) {
	switch name {
	case "", "gamma":
		return Gamma{}, nil
	case "reinhard":
		return DefaultReinhardDevlin(), nil
	case "filmic":
		return Filmic{}, nil
	}
	return nil, errors.Errorf("unknown tone mapper %q (want gamma, reinhard or filmic)", name)
}

// Gamma applies gamma 2 correction per channel, capped just below 1
type Gamma struct{}

func (Gamma) Map(pixels []core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, len(pixels))
	for i, p := range pixels {
		out[i] = core.NewVec3(gamma2(p.X), gamma2(p.Y), gamma2(p.Z))
	}
	return out
}

func gamma2(v float64) float64 {
	return math.Min(math.Sqrt(math.Max(v, 0)), 0.999)
}

// ReinhardDevlin is the global photoreceptor operator by Reinhard and Devlin.
// F is the intensity (brightness), C the chromatic adaptation and A the light
// adaptation, each of C and A in [0,1].
type ReinhardDevlin struct {
	F, C, A float64
}

// DefaultReinhardDevlin returns neutral intensity with no adaptation blending
func DefaultReinhardDevlin() ReinhardDevlin {
	return ReinhardDevlin{F: 0, C: 0, A: 1}
}

// minLuminance keeps the log average finite for black pixels
const minLuminance = 1e-6

func (rd ReinhardDevlin) Map(pixels []core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, len(pixels))
	if len(pixels) == 0 {
		return out
	}

	lumMin, lumMax, lumAvg := math.Inf(1), minLuminance, 0.0
	var colorAvg core.Vec3
	for _, p := range pixels {
		l := math.Max(p.Luminance(), minLuminance)
		lumAvg += l
		colorAvg = colorAvg.Add(p)
		lumMin = math.Min(lumMin, l)
		lumMax = math.Max(lumMax, l)
	}
	n := float64(len(pixels))
	lumAvg /= n
	colorAvg = colorAvg.Multiply(1 / n)

	lmax, lmin, lav := math.Log(lumMax), math.Log(lumMin), math.Log(lumAvg)
	k := 0.0
	if lmax > lmin {
		k = (lmax - lav) / (lmax - lmin)
	}
	m := 0.3 + 0.7*math.Pow(k, 1.4)
	f := math.Exp(-rd.F)

	for i, p := range pixels {
		l := p.Luminance()
		var v [3]float64
		for axis := 0; axis < 3; axis++ {
			c := p.Axis(axis)
			local := rd.C*c + (1-rd.C)*l
			global := rd.C*colorAvg.Axis(axis) + (1-rd.C)*lumAvg
			adapt := rd.A*local + (1-rd.A)*global
			if denom := c + math.Pow(f*adapt, m); denom > 0 {
				v[axis] = c / denom
			}
		}
		out[i] = core.NewVec3(v[0], v[1], v[2])
	}
	return out
}

// Filmic is the Uncharted 2 curve with an exposure bias of 2 and a linear
// white point of 11.2
type Filmic struct{}

func (Filmic) Map(pixels []core.Vec3) []core.Vec3 {
	whiteScale := 1 / uncharted2(11.2)
	out := make([]core.Vec3, len(pixels))
	for i, p := range pixels {
		out[i] = core.NewVec3(
			uncharted2(2*p.X)*whiteScale,
			uncharted2(2*p.Y)*whiteScale,
			uncharted2(2*p.Z)*whiteScale,
		)
	}
	return out
}

func uncharted2(x float64) float64 {
	const a, b, c, d, e, f = 0.15, 0.50, 0.10, 0.20, 0.02, 0.30
	return (x*(a*x+c*b)+d*e)/(x*(a*x+b)+d*f) - e/f
}
