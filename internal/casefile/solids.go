package casefile

import (
	"math"

	"github.com/jrctsi/AdaptiveStarter/internal/contour"
)

// Cell (i, j, k) covers the millimeter interval [i*spacing, (i+1)*spacing)
// on each axis; a cell is occupied when its center lies inside the solid.

// rasterize marks the cells of shape covered by the solid.
func (s Solid) rasterize(shape *contour.GridShape) {
	switch {
	case s.Sphere != nil:
		s.Sphere.rasterize(shape)
	case s.Box != nil:
		s.Box.rasterize(shape)
	}
}

func (sp *Sphere) rasterize(shape *contour.GridShape) {
	spacing := shape.Resolution().SpacingMM()
	r2 := sp.RadiusMM * sp.RadiusMM
	lo, hi := cellRange(sp.Center, sp.RadiusMM, spacing)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				dx := cellCenter(x, spacing) - sp.Center[0]
				dy := cellCenter(y, spacing) - sp.Center[1]
				dz := cellCenter(z, spacing) - sp.Center[2]
				if dx*dx+dy*dy+dz*dz <= r2 {
					shape.Add(contour.Cell{X: x, Y: y, Z: z})
				}
			}
		}
	}
}

func (b *Box) rasterize(shape *contour.GridShape) {
	spacing := shape.Resolution().SpacingMM()
	var lo, hi [3]int
	for axis := 0; axis < 3; axis++ {
		lo[axis] = int(math.Floor(b.Min[axis] / spacing))
		hi[axis] = int(math.Ceil(b.Max[axis] / spacing))
	}
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				cx := cellCenter(x, spacing)
				cy := cellCenter(y, spacing)
				cz := cellCenter(z, spacing)
				if cx >= b.Min[0] && cx <= b.Max[0] &&
					cy >= b.Min[1] && cy <= b.Max[1] &&
					cz >= b.Min[2] && cz <= b.Max[2] {
					shape.Add(contour.Cell{X: x, Y: y, Z: z})
				}
			}
		}
	}
}

func cellCenter(i int, spacing float64) float64 {
	return (float64(i) + 0.5) * spacing
}

func cellRange(center [3]float64, radiusMM, spacing float64) (lo, hi [3]int) {
	for axis := 0; axis < 3; axis++ {
		lo[axis] = int(math.Floor((center[axis] - radiusMM) / spacing))
		hi[axis] = int(math.Ceil((center[axis] + radiusMM) / spacing))
	}
	return lo, hi
}
