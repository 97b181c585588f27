package meshsdf

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

const tau = 2 * math.Pi

// sampleSteps returns the number of stratification steps in theta and
// phi of a hemisphere holding about half of numSamples directions.
func sampleSteps(numSamples int) (nTheta, nPhi int) {
	if numSamples <= 0 {
		return 0, 0
	}
	nTheta = int(math.Sqrt(float64(numSamples) / tau))
	nPhi = int(float64(nTheta) * math.Pi)
	return nTheta, nPhi
}

// sampleDirections returns unit directions covering the sphere: two
// stratified uniform hemispheres drawn from one seeded source, the second
// mirrored across the XY plane.
func sampleDirections(numSamples int, seed int64) []r3.Vec {
	nTheta, nPhi := sampleSteps(numSamples)
	rng := rand.New(rand.NewSource(seed))
	up := hemisphere(rng, nTheta, nPhi)
	down := hemisphere(rng, nTheta, nPhi)
	for i := range down {
		down[i].Z = -down[i].Z
	}
	return append(up, down...)
}

// hemisphere generates nTheta*nPhi stratified directions uniformly
// distributed over the +Z hemisphere.
func hemisphere(rng *rand.Rand, nTheta, nPhi int) []r3.Vec {
	dirs := make([]r3.Vec, 0, nTheta*nPhi)
	for i := 0; i < nTheta; i++ {
		for j := 0; j < nPhi; j++ {
			u1 := rng.Float64()
			u2 := rng.Float64()
			f1 := (float64(i) + u1) / float64(nTheta)
			f2 := (float64(j) + u2) / float64(nPhi)
			r := math.Sqrt(1 - f1*f1)
			phi := tau * f2
			dirs = append(dirs, r3.Vec{X: math.Cos(phi) * r, Y: math.Sin(phi) * r, Z: f1})
		}
	}
	return dirs
}
