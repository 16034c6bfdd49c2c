package dsp

import "math"

// ----- Coherent Noise ----- //

// permRef is the canonical Perlin permutation of 0..255.
var permRef = [256]uint8{
	151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
	140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
	247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
	57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
	74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
	60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
	65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
	200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
	52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
	207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
	119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
	129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
	218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
	81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
	184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
	222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
}

// perm holds permRef twice so the second lookup (X+1) never needs a modulus.
var perm [512]uint8

func init() {
	for i := 0; i < 256; i++ {
		perm[i] = permRef[i]
		perm[i+256] = permRef[i]
	}
}

// fade is Perlin's quintic: 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// grad1 flips the sign of the offset depending on the low hash bit.
func grad1(hash uint8, x float64) float64 {
	if hash&1 != 0 {
		return x
	}
	return -x
}

// perlin1D evaluates 1-D value-gradient noise at x. The result is zero at
// every lattice point and stays within [-1, 1].
func perlin1D(x float64) float64 {
	xi := math.Floor(x)
	xf := x - xi
	X := int(xi) & 255

	u := fade(xf)

	g1 := grad1(perm[X], xf)
	g2 := grad1(perm[X+1], xf-1)

	return (1-u)*g1 + u*g2
}

// ----- fBm ----- //

type fbmParams struct {
	octaves    int
	lacunarity float64
	gain       float64
}

func defaultFbmParams() fbmParams {
	return fbmParams{octaves: 5, lacunarity: 2, gain: 0.5}
}

// fbm1D sums octaves of perlin1D with frequencies scaled by lacunarity and
// amplitudes by gain. With gain < 1 the magnitude is bounded by
// (1 - gain^octaves) / (1 - gain); the quantizers assume roughly [-2, 2].
func fbm1D(x float64, p fbmParams) float64 {
	sum := 0.0
	freq := 1.0
	amp := 1.0
	for i := 0; i < p.octaves; i++ {
		sum += perlin1D(x*freq) * amp
		freq *= p.lacunarity
		amp *= p.gain
	}
	return sum
}
