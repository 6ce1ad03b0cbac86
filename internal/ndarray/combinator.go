package ndarray

// MapUnary applies f to every cell of v, producing a new Array with ncOut
// components per cell. f must not retain the slice it is given; the
// backing storage is reused across calls.
func MapUnary(v View, ncOut int, f func(p []float64) []float64) Array {
	out := New(v.ni, v.nj, ncOut)
	for i := 0; i < v.ni; i++ {
		for j := 0; j < v.nj; j++ {
			copy(out.At(i, j), f(v.At(i, j)))
		}
	}
	return out
}

// MapBinary applies f to the cellwise pair (a, b); a and b must have the
// same (ni, nj) extent.
func MapBinary(a, b View, ncOut int, f func(a, b []float64) []float64) Array {
	if a.ni != b.ni || a.nj != b.nj {
		panic("ndarray: MapBinary operand shape mismatch")
	}
	out := New(a.ni, a.nj, ncOut)
	for i := 0; i < a.ni; i++ {
		for j := 0; j < a.nj; j++ {
			copy(out.At(i, j), f(a.At(i, j), b.At(i, j)))
		}
	}
	return out
}

// MapTernary applies f to the cellwise triple (a, b, c); all three operands
// must share the same (ni, nj) extent.
func MapTernary(a, b, c View, ncOut int, f func(a, b, c []float64) []float64) Array {
	if a.ni != b.ni || a.nj != b.nj || a.ni != c.ni || a.nj != c.nj {
		panic("ndarray: MapTernary operand shape mismatch")
	}
	out := New(a.ni, a.nj, ncOut)
	for i := 0; i < a.ni; i++ {
		for j := 0; j < a.nj; j++ {
			copy(out.At(i, j), f(a.At(i, j), b.At(i, j), c.At(i, j)))
		}
	}
	return out
}

// MapQuaternary applies f to the cellwise quadruple (a, b, c, d). The
// conservative update in package advance uses MapTernary instead; nothing in
// this module calls MapQuaternary.
func MapQuaternary(a, b, c, d View, ncOut int, f func(a, b, c, d []float64) []float64) Array {
	if a.ni != b.ni || a.nj != b.nj || a.ni != c.ni || a.nj != c.nj || a.ni != d.ni || a.nj != d.nj {
		panic("ndarray: MapQuaternary operand shape mismatch")
	}
	out := New(a.ni, a.nj, ncOut)
	for i := 0; i < a.ni; i++ {
		for j := 0; j < a.nj; j++ {
			copy(out.At(i, j), f(a.At(i, j), b.At(i, j), c.At(i, j), d.At(i, j)))
		}
	}
	return out
}

// Add returns the cellwise sum of two same-shaped views.
func Add(a, b View) Array {
	return MapBinary(a, b, a.nc, func(x, y []float64) []float64 {
		out := make([]float64, len(x))
		for k := range x {
			out[k] = x[k] + y[k]
		}
		return out
	})
}
