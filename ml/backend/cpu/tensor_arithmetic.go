// tensor_arithmetic.go - Elementweise Arithmetik mit Broadcasting
//
// Dieses Modul enthaelt:
// - Add, Sub, Mul, Minimum, Maximum: elementweise Operationen
// - Scale: Multiplikation mit einem Skalar
// - Broadcasting nach NumPy-Regeln (Dimensionen der Groesse 1 expandieren)
package cpu

import (
	"fmt"

	"github.com/staceycy/probnmn-clevr/ml"
)

// broadcastShape berechnet die Ergebnisform zweier Operanden
func broadcastShape(a, b []int) []int {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if i >= n-len(a) {
			da = a[i-(n-len(a))]
		}
		if i >= n-len(b) {
			db = b[i-(n-len(b))]
		}

		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			panic(fmt.Sprintf("cpu: Formen %v und %v nicht broadcastbar", a, b))
		}
	}

	return out
}

// broadcastStrides liefert Zeilen-major Strides relativ zur Ergebnisform;
// expandierte Dimensionen erhalten Stride 0
func broadcastStrides(shape, out []int) []int {
	strides := make([]int, len(out))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		o := i + len(out) - len(shape)
		if shape[i] != 1 {
			strides[o] = acc
		}
		acc *= shape[i]
	}

	return strides
}

// binop wendet f elementweise mit Broadcasting an; Ergebnis ist immer F32
func (t *Tensor) binop(t2 ml.Tensor, f func(x, y float32) float32) *Tensor {
	u := t2.(*Tensor)
	shape := broadcastShape(t.shape, u.shape)
	out := newTensor(t.b, ml.DTypeF32, shape)

	a, b := t.floats(), u.floats()
	sa := broadcastStrides(t.shape, shape)
	sb := broadcastStrides(u.shape, shape)

	idx := make([]int, len(shape))
	oa, ob := 0, 0
	for i := range out.data {
		out.data[i] = f(a[oa], b[ob])

		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			oa += sa[d]
			ob += sb[d]
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
			oa -= sa[d] * shape[d]
			ob -= sb[d] * shape[d]
		}
	}

	return out
}

// Add addiert elementweise
func (t *Tensor) Add(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binop(t2, func(x, y float32) float32 { return x + y })
}

// Sub subtrahiert elementweise
func (t *Tensor) Sub(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binop(t2, func(x, y float32) float32 { return x - y })
}

// Mul multipliziert elementweise
func (t *Tensor) Mul(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binop(t2, func(x, y float32) float32 { return x * y })
}

// Minimum bildet das elementweise Minimum
func (t *Tensor) Minimum(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binop(t2, func(x, y float32) float32 { return min(x, y) })
}

// Maximum bildet das elementweise Maximum
func (t *Tensor) Maximum(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binop(t2, func(x, y float32) float32 { return max(x, y) })
}

// Scale multipliziert alle Elemente mit s
func (t *Tensor) Scale(ctx ml.Context, s float64) ml.Tensor {
	out := newTensor(t.b, ml.DTypeF32, t.shape)
	for i, v := range t.floats() {
		out.data[i] = v * float32(s)
	}

	return out
}
