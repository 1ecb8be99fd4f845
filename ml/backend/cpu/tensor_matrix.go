// tensor_matrix.go - Matrix-Multiplikation ueber gonum BLAS
//
// Dieses Modul enthaelt:
// - Matmul: (..., k) x (k, n) -> (..., n)
// - MatmulT: (..., k) x (n, k) -> (..., n), rechte Seite transponiert
//
// Fuehrende Dimensionen der linken Seite werden als Zeilenblock behandelt,
// sodass ein einzelner SGEMM-Aufruf genuegt.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/staceycy/probnmn-clevr/ml"
)

// gemm fuehrt C = A * op(B) aus; A ist (m, k) zeilen-major
func gemm(a []float32, m, k int, b []float32, bRows, bCols int, tB blas.Transpose, c []float32, n int) {
	ga := blas32.General{Rows: m, Cols: k, Stride: k, Data: a}
	gb := blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: b}
	gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: c}
	blas32.Gemm(blas.NoTrans, tB, 1, ga, gb, 0, gc)
}

// matmul behandelt beide Varianten; transposed waehlt MatmulT-Semantik
func (t *Tensor) matmul(t2 ml.Tensor, transposed bool) ml.Tensor {
	u := t2.(*Tensor)
	if len(t.shape) < 1 || len(u.shape) != 2 {
		panic(fmt.Sprintf("cpu: Matmul mit Formen %v x %v", t.shape, u.shape))
	}

	k := t.shape[len(t.shape)-1]
	var n int
	if transposed {
		if u.shape[1] != k {
			panic(fmt.Sprintf("cpu: MatmulT: innere Dimension %d != %d", u.shape[1], k))
		}
		n = u.shape[0]
	} else {
		if u.shape[0] != k {
			panic(fmt.Sprintf("cpu: Matmul: innere Dimension %d != %d", u.shape[0], k))
		}
		n = u.shape[1]
	}

	m := t.elems() / k
	shape := append(t.shape[:len(t.shape)-1:len(t.shape)-1], n)
	out := newTensor(t.b, ml.DTypeF32, shape)

	tb := blas.NoTrans
	if transposed {
		tb = blas.Trans
	}
	gemm(t.floats(), m, k, u.floats(), u.shape[0], u.shape[1], tb, out.data, n)

	return out
}

// Matmul multipliziert (..., k) mit (k, n)
func (t *Tensor) Matmul(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.matmul(t2, false)
}

// MatmulT multipliziert (..., k) mit (n, k), rechte Seite transponiert
func (t *Tensor) MatmulT(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.matmul(t2, true)
}
