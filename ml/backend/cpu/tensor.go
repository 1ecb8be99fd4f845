// tensor.go - Tensor-Struktur des CPU-Backends
//
// Dieses Modul enthaelt:
// - Tensor: dichter Zeilen-major Tensor (F32, F16 oder I32)
// - Zugriffsfunktionen (Shape, Dim, Floats, Ints) und interne Helfer
package cpu

import (
	"fmt"
	"slices"

	"github.com/x448/float16"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Tensor implementiert ml.Tensor als dichten Zeilen-major Puffer
type Tensor struct {
	b     *Backend
	dtype ml.DType
	shape []int

	data  []float32 // F32
	hdata []uint16  // F16 (Bitmuster)
	idata []int32   // I32
}

func newTensor(b *Backend, dtype ml.DType, shape []int) *Tensor {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("cpu: negative Dimension in Form %v", shape))
		}
		n *= d
	}

	t := &Tensor{b: b, dtype: dtype, shape: slices.Clone(shape)}
	switch dtype {
	case ml.DTypeF32:
		t.data = make([]float32, n)
	case ml.DTypeF16:
		t.hdata = make([]uint16, n)
	case ml.DTypeI32:
		t.idata = make([]int32, n)
	default:
		panic(fmt.Sprintf("cpu: nicht unterstuetzter DType %v", dtype))
	}

	return t
}

// Dim gibt die Groesse der n-ten Dimension zurueck
func (t *Tensor) Dim(n int) int {
	return t.shape[n]
}

// Shape gibt die Form des Tensors zurueck
func (t *Tensor) Shape() []int {
	return slices.Clone(t.shape)
}

// DType gibt den Elementtyp zurueck
func (t *Tensor) DType() ml.DType {
	return t.dtype
}

// elems gibt die Gesamtzahl der Elemente zurueck
func (t *Tensor) elems() int {
	n := 1
	for _, d := range t.shape {
		n *= d
	}

	return n
}

// floats liefert eine float32-Sicht ohne Kopie fuer F32, sonst konvertiert
func (t *Tensor) floats() []float32 {
	switch t.dtype {
	case ml.DTypeF32:
		return t.data
	case ml.DTypeF16:
		s := make([]float32, len(t.hdata))
		for i, h := range t.hdata {
			s[i] = float16.Frombits(h).Float32()
		}
		return s
	case ml.DTypeI32:
		s := make([]float32, len(t.idata))
		for i, v := range t.idata {
			s[i] = float32(v)
		}
		return s
	}

	panic("cpu: floats auf nicht unterstuetztem DType")
}

// Floats gibt die Elemente als float32-Kopie zurueck
func (t *Tensor) Floats() []float32 {
	return slices.Clone(t.floats())
}

// FromFloats schreibt Werte in-place; die Form bleibt unveraendert
func (t *Tensor) FromFloats(s []float32) {
	if len(s) != t.elems() {
		panic(fmt.Sprintf("cpu: FromFloats mit %d Werten fuer Form %v", len(s), t.shape))
	}

	switch t.dtype {
	case ml.DTypeF32:
		copy(t.data, s)
	case ml.DTypeF16:
		for i, v := range s {
			t.hdata[i] = float16.Fromfloat32(v).Bits()
		}
	default:
		panic(fmt.Sprintf("cpu: FromFloats auf %v-Tensor", t.dtype))
	}
}

// Ints gibt die Elemente als int32-Kopie zurueck (nur I32)
func (t *Tensor) Ints() []int32 {
	if t.dtype != ml.DTypeI32 {
		panic(fmt.Sprintf("cpu: Ints auf %v-Tensor", t.dtype))
	}

	return slices.Clone(t.idata)
}

// Duplicate erstellt eine tiefe Kopie des Tensors
func (t *Tensor) Duplicate(ctx ml.Context) ml.Tensor {
	out := newTensor(t.b, t.dtype, t.shape)
	copy(out.data, t.data)
	copy(out.hdata, t.hdata)
	copy(out.idata, t.idata)
	return out
}

// Cast konvertiert zwischen F32 und F16
func (t *Tensor) Cast(ctx ml.Context, dtype ml.DType) ml.Tensor {
	if dtype == t.dtype {
		return t.Duplicate(ctx)
	}

	switch {
	case t.dtype == ml.DTypeF32 && dtype == ml.DTypeF16:
		out := newTensor(t.b, ml.DTypeF16, t.shape)
		for i, v := range t.data {
			out.hdata[i] = float16.Fromfloat32(v).Bits()
		}
		return out
	case t.dtype == ml.DTypeF16 && dtype == ml.DTypeF32:
		out := newTensor(t.b, ml.DTypeF32, t.shape)
		for i, h := range t.hdata {
			out.data[i] = float16.Frombits(h).Float32()
		}
		return out
	}

	panic(fmt.Sprintf("cpu: Cast %v -> %v nicht unterstuetzt", t.dtype, dtype))
}
