// context.go - Compute-Kontext des CPU-Backends
//
// Dieses Modul enthaelt:
// - Context: Tensor-Fabrik (Empty, Zeros, FromFloats, FromInts, ...)
// - Zufallstensoren ueber den seedbaren RNG des Backends
package cpu

import (
	"fmt"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Context implementiert ml.Context fuer das CPU-Backend
type Context struct {
	b *Backend
}

// Empty erstellt einen uninitialisierten Tensor
func (c *Context) Empty(dtype ml.DType, shape ...int) ml.Tensor {
	return newTensor(c.b, dtype, shape)
}

// Zeros erstellt einen mit Nullen gefuellten Tensor
func (c *Context) Zeros(dtype ml.DType, shape ...int) ml.Tensor {
	// Go-Slices sind bereits nullinitialisiert
	return newTensor(c.b, dtype, shape)
}

// FromFloats erstellt einen F32-Tensor aus den gegebenen Werten
func (c *Context) FromFloats(s []float32, shape ...int) ml.Tensor {
	t := newTensor(c.b, ml.DTypeF32, shape)
	if len(s) != len(t.data) {
		panic(fmt.Sprintf("cpu: FromFloats mit %d Werten fuer Form %v", len(s), shape))
	}

	copy(t.data, s)
	return t
}

// FromInts erstellt einen I32-Tensor aus den gegebenen Werten
func (c *Context) FromInts(s []int32, shape ...int) ml.Tensor {
	t := newTensor(c.b, ml.DTypeI32, shape)
	if len(s) != len(t.idata) {
		panic(fmt.Sprintf("cpu: FromInts mit %d Werten fuer Form %v", len(s), shape))
	}

	copy(t.idata, s)
	return t
}

// RandomNormal erstellt einen normalverteilten F32-Tensor
func (c *Context) RandomNormal(mean, std float32, shape ...int) ml.Tensor {
	t := newTensor(c.b, ml.DTypeF32, shape)
	for i := range t.data {
		t.data[i] = mean + std*float32(c.b.rng.NormFloat64())
	}

	return t
}

// RandomUniform erstellt einen gleichverteilten F32-Tensor in [low, high)
func (c *Context) RandomUniform(low, high float32, shape ...int) ml.Tensor {
	t := newTensor(c.b, ml.DTypeF32, shape)
	for i := range t.data {
		t.data[i] = low + (high-low)*c.b.rng.Float32()
	}

	return t
}

// Arange erstellt einen 1D-Tensor mit Werten in [start, stop) in Schritten von step
func (c *Context) Arange(start, stop, step float32, dtype ml.DType) ml.Tensor {
	if step <= 0 {
		panic("cpu: Arange mit step <= 0")
	}

	n := int((stop - start + step - 1) / step)
	if n < 0 {
		n = 0
	}

	switch dtype {
	case ml.DTypeF32:
		t := newTensor(c.b, dtype, []int{n})
		for i := range t.data {
			t.data[i] = start + float32(i)*step
		}
		return t
	case ml.DTypeI32:
		t := newTensor(c.b, dtype, []int{n})
		for i := range t.idata {
			t.idata[i] = int32(start + float32(i)*step)
		}
		return t
	default:
		panic("cpu: Arange unterstuetzt nur F32 und I32")
	}
}

// Close gibt den Kontext frei
func (c *Context) Close() {}
