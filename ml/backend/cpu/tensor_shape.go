// tensor_shape.go - Formoperationen
//
// Dieses Modul enthaelt:
// - Reshape, Flatten: Umformen ohne Datenaenderung
// - Concat: Verketten entlang einer Achse
// - Slice: Teilbereich entlang einer Achse
// - Repeat: Wiederholen entlang einer Achse
// - Rows: Zeilen-Gather aus einer 2D-Tabelle
package cpu

import (
	"fmt"
	"slices"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Reshape formt den Tensor um; die Elementzahl muss gleich bleiben.
// Genau eine Dimension darf -1 sein und wird abgeleitet.
func (t *Tensor) Reshape(ctx ml.Context, shape ...int) ml.Tensor {
	shape = slices.Clone(shape)
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic("cpu: Reshape mit mehr als einer -1 Dimension")
			}
			infer = i
		} else {
			known *= d
		}
	}

	if infer >= 0 {
		if known == 0 || t.elems()%known != 0 {
			panic(fmt.Sprintf("cpu: Reshape %v -> %v nicht ableitbar", t.shape, shape))
		}
		shape[infer] = t.elems() / known
		known *= shape[infer]
	}

	if known != t.elems() {
		panic(fmt.Sprintf("cpu: Reshape %v -> %v aendert Elementzahl", t.shape, shape))
	}

	out := t.Duplicate(ctx).(*Tensor)
	out.shape = shape
	return out
}

// Flatten kollabiert alle Dimensionen ausser der Batch-Dimension
func (t *Tensor) Flatten(ctx ml.Context) ml.Tensor {
	if len(t.shape) < 1 {
		panic("cpu: Flatten auf skalarem Tensor")
	}

	return t.Reshape(ctx, t.shape[0], -1)
}

// Concat verkettet zwei Tensoren entlang der Achse dim
func (t *Tensor) Concat(ctx ml.Context, t2 ml.Tensor, dim int) ml.Tensor {
	u := t2.(*Tensor)
	if t.dtype != u.dtype {
		panic("cpu: Concat mit unterschiedlichen DTypes")
	}
	if len(t.shape) != len(u.shape) || dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("cpu: Concat %v + %v entlang %d", t.shape, u.shape, dim))
	}
	for i := range t.shape {
		if i != dim && t.shape[i] != u.shape[i] {
			panic(fmt.Sprintf("cpu: Concat %v + %v entlang %d", t.shape, u.shape, dim))
		}
	}

	shape := t.Shape()
	shape[dim] += u.shape[dim]
	out := newTensor(t.b, t.dtype, shape)

	// Bloecke: outer Iterationen von je (blockT | blockU) Elementen
	inner := 1
	for _, d := range t.shape[dim+1:] {
		inner *= d
	}
	blockT := t.shape[dim] * inner
	blockU := u.shape[dim] * inner
	outer := t.elems() / blockT

	copyBlocks := func(dst, a, b []float32) {
		for i := 0; i < outer; i++ {
			copy(dst[i*(blockT+blockU):], a[i*blockT:(i+1)*blockT])
			copy(dst[i*(blockT+blockU)+blockT:], b[i*blockU:(i+1)*blockU])
		}
	}

	switch t.dtype {
	case ml.DTypeF32:
		copyBlocks(out.data, t.data, u.data)
	case ml.DTypeI32:
		for i := 0; i < outer; i++ {
			copy(out.idata[i*(blockT+blockU):], t.idata[i*blockT:(i+1)*blockT])
			copy(out.idata[i*(blockT+blockU)+blockT:], u.idata[i*blockU:(i+1)*blockU])
		}
	default:
		panic(fmt.Sprintf("cpu: Concat auf %v-Tensor", t.dtype))
	}

	return out
}

// Slice schneidet [low, high) entlang der Achse dim aus
func (t *Tensor) Slice(ctx ml.Context, dim, low, high int) ml.Tensor {
	if dim < 0 || dim >= len(t.shape) || low < 0 || high > t.shape[dim] || low >= high {
		panic(fmt.Sprintf("cpu: Slice [%d:%d] entlang %d von %v", low, high, dim, t.shape))
	}

	shape := t.Shape()
	shape[dim] = high - low
	out := newTensor(t.b, t.dtype, shape)

	inner := 1
	for _, d := range t.shape[dim+1:] {
		inner *= d
	}
	srcBlock := t.shape[dim] * inner
	dstBlock := (high - low) * inner
	outer := t.elems() / srcBlock

	for i := 0; i < outer; i++ {
		switch t.dtype {
		case ml.DTypeF32:
			copy(out.data[i*dstBlock:], t.data[i*srcBlock+low*inner:i*srcBlock+high*inner])
		case ml.DTypeI32:
			copy(out.idata[i*dstBlock:], t.idata[i*srcBlock+low*inner:i*srcBlock+high*inner])
		case ml.DTypeF16:
			copy(out.hdata[i*dstBlock:], t.hdata[i*srcBlock+low*inner:i*srcBlock+high*inner])
		}
	}

	return out
}

// Repeat wiederholt den Tensor n-mal entlang der Achse dim
func (t *Tensor) Repeat(ctx ml.Context, dim, n int) ml.Tensor {
	if dim < 0 || dim >= len(t.shape) || n < 1 {
		panic(fmt.Sprintf("cpu: Repeat x%d entlang %d von %v", n, dim, t.shape))
	}

	shape := t.Shape()
	shape[dim] *= n
	out := newTensor(t.b, t.dtype, shape)
	if t.dtype != ml.DTypeF32 {
		panic(fmt.Sprintf("cpu: Repeat auf %v-Tensor", t.dtype))
	}

	inner := 1
	for _, d := range t.shape[dim+1:] {
		inner *= d
	}
	block := t.shape[dim] * inner
	outer := t.elems() / block

	for i := 0; i < outer; i++ {
		src := t.data[i*block : (i+1)*block]
		for r := 0; r < n; r++ {
			copy(out.data[(i*n+r)*block:], src)
		}
	}

	return out
}

// Rows selektiert Zeilen aus einer 2D-Tabelle anhand eines I32-Index-Tensors.
// Die Ergebnisform ist Indexform + (cols).
func (t *Tensor) Rows(ctx ml.Context, idxs ml.Tensor) ml.Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("cpu: Rows auf Tensor der Form %v", t.shape))
	}

	ix := idxs.(*Tensor)
	if ix.dtype != ml.DTypeI32 {
		panic("cpu: Rows erwartet I32-Indizes")
	}

	rows, cols := t.shape[0], t.shape[1]
	shape := append(ix.Shape(), cols)
	out := newTensor(t.b, ml.DTypeF32, shape)
	src := t.floats()

	for i, r := range ix.idata {
		if r < 0 || int(r) >= rows {
			panic(fmt.Sprintf("cpu: Rows: Index %d ausserhalb [0, %d)", r, rows))
		}
		copy(out.data[i*cols:(i+1)*cols], src[int(r)*cols:(int(r)+1)*cols])
	}

	return out
}
