// tensor_nn.go - Neuronale Netzwerk Operationen
//
// Dieses Modul enthaelt:
// - Aktivierungen: Sigmoid, Tanh, RELU
// - Softmax und LogSoftmax ueber die letzte Achse (numerisch stabilisiert)
// - Conv2D: 2D-Faltung (NCHW x OIHW) via im2col und SGEMM, Batch-parallel
package cpu

import (
	"fmt"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"

	"github.com/staceycy/probnmn-clevr/ml"
)

// unary wendet f elementweise an; Ergebnis ist immer F32
func (t *Tensor) unary(f func(x float32) float32) *Tensor {
	out := newTensor(t.b, ml.DTypeF32, t.shape)
	for i, v := range t.floats() {
		out.data[i] = f(v)
	}

	return out
}

// Sigmoid berechnet 1 / (1 + exp(-x)) elementweise
func (t *Tensor) Sigmoid(ctx ml.Context) ml.Tensor {
	return t.unary(func(x float32) float32 {
		return 1 / (1 + math32.Exp(-x))
	})
}

// Tanh berechnet Tangens Hyperbolicus elementweise
func (t *Tensor) Tanh(ctx ml.Context) ml.Tensor {
	return t.unary(math32.Tanh)
}

// RELU berechnet max(0, x) elementweise
func (t *Tensor) RELU(ctx ml.Context) ml.Tensor {
	return t.unary(func(x float32) float32 {
		return max(0, x)
	})
}

// softmaxRows berechnet Softmax (und optional log) zeilenweise
func (t *Tensor) softmaxRows(logMode bool) *Tensor {
	if len(t.shape) < 1 {
		panic("cpu: Softmax auf skalarem Tensor")
	}

	n := t.shape[len(t.shape)-1]
	out := newTensor(t.b, ml.DTypeF32, t.shape)
	src := t.floats()

	for row := 0; row < t.elems()/n; row++ {
		s := src[row*n : (row+1)*n]
		d := out.data[row*n : (row+1)*n]

		// Maximum abziehen fuer numerische Stabilitaet
		m := s[0]
		for _, v := range s[1:] {
			m = max(m, v)
		}

		var sum float32
		for i, v := range s {
			d[i] = math32.Exp(v - m)
			sum += d[i]
		}

		if logMode {
			logSum := math32.Log(sum)
			for i, v := range s {
				d[i] = v - m - logSum
			}
		} else {
			for i := range d {
				d[i] /= sum
			}
		}
	}

	return out
}

// Softmax berechnet Softmax ueber die letzte Achse
func (t *Tensor) Softmax(ctx ml.Context) ml.Tensor {
	return t.softmaxRows(false)
}

// LogSoftmax berechnet log(Softmax) ueber die letzte Achse
func (t *Tensor) LogSoftmax(ctx ml.Context) ml.Tensor {
	return t.softmaxRows(true)
}

// Conv2D faltet NCHW-Eingaben mit OIHW-Gewichten, stride 1.
// Der Batch wird auf mehrere Goroutinen verteilt; pro Batch-Element wird
// die Faltung als im2col-Matrix mal Gewichtsmatrix (SGEMM) ausgefuehrt.
func (t *Tensor) Conv2D(ctx ml.Context, weight, bias ml.Tensor, padding, dilation int) ml.Tensor {
	w := weight.(*Tensor)
	if len(t.shape) != 4 || len(w.shape) != 4 {
		panic(fmt.Sprintf("cpu: Conv2D mit Formen %v x %v", t.shape, w.shape))
	}

	batch, inC, inH, inW := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	outC, kC, kH, kW := w.shape[0], w.shape[1], w.shape[2], w.shape[3]
	if kC != inC {
		panic(fmt.Sprintf("cpu: Conv2D: %d Eingabekanaele, Gewicht erwartet %d", inC, kC))
	}

	outH := inH + 2*padding - dilation*(kH-1)
	outW := inW + 2*padding - dilation*(kW-1)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("cpu: Conv2D: Ausgabeform %dx%d", outH, outW))
	}

	out := newTensor(t.b, ml.DTypeF32, []int{batch, outC, outH, outW})
	src := t.floats()
	wdat := w.floats()

	var bdat []float32
	if bias != nil {
		bdat = bias.(*Tensor).floats()
		if len(bdat) != outC {
			panic(fmt.Sprintf("cpu: Conv2D: Bias-Laenge %d != %d", len(bdat), outC))
		}
	}

	colRows := inC * kH * kW
	plane := outH * outW

	var g errgroup.Group
	g.SetLimit(t.b.threads)
	for n := 0; n < batch; n++ {
		n := n
		g.Go(func() error {
			// im2col: Spalten der Patch-Matrix in Zeilen-major Ordnung
			col := make([]float32, colRows*plane)
			x := src[n*inC*inH*inW:]
			for ic := 0; ic < inC; ic++ {
				for ki := 0; ki < kH; ki++ {
					for kj := 0; kj < kW; kj++ {
						r := (ic*kH+ki)*kW + kj
						for oh := 0; oh < outH; oh++ {
							ih := oh + dilation*ki - padding
							if ih < 0 || ih >= inH {
								continue
							}
							for ow := 0; ow < outW; ow++ {
								iw := ow + dilation*kj - padding
								if iw < 0 || iw >= inW {
									continue
								}
								col[r*plane+oh*outW+ow] = x[(ic*inH+ih)*inW+iw]
							}
						}
					}
				}
			}

			dst := out.data[n*outC*plane : (n+1)*outC*plane]
			gemm(wdat, outC, colRows, col, colRows, plane, blas.NoTrans, dst, plane)

			if bdat != nil {
				for oc := 0; oc < outC; oc++ {
					for i := 0; i < plane; i++ {
						dst[oc*plane+i] += bdat[oc]
					}
				}
			}

			return nil
		})
	}

	// Kernels liefern keine Fehler; Wait synchronisiert nur
	_ = g.Wait()

	return out
}
