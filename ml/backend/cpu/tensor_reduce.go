// tensor_reduce.go - Reduktionen und Stichproben
//
// Dieses Modul enthaelt:
// - Argmax: Indizes der Maxima ueber die letzte Achse
// - Multinomial: kategoriale Stichprobe pro Zeile ueber den Backend-RNG
package cpu

import (
	"fmt"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Argmax liefert pro Zeile der letzten Achse den Index des Maximums.
// Bei mehreren gleich grossen Maxima gewinnt das erste in Zeilenreihenfolge.
func (t *Tensor) Argmax(ctx ml.Context) ml.Tensor {
	if len(t.shape) < 1 || t.shape[len(t.shape)-1] == 0 {
		panic(fmt.Sprintf("cpu: Argmax auf Form %v", t.shape))
	}

	n := t.shape[len(t.shape)-1]
	out := newTensor(t.b, ml.DTypeI32, t.shape[:len(t.shape)-1])
	src := t.floats()

	for row := range out.idata {
		s := src[row*n : (row+1)*n]
		best := 0
		for i, v := range s[1:] {
			if v > s[best] {
				best = i + 1
			}
		}
		out.idata[row] = int32(best)
	}

	return out
}

// Multinomial zieht pro Zeile der letzten Achse einen Index proportional zu
// den (nicht notwendig normierten) Gewichten. Nicht deterministisch, sofern
// das Backend nicht geseedet wurde.
func (t *Tensor) Multinomial(ctx ml.Context) ml.Tensor {
	if len(t.shape) < 1 || t.shape[len(t.shape)-1] == 0 {
		panic(fmt.Sprintf("cpu: Multinomial auf Form %v", t.shape))
	}

	n := t.shape[len(t.shape)-1]
	out := newTensor(t.b, ml.DTypeI32, t.shape[:len(t.shape)-1])
	src := t.floats()

	for row := range out.idata {
		s := src[row*n : (row+1)*n]

		var total float64
		for _, v := range s {
			if v < 0 {
				panic("cpu: Multinomial mit negativem Gewicht")
			}
			total += float64(v)
		}
		if total == 0 {
			panic("cpu: Multinomial ohne Wahrscheinlichkeitsmasse")
		}

		r := t.b.rng.Float64() * total
		acc := 0.0
		picked := n - 1
		for i, v := range s {
			acc += float64(v)
			if r < acc {
				picked = i
				break
			}
		}
		out.idata[row] = int32(picked)
	}

	return out
}
