// metrics.go - Laufende Metrik-Akkumulation
// Enthaelt: Average mit Reset-beim-Lesen-Semantik
package model

import "errors"

// ErrNoData zeigt an, dass seit dem letzten Lesen nichts akkumuliert wurde
var ErrNoData = errors.New("metrics: no accumulated data")

// Average akkumuliert einen laufenden Mittelwert. Value liest den Mittelwert
// und setzt den Akkumulator zurueck; ein zweites Lesen ohne neues Record
// liefert ErrNoData.
type Average struct {
	sum   float64
	count int
}

// Record fuegt einen Wert zum laufenden Mittelwert hinzu
func (a *Average) Record(v float64) {
	a.sum += v
	a.count++
}

// Value gibt den Mittelwert zurueck und setzt den Akkumulator zurueck
func (a *Average) Value() (float64, error) {
	if a.count == 0 {
		return 0, ErrNoData
	}

	v := a.sum / float64(a.count)
	a.sum, a.count = 0, 0
	return v, nil
}
