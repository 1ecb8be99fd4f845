// init.go - Gewichts-Initialisierung
// Dieses Modul stellt Fan-In-basierte Initialisierungen fuer Layer-Gewichte bereit.
package nn

import (
	"github.com/chewxy/math32"

	"github.com/staceycy/probnmn-clevr/ml"
)

// KaimingNormal erstellt einen normalverteilten Tensor mit Standardabweichung
// sqrt(2 / fanIn). Geeignet fuer Gewichte vor RELU-Aktivierungen.
func KaimingNormal(ctx ml.Context, fanIn int, shape ...int) ml.Tensor {
	std := math32.Sqrt(2 / float32(fanIn))
	return ctx.RandomNormal(0, std, shape...)
}

// ScaledUniform erstellt einen gleichverteilten Tensor in [-k, k) mit
// k = 1 / sqrt(fanIn). Entspricht der ueblichen Initialisierung rekurrenter
// und linearer Layer.
func ScaledUniform(ctx ml.Context, fanIn int, shape ...int) ml.Tensor {
	k := 1 / math32.Sqrt(float32(fanIn))
	return ctx.RandomUniform(-k, k, shape...)
}
