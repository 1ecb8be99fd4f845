// backend.go - Pure-Go CPU-Backend fuer Tensor-Operationen
//
// Dieses Modul enthaelt:
// - Backend: eager ausfuehrendes CPU-Backend mit seedbarem RNG
// - Registrierung unter dem Namen "cpu"
//
// Alle Operationen rechnen sofort (kein Graph); Parallelitaet beschraenkt
// sich auf Batch-parallele Kernel innerhalb einzelner Operationen.
package cpu

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Backend implementiert ml.Backend auf der CPU
type Backend struct {
	rng     *rand.Rand
	threads int
}

func init() {
	ml.RegisterBackend("cpu", New)
}

// New erstellt ein CPU-Backend mit den gegebenen Parametern
func New(params ml.BackendParams) (ml.Backend, error) {
	threads := params.NumThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Backend{
		rng:     rand.New(rand.NewSource(seed)),
		threads: threads,
	}, nil
}

// NewContext erstellt einen neuen Compute-Kontext
func (b *Backend) NewContext() ml.Context {
	return &Context{b: b}
}

// Seed setzt den RNG auf einen deterministischen Zustand
func (b *Backend) Seed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// Close gibt alle Ressourcen frei (beim CPU-Backend uebernimmt das der GC)
func (b *Backend) Close() {}
