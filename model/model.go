// Package model - Model-Interface und Initialisierung
//
// Dieses Paket definiert das Model-Interface und stellt Funktionen
// zur Initialisierung und Verwaltung von Modellen bereit.
//
// Hauptkomponenten:
// - Model: Interface fuer alle Modell-Architekturen
// - Base: Basis-Implementierung fuer gemeinsame Funktionalitaet
// - New: Erstellt neue Model-Instanzen
// - Register: Registriert Modell-Konstruktoren
// - Vocabulary: namensraumbasiertes Token-Vokabular (vocabulary.go)
// - Average: Laufender Mittelwert fuer Metriken (metrics.go)

package model

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/staceycy/probnmn-clevr/envconfig"
	"github.com/staceycy/probnmn-clevr/ml"
	_ "github.com/staceycy/probnmn-clevr/ml/backend/cpu"
)

// Fehler-Definitionen
var (
	ErrUnsupportedModel = errors.New("model not supported")
	ErrNoVocabulary     = errors.New("model requires a vocabulary")
)

// Model definiert das Interface fuer spezifische Modell-Architekturen
type Model interface {
	Backend() ml.Backend

	// SetTraining schaltet zwischen Trainings- und Evaluationsmodus um
	SetTraining(bool)
	Training() bool
}

// Config enthaelt die Konstruktionsparameter eines Modells
type Config struct {
	Vocabulary *Vocabulary
	Backend    ml.Backend

	// Architektur-Parameter; Null-Werte waehlen Modell-Defaults
	InputSize  int
	HiddenSize int
	NumLayers  int
	Dropout    float32
}

// Base implementiert gemeinsame Felder und Methoden fuer alle Modelle
type Base struct {
	b        ml.Backend
	training bool
}

// NewBase erstellt eine Basis mit dem gegebenen Backend
func NewBase(b ml.Backend) Base {
	return Base{b: b}
}

// Backend gibt das Backend zurueck, das das Modell ausfuehrt
func (m *Base) Backend() ml.Backend {
	return m.b
}

// SetTraining schaltet den Trainingsmodus um
func (m *Base) SetTraining(training bool) {
	m.training = training
}

// Training gibt den aktuellen Modus zurueck
func (m *Base) Training() bool {
	return m.training
}

// models speichert registrierte Modell-Konstruktoren
var models = make(map[string]func(Config) (Model, error))

// Register registriert einen Modell-Konstruktor fuer eine Architektur
func Register(name string, f func(Config) (Model, error)) {
	if _, ok := models[name]; ok {
		panic("model: model already registered")
	}

	models[name] = f
}

// New initialisiert eine neue Model-Instanz der gegebenen Architektur.
// Ohne Backend in der Config wird das CPU-Backend mit envconfig-Parametern
// erstellt.
func New(name string, c Config) (Model, error) {
	f, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, name)
	}

	if c.Backend == nil {
		b, err := ml.NewBackend("cpu", ml.BackendParams{
			NumThreads: envconfig.NumThreads(),
			Seed:       envconfig.Seed(),
		})
		if err != nil {
			return nil, err
		}
		c.Backend = b
	}

	slog.Debug("initialisiere Modell", "architektur", name)
	return f(c)
}
