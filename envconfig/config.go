// config.go - Prozess-Konfiguration aus Umgebungsvariablen
//
// Dieses Modul enthaelt:
// - NumThreads: Goroutinen fuer Batch-parallele Kernel (PROBNMN_NUM_THREADS)
// - Seed: Seed fuer den RNG des Backends (PROBNMN_SEED)
// - LogLevel: Log-Level (PROBNMN_DEBUG)
// - Var: getrimmter Zugriff auf Umgebungsvariablen
// - AsMap: Gibt alle Konfigurationen als Map zurueck
package envconfig

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var liest eine Umgebungsvariable und trimmt Leerzeichen und Anfuehrungszeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// Int gibt eine Funktion zurueck, die einen int mit Default-Wert liest
func Int(key string, defaultValue int) func() int {
	return func() int {
		if s := Var(key); s != "" {
			if n, err := strconv.Atoi(s); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Int64 gibt eine Funktion zurueck, die einen int64 mit Default-Wert liest
func Int64(key string, defaultValue int64) func() int64 {
	return func() int64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// NumThreads gibt die Anzahl der Goroutinen fuer Batch-parallele Kernel zurueck
// Konfigurierbar via PROBNMN_NUM_THREADS
// Default: Anzahl der logischen CPUs
func NumThreads() int {
	n := Int("PROBNMN_NUM_THREADS", runtime.NumCPU())()
	if n < 1 {
		return 1
	}
	return n
}

// Seed gibt den Seed fuer den Backend-RNG zurueck
// Konfigurierbar via PROBNMN_SEED; 0 bedeutet zeitbasiert
var Seed = Int64("PROBNMN_SEED", 0)

// Debug gibt zurueck, ob Debug-Logging aktiv ist
// Konfigurierbar via PROBNMN_DEBUG
func Debug() bool {
	if s := Var("PROBNMN_DEBUG"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return true
	}
	return false
}

// LogLevel gibt das slog-Level zurueck
func LogLevel() slog.Level {
	if Debug() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// EnvVar beschreibt eine Konfigurationsvariable
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"PROBNMN_NUM_THREADS": {"PROBNMN_NUM_THREADS", NumThreads(), "Goroutinen fuer Batch-parallele Kernel"},
		"PROBNMN_SEED":        {"PROBNMN_SEED", Seed(), "Seed fuer den Backend-RNG (0 = zeitbasiert)"},
		"PROBNMN_DEBUG":       {"PROBNMN_DEBUG", Debug(), "Debug-Logging aktivieren"},
	}
}
