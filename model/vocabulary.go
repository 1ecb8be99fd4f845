// vocabulary.go - Namensraumbasiertes Token-Vokabular
// Enthaelt: Vocabulary, reservierte Token und bidirektionale Lookups
//
// Jeder Namensraum beginnt mit den reservierten Eintraegen Padding (Index 0)
// und Unknown (Index 1). Programm-Namensraeume benoetigen zusaetzlich
// Start- und End-Token, die der Aufrufer wie normale Tokens hinzufuegt.
package model

import "fmt"

// Reservierte Token-Strings
const (
	StartToken   = "@start@"
	EndToken     = "@end@"
	PaddingToken = "@@PADDING@@"
	UnknownToken = "@@UNKNOWN@@"
)

// Vocabulary enthaelt bidirektionale Token/Index-Abbildungen pro Namensraum
type Vocabulary struct {
	tokens  map[string][]string
	indices map[string]map[string]int
}

// NewVocabulary erstellt ein leeres Vokabular
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		tokens:  make(map[string][]string),
		indices: make(map[string]map[string]int),
	}
}

// NewVocabularyFromTokens erstellt ein Vokabular mit allen gegebenen Tokens
// im Namensraum; Padding, Unknown, Start und End werden vorangestellt.
func NewVocabularyFromTokens(namespace string, tokens []string) *Vocabulary {
	v := NewVocabulary()
	v.AddToken(namespace, StartToken)
	v.AddToken(namespace, EndToken)
	for _, tok := range tokens {
		v.AddToken(namespace, tok)
	}

	return v
}

// ensure legt einen Namensraum mit Padding- und Unknown-Eintrag an
func (v *Vocabulary) ensure(namespace string) {
	if _, ok := v.indices[namespace]; ok {
		return
	}

	v.indices[namespace] = make(map[string]int)
	v.tokens[namespace] = nil
	v.add(namespace, PaddingToken)
	v.add(namespace, UnknownToken)
}

func (v *Vocabulary) add(namespace, token string) int {
	idx := len(v.tokens[namespace])
	v.tokens[namespace] = append(v.tokens[namespace], token)
	v.indices[namespace][token] = idx
	return idx
}

// AddToken fuegt ein Token hinzu (idempotent) und gibt seinen Index zurueck
func (v *Vocabulary) AddToken(namespace, token string) int {
	v.ensure(namespace)
	if idx, ok := v.indices[namespace][token]; ok {
		return idx
	}

	return v.add(namespace, token)
}

// TokenIndex gibt den Index eines Tokens zurueck; unbekannte Tokens werden
// auf den Unknown-Index abgebildet.
func (v *Vocabulary) TokenIndex(namespace, token string) int {
	v.ensure(namespace)
	if idx, ok := v.indices[namespace][token]; ok {
		return idx
	}

	return v.indices[namespace][UnknownToken]
}

// Token gibt das Token zum Index zurueck
func (v *Vocabulary) Token(namespace string, index int) (string, error) {
	v.ensure(namespace)
	if index < 0 || index >= len(v.tokens[namespace]) {
		return "", fmt.Errorf("vocabulary: Index %d ausserhalb des Namensraums %q (Groesse %d)",
			index, namespace, len(v.tokens[namespace]))
	}

	return v.tokens[namespace][index], nil
}

// Size gibt die Groesse des Namensraums zurueck
func (v *Vocabulary) Size(namespace string) int {
	v.ensure(namespace)
	return len(v.tokens[namespace])
}
