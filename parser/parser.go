// Package parser - Einlesen von CLEVR-Programm-Annotationen
// Hauptmodul: Zeilenbasiertes Parsen und Batch-Kodierung
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/staceycy/probnmn-clevr/model"
)

// Eine Annotationsdatei enthaelt ein Programm pro Zeile als Folge von
// Funktions-Tokens, z.B. "scene filter_color[red] count". Leerzeilen und
// Zeilen mit fuehrendem '#' werden uebersprungen.

var ErrEmptyCorpus = errors.New("keine Programme in der Eingabe")

// Program ist eine tokenisierte Programm-Sequenz ohne Randtokens
type Program []string

func (p Program) String() string {
	return strings.Join(p, " ")
}

// ParserError verortet einen Fehler in der Annotationsdatei
type ParserError struct {
	LineNumber int
	Msg        string
}

func (e *ParserError) Error() string {
	if e.LineNumber > 0 {
		return fmt.Sprintf("(zeile %d): %s", e.LineNumber, e.Msg)
	}
	return e.Msg
}

// ParseLine tokenisiert eine einzelne Programm-Zeile
func ParseLine(s string) (Program, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, errors.New("leeres Programm")
	}

	for _, f := range fields {
		if strings.ContainsAny(f, "@") {
			return nil, fmt.Errorf("reserviertes Zeichen in Token %q", f)
		}
	}
	return Program(fields), nil
}

// ParsePrograms liest alle Programme aus einem io.Reader.
// Ein vorangestelltes UTF-8 BOM wird toleriert.
func ParsePrograms(r io.Reader) ([]Program, error) {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, tr))

	var programs []Program
	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		p, err := ParseLine(text)
		if err != nil {
			return nil, &ParserError{LineNumber: line, Msg: err.Error()}
		}
		programs = append(programs, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(programs) == 0 {
		return nil, ErrEmptyCorpus
	}
	return programs, nil
}

// BuildVocabulary legt ein Vokabular mit allen Tokens des Korpus an.
// Start- und End-Token stehen vor den Korpus-Tokens, damit die Indizes
// der reservierten Eintraege stabil bleiben.
func BuildVocabulary(namespace string, programs []Program) *model.Vocabulary {
	seen := make(map[string]bool)
	var tokens []string
	for _, p := range programs {
		for _, tok := range p {
			if !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
			}
		}
	}
	return model.NewVocabularyFromTokens(namespace, tokens)
}

// Encode kodiert Programme als rechts-gepolsterten (batch, maxLen) Batch.
// maxLen 0 verwendet die Laenge des laengsten Programms; laengere Programme
// werden abgeschnitten. Unbekannte Tokens erhalten den Unknown-Index.
func Encode(vocab *model.Vocabulary, namespace string, programs []Program, maxLen int) ([]int32, int, int, error) {
	if len(programs) == 0 {
		return nil, 0, 0, ErrEmptyCorpus
	}

	if maxLen <= 0 {
		for _, p := range programs {
			if len(p) > maxLen {
				maxLen = len(p)
			}
		}
	}

	padIndex := int32(vocab.TokenIndex(namespace, model.PaddingToken))

	out := make([]int32, len(programs)*maxLen)
	for i, p := range programs {
		row := out[i*maxLen : (i+1)*maxLen]
		for j := range row {
			row[j] = padIndex
		}
		for j, tok := range p {
			if j >= maxLen {
				break
			}
			row[j] = int32(vocab.TokenIndex(namespace, tok))
		}
	}

	return out, len(programs), maxLen, nil
}
