// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Team is an organizational unit. Its trigramme is unique across teams.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Trigramme   string `json:"trigramme"`
}

var trigrammePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidTrigramme reports whether s is exactly three uppercase ASCII letters.
func ValidTrigramme(s string) bool {
	return trigrammePattern.MatchString(s)
}

// DeriveTrigramme builds a trigramme from a team name.
//
// Names with several words use the first letter of up to three words; a
// single word uses its first three letters. When two words leave the code
// one letter short, the next letters of the last word fill it. Names with
// fewer than three letters are padded with 'X'. Accented letters are
// reduced to their base letter and any other rune is dropped.
//
//	"Infrastructure"          -> "INF"
//	"Quality Assurance Team"  -> "QAT"
//	"Data Science"            -> "DSC"
func DeriveTrigramme(name string) string {
	words := make([]string, 0, 3)
	for _, field := range strings.FieldsFunc(name, isWordSeparator) {
		if letters := asciiLetters(field); letters != "" {
			words = append(words, letters)
		}
	}

	var b strings.Builder
	switch len(words) {
	case 0:
	case 1:
		b.WriteString(prefix(words[0], 3))
	default:
		for i := 0; i < len(words) && i < 3; i++ {
			b.WriteByte(words[i][0])
		}
		if b.Len() < 3 {
			last := words[len(words)-1]
			b.WriteString(prefix(last[1:], 3-b.Len()))
		}
	}

	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

func isWordSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '/' || r == '&'
}

// asciiLetters returns the uppercase ASCII letters of s after stripping
// combining marks.
func asciiLetters(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
