// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textproc normalizes and tokenizes artifact titles.
package textproc

import (
	"regexp"
	"strings"
)

var (
	// versionPattern matches version-like tokens: one letter followed by a
	// dotted numeric sequence ("v2", "v1.0.3", "r4.1").
	versionPattern = regexp.MustCompile(`\b\p{Ll}\d+(?:\.\d+)*\b`)

	// disallowedPattern matches every character outside letters, digits,
	// whitespace, hyphen, plus, and period.
	disallowedPattern = regexp.MustCompile(`[^\p{L}\p{N}\s\-+.]`)

	// tokenPattern matches words of two or more letters, digits, or underscores.
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// Collapse lowercases s, collapses whitespace runs to one space, and trims.
// Keyword matching runs against this form.
func Collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeTitle prepares a title for the frequency-vector space: lowercase,
// version tokens removed, disallowed characters replaced by spaces,
// whitespace collapsed.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = versionPattern.ReplaceAllString(s, " ")
	s = disallowedPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize lowercases s and returns its word tokens in order, dropping
// tokens found in stop. A nil stop set keeps every token.
func Tokenize(s string, stop map[string]struct{}) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := stop[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// NGrams returns the contiguous n-grams of tokens for every n in
// [minN, maxN], joined by single spaces. Unigrams come first, as in
// scikit-learn's word analyzer.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
