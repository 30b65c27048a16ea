package prompt

import (
	"regexp"
	"strings"
	"unicode"
)

// #region patterns
var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	bulletRuns   = regexp.MustCompile(`[•▪●◦‣*\-–—]{2,}`)
	boilerplate  = regexp.MustCompile(`(?i)^\s*(page\s+\d+(\s+of\s+\d+)?|\d+\s*/\s*\d+|chapter\s+\d+\s*$|copyright\b.*|all rights reserved.*|confidential.*|www\.\S+|\d+)\s*$`)
)

// collapseCharRepeats collapses runs of 6+ identical runes to 2. Newlines are
// left alone so line structure survives for the per-line filtering below.
func collapseCharRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		n := j - i
		if n >= 6 && runes[i] != '\n' {
			n = 2
		}
		for k := 0; k < n; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpaceOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
		default:
			return false
		}
	}
	return true
}

// collapseWordRepeats collapses runs of 4+ consecutive identical words
// (separated only by whitespace) to a single occurrence of the word.
func collapseWordRepeats(s string) string {
	type token struct{ start, end int } // [start,end) byte offsets of a word
	var words []token
	inWord := false
	start := 0
	for i, r := range s {
		if isWordRune(r) {
			if !inWord {
				inWord = true
				start = i
			}
		} else if inWord {
			inWord = false
			words = append(words, token{start, i})
		}
	}
	if inWord {
		words = append(words, token{start, len(s)})
	}

	var b strings.Builder
	b.Grow(len(s))
	prev := 0 // end of last emitted region
	for i := 0; i < len(words); {
		w := s[words[i].start:words[i].end]
		j := i + 1
		for j < len(words) &&
			s[words[j].start:words[j].end] == w &&
			isSpaceOnly(s[words[j-1].end:words[j].start]) {
			j++
		}
		if j-i >= 4 {
			b.WriteString(s[prev:words[i].start])
			b.WriteString(w)
			prev = words[j-1].end
		}
		i = j
	}
	b.WriteString(s[prev:])
	return b.String()
}

// #endregion patterns

// #region clean
// CleanText normalizes OCR-damaged chunk text for prompt inclusion: control
// characters removed, bullet-glyph and repeat artifacts collapsed, boilerplate
// header/footer lines stripped, short lines dropped, duplicate lines removed.
func CleanText(text string) string {
	text = controlChars.ReplaceAllString(text, " ")
	text = bulletRuns.ReplaceAllString(text, "-")
	text = collapseCharRepeats(text)
	text = collapseWordRepeats(text)

	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 20 {
			continue
		}
		if boilerplate.MatchString(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// #endregion clean
