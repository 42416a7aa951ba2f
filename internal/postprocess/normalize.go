// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package postprocess normalizes LLM OCR output before it is written to the
// sink. The main job is LaTeX delimiter normalization: whichever delimiter
// variant the model chose, the output uses dollar-sign notation, and
// multi-line display blocks carry the line terminators KaTeX and MathJax
// need to render visible line breaks.
package postprocess

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// displayMathRE matches \[ ... \] spanning lines, shortest match.
	displayMathRE = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)

	// inlineMathRE matches \( ... \) spanning lines, shortest match.
	inlineMathRE = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)

	// singleLineDisplayRE matches a line that is exactly $$<content>$$.
	singleLineDisplayRE = regexp.MustCompile(`^\$\$(.+)\$\$$`)

	// displayBlockRE matches a $$ line, interior lines, and a closing $$ line.
	displayBlockRE = regexp.MustCompile(`\$\$\n([\s\S]*?)\n\$\$`)
)

// NormalizeLaTeXDelimiters runs the delimiter normalization pipeline:
//
//  1. \[ ... \]  →  $$ ... $$  (display math)
//  2. \( ... \)  →  $ ... $    (inline math)
//  3. consecutive single-line $$...$$ blocks merge into one $$\n...\n$$ block
//  4. multi-line $$ blocks get a trailing \\ on every content line but the last
//
// Whitespace just inside the delimiters is preserved, so \( x \) becomes
// $ x $ rather than $x$. Unbalanced delimiters never match and pass through
// as literal text. The whole pipeline is idempotent: running it on its own
// output changes nothing.
func NormalizeLaTeXDelimiters(text string) string {
	text = convertPair(text, displayMathRE, "$$")
	text = convertPair(text, inlineMathRE, "$")
	text = mergeDisplayRuns(text)
	text = addDisplayLineBreaks(text)
	return text
}

// convertPair rewrites every match of re as marker + inner + marker. The
// captured inner content keeps its boundary whitespace verbatim; both
// delimiter conversions go through this one helper so their trim behavior
// cannot drift apart.
func convertPair(text string, re *regexp.Regexp, marker string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		inner := re.FindStringSubmatch(match)[1]
		return marker + inner + marker
	})
}

// mergeDisplayRuns collapses runs of two or more consecutive single-line
// $$...$$ lines into one multi-line block. A blank line (or any other
// non-matching line) ends a run; runs of length one are left untouched, so
// a second pass over merged output finds nothing to do.
func mergeDisplayRuns(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		m := singleLineDisplayRE.FindStringSubmatch(lines[i])
		if m == nil {
			result = append(result, lines[i])
			i++
			continue
		}

		run := []string{strings.TrimSpace(m[1])}
		j := i + 1
		for j < len(lines) {
			m2 := singleLineDisplayRE.FindStringSubmatch(lines[j])
			if m2 == nil {
				break
			}
			run = append(run, strings.TrimSpace(m2[1]))
			j++
		}

		if len(run) == 1 {
			// Lone block, leave as-is.
			result = append(result, lines[i])
		} else {
			result = append(result, "$$")
			result = append(result, run...)
			result = append(result, "$$")
		}
		i = j
	}

	return strings.Join(result, "\n")
}

// addDisplayLineBreaks appends " \\" to every non-last content line inside
// each multi-line $$ block. Blocks with at most one content line are
// returned unchanged. A line already ending in \\ is never given a second
// marker, which keeps the pass idempotent.
func addDisplayLineBreaks(text string) string {
	return displayBlockRE.ReplaceAllStringFunc(text, func(block string) string {
		inner := block[len("$$\n") : len(block)-len("\n$$")]

		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
		}

		var content []int
		for i, line := range lines {
			if line != "" {
				content = append(content, i)
			}
		}
		if len(content) <= 1 {
			return block
		}

		last := content[len(content)-1]
		for i, line := range lines {
			if line != "" && i < last && !strings.HasSuffix(line, `\\`) {
				lines[i] = line + ` \\`
			}
		}

		return "$$\n" + strings.Join(lines, "\n") + "\n$$"
	})
}
