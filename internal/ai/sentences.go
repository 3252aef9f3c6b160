package ai

import (
    "fmt"
    "strings"
)

const maxHighlights = 10

// splitSentences turns the model's free-text sentence list into a clean
// slice. The model is asked for a plain list but may still prefix entries
// with bullets or numbering; those markers are stripped so the sentences stay
// verbatim substrings of the page text.
func splitSentences(out string) []string {
    var sentences []string
    for _, line := range strings.Split(out, "\n") {
        line = strings.TrimSpace(line)
        line = strings.TrimLeft(line, "-*• \t")
        line = trimNumbering(line)
        line = strings.Trim(line, `"`)
        if line == "" {
            continue
        }
        sentences = append(sentences, line)
        if len(sentences) == maxHighlights {
            break
        }
    }
    return sentences
}

// trimNumbering removes a leading "3." or "3)" list marker.
func trimNumbering(s string) string {
    i := 0
    for i < len(s) && s[i] >= '0' && s[i] <= '9' {
        i++
    }
    if i == 0 || i >= len(s) {
        return s
    }
    if s[i] == ')' {
        return strings.TrimSpace(s[i+1:])
    }
    // "3. foo" is a list marker, "3.5 percent" is not
    if s[i] == '.' && (i+1 == len(s) || s[i+1] == ' ') {
        return strings.TrimSpace(s[i+1:])
    }
    return s
}

// formatList renders the highlight sentences the way the formatting prompt
// expects them: a numbered list, one sentence per line, zero-based.
func formatList(sentences []string) string {
    var b strings.Builder
    for i, s := range sentences {
        fmt.Fprintf(&b, "%d. %s\n", i, s)
    }
    return b.String()
}
