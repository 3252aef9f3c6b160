// Package highlight recovers the index-to-sentence mapping embedded in the
// formatter's HTML output. The formatter is a best-effort model call, so the
// parser is the single source of truth correlating its free-text output back
// to structured data and has to stay defensive: indices may be skipped,
// duplicated or misordered, quoting varies, and tags may be missing entirely.
package highlight

import (
    "regexp"
    "sort"
    "strconv"
)

// tagRe matches <highlight index='N'>...</highlight> spans. The index value
// may be single-quoted, double-quoted or bare; the span body may contain
// newlines and nested inline tags.
var tagRe = regexp.MustCompile(`(?s)<highlight\s+index\s*=\s*['"]?(\d+)['"]?\s*>(.*?)</highlight>`)

// ParseMapping extracts the highlight index mapping from formatter HTML.
// Duplicate indices resolve last-seen-wins, which keeps the result
// deterministic for a given input. When no tags are present the mapping is
// empty, never nil, and never an error: a page without highlights still
// renders.
func ParseMapping(html string) map[int]string {
    mapping := make(map[int]string)
    for _, m := range tagRe.FindAllStringSubmatch(html, -1) {
        idx, err := strconv.Atoi(m[1])
        if err != nil || idx < 0 {
            continue
        }
        mapping[idx] = m[2]
    }
    return mapping
}

// Sentences flattens a mapping into a sentence list ordered by index. The
// list is what gets persisted as the page's highlights.
func Sentences(mapping map[int]string) []string {
    idxs := make([]int, 0, len(mapping))
    for i := range mapping {
        idxs = append(idxs, i)
    }
    sort.Ints(idxs)
    out := make([]string, 0, len(idxs))
    for _, i := range idxs {
        out = append(out, mapping[i])
    }
    return out
}
