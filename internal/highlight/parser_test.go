package highlight

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestParseMapping(t *testing.T) {
    cases := []struct {
        name string
        html string
        want map[int]string
    }{
        {
            name: "single quoted",
            html: `<p>Intro. <highlight index='0'>First finding.</highlight> More.</p>`,
            want: map[int]string{0: "First finding."},
        },
        {
            name: "double quoted",
            html: `<highlight index="3">Important claim.</highlight>`,
            want: map[int]string{3: "Important claim."},
        },
        {
            name: "bare attribute",
            html: `<highlight index=2>Claim.</highlight>`,
            want: map[int]string{2: "Claim."},
        },
        {
            name: "multiple spans mixed quoting",
            html: `<h1>T</h1><highlight index='0'>A.</highlight><p>x</p><highlight index="1">B.</highlight>`,
            want: map[int]string{0: "A.", 1: "B."},
        },
        {
            name: "non contiguous and misordered",
            html: `<highlight index='7'>Late.</highlight><highlight index='1'>Early.</highlight>`,
            want: map[int]string{1: "Early.", 7: "Late."},
        },
        {
            name: "no tags",
            html: `<p>Nothing highlighted here.</p>`,
            want: map[int]string{},
        },
        {
            name: "span body with inline markup",
            html: `<highlight index='0'>The <strong>key</strong> result.</highlight>`,
            want: map[int]string{0: "The <strong>key</strong> result."},
        },
        {
            name: "span body across lines",
            html: "<highlight index='4'>Line one\nline two.</highlight>",
            want: map[int]string{4: "Line one\nline two."},
        },
        {
            name: "whitespace around attribute",
            html: `<highlight  index = '5' >Spaced.</highlight>`,
            want: map[int]string{5: "Spaced."},
        },
        {
            name: "garbage index ignored",
            html: `<highlight index='x'>Bad.</highlight><highlight index='0'>Good.</highlight>`,
            want: map[int]string{0: "Good."},
        },
    }

    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, ParseMapping(tc.html))
        })
    }
}

func TestParseMappingExactFidelity(t *testing.T) {
    html := `<highlight index='0'>Accuracy improved by 4.2% on the held-out set (p &lt; 0.05).</highlight>`
    got := ParseMapping(html)
    assert.Equal(t, "Accuracy improved by 4.2% on the held-out set (p &lt; 0.05).", got[0])
}

func TestParseMappingDuplicateIndicesDeterministic(t *testing.T) {
    html := `<highlight index='1'>First occurrence.</highlight><highlight index='1'>Second occurrence.</highlight>`
    // last-seen-wins, stable across runs
    for i := 0; i < 25; i++ {
        got := ParseMapping(html)
        assert.Equal(t, map[int]string{1: "Second occurrence."}, got)
    }
}

func TestSentencesOrderedByIndex(t *testing.T) {
    mapping := map[int]string{4: "D.", 0: "A.", 2: "B."}
    assert.Equal(t, []string{"A.", "B.", "D."}, Sentences(mapping))
}

func TestSentencesEmpty(t *testing.T) {
    assert.Empty(t, Sentences(map[int]string{}))
}
