package store

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Dev-Khant/smartread/internal/document"
)

func TestRecordRoundTrip(t *testing.T) {
    thumb := "https://assets.example/video_abc"
    rec := Record{
        URL:        "https://example.com/paper.pdf",
        PageNumber: 2,
        TotalPages: 3,
        Page: document.Page{
            Index:      2,
            Content:    `<h1>Title</h1><p>Body with <highlight index='0'>a "quoted" claim &amp; unicode é</highlight>.</p>`,
            Highlights: []string{`a "quoted" claim &amp; unicode é`},
            Dimensions: document.Dimensions{DPI: 200, Height: 2200, Width: 1700},
            Images: []document.Image{
                {ID: "img-0", TopLeftX: 10, TopLeftY: 20, BottomRightX: 110, BottomRightY: 220, ImageURL: "https://assets.example/img-0"},
            },
            Resources: map[int]document.Resource{
                0: {
                    Articles: []document.Article{{Title: "t", Link: "l", Snippet: "s"}},
                    Videos:   []document.Video{{Title: "v", Link: "yl", Duration: "3:10", ImageURL: &thumb}},
                },
            },
        },
    }

    b, err := encodeRecord(rec)
    require.NoError(t, err)

    // content is not stored in the clear
    assert.NotContains(t, string(b), "<h1>Title</h1>")

    got, err := decodeRecord(b)
    require.NoError(t, err)

    assert.Equal(t, rec.URL, got.URL)
    assert.Equal(t, rec.PageNumber, got.PageNumber)
    assert.Equal(t, rec.TotalPages, got.TotalPages)
    assert.Equal(t, rec.Page.Content, got.Page.Content)
    assert.Equal(t, rec.Page.Highlights, got.Page.Highlights)
    assert.Equal(t, rec.Page.Dimensions, got.Page.Dimensions)
    assert.Equal(t, rec.Page.Images, got.Page.Images)
    assert.Equal(t, rec.Page.Resources, got.Page.Resources)
    assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordRoundTripLargeContent(t *testing.T) {
    rec := Record{
        URL:        "https://example.com/a.pdf",
        PageNumber: 1,
        Page:       document.Page{Index: 1, Content: strings.Repeat("<p>paragraph</p>\n", 5000)},
    }
    b, err := encodeRecord(rec)
    require.NoError(t, err)
    got, err := decodeRecord(b)
    require.NoError(t, err)
    assert.Equal(t, rec.Page.Content, got.Page.Content)
}

func TestDecodeRecordRejectsCorruptContent(t *testing.T) {
    _, err := decodeRecord([]byte(`{"page":{"content":"not-base64!!"}}`))
    assert.Error(t, err)
}
