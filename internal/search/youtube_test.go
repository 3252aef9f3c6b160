package search

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestYouTubeVideoID(t *testing.T) {
    cases := []struct {
        link string
        want string
    }{
        {"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
        {"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
        {"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
        {"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
        {"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
        {"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
        {"https://vimeo.com/123456", ""},
        {"not a url", ""},
        {"", ""},
    }

    for _, tc := range cases {
        assert.Equal(t, tc.want, YouTubeVideoID(tc.link), "link %q", tc.link)
    }
}
