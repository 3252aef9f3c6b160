package search

import (
    "io"
    "regexp"
)

// Known YouTube URL shapes. Anything else yields no ID and the video entry
// ships without a thumbnail.
var youtubePatterns = []*regexp.Regexp{
    regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?/]+)`),
    regexp.MustCompile(`youtube\.com/embed/([^&\n?/]+)`),
    regexp.MustCompile(`youtube\.com/shorts/([^&\n?/]+)`),
}

// YouTubeVideoID extracts the video identifier from a result link, or ""
// when the link does not match a known shape.
func YouTubeVideoID(link string) string {
    for _, re := range youtubePatterns {
        if m := re.FindStringSubmatch(link); m != nil {
            return m[1]
        }
    }
    return ""
}

func readAll(r io.Reader) ([]byte, error) {
    return io.ReadAll(io.LimitReader(r, 8<<20))
}
