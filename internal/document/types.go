package document

import "encoding/base64"

// Dimensions describes the rendered size of a page as reported by OCR.
type Dimensions struct {
    DPI    int `json:"dpi"`
    Height int `json:"height"`
    Width  int `json:"width"`
}

// Image is an embedded page image with its bounding box and hosted URL.
// The raw image bytes from OCR are never stored; uploads replace them with
// the asset store URL before the page is persisted.
type Image struct {
    ID           string  `json:"id"`
    TopLeftX     float64 `json:"top_left_x"`
    TopLeftY     float64 `json:"top_left_y"`
    BottomRightX float64 `json:"bottom_right_x"`
    BottomRightY float64 `json:"bottom_right_y"`
    ImageURL     string  `json:"image_url,omitempty"`
}

// Article is a single web search result attached to a highlight.
type Article struct {
    Title   string `json:"title"`
    Link    string `json:"link"`
    Snippet string `json:"snippet"`
}

// Video is a single video search result attached to a highlight. ImageURL
// points at the hosted thumbnail and is nil when no thumbnail could be
// resolved.
type Video struct {
    Title    string  `json:"title"`
    Link     string  `json:"link"`
    Duration string  `json:"duration"`
    ImageURL *string `json:"image_url"`
}

// Resource bundles the lookups for one highlight index. Either list may be
// empty; the key itself is always present for every parsed highlight.
type Resource struct {
    Articles []Article `json:"articles"`
    Videos   []Video   `json:"videos"`
}

// Page is the canonical processed-page record served to clients and cached
// in the page store.
type Page struct {
    Index      int              `json:"index"`
    Content    string           `json:"content"`
    Highlights []string         `json:"highlights"`
    Dimensions Dimensions       `json:"dimensions"`
    Images     []Image          `json:"images"`
    Resources  map[int]Resource `json:"resources"`
}

// Key derives the storage key for a document URL. Encoding keeps the key safe
// for redis key composition while staying injective: distinct URLs can never
// collide.
func Key(url string) string {
    return base64.RawURLEncoding.EncodeToString([]byte(url))
}
