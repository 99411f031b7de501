package catalog

import (
	"fmt"
	"net/url"
)

// VideoType tags the Video variant.
type VideoType string

const (
	VideoYouTube VideoType = "youtube"
	VideoVimeo   VideoType = "vimeo"
	VideoLocal   VideoType = "local"
)

// Video is the primary media of a project. YouTube and Vimeo videos carry an
// ID, local videos carry a Src.
type Video struct {
	Type VideoType `json:"type"`
	ID   string    `json:"id,omitempty"`
	Src  string    `json:"src,omitempty"`
}

// EmbedKind selects the markup used for an embed.
type EmbedKind string

const (
	EmbedIframe EmbedKind = "iframe"
	EmbedNative EmbedKind = "video"
)

// Embed describes how a video is played. It is what the renderer turns into markup.
type Embed struct {
	Kind  EmbedKind
	URL   string
	Allow string // iframe allow attribute
	MIME  string // source type for native video
}

// Embed resolves the player descriptor for v. Unknown tags and variants
// missing their identifier are errors, never an empty player.
func (v Video) Embed() (Embed, error) {
	switch v.Type {
	case VideoYouTube:
		if v.ID == "" {
			return Embed{}, fmt.Errorf("%w: youtube video without id", ErrInvalidVideo)
		}
		return Embed{
			Kind:  EmbedIframe,
			URL:   "https://www.youtube.com/embed/" + url.PathEscape(v.ID) + "?autoplay=1&rel=0",
			Allow: "autoplay; encrypted-media",
		}, nil
	case VideoVimeo:
		if v.ID == "" {
			return Embed{}, fmt.Errorf("%w: vimeo video without id", ErrInvalidVideo)
		}
		return Embed{
			Kind:  EmbedIframe,
			URL:   "https://player.vimeo.com/video/" + url.PathEscape(v.ID) + "?autoplay=1",
			Allow: "autoplay; fullscreen",
		}, nil
	case VideoLocal:
		if v.Src == "" {
			return Embed{}, fmt.Errorf("%w: local video without src", ErrInvalidVideo)
		}
		return Embed{Kind: EmbedNative, URL: v.Src, MIME: "video/mp4"}, nil
	default:
		return Embed{}, fmt.Errorf("%w: %q", ErrUnknownVideoType, v.Type)
	}
}

// PosterURL returns a still image derived from the video, if the provider has one.
func (v Video) PosterURL() string {
	if v.Type == VideoYouTube && v.ID != "" {
		return "https://img.youtube.com/vi/" + url.PathEscape(v.ID) + "/hqdefault.jpg"
	}
	return ""
}
