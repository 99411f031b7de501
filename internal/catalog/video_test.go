package catalog

import (
	"errors"
	"testing"
)

func TestVideo_Embed(t *testing.T) {
	tests := []struct {
		name    string
		video   Video
		want    Embed
		wantErr error
	}{
		{
			name:  "youtube",
			video: Video{Type: VideoYouTube, ID: "abc123"},
			want: Embed{
				Kind:  EmbedIframe,
				URL:   "https://www.youtube.com/embed/abc123?autoplay=1&rel=0",
				Allow: "autoplay; encrypted-media",
			},
		},
		{
			name:  "vimeo",
			video: Video{Type: VideoVimeo, ID: "987"},
			want: Embed{
				Kind:  EmbedIframe,
				URL:   "https://player.vimeo.com/video/987?autoplay=1",
				Allow: "autoplay; fullscreen",
			},
		},
		{
			name:  "local",
			video: Video{Type: VideoLocal, Src: "media/clip.mp4"},
			want:  Embed{Kind: EmbedNative, URL: "media/clip.mp4", MIME: "video/mp4"},
		},
		{
			name:    "unknown type",
			video:   Video{Type: "dailymotion", ID: "x"},
			wantErr: ErrUnknownVideoType,
		},
		{
			name:    "youtube without id",
			video:   Video{Type: VideoYouTube},
			wantErr: ErrInvalidVideo,
		},
		{
			name:    "local without src",
			video:   Video{Type: VideoLocal, ID: "ignored"},
			wantErr: ErrInvalidVideo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.video.Embed()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Embed() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Embed() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Embed() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVideo_PosterURL(t *testing.T) {
	if got := (Video{Type: VideoYouTube, ID: "abc"}).PosterURL(); got != "https://img.youtube.com/vi/abc/hqdefault.jpg" {
		t.Errorf("PosterURL() = %q", got)
	}
	if got := (Video{Type: VideoVimeo, ID: "1"}).PosterURL(); got != "" {
		t.Errorf("PosterURL() for vimeo = %q, want empty", got)
	}
}
