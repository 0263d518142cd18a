// Package mapper reshapes raw extractor output into the public API response.
package mapper

import (
	"fmt"
	"math"
	"sort"

	"github.com/KeremKalyoncu/vidgate/internal/types"
)

// hdMinHeight is the lowest height reported as HD
const hdMinHeight = 720

// MapInfoToResponse converts raw yt-dlp metadata into the public response.
// It never fails; missing or mistyped fields come back as null.
func MapInfoToResponse(info *types.RawMediaInfo) *types.MappedResponse {
	if info == nil {
		info = &types.RawMediaInfo{}
	}

	enriched := enrichFormats(info.Formats)
	rankFormats(enriched)

	var progressive []types.EnrichedFormat
	for _, f := range enriched {
		if f.Progressive() {
			progressive = append(progressive, f)
		}
	}

	// enriched is already ranked and the sort is stable, so the first
	// progressive entry is the top-ranked progressive format.
	var downloadURL *string
	switch {
	case len(progressive) > 0:
		downloadURL = progressive[0].URL
	case len(enriched) > 0:
		downloadURL = enriched[0].URL
	}

	public := make([]types.PublicFormat, 0, len(enriched))
	for _, f := range enriched {
		public = append(public, f.Public())
	}

	return &types.MappedResponse{
		Title:        nonEmpty(info.Title),
		Uploader:     nonEmpty(info.Uploader),
		UploadDate:   nonEmpty(info.UploadDate),
		Description:  nonEmpty(info.Description),
		ViewCount:    finite(info.ViewCount),
		LikeCount:    finite(info.LikeCount),
		CommentCount: finite(info.CommentCount),
		Duration:     truncate(info.Duration),
		Thumbnail:    nonEmpty(info.Thumbnail),
		Formats:      public,
		DownloadURL:  downloadURL,
	}
}

// enrichFormats drops formats without any track and classifies the rest
func enrichFormats(formats []types.RawFormat) []types.EnrichedFormat {
	enriched := make([]types.EnrichedFormat, 0, len(formats))
	for _, f := range formats {
		hasVideo, hasAudio := f.HasVideo(), f.HasAudio()
		if !hasVideo && !hasAudio {
			continue
		}

		enriched = append(enriched, types.EnrichedFormat{
			Quality:    classify(f, hasVideo),
			URL:        f.URL,
			FormatNote: nonEmpty(f.FormatNote),
			Resolution: resolution(f),
			Filesize:   finite(f.Filesize),
			HasVideo:   hasVideo,
			HasAudio:   hasAudio,
		})
	}
	return enriched
}

func classify(f types.RawFormat, hasVideo bool) types.Quality {
	if !hasVideo {
		return types.QualityAudio
	}
	if f.Height != nil && *f.Height >= hdMinHeight {
		return types.QualityHD
	}
	return types.QualitySD
}

// rankFormats orders formats HD > SD > Audio, keeping input order within a class
func rankFormats(formats []types.EnrichedFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		return formats[i].Quality.Rank() > formats[j].Quality.Rank()
	})
}

// resolution prefers yt-dlp's own label and falls back to WIDTHxHEIGHT
func resolution(f types.RawFormat) *string {
	if r := nonEmpty(f.Resolution); r != nil {
		return r
	}
	if f.Width != nil && f.Height != nil && *f.Width != 0 && *f.Height != 0 {
		r := fmt.Sprintf("%dx%d", int64(*f.Width), int64(*f.Height))
		return &r
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// finite passes numbers through unchanged, dropping NaN and infinities
func finite(n *float64) *float64 {
	if n == nil || math.IsNaN(*n) || math.IsInf(*n, 0) {
		return nil
	}
	return n
}

// truncate drops the fractional part; only duration is reported in whole seconds
func truncate(n *float64) *int64 {
	if finite(n) == nil {
		return nil
	}
	v := int64(math.Trunc(*n))
	return &v
}
