package types

import (
	"encoding/json"
)

// ExtractionRequest is the body of POST /api/v1/download
type ExtractionRequest struct {
	URL string `json:"url" validate:"required,media_url"`
}

// Quality is the coarse classification of a format
type Quality string

const (
	QualityHD    Quality = "HD"
	QualitySD    Quality = "SD"
	QualityAudio Quality = "Audio"
)

// Rank orders qualities for sorting: HD > SD > Audio
func (q Quality) Rank() int {
	switch q {
	case QualityHD:
		return 3
	case QualitySD:
		return 2
	case QualityAudio:
		return 1
	default:
		return 0
	}
}

// CodecNone is the value yt-dlp reports for an absent audio or video track
const CodecNone = "none"

// RawMediaInfo is the subset of yt-dlp's info JSON the mapper consumes.
// Pointer fields are nil when the key is missing or carries the wrong JSON type.
type RawMediaInfo struct {
	Title        *string
	Uploader     *string
	UploadDate   *string
	Description  *string
	Thumbnail    *string
	ViewCount    *float64
	LikeCount    *float64
	CommentCount *float64
	Duration     *float64
	Formats      []RawFormat
}

// RawFormat is one entry of yt-dlp's formats array
type RawFormat struct {
	VideoCodec *string
	AudioCodec *string
	Height     *float64
	Width      *float64
	Resolution *string
	FormatNote *string
	Filesize   *float64
	URL        *string
}

// HasVideo reports whether the format carries a video track. Only the explicit
// "none" sentinel marks a missing track.
func (f RawFormat) HasVideo() bool {
	return f.VideoCodec == nil || *f.VideoCodec != CodecNone
}

// HasAudio reports whether the format carries an audio track
func (f RawFormat) HasAudio() bool {
	return f.AudioCodec == nil || *f.AudioCodec != CodecNone
}

// UnmarshalJSON decodes yt-dlp output leniently: any field with an unexpected
// type is dropped instead of failing the whole document.
func (r *RawMediaInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRawMediaInfo(raw)
	return nil
}

// ParseRawMediaInfo converts a generic yt-dlp JSON object into RawMediaInfo
func ParseRawMediaInfo(data map[string]interface{}) RawMediaInfo {
	info := RawMediaInfo{
		Title:        stringField(data, "title"),
		Uploader:     stringField(data, "uploader"),
		UploadDate:   stringField(data, "upload_date"),
		Description:  stringField(data, "description"),
		Thumbnail:    stringField(data, "thumbnail"),
		ViewCount:    numberField(data, "view_count"),
		LikeCount:    numberField(data, "like_count"),
		CommentCount: numberField(data, "comment_count"),
		Duration:     numberField(data, "duration"),
	}

	if formatsRaw, ok := data["formats"].([]interface{}); ok {
		info.Formats = make([]RawFormat, 0, len(formatsRaw))
		for _, formatRaw := range formatsRaw {
			formatMap, ok := formatRaw.(map[string]interface{})
			if !ok {
				continue
			}
			info.Formats = append(info.Formats, RawFormat{
				VideoCodec: stringField(formatMap, "vcodec"),
				AudioCodec: stringField(formatMap, "acodec"),
				Height:     numberField(formatMap, "height"),
				Width:      numberField(formatMap, "width"),
				Resolution: stringField(formatMap, "resolution"),
				FormatNote: stringField(formatMap, "format_note"),
				Filesize:   numberField(formatMap, "filesize"),
				URL:        stringField(formatMap, "url"),
			})
		}
	}

	return info
}

func stringField(data map[string]interface{}, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}
	return nil
}

func numberField(data map[string]interface{}, key string) *float64 {
	if v, ok := data[key].(float64); ok {
		return &v
	}
	return nil
}

// EnrichedFormat is a classified format. The track flags are internal and
// never serialized.
type EnrichedFormat struct {
	Quality    Quality
	URL        *string
	FormatNote *string
	Resolution *string
	Filesize   *float64
	HasVideo   bool
	HasAudio   bool
}

// Progressive reports whether audio and video come in a single resource
func (f EnrichedFormat) Progressive() bool {
	return f.HasVideo && f.HasAudio
}

// Public builds the externally visible projection of f
func (f EnrichedFormat) Public() PublicFormat {
	return PublicFormat{
		Quality:    f.Quality,
		URL:        f.URL,
		FormatNote: f.FormatNote,
		Resolution: f.Resolution,
		Filesize:   f.Filesize,
	}
}

// PublicFormat is a format entry of the API response
type PublicFormat struct {
	Quality    Quality  `json:"quality"`
	URL        *string  `json:"url"`
	FormatNote *string  `json:"format_note"`
	Resolution *string  `json:"resolution"`
	Filesize   *float64 `json:"filesize"`
}

// MappedResponse is the payload of POST /api/v1/download
type MappedResponse struct {
	Title        *string        `json:"title"`
	Uploader     *string        `json:"uploader"`
	UploadDate   *string        `json:"upload_date"`
	Description  *string        `json:"description"`
	ViewCount    *float64       `json:"view_count"`
	LikeCount    *float64       `json:"like_count"`
	CommentCount *float64       `json:"comment_count"`
	Duration     *int64         `json:"duration"`
	Thumbnail    *string        `json:"thumbnail"`
	Formats      []PublicFormat `json:"formats"`
	DownloadURL  *string        `json:"download_url"`
	Error        *string        `json:"error"`
}

// ErrorResponse builds the error envelope: every field null except error
func ErrorResponse(message string) *MappedResponse {
	return &MappedResponse{
		Formats: []PublicFormat{},
		Error:   &message,
	}
}
