package services

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
)

var (
	// ErrVideoNotFound means the search ran but returned no videos.
	ErrVideoNotFound = errors.New("no video found")

	ErrInvalidVideoLink = errors.New("not a recognizable YouTube link")

	// ErrTranscriptUnavailable means neither captions nor audio could be obtained.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
)

// LookupError wraps a failed video search.
type LookupError struct {
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%d: %v", e.StatusCode, e.Err)
	}
	return e.Err.Error()
}

func (e *LookupError) Unwrap() error { return e.Err }

// TranscribeFunc converts uploaded media into text, typically through the model's file API.
type TranscribeFunc func(ctx context.Context, data []byte, mimeType string) (string, error)

type YouTubeService struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
	search        *youtube.Service
	log           *logger.Logger
}

type timedTextXML struct {
	XMLName xml.Name  `xml:"transcript"`
	Texts   []textXML `xml:"text"`
}

type textXML struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// NewYouTubeService builds the video collaborator. Without an API key,
// transcripts still work but every search reports a LookupError.
func NewYouTubeService(ctx context.Context, apiKey string, log *logger.Logger, opts ...option.ClientOption) (*YouTubeService, error) {
	s := &YouTubeService{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
		log:           log,
	}

	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
		svc, err := youtube.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube Data API client: %w", err)
		}
		s.search = svc
	}
	return s, nil
}

// SearchVideo returns the ID of the top embeddable English result for query.
func (s *YouTubeService) SearchVideo(ctx context.Context, query string) (string, error) {
	if s.search == nil {
		return "", &LookupError{Err: errors.New("YouTube API key not configured")}
	}

	resp, err := s.search.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(1).
		RelevanceLanguage("en").
		VideoEmbeddable("true").
		Context(ctx).
		Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return "", &LookupError{StatusCode: gErr.Code, Err: err}
		}
		return "", &LookupError{Err: err}
	}

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			return item.Id.VideoId, nil
		}
	}
	return "", ErrVideoNotFound
}

// VideoText resolves a video link to transcript text. Captions are tried
// first; when none exist and transcribe is set, the audio is downloaded and
// transcribed.
func (s *YouTubeService) VideoText(ctx context.Context, link string, transcribe TranscribeFunc) (string, error) {
	videoID, ok := ExtractVideoID(link)
	if !ok {
		return "", ErrInvalidVideoLink
	}

	text, err := s.GetTranscript(videoID)
	if err == nil {
		return text, nil
	}
	if transcribe == nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}

	s.log.Warn("captions unavailable, falling back to audio transcription", "video_id", videoID, "error", err)
	audio, mimeType, audioErr := s.DownloadAudio(ctx, videoID)
	if audioErr != nil {
		return "", fmt.Errorf("%w: captions (%v), audio download (%v)", ErrTranscriptUnavailable, err, audioErr)
	}
	return transcribe(ctx, audio, mimeType)
}

var youtubeRegex = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|live/)|youtu\.be/)([\w-]{11})`)

var bareVideoID = regexp.MustCompile(`^[\w-]{11}$`)

// ExtractVideoID accepts watch, short, embed and youtu.be links, or a bare ID.
func ExtractVideoID(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if m := youtubeRegex.FindStringSubmatch(link); len(m) > 1 {
		return m[1], true
	}
	if bareVideoID.MatchString(link) {
		return link, true
	}
	return "", false
}

// GetTranscript fetches the captions for a YouTube video
func (s *YouTubeService) GetTranscript(videoID string) (string, error) {
	transcript, err := s.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		// Fallback: request any available language
		transcript, err = s.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			legacyTranscript, legacyErr := s.getTranscriptViaTimedText(videoID)
			if legacyErr == nil {
				return legacyTranscript, nil
			}
			return "", fmt.Errorf("no subtitles available via transcript API (%v) and timedtext fallback failed (%v)", err, legacyErr)
		}
	}

	if len(transcript.Entries) == 0 {
		return "", fmt.Errorf("subtitle track is empty")
	}

	var fullText strings.Builder
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString(" ")
	}

	cleaned := strings.TrimSpace(fullText.String())
	if cleaned == "" {
		return "", fmt.Errorf("subtitle text resolved to empty content")
	}
	return cleaned, nil
}

func (s *YouTubeService) getTranscriptViaTimedText(videoID string) (string, error) {
	req, _ := http.NewRequest("GET", models.WatchURL(videoID), nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch YouTube page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read YouTube page: %w", err)
	}
	s.log.Debug("timedtext fallback fetched watch page", "video_id", videoID, "bytes", len(body))

	captionURL, err := extractCaptionURL(string(body))
	if err != nil {
		return "", err
	}

	captionResp, err := s.httpClient.Get(captionURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer captionResp.Body.Close()

	captionBody, err := io.ReadAll(captionResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read captions: %w", err)
	}

	transcript, err := parseCaptionsXML(captionBody)
	if err != nil {
		return "", fmt.Errorf("failed to parse captions XML: %w", err)
	}
	return transcript, nil
}

var (
	captionTracksRe   = regexp.MustCompile(`"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	captionRendererRe = regexp.MustCompile(`"playerCaptionsTracklistRenderer"\s*:\s*\{(?:.*?,)?\s*"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	baseURLRe         = regexp.MustCompile(`"baseUrl"\s*:\s*"(.*?)"`)
)

func extractCaptionURL(pageHTML string) (string, error) {
	matches := captionTracksRe.FindStringSubmatch(pageHTML)
	if len(matches) < 2 {
		matches = captionRendererRe.FindStringSubmatch(pageHTML)
		if len(matches) < 2 {
			return "", fmt.Errorf("no captions available for this video")
		}
	}

	urlMatches := baseURLRe.FindStringSubmatch(matches[1])
	if len(urlMatches) < 2 {
		return "", fmt.Errorf("caption track found but baseUrl missing")
	}

	u := urlMatches[1]
	u = strings.ReplaceAll(u, `\u0026`, "&")
	u = strings.ReplaceAll(u, `\/`, "/")
	return u, nil
}

func parseCaptionsXML(data []byte) (string, error) {
	var tt timedTextXML
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", err
	}

	var parts []string
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("captions XML empty")
	}
	return strings.Join(parts, " "), nil
}

const maxAudioBytes = 100 * 1024 * 1024

// DownloadAudio downloads the best available audio-only stream for a video.
func (s *YouTubeService) DownloadAudio(ctx context.Context, videoID string) ([]byte, string, error) {
	video, err := s.ytClient.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, "", fmt.Errorf("no audio formats available")
	}

	best := formats[0]
	for _, f := range formats {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}

	stream, _, err := s.ytClient.GetStreamContext(ctx, video, &best)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio stream: %w", err)
	}
	defer stream.Close()

	audioBytes, err := io.ReadAll(io.LimitReader(stream, maxAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(audioBytes) > maxAudioBytes {
		return nil, "", fmt.Errorf("audio stream exceeds %d MB limit", maxAudioBytes/(1024*1024))
	}

	mimeType := strings.TrimSpace(strings.Split(best.MimeType, ";")[0])
	if mimeType == "" {
		mimeType = "audio/mp4"
	}
	return audioBytes, mimeType, nil
}
