// Package youtube fetches video metadata and subtitle tracks by running
// yt-dlp.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
	"ytt/backend/internal/service/textnorm"
)

// CookiesNone disables reading cookies from a browser profile.
const CookiesNone = "none"

const maxDescriptionRunes = 500

// browsers yt-dlp can read cookies from.
var browsers = map[string]bool{
	"brave": true, "chrome": true, "chromium": true, "edge": true, "firefox": true,
	"opera": true, "safari": true, "vivaldi": true, "whale": true,
}

// ValidCookies reports whether cookies is empty, CookiesNone or a browser
// yt-dlp supports.
func ValidCookies(cookies string) bool {
	return cookies == "" || cookies == CookiesNone || browsers[cookies]
}

var (
	shortURLRe = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`)
	longURLRe  = regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`)
)

// ExtractVideoID returns the 11-character id from a youtu.be or
// youtube.com watch URL.
func ExtractVideoID(url string) (string, bool) {
	if strings.Contains(url, "youtu.be/") {
		if m := shortURLRe.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	if strings.Contains(url, "youtube.com") {
		if m := longURLRe.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL is the canonical URL handed to yt-dlp.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Client wraps the yt-dlp binary.
type Client struct {
	binary string
	runner CommandRunner
}

// NewClient returns a client for the yt-dlp binary at path. A nil runner
// executes the real binary.
func NewClient(path string, runner CommandRunner) *Client {
	if path == "" {
		path = "yt-dlp"
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &Client{binary: path, runner: runner}
}

type dumpJSON struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
}

// VideoInfo returns the video's metadata. Failures yield an empty value.
func (c *Client) VideoInfo(ctx context.Context, videoID, cookies string) model.VideoInfo {
	args := append([]string{"--dump-json", "--no-warnings"}, cookieArgs(cookies)...)
	out, err := c.runner.Run(ctx, c.binary, append(args, "--", WatchURL(videoID))...)
	if err != nil || len(out) == 0 {
		logger.Warn("video info failed", "module", "youtube", "action", "fetch", "resource", "video_info", "result", "failed", "video_id", videoID, "error", err)
		return model.VideoInfo{}
	}

	var data dumpJSON
	if err := json.Unmarshal(out, &data); err != nil {
		logger.Warn("video info unreadable", "module", "youtube", "action", "fetch", "resource", "video_info", "result", "failed", "video_id", videoID, "error", err)
		return model.VideoInfo{}
	}

	description := data.Description
	if runes := []rune(description); len(runes) > maxDescriptionRunes {
		description = string(runes[:maxDescriptionRunes])
	}
	return model.VideoInfo{
		Title:       data.Title,
		Duration:    data.Duration,
		Uploader:    data.Uploader,
		UploadDate:  data.UploadDate,
		Description: description,
	}
}

// ListSubtitles returns the language codes of manual and automatic
// subtitle tracks. Failures yield an empty list.
func (c *Client) ListSubtitles(ctx context.Context, videoID, cookies string) []string {
	args := append([]string{"--list-subs", "--no-warnings"}, cookieArgs(cookies)...)
	out, err := c.runner.Run(ctx, c.binary, append(args, "--", WatchURL(videoID))...)
	if err != nil || len(out) == 0 {
		logger.Warn("subtitle list failed", "module", "youtube", "action", "fetch", "resource", "subtitles", "result", "failed", "video_id", videoID, "error", err)
		return []string{}
	}
	return parseSubtitleList(string(out))
}

func parseSubtitleList(out string) []string {
	available := []string{}
	inList := false
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Available automatic captions") || strings.Contains(line, "Available subtitles") {
			inList = true
			continue
		}
		if !inList || strings.TrimSpace(line) == "" || strings.HasPrefix(line, "Language") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			available = append(available, fields[0])
		}
	}
	return available
}

// FetchSubtitle downloads the subtitle track for lang and returns it as
// cleaned plain text lines. A missing track yields "".
func (c *Client) FetchSubtitle(ctx context.Context, videoID, lang, cookies string) (string, error) {
	dir, err := os.MkdirTemp("", "ytt-subs-*")
	if err != nil {
		return "", fmt.Errorf("create subtitle temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--write-sub",
		"--write-auto-sub",
		"--sub-lang", lang,
		"--skip-download",
		"--sub-format", "vtt",
		"-o", filepath.Join(dir, "transcript"),
	}
	args = append(args, cookieArgs(cookies)...)
	args = append(args, "--", WatchURL(videoID))

	// yt-dlp may exit non-zero after writing a usable track.
	if _, err := c.runner.Run(ctx, c.binary, args...); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Warn("subtitle download reported an error", "module", "youtube", "action", "fetch", "resource", "subtitles", "result", "failed", "video_id", videoID, "lang", lang, "error", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*."+lang+".vtt"))
	if len(matches) == 0 {
		matches, _ = filepath.Glob(filepath.Join(dir, "*.vtt"))
	}
	if len(matches) == 0 {
		return "", nil
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}
	return textnorm.CleanSubtitle(string(content)), nil
}

func cookieArgs(cookies string) []string {
	if cookies == "" || cookies == CookiesNone {
		return nil
	}
	return []string{"--cookies-from-browser", cookies}
}
