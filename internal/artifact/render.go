// Package artifact renders session reports as PDF documents and slide
// videos using LibreOffice, poppler and ffmpeg.
package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Formats.
const (
	FormatPDF   = "pdf"
	FormatVideo = "video"
)

const (
	reportBase = "report"
	framesDir  = "frames"
	// frameRate is pages per second in the generated video.
	frameRate = "0.5"
)

// Tools names the converter executables.
type Tools struct {
	Soffice  string
	Pdftoppm string
	FFmpeg   string
}

// Renderer writes artifacts under one directory per session. Failures are
// logged and reported as an empty path.
type Renderer struct {
	dir    string
	tools  Tools
	runner Runner
	logger *slog.Logger
}

// NewRenderer creates a Renderer rooted at dir. A nil runner means
// ExecRunner.
func NewRenderer(dir string, tools Tools, runner Runner, logger *slog.Logger) *Renderer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{dir: dir, tools: tools, runner: runner, logger: logger}
}

// SessionDir returns where the session's artifacts live.
func (r *Renderer) SessionDir(sessionID int64) string {
	return filepath.Join(r.dir, "session_"+strconv.FormatInt(sessionID, 10))
}

// RenderPDF renders the report and converts it to PDF. It returns "" when
// the PDF could not be produced.
func (r *Renderer) RenderPDF(ctx context.Context, sessionID int64, data ReportData) string {
	path, err := r.pdf(ctx, sessionID, data)
	if err != nil {
		r.logger.Warn("pdf unavailable", "session_id", sessionID, "error", err)
		return ""
	}
	return path
}

// RenderVideo renders the PDF, splits it into page images and joins them
// into an MP4. It returns "" when any step fails.
func (r *Renderer) RenderVideo(ctx context.Context, sessionID int64, data ReportData) string {
	path, err := r.video(ctx, sessionID, data)
	if err != nil {
		r.logger.Warn("video unavailable", "session_id", sessionID, "error", err)
		return ""
	}
	return path
}

func (r *Renderer) pdf(ctx context.Context, sessionID int64, data ReportData) (string, error) {
	if _, err := r.runner.LookPath(r.tools.Soffice); err != nil {
		return "", fmt.Errorf("office converter not installed: %w", err)
	}

	dir := r.SessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	htmlPath := filepath.Join(dir, reportBase+".html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := WriteHTML(f, data); err != nil {
		f.Close()
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	defer os.Remove(htmlPath)

	err = r.runner.Run(ctx, dir, r.tools.Soffice,
		"--headless", "--convert-to", "pdf", "--outdir", dir, htmlPath)
	if err != nil {
		return "", err
	}

	pdfPath := filepath.Join(dir, reportBase+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("converter produced no pdf: %w", err)
	}
	return pdfPath, nil
}

func (r *Renderer) video(ctx context.Context, sessionID int64, data ReportData) (string, error) {
	for _, tool := range []string{r.tools.Pdftoppm, r.tools.FFmpeg} {
		if _, err := r.runner.LookPath(tool); err != nil {
			return "", fmt.Errorf("%s not installed: %w", tool, err)
		}
	}

	pdfPath := filepath.Join(r.SessionDir(sessionID), reportBase+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		if pdfPath, err = r.pdf(ctx, sessionID, data); err != nil {
			return "", err
		}
	}

	dir := r.SessionDir(sessionID)
	frames := filepath.Join(dir, framesDir)
	if err := os.MkdirAll(frames, 0o755); err != nil {
		return "", fmt.Errorf("create frames dir: %w", err)
	}
	defer os.RemoveAll(frames)

	if err := r.runner.Run(ctx, dir, r.tools.Pdftoppm,
		"-png", "-r", "110", pdfPath, filepath.Join(frames, "page")); err != nil {
		return "", err
	}
	pages, _ := filepath.Glob(filepath.Join(frames, "page-*.png"))
	if len(pages) == 0 {
		return "", fmt.Errorf("pdf split produced no pages")
	}

	videoPath := filepath.Join(dir, reportBase+".mp4")
	err := r.runner.Run(ctx, dir, r.tools.FFmpeg,
		"-y", "-loglevel", "error",
		"-framerate", frameRate,
		"-pattern_type", "glob", "-i", filepath.Join(frames, "page-*.png"),
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-r", "25",
		videoPath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("encoder produced no video: %w", err)
	}
	return videoPath, nil
}
