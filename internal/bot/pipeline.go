package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

// Pipeline runs the per-photo extraction sequence: stage, upload,
// extract, normalize, render.
type Pipeline struct {
	stager Stager
	vision extraction.VisionClient
}

// NewPipeline creates a Pipeline over a stager and a vision client.
func NewPipeline(stager Stager, vision extraction.VisionClient) *Pipeline {
	return &Pipeline{
		stager: stager,
		vision: vision,
	}
}

// artifacts tracks the transient copies created for one request: the
// staged local file and the uploaded remote file. Each is owned by
// exactly one in-flight request and released at most once.
type artifacts struct {
	vision    extraction.VisionClient
	localPath string
	remote    *extraction.RemoteFile
}

// release deletes whichever artifacts exist. Deletion failures are
// logged and never escalate; they must not mask the request's primary
// outcome.
func (a *artifacts) release() {
	if a.localPath != "" {
		if err := os.Remove(a.localPath); err != nil {
			slog.Warn("Failed to delete staged image", "path", a.localPath, "error", err)
		} else {
			slog.Info("Staged image deleted", "path", a.localPath)
		}
		a.localPath = ""
	}

	if a.remote != nil {
		// Fresh context: a cancelled request must not skip remote cleanup.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.vision.Delete(ctx, a.remote.Name); err != nil {
			slog.Warn("Failed to delete uploaded image", "name", a.remote.Name, "error", err)
		} else {
			slog.Info("Uploaded image deleted", "name", a.remote.Name)
		}
		a.remote = nil
	}
}

// Process turns one received photo into a chat reply. A response the
// model failed to structure as JSON still yields a reply carrying the
// raw text; transport and model failures return an error for the
// caller to report generically. Both transient copies of the image are
// deleted on every exit path.
func (p *Pipeline) Process(ctx context.Context, fileID string, contentType string) (string, error) {
	art := &artifacts{vision: p.vision}
	defer art.release()

	localPath, err := p.stager.Stage(ctx, fileID, contentType)
	if err != nil {
		return "", fmt.Errorf("staging image: %w", err)
	}
	art.localPath = localPath

	remote, err := p.vision.Upload(ctx, localPath)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	art.remote = remote

	raw, err := p.vision.Extract(ctx, remote)
	if err != nil {
		return "", fmt.Errorf("extracting receipt: %w", err)
	}

	record, err := extraction.Normalize(raw)
	if err != nil {
		var parseErr *extraction.ParseError
		if errors.As(err, &parseErr) {
			slog.Error("Model response was not valid JSON", "error", parseErr.Err, "response", parseErr.Raw)
			return RenderFallback(parseErr.Raw), nil
		}
		return "", fmt.Errorf("normalizing response: %w", err)
	}

	return Render(record), nil
}
