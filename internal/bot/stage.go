package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

// Stager acquires a received image and places it into scoped local
// storage. The returned path is owned by the caller, who must remove
// it when the request finishes.
type Stager interface {
	Stage(ctx context.Context, fileID string, contentType string) (string, error)
}

// telegramStager downloads Telegram files into a temp directory as
// uniquely named PNGs.
type telegramStager struct {
	api    *tgbotapi.BotAPI
	client *http.Client
	dir    string
}

func newTelegramStager(api *tgbotapi.BotAPI, dir string) *telegramStager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &telegramStager{
		api: api,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		dir: dir,
	}
}

// Stage resolves the Telegram file, downloads its bytes, converts them
// to PNG and writes a fresh temp file. Concurrent requests never share
// a path; filenames carry a per-request uuid.
func (s *telegramStager) Stage(ctx context.Context, fileID string, contentType string) (string, error) {
	fileURL, err := s.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", &extraction.TransportError{Op: "resolving telegram file", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", &extraction.TransportError{Op: "building download request", Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &extraction.TransportError{Op: "downloading image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &extraction.TransportError{
			Op:  "downloading image",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &extraction.TransportError{Op: "reading image bytes", Err: err}
	}

	pngData, err := extraction.PrepareImage(data, contentType)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("ticket-%s.png", uuid.NewString()))
	if err := os.WriteFile(path, pngData, 0600); err != nil {
		return "", &extraction.TransportError{Op: "writing staged image", Err: err}
	}

	slog.Info("Image staged locally", "path", path, "size", len(pngData))
	return path, nil
}
