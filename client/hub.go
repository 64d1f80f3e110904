package client

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	modelFileName    = "model.onnx"
	metadataFileName = "metadata.json"
)

// modelHub fetches pretrained model artifacts over HTTP and caches them on
// disk. A source identifier like
// "speechbrain/emotion-recognition-wav2vec2-IEMOCAP" resolves to
// <baseURL>/<source>/resolve/main/<file>.
type modelHub struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func newModelHub(baseURL string, log *slog.Logger) *modelHub {
	return &modelHub{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

// Materialize returns the local paths of the model and metadata files for
// the given source, downloading whatever the cache directory is missing.
func (h *modelHub) Materialize(source, cacheDir string) (modelPath, metaPath string, err error) {
	dir := filepath.Join(cacheDir, strings.ReplaceAll(source, "/", "--"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create model cache dir: %w", err)
	}

	for _, name := range []string{modelFileName, metadataFileName} {
		local := filepath.Join(dir, name)
		if _, err := os.Stat(local); err == nil {
			continue
		}
		if err := h.download(source, name, local); err != nil {
			return "", "", err
		}
	}

	return filepath.Join(dir, modelFileName), filepath.Join(dir, metadataFileName), nil
}

func (h *modelHub) download(source, name, local string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", h.baseURL, source, name)
	h.log.Info("downloading model file", "url", url)

	resp, err := h.client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", name, resp.Status)
	}

	// Download into a scratch file first so an interrupted transfer never
	// lands under the final name.
	tmp, err := os.CreateTemp(filepath.Dir(local), name+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close download file: %w", err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return fmt.Errorf("failed to move %s into cache: %w", name, err)
	}

	return nil
}
