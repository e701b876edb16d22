package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// extensions maps carrier label format codes to file extensions.
var extensions = map[string]string{
	"PDF":   "pdf",
	"PNG":   "png",
	"GIF":   "gif",
	"ZPLII": "zpl",
	"EPL2":  "epl",
}

// FileArtifacts stores label images on disk and serves them under a base
// URL. Directory layout is flat, one file per tracking number.
type FileArtifacts struct {
	dir     string
	baseURL string
}

// NewFileArtifacts creates a file-backed artifact store rooted at dir.
func NewFileArtifacts(dir, baseURL string) (*FileArtifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &FileArtifacts{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *FileArtifacts) SaveArtifact(ctx context.Context, trackingNumber, format string, data []byte) (string, error) {
	ext, ok := extensions[strings.ToUpper(format)]
	if !ok {
		ext = "bin"
	}
	name := fmt.Sprintf("%s.%s", trackingNumber, ext)
	if err := os.WriteFile(filepath.Join(f.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing label artifact: %w", err)
	}
	return f.baseURL + "/" + name, nil
}

var _ shipping.ArtifactStore = (*FileArtifacts)(nil)
