package coach

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/abhisek/mistakecoach/internal/llm"
)

// MaxImageBytes caps attached screenshots.
const MaxImageBytes = 5 << 20

// LoadImage reads an image attachment from disk and detects its MIME type.
func LoadImage(path string) (*llm.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image %s is larger than %d MB", path, MaxImageBytes>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return &llm.Image{MIMEType: mime, Data: data}, nil
}
