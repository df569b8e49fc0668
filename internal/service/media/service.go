package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrInvalidFolder    = errors.New("invalid media folder")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrEmpty            = errors.New("empty upload")
)

// DefaultFolder is where profile pictures are stored.
const DefaultFolder = "earn-pfp"

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Object describes a stored upload.
type Object struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// Store persists uploaded media and returns a publicly resolvable URL.
type Store interface {
	Upload(ctx context.Context, folder string, r io.Reader) (*Object, error)
}

// prepared is an upload whose type has been sniffed and name assigned.
type prepared struct {
	name        string
	contentType string
	body        io.Reader
}

// prepare validates folder, sniffs the image type from the leading bytes and
// assigns a collision-free object name "<folder>/<uuid><ext>".
func prepare(folder string, r io.Reader) (*prepared, error) {
	if !folderPattern.MatchString(folder) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if len(head) == 0 {
		return nil, ErrEmpty
	}
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
	return &prepared{
		name:        folder + "/" + uuid.NewString() + ext,
		contentType: contentType,
		body:        br,
	}, nil
}
