package media

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/platform/auth"
	applog "github.com/janisto/account-settings/internal/platform/logging"
	mediasvc "github.com/janisto/account-settings/internal/service/media"
)

// Options configures the upload endpoint.
type Options struct {
	DefaultFolder string
	MaxBytes      int64
}

// Register registers media endpoints.
func Register(api huma.API, store mediasvc.Store, opts Options) {
	if opts.DefaultFolder == "" {
		opts.DefaultFolder = mediasvc.DefaultFolder
	}

	huma.Register(api, huma.Operation{
		OperationID:   "upload-media",
		Method:        http.MethodPost,
		Path:          "/media",
		Summary:       "Upload an image",
		Description:   "Stores an image and returns its public URL. Used for profile pictures.",
		Tags:          []string{"Media"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  opts.MaxBytes,
		Security:      auth.Security,
	}, func(ctx context.Context, input *UploadInput) (*UploadOutput, error) {
		p, err := auth.Require(ctx)
		if err != nil {
			return nil, err
		}

		form := input.RawBody.Data()
		if form == nil || !form.File.IsSet {
			return nil, huma.Error422UnprocessableEntity("file is required")
		}
		defer func() { _ = form.File.Close() }()

		if opts.MaxBytes > 0 && form.File.Size > opts.MaxBytes {
			return nil, huma.NewError(http.StatusRequestEntityTooLarge, "file too large")
		}

		folder := input.Folder
		if folder == "" {
			folder = opts.DefaultFolder
		}

		obj, err := store.Upload(ctx, folder, form.File)
		if err != nil {
			applog.LogAuditEvent(ctx, "upload_media", p.UID, "media", folder, applog.AuditFailure,
				map[string]any{"error": categorize(err)})
			return nil, mapServiceError(err)
		}

		applog.LogAuditEvent(ctx, "upload_media", p.UID, "media", obj.Name, applog.AuditSuccess,
			map[string]any{"size": obj.Size, "content_type": obj.ContentType})
		applog.LogDebug(ctx, "media stored", zap.String("object", obj.Name))

		return &UploadOutput{
			Location: obj.URL,
			Body: Uploaded{
				URL:         obj.URL,
				ContentType: obj.ContentType,
				Size:        obj.Size,
			},
		}, nil
	})
}

func categorize(err error) string {
	switch {
	case errors.Is(err, mediasvc.ErrInvalidFolder), errors.Is(err, mediasvc.ErrEmpty):
		return "invalid_argument"
	case errors.Is(err, mediasvc.ErrUnsupportedMedia):
		return "unsupported_media"
	default:
		return "internal_error"
	}
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, mediasvc.ErrInvalidFolder), errors.Is(err, mediasvc.ErrEmpty):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, mediasvc.ErrUnsupportedMedia):
		return huma.NewError(http.StatusUnsupportedMediaType, err.Error())
	default:
		return huma.Error500InternalServerError("upload failed")
	}
}
