package media

import "github.com/danielgtaylor/huma/v2"

// UploadForm is the multipart body of POST /media.
type UploadForm struct {
	File huma.FormFile `form:"file" contentType:"image/jpeg,image/png,image/gif,image/webp" required:"true" doc:"Image to store"`
}

// UploadInput for POST /media
type UploadInput struct {
	Folder  string `query:"folder" maxLength:"63" doc:"Target folder" example:"earn-pfp"`
	RawBody huma.MultipartFormFiles[UploadForm]
}
