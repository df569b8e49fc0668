package media

// Uploaded describes a stored media object.
type Uploaded struct {
	URL         string `json:"url"         doc:"Public URL of the stored object" example:"https://storage.googleapis.com/bucket/earn-pfp/0b6f.png"`
	ContentType string `json:"contentType" doc:"Detected media type"            example:"image/png"`
	Size        int64  `json:"size"        doc:"Stored size in bytes"           example:"20480"`
}

// UploadOutput for POST /media (201 Created)
type UploadOutput struct {
	Location string `header:"Location" doc:"URL of the stored object"`
	Body     Uploaded
}
