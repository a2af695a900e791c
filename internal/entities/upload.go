package entities

import "time"

// PresignRequest asks for a signed upload slot.
type PresignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// PresignedUpload is a time limited URL accepting one direct PUT.
type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadedImage is the object storage answer to a finished PUT.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
