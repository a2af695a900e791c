package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"socialnet/internal/entities"
)

// PresignImage asks for a signed upload URL and object key.
func (a *API) PresignImage(ctx context.Context, req entities.PresignRequest) (entities.PresignedUpload, error) {
	var out entities.PresignedUpload
	err := a.http.Do(ctx, http.MethodPost, "images/presign", nil, req, &out)
	return out, err
}

// UploadImage runs the presign handshake and PUTs r straight to object
// storage. It returns the stored key, which must be the presigned one.
func (a *API) UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (entities.UploadedImage, error) {
	slot, err := a.PresignImage(ctx, entities.PresignRequest{FileName: fileName, ContentType: contentType})
	if err != nil {
		return entities.UploadedImage{}, fmt.Errorf("presign: %w", err)
	}

	var out entities.UploadedImage
	if err := a.http.PutBinary(ctx, slot.UploadURL, contentType, r, &out); err != nil {
		return entities.UploadedImage{}, fmt.Errorf("upload: %w", err)
	}
	if out.Key == "" {
		out.Key = slot.Key
	}
	if out.Key != slot.Key {
		return out, fmt.Errorf("stored %q for presigned %q: %w", out.Key, slot.Key, entities.ErrKeyMismatch)
	}
	return out, nil
}
