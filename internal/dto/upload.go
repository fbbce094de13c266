package dto

// UploadResponse lists the public URLs of stored images, in upload order.
type UploadResponse struct {
	URLs []string `json:"urls"`
}
