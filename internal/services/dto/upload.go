package dto

type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
