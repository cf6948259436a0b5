package library

import "mime/multipart"

// Item is one learning resource: a PDF, a video or a text document
type Item struct {
	ID           string `json:"id,omitempty"`
	MongoID      string `json:"_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category"`
	FileType     string `json:"fileType"`
	FileURL      string `json:"fileUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

func (i Item) Identifier() string {
	if i.ID != "" {
		return i.ID
	}
	return i.MongoID
}

// Uploads are the files of a library form
type Uploads struct {
	File      *multipart.FileHeader
	Thumbnail *multipart.FileHeader
}
