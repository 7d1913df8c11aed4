package models

import "time"

// GalleryAttributeKey is the character attribute slot holding the gallery.
// The gallery service is the only writer of this slot; all other attribute
// keys are opaque to it.
const GalleryAttributeKey = "gallery"

// ImageRecord describes one uploaded gallery image. All fields except
// Caption are immutable after creation; Caption changes only by
// delete-and-reupload.
type ImageRecord struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Gallery is the ordered image collection of one character. Append order is
// display order (oldest first). IDs are unique within a gallery.
type Gallery []ImageRecord

// NextID returns the smallest id greater than every id in the gallery.
func (g Gallery) NextID() int64 {
	var max int64
	for _, record := range g {
		if record.ID > max {
			max = record.ID
		}
	}
	return max + 1
}

// Find returns the index of the record with the given id, or -1.
func (g Gallery) Find(id int64) int {
	for i, record := range g {
		if record.ID == id {
			return i
		}
	}
	return -1
}
