package domain

import (
	"strings"
	"time"
)

// ContentKind classifies a generated artifact and decides its storage folder.
type ContentKind string

const (
	ContentKindVideo    ContentKind = "video"
	ContentKindImage    ContentKind = "image"
	ContentKindAudio    ContentKind = "audio"
	ContentKindDocument ContentKind = "document"
	ContentKindSocial   ContentKind = "social"
)

// Storage folders, one per content kind plus the catch-all.
const (
	FolderVideos   = "videos"
	FolderImages   = "images"
	FolderPodcasts = "podcasts"
	FolderReports  = "reports"
	FolderSocial   = "social"
	FolderMisc     = "misc"
)

// ContentKinds lists every mapped kind in layout order.
var ContentKinds = []ContentKind{
	ContentKindVideo,
	ContentKindImage,
	ContentKindAudio,
	ContentKindDocument,
	ContentKindSocial,
}

// Folder returns the storage folder for the kind. Unmapped kinds land in misc.
func (k ContentKind) Folder() string {
	switch k {
	case ContentKindVideo:
		return FolderVideos
	case ContentKindImage:
		return FolderImages
	case ContentKindAudio:
		return FolderPodcasts
	case ContentKindDocument:
		return FolderReports
	case ContentKindSocial:
		return FolderSocial
	default:
		return FolderMisc
	}
}

// Known reports whether the kind has a dedicated folder.
func (k ContentKind) Known() bool {
	return k.Folder() != FolderMisc
}

// ParseContentKind maps a wire tag onto a ContentKind. Both the request tags
// ("audio", "pdf") and folder names ("podcasts", "reports") are accepted so
// retrieval URLs resolve back to the folder they were built from. Unknown
// tags are returned as-is and therefore map to the misc folder.
func ParseContentKind(tag string) ContentKind {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch tag {
	case "video", FolderVideos:
		return ContentKindVideo
	case "image", FolderImages:
		return ContentKindImage
	case "audio", FolderPodcasts:
		return ContentKindAudio
	case "document", "pdf", FolderReports:
		return ContentKindDocument
	case "social":
		return ContentKindSocial
	default:
		return ContentKind(tag)
	}
}

// StoredArtifact is a file written below the storage root.
type StoredArtifact struct {
	Filename string
	Kind     ContentKind
	Folder   string
	Path     string
	URL      string
	Size     int64
}

// CatalogEntry describes one stored file as reported by the catalog.
type CatalogEntry struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created"`
}
