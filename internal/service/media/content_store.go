package media

import (
	"path/filepath"

	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/utils"
)

// ContentStore maps item ids to local file paths.
type ContentStore interface {
	// PathFor returns the local path for id. It is a pure function of id.
	PathFor(id string) string
	// Exists reports whether a file is stored at PathFor(id).
	Exists(id string) bool
}

// FileContentStore keeps videos as "video_<id>.mp4" inside a root directory.
type FileContentStore struct {
	root string
}

// NewFileContentStore creates a content store rooted at root.
func NewFileContentStore(root string) *FileContentStore {
	return &FileContentStore{root: filepath.Clean(root)}
}

// Root returns the directory holding the videos.
func (s *FileContentStore) Root() string {
	return s.root
}

// PathFor returns the local path for id.
func (s *FileContentStore) PathFor(id string) string {
	return filepath.Join(s.root, FileNameFor(id))
}

// Exists reports whether a regular file is stored for id.
func (s *FileContentStore) Exists(id string) bool {
	exists, err := utils.IsFileExist(s.PathFor(id))

	return err == nil && exists
}

// FileNameFor returns the base file name used for id.
func FileNameFor(id string) string {
	return utils.SanitizeFilename(constants.VideoFilePrefix + id + constants.ExtensionMP4)
}
