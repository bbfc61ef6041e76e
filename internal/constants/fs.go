package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	// Owner: read, write, and execute;
	// Group: read and execute;
	// Others: read and execute.
	DefaultFolderPermissions os.FileMode = 0o755
)

// File extension constants.
const (
	ExtensionMP4  = ".mp4"
	ExtensionPart = ".part"
	ExtensionJSON = ".json"
)

// VideoFilePrefix is the prefix of every stored video file name.
const VideoFilePrefix = "video_"

// ExtensionText marks a command-line argument as a file with one id per line.
const ExtensionText = ".txt"
