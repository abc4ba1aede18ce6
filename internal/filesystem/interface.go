package filesystem

import (
	"io/fs"
)

// FileSystem is the part of the disk the auditor touches: descriptors and
// ignore files are read, checkout directories are listed, and sync creates
// the workspace root. Tests substitute MockFileSystem.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the direct children of path sorted by name.
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	Exists(path string) bool
	IsDir(path string) bool

	// Abs resolves path against the working directory.
	Abs(path string) (string, error)
}
