// Package filesys provides the small set of file system primitives the
// storage, segment, and merge packages build on: creating the data
// directory, checking whether a path exists, and removing files and
// directories. Everything else a generic file-utilities package might
// offer (copying, glob search, cwd management) has no caller in this
// store and was dropped rather than carried as dead weight.
package filesys

import (
	"errors"
	"os"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		if err != nil {
			return err
		}
		if !stat.IsDir() {
			return ErrIsNotDir
		}
		return &os.PathError{Op: "mkdir", Path: dirPath, Err: os.ErrExist}
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// DeleteDir deletes a directory and all its contents recursively.
func DeleteDir(path string) error {
	return os.RemoveAll(path)
}

// DeleteFile deletes the file at the specified path.
func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}

// Exists reports whether a file or directory at the given path exists.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
