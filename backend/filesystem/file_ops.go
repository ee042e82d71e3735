package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

type FileInfo struct {
	Name    string
	AbsPath string
	Size    uint64
}

// Stat resolves a single local file. Directories are rejected by the caller
// checking Size against os.Stat semantics; symlinks are followed.
func Stat(path string) (FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    info.Name(),
		AbsPath: abs,
		Size:    uint64(info.Size()),
	}, nil
}

// List walks rootPath and returns every regular file under it.
func List(rootPath string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Name:    d.Name(),
			AbsPath: path,
			Size:    uint64(info.Size()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
