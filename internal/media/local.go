package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader stores files in a directory tree on the local filesystem.
type LocalUploader struct {
	BaseDir string
	// PublicPrefix, when set, is joined with the relative key to build URLs.
	PublicPrefix string
}

// NewLocalUploader constructs an uploader that writes below the provided directory.
// If baseDir is empty, os.TempDir() is used.
func NewLocalUploader(baseDir string) (*LocalUploader, error) {
	dir := baseDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	return &LocalUploader{BaseDir: dir}, nil
}

// Upload writes the content to BaseDir/Folder/Filename. Without a filename a
// unique temp name is used. The key is the path relative to BaseDir.
func (l *LocalUploader) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	dir := filepath.Join(l.BaseDir, cleanFolder(input.Folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create folder: %w", err)
	}

	file, err := l.open(dir, input.Filename)
	if err != nil {
		return UploadResult{}, err
	}
	defer file.Close()

	if _, err := io.Copy(file, input.Body); err != nil {
		os.Remove(file.Name())
		return UploadResult{}, fmt.Errorf("write file: %w", err)
	}

	key, err := filepath.Rel(l.BaseDir, file.Name())
	if err != nil {
		key = file.Name()
	}
	key = filepath.ToSlash(key)

	result := UploadResult{Key: key}
	if l.PublicPrefix != "" {
		result.URL = strings.TrimSuffix(l.PublicPrefix, "/") + "/" + key
	}
	return result, nil
}

func (l *LocalUploader) open(dir, filename string) (*os.File, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		file, err := os.CreateTemp(dir, "salon-*")
		if err != nil {
			return nil, fmt.Errorf("create temp file: %w", err)
		}
		return file, nil
	}
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		ext := filepath.Ext(name)
		file, err = os.CreateTemp(dir, strings.TrimSuffix(name, ext)+"_*"+ext)
	}
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return file, nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return ""
	}
	return strings.TrimPrefix(filepath.Clean("/"+folder), "/")
}
