package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
)

// MaxUploadSize caps a single attachment at 10 MB.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// Store saves uploaded files under a local directory and hands back
// references that are persisted on the owning record.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes one multipart file into a subdirectory and returns its reference.
// The stored name is a fresh UUID so originals can never collide or traverse paths.
func (s *Store) Save(file *multipart.FileHeader, subdir string) (*model.FileRef, error) {
	if file.Size > MaxUploadSize {
		return nil, fmt.Errorf("file %s exceeds the 10 MB limit", file.Filename)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("file type %s is not allowed", ext)
	}

	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &model.FileRef{
		Path:         filepath.ToSlash(filepath.Join(subdir, name)),
		OriginalName: file.Filename,
		Size:         file.Size,
		UploadedAt:   time.Now(),
	}, nil
}

// SaveAll stores every file in the slice, removing already-written files if a
// later one fails.
func (s *Store) SaveAll(files []*multipart.FileHeader, subdir string) (model.FileRefs, error) {
	refs := make(model.FileRefs, 0, len(files))
	for _, f := range files {
		ref, err := s.Save(f, subdir)
		if err != nil {
			for _, r := range refs {
				os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(r.Path)))
			}
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

// BaseDir exposes the root so the HTTP layer can serve files statically.
func (s *Store) BaseDir() string {
	return s.baseDir
}
