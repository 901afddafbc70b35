// Package blob stores uploaded file content on disk and hands back
// opaque locators. Deletion is best-effort: a missing blob is logged,
// never fatal to the operation that triggered it.
package blob

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"atomgram-service/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Limits validates an upload before it is stored. An empty AllowedMime
// list accepts any content type; entries match as prefixes, so
// "image/" covers every image subtype.
type Limits struct {
	MaxSize     int64
	AllowedMime []string
}

// Validate sniffs the content type from the bytes themselves and
// checks the size. Returns the detected mime type.
func (l Limits) Validate(data []byte) (string, error) {
	if l.MaxSize > 0 && int64(len(data)) > l.MaxSize {
		return "", errors.ErrFileTooLarge
	}

	mime := mimetype.Detect(data).String()
	if len(l.AllowedMime) == 0 {
		return mime, nil
	}
	for _, allowed := range l.AllowedMime {
		if strings.HasPrefix(mime, allowed) {
			return mime, nil
		}
	}
	return "", errors.ErrInvalidFileType
}

// Store is a disk-backed blob store rooted at one uploads directory.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Put writes the blob and returns its locator. The original file name
// survives in the locator for download headers; a uuid prefix keeps
// locators unique.
func (s *Store) Put(data []byte, name string) (string, error) {
	fileName := uuid.NewString() + "_" + sanitize(name)
	if err := os.WriteFile(filepath.Join(s.root, fileName), data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/" + fileName, nil
}

// Get reads a blob back by its locator.
func (s *Store) Get(locator string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, path.Base(locator)))
	if os.IsNotExist(err) {
		return nil, errors.ErrMessageNotFound
	}
	return data, err
}

// Delete removes the blob, reporting whether it was actually there.
func (s *Store) Delete(locator string) bool {
	if err := os.Remove(filepath.Join(s.root, path.Base(locator))); err != nil {
		log.Printf("blob: failed to delete %s: %v", locator, err)
		return false
	}
	return true
}

// Sweep removes every blob whose locator is not in the used set,
// reclaiming files orphaned by deleted messages. Returns the number of
// removed blobs.
func (s *Store) Sweep(used map[string]struct{}) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := used["/uploads/"+entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil {
			log.Printf("blob: sweep failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

func sanitize(name string) string {
	name = path.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
