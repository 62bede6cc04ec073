package memory

import (
	"context"
	"fmt"
	"sync"

	"chirp/application/ports"

	"github.com/google/uuid"
)

// MediaStore implements ports.MediaStore in memory, keeping uploaded
// payloads addressable by their fabricated URLs
type MediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMediaStore creates an empty media store
func NewMediaStore() *MediaStore {
	return &MediaStore{objects: make(map[string][]byte)}
}

var _ ports.MediaStore = (*MediaStore)(nil)

var mediaExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload stores the payload and returns a fabricated public URL
func (s *MediaStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := mediaExtensions[contentType]
	if !ok {
		ext = "bin"
	}
	url := fmt.Sprintf("https://media.local/%s.%s", uuid.New().String(), ext)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[url] = data
	return url, nil
}

// Destroy removes the object behind the URL
func (s *MediaStore) Destroy(ctx context.Context, publicURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicURL)
	return nil
}

// Len reports how many objects the store currently holds
func (s *MediaStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Has reports whether an object exists for the URL
func (s *MediaStore) Has(publicURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicURL]
	return ok
}
