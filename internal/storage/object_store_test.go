package storage

import (
	"context"
	"io"
	"testing"
	"time"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return io.ErrShortWrite
	}
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://example/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func TestExportKey(t *testing.T) {
	if got := ExportKey("chat-1", "abc"); got != "exports/chat-1/abc.zip" {
		t.Fatalf("key=%q", got)
	}
}

func TestPutExport(t *testing.T) {
	s := &memStore{objects: map[string][]byte{}, types: map[string]string{}}
	key, err := PutExport(context.Background(), s, "chat-1", "abc", []byte("PK.."))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if string(s.objects[key]) != "PK.." || s.types[key] != "application/zip" {
		t.Fatalf("unexpected object %q (%s)", s.objects[key], s.types[key])
	}
}
