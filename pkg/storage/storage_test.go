package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\lab\\spill photo.jpg", "spill_photo.jpg"},
		{"..", "file"},
		{"", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFileStoreSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/data/uploads")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stored, err := store.Save(context.Background(), "spill.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(stored, "uploads/") || !strings.HasSuffix(stored, "_spill.jpg") {
		t.Errorf("Unexpected stored path %q", stored)
	}

	name := strings.TrimPrefix(stored, "uploads/")
	data, err := afero.ReadFile(fs, "/data/uploads/"+name)
	if err != nil {
		t.Fatalf("Expected stored file, got %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("Expected file content to round trip, got %q", data)
	}
}

func TestFileStoreSaveCancelled(t *testing.T) {
	store, _ := NewFileStore(afero.NewMemMapFs(), "/u")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.txt", strings.NewReader("x")); err == nil {
		t.Error("Expected cancelled context to abort the save")
	}
}
