package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const scriptKey = "scripts/smoke_TC1_login_20250101T000000.py"

const scriptBody = `from playwright.sync_api import sync_playwright

print("Final Result: PASS")
`

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		wantError bool
	}{
		{
			name:      "existing artifact directory",
			baseDir:   t.TempDir(),
			wantError: false,
		},
		{
			name:      "creates missing artifact directory",
			baseDir:   filepath.Join(t.TempDir(), "artifacts"),
			wantError: false,
		},
		{
			name:      "empty base directory",
			baseDir:   "",
			wantError: true,
		},
		{
			name:      "dot as base directory",
			baseDir:   ".",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewLocalStorage(tt.baseDir)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("expected storage but got nil")
			}
		})
	}
}

func TestLocalStorage_Upload(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	store, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	tests := []struct {
		name      string
		key       string
		content   string
		wantError bool
	}{
		{
			name:      "script at root",
			key:       "smoke_TC1_login.py",
			content:   scriptBody,
			wantError: false,
		},
		{
			name:      "script under scripts prefix",
			key:       scriptKey,
			content:   scriptBody,
			wantError: false,
		},
		{
			name:      "screenshot under nested run prefix",
			key:       "runs/2025/01/step_3.png",
			content:   "\x89PNG",
			wantError: false,
		},
		{
			name:      "empty key",
			key:       "",
			content:   "content",
			wantError: true,
		},
		{
			name:      "key escaping the base directory",
			key:       "../escaped.py",
			content:   "print('escaped')",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upload(ctx, tt.key, strings.NewReader(tt.content))

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := os.ReadFile(filepath.Join(baseDir, tt.key))
			if err != nil {
				t.Fatalf("failed to read uploaded artifact: %v", err)
			}
			if string(got) != tt.content {
				t.Errorf("content mismatch: got %q, want %q", string(got), tt.content)
			}
		})
	}
}

func TestLocalStorage_Download(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Upload(ctx, scriptKey, strings.NewReader(scriptBody)); err != nil {
		t.Fatalf("failed to upload script: %v", err)
	}

	t.Run("download materialized script", func(t *testing.T) {
		reader, err := store.Download(ctx, scriptKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer reader.Close()

		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read downloaded script: %v", err)
		}
		if string(content) != scriptBody {
			t.Errorf("content mismatch: got %q, want %q", string(content), scriptBody)
		}
	})

	t.Run("download missing script", func(t *testing.T) {
		_, err := store.Download(ctx, "scripts/never_generated.py")
		if err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.Download(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})

	t.Run("key escaping the base directory", func(t *testing.T) {
		if _, err := store.Download(ctx, "../escaped.py"); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Upload(ctx, scriptKey, strings.NewReader(scriptBody)); err != nil {
		t.Fatalf("failed to upload script: %v", err)
	}

	t.Run("delete stored script", func(t *testing.T) {
		if err := store.Delete(ctx, scriptKey); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exists, err := store.Exists(ctx, scriptKey)
		if err != nil {
			t.Fatalf("failed to check existence: %v", err)
		}
		if exists {
			t.Error("script should not exist after deletion")
		}
	})

	t.Run("delete missing script", func(t *testing.T) {
		if err := store.Delete(ctx, "scripts/never_generated.py"); err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if err := store.Delete(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_Exists(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Upload(ctx, scriptKey, strings.NewReader(scriptBody)); err != nil {
		t.Fatalf("failed to upload script: %v", err)
	}

	t.Run("script exists", func(t *testing.T) {
		exists, err := store.Exists(ctx, scriptKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("script should exist")
		}
	})

	t.Run("script does not exist", func(t *testing.T) {
		exists, err := store.Exists(ctx, "scripts/never_generated.py")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("script should not exist")
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.Exists(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_GetURL(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Upload(ctx, scriptKey, strings.NewReader(scriptBody)); err != nil {
		t.Fatalf("failed to upload script: %v", err)
	}

	t.Run("URL for stored script", func(t *testing.T) {
		url, err := store.GetURL(ctx, scriptKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url == "" {
			t.Error("URL should not be empty")
		}
		if !strings.Contains(url, scriptKey) {
			t.Errorf("URL should contain key %q, got %q", scriptKey, url)
		}
	})

	t.Run("URL for missing script", func(t *testing.T) {
		if _, err := store.GetURL(ctx, "scripts/never_generated.py"); err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.GetURL(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_UploadScreenshot(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	store, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	// Full-page screenshots commonly land in the low megabytes.
	size := 2 * 1024 * 1024
	data := bytes.Repeat([]byte{0x89}, size)

	key := "runs/2025/01/full_page.png"
	if err := store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		t.Fatalf("failed to upload screenshot: %v", err)
	}

	info, err := os.Stat(filepath.Join(baseDir, key))
	if err != nil {
		t.Fatalf("failed to stat screenshot: %v", err)
	}
	if info.Size() != int64(size) {
		t.Errorf("size mismatch: got %d, want %d", info.Size(), size)
	}
}

func TestLocalStorage_PathTraversalPrevention(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	maliciousKeys := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32",
		"../../escaped.py",
		"scripts/../../escaped.py",
	}

	for _, key := range maliciousKeys {
		t.Run("block_"+key, func(t *testing.T) {
			if err := store.Upload(ctx, key, strings.NewReader("blocked")); err == nil {
				t.Errorf("should have blocked path traversal for: %s", key)
			}
		})
	}
}
