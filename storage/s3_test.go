package storage

import (
	"context"
	"strings"
	"testing"
)

func TestNewS3Storage(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		region    string
		wantError bool
	}{
		{
			name:      "valid bucket and region",
			bucket:    "test-bucket",
			region:    "us-east-1",
			wantError: false,
		},
		{
			name:      "empty bucket",
			bucket:    "",
			region:    "us-east-1",
			wantError: true,
		},
		{
			name:      "empty region",
			bucket:    "test-bucket",
			region:    "",
			wantError: true,
		},
		{
			name:      "both empty",
			bucket:    "",
			region:    "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewS3Storage(tt.bucket, tt.region)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if storage == nil {
				t.Fatal("expected storage but got nil")
			}
			if storage.bucket != tt.bucket {
				t.Errorf("bucket mismatch: got %q, want %q", storage.bucket, tt.bucket)
			}
		})
	}
}

func TestCleanObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		want      string
		wantError bool
	}{
		{
			name: "valid simple key",
			key:  "test.txt",
			want: "test.txt",
		},
		{
			name: "valid nested key",
			key:  "scripts/suite_tc1.py",
			want: "scripts/suite_tc1.py",
		},
		{
			name:      "empty key",
			key:       "",
			wantError: true,
		},
		{
			name:      "parent traversal",
			key:       "../../../etc/passwd",
			wantError: true,
		},
		{
			name:      "absolute path",
			key:       "/etc/passwd",
			wantError: true,
		},
		{
			name: "key starting with dot slash is normalized",
			key:  "./test.txt",
			want: "test.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanObjectKey(tt.key)
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error for key %q but got none", tt.key)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for key %q: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("cleanObjectKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestS3Storage_KeyValidation(t *testing.T) {
	storage, err := NewS3Storage("test-bucket", "us-east-1")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	ctx := context.Background()

	maliciousKeys := []string{
		"",
		"../../../etc/passwd",
		"../../outside.txt",
		"subdir/../../outside.txt",
		"/absolute/path.txt",
	}

	t.Run("upload rejects malicious keys", func(t *testing.T) {
		for _, key := range maliciousKeys {
			err := storage.Upload(ctx, key, strings.NewReader("test"))
			if err == nil {
				t.Errorf("should have blocked key: %s", key)
			}
		}
	})

	t.Run("download rejects malicious keys", func(t *testing.T) {
		for _, key := range maliciousKeys {
			_, err := storage.Download(ctx, key)
			if err == nil {
				t.Errorf("should have blocked key: %s", key)
			}
		}
	})

	t.Run("delete rejects malicious keys", func(t *testing.T) {
		for _, key := range maliciousKeys {
			err := storage.Delete(ctx, key)
			if err == nil {
				t.Errorf("should have blocked key: %s", key)
			}
		}
	})

	t.Run("exists rejects malicious keys", func(t *testing.T) {
		for _, key := range maliciousKeys {
			_, err := storage.Exists(ctx, key)
			if err == nil {
				t.Errorf("should have blocked key: %s", key)
			}
		}
	})

	t.Run("getURL rejects malicious keys", func(t *testing.T) {
		for _, key := range maliciousKeys {
			_, err := storage.GetURL(ctx, key)
			if err == nil {
				t.Errorf("should have blocked key: %s", key)
			}
		}
	})
}

func TestNewBlobStorage(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
	}{
		{
			name: "local storage",
			cfg:  Config{Type: "local", BaseDir: t.TempDir()},
		},
		{
			name: "local storage uppercase",
			cfg:  Config{Type: "LOCAL", BaseDir: t.TempDir()},
		},
		{
			name:      "local storage missing base dir",
			cfg:       Config{Type: "local"},
			wantError: true,
		},
		{
			name: "s3 storage",
			cfg:  Config{Type: "s3", Bucket: "test-bucket", Region: "us-east-1"},
		},
		{
			name:      "s3 storage missing bucket",
			cfg:       Config{Type: "s3", Region: "us-east-1"},
			wantError: true,
		},
		{
			name:      "s3 storage missing region",
			cfg:       Config{Type: "s3", Bucket: "test-bucket"},
			wantError: true,
		},
		{
			name:      "unsupported storage type",
			cfg:       Config{Type: "gcs"},
			wantError: true,
		},
		{
			name:      "empty storage type",
			cfg:       Config{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewBlobStorage(tt.cfg)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if storage == nil {
				t.Fatal("expected storage but got nil")
			}
		})
	}
}

func TestIsS3NotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantTrue bool
	}{
		{
			name:     "nil error",
			err:      nil,
			wantTrue: false,
		},
		{
			name:     "generic error",
			err:      context.Canceled,
			wantTrue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isS3NotFoundError(tt.err)
			if result != tt.wantTrue {
				t.Errorf("isS3NotFoundError(%v) = %v, want %v", tt.err, result, tt.wantTrue)
			}
		})
	}
}
