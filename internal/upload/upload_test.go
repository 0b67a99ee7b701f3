package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func writeTempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\x89PNG fake image bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCloudinaryNotConfigured(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	tests := []struct{ cloud, preset string }{
		{"", "preset"},
		{"demo", ""},
		{" ", " "},
	}
	for _, tt := range tests {
		// The file does not exist: configuration is checked first.
		_, err := NewCloudinary(srv.URL, tt.cloud, tt.preset, srv.Client()).Upload(context.Background(), "/does/not/exist.png")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("cloud=%q preset=%q: err = %v, want ErrNotConfigured", tt.cloud, tt.preset, err)
		}
	}
	if hits != 0 {
		t.Errorf("server hit %d times, want 0", hits)
	}
}

func TestCloudinaryUpload(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{name: "success", status: http.StatusOK, body: `{"secure_url":"https://res.cloudinary.com/demo/image/upload/a.png"}`, want: "https://res.cloudinary.com/demo/image/upload/a.png"},
		{name: "missing url", status: http.StatusOK, body: `{"public_id":"a"}`, wantErr: "upload response missing secure URL"},
		{name: "host message", status: http.StatusBadRequest, body: `{"error":{"message":"Upload preset not found"}}`, wantErr: "Upload preset not found"},
		{name: "no message", status: http.StatusInternalServerError, body: `oops`, wantErr: "image upload failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/demo/image/upload" {
					t.Errorf("path = %q", r.URL.Path)
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("parse form: %v", err)
				}
				if got := r.FormValue("upload_preset"); got != "unsigned" {
					t.Errorf("upload_preset = %q", got)
				}
				file, header, err := r.FormFile("file")
				if err != nil {
					t.Errorf("form file: %v", err)
				} else {
					data, _ := io.ReadAll(file)
					if header.Filename != "dish.png" || !strings.HasPrefix(string(data), "\x89PNG") {
						t.Errorf("file = %q (%d bytes)", header.Filename, len(data))
					}
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewCloudinary(srv.URL, "demo", "unsigned", srv.Client()).Upload(context.Background(), writeTempImage(t, "dish.png"))
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3NotConfigured(t *testing.T) {
	_, err := NewS3(S3Config{Bucket: "b"}).Upload(context.Background(), "/does/not/exist.jpg")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestS3Upload(t *testing.T) {
	u := NewS3(S3Config{
		Endpoint:        "https://acct.r2.cloudflarestorage.com",
		Bucket:          "grub",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		PublicURL:       "https://cdn.example.com/",
	})
	fake := &fakePutter{}
	u.client = fake
	u.now = func() time.Time { return time.Unix(1700000000, 0) }

	got, err := u.Upload(context.Background(), writeTempImage(t, "Dish.JPG"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	key := aws.ToString(fake.input.Key)
	if !regexp.MustCompile(`^restaurants/1700000000_[0-9a-f-]{36}\.jpg$`).MatchString(key) {
		t.Errorf("key = %q", key)
	}
	if got != "https://cdn.example.com/"+key {
		t.Errorf("url = %q", got)
	}
	if aws.ToString(fake.input.Bucket) != "grub" {
		t.Errorf("bucket = %q", aws.ToString(fake.input.Bucket))
	}
	if ct := aws.ToString(fake.input.ContentType); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(string(fake.body), "\x89PNG") {
		t.Errorf("body not uploaded")
	}
}

func TestS3UploadError(t *testing.T) {
	u := NewS3(S3Config{Endpoint: "https://e", Bucket: "b", AccessKeyID: "a", SecretAccessKey: "s", PublicURL: "https://p"})
	u.client = &fakePutter{err: errors.New("access denied")}

	_, err := u.Upload(context.Background(), writeTempImage(t, "a.png"))
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("err = %v", err)
	}
}
