package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putCall struct {
	key          string
	contentType  string
	cacheControl string
	body         string
}

type stubPutter struct {
	calls []putCall
	err   error
}

func (s *stubPutter) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.calls = append(s.calls, putCall{
		key:          *input.Key,
		contentType:  *input.ContentType,
		cacheControl: *input.CacheControl,
		body:         string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":             "<html>index</html>",
		"about.html":             "<html>about</html>",
		"about.pageContext.json": `{"pageContext":{}}`,
		"assets/entry.abc123.js": "console.log('hi')",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDeployUploadsEverything(t *testing.T) {
	putter := &stubPutter{}
	d, err := New(putter, "my-bucket", "", discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	summary, err := d.Deploy(context.Background(), writeSite(t))
	if err != nil {
		t.Fatalf("Deploy() error: %v", err)
	}
	if got, want := summary.Files, 4; got != want {
		t.Errorf("Files = %d, want %d", got, want)
	}
	if summary.Bytes == 0 {
		t.Error("Bytes = 0, want > 0")
	}

	var keys []string
	for _, c := range putter.calls {
		keys = append(keys, c.key)
	}
	sort.Strings(keys)
	want := []string{"about.html", "about.pageContext.json", "assets/entry.abc123.js", "index.html"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys = %v, want %v", keys, want)
			break
		}
	}
}

func TestDeployPrefix(t *testing.T) {
	putter := &stubPutter{}
	d, err := New(putter, "my-bucket", "site", discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Deploy(context.Background(), writeSite(t)); err != nil {
		t.Fatal(err)
	}
	for _, c := range putter.calls {
		if c.key[:5] != "site/" {
			t.Errorf("key %q missing site/ prefix", c.key)
		}
	}
}

func TestDeployMetadata(t *testing.T) {
	putter := &stubPutter{}
	d, err := New(putter, "my-bucket", "", discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Deploy(context.Background(), writeSite(t)); err != nil {
		t.Fatal(err)
	}

	byKey := map[string]putCall{}
	for _, c := range putter.calls {
		byKey[c.key] = c
	}

	if got := byKey["index.html"].contentType; got != "text/html; charset=utf-8" {
		t.Errorf("index.html content type = %q", got)
	}
	if got := byKey["about.pageContext.json"].contentType; got != "application/json" {
		t.Errorf("pageContext.json content type = %q", got)
	}
	if got := byKey["assets/entry.abc123.js"].cacheControl; got != cacheImmutable {
		t.Errorf("asset cache control = %q", got)
	}
	if got := byKey["index.html"].cacheControl; got != cacheRevalidate {
		t.Errorf("document cache control = %q", got)
	}
}

func TestDeployUploadFailure(t *testing.T) {
	putter := &stubPutter{err: fmt.Errorf("access denied")}
	d, err := New(putter, "my-bucket", "", discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Deploy(context.Background(), writeSite(t)); err == nil {
		t.Fatal("expected the upload failure to propagate")
	}
}

func TestDeployEmptyDir(t *testing.T) {
	putter := &stubPutter{}
	d, err := New(putter, "my-bucket", "", discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Deploy(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected an error for an empty output directory")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(&stubPutter{}, "", "", discardLogger()); err == nil {
		t.Fatal("expected an error without a bucket")
	}
}
