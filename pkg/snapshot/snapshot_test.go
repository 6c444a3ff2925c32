package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func greeting() *vdom.Component {
	return &vdom.Component{
		Name: "Greeting",
		Setup: func(*reactive.Record, *vdom.SetupContext) any {
			name := reactive.NewRef("world")
			return func() any {
				return vdom.H1(vdom.Class("title"), "Hello, ", name.Get())
			}
		},
	}
}

func TestRender(t *testing.T) {
	html, tree, err := RenderTree(greeting())
	if err != nil {
		t.Fatal(err)
	}
	if want := `<h1 class="title">Hello, world</h1>`; string(html) != want {
		t.Errorf("Render() = %s, want %s", html, want)
	}
	if got := tree.HTML(); got != "" {
		t.Errorf("tree after Render = %s, want unmounted", got)
	}

	if _, err := Render(&vdom.Component{Name: "Broken"}); !errors.HasCode(err, errors.CodeNoRender) {
		t.Errorf("Render(broken) error = %v, want E001", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "out"))
	ctx := context.Background()

	loc, err := Save(ctx, store, "pages/index.html", greeting())
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out", "pages", "index.html"); loc != want {
		t.Errorf("location = %s, want %s", loc, want)
	}
	data, err := store.Get(ctx, "pages/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("Hello, world")) {
		t.Errorf("stored data = %s", data)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "out", "pages"))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	tests := []struct {
		name string
		op   func() error
	}{
		{"escaping name", func() error { _, err := store.Put(ctx, "../evil.html", nil); return err }},
		{"absolute name", func() error { _, err := store.Put(ctx, "/etc/passwd", nil); return err }},
		{"empty name", func() error { _, err := store.Put(ctx, "", nil); return err }},
		{"missing file", func() error { _, err := store.Get(ctx, "nope.html"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.HasCode(err, errors.CodeSnapshotFailed) {
				t.Errorf("error = %v, want E007", err)
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Put(cancelled, "x.html", nil); err != context.Canceled {
		t.Errorf("Put(cancelled) error = %v", err)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[k] = data
	f.types[k] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "bucket", "snapshots/")
	ctx := context.Background()

	loc, err := Save(ctx, store, "../home/index.html", greeting())
	if err != nil {
		t.Fatal(err)
	}
	if loc != "s3://bucket/snapshots/home/index.html" {
		t.Errorf("location = %s", loc)
	}
	if got := fake.types["bucket/snapshots/home/index.html"]; got != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}

	data, err := store.Get(ctx, "home/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `<h1 class="title">Hello, world</h1>` {
		t.Errorf("Get() = %s", data)
	}

	if _, err := store.Get(ctx, "missing.html"); !errors.HasCode(err, errors.CodeSnapshotFailed) {
		t.Errorf("Get(missing) error = %v, want E007", err)
	}
	fake.fail = fmt.Errorf("access denied")
	if _, err := store.Put(ctx, "x.json", []byte("{}")); !errors.HasCode(err, errors.CodeSnapshotFailed) {
		t.Errorf("Put() error = %v, want E007", err)
	}
}

func TestNewS3Client(t *testing.T) {
	opts := NewS3Client("eu-west-1", "http://localhost:9000").Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q", opts.Region)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" || !opts.UsePathStyle {
		t.Errorf("endpoint options = %v %v", aws.ToString(opts.BaseEndpoint), opts.UsePathStyle)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	if _, err := envCredentials(context.Background()); err == nil {
		t.Error("expected error without credentials")
	}
	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil || creds.AccessKeyID != "id" {
		t.Errorf("envCredentials() = %+v, %v", creds, err)
	}
}
