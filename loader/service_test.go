package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/oaserrors"
)

func TestService_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: object\nproperties:\n  name: {type: string}\n"), 0o600))

	srv := New()
	doc, err := srv.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "properties"}, doc.Keys())

	// Returned trees are copies; mutating one must not leak into the cache.
	doc.Set("type", element.NewString("changed"))
	again, err := srv.Load(context.Background(), path)
	require.NoError(t, err)
	typ, _ := again.GetString("type")
	assert.Equal(t, "object", typ)
}

func TestService_LoadMemory(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/oasderef/loader/case001/common.json"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(`{"Error": {"type": "object"}}`)))

	srv := New(WithFS(fs))
	doc, err := srv.Load(ctx, URL)
	require.NoError(t, err)
	assert.True(t, doc.Get("Error").IsObject())
}

func TestService_LoadFailures(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, []byte("key: "+strings.Repeat("x", 64)), 0o600))
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("a: [1, 2"), 0o600))

	var useCases = []struct {
		description string
		location    string
		opts        []Option
		sentinel    error
	}{
		{description: "missing file", location: filepath.Join(dir, "missing.yaml"), sentinel: oaserrors.ErrLoad},
		{description: "too large", location: big, opts: []Option{WithMaxDocumentSize(16)}, sentinel: oaserrors.ErrResourceLimit},
		{description: "undecodable", location: broken, sentinel: oaserrors.ErrParse},
	}

	for _, useCase := range useCases {
		t.Run(useCase.description, func(t *testing.T) {
			_, err := New(useCase.opts...).Load(context.Background(), useCase.location)
			require.Error(t, err)
			var loadErr *oaserrors.LoadError
			require.True(t, errors.As(err, &loadErr), "expected LoadError, got %T", err)
			assert.Equal(t, useCase.location, loadErr.Location)
			assert.True(t, errors.Is(err, useCase.sentinel))
		})
	}
}

func TestService_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o600))

	srv := New(WithRateLimit(1000, 10))
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = srv.Load(context.Background(), path)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, "mem://localhost/oasderef/loader/never.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, oaserrors.ErrLoad))
}

// blockingFS holds downloads until release is closed or their context ends.
type blockingFS struct {
	afs.Service
	started chan struct{}
	release chan struct{}
	ended   chan error
}

func newBlockingFS() *blockingFS {
	return &blockingFS{
		Service: afs.New(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		ended:   make(chan error, 1),
	}
}

func (b *blockingFS) DownloadWithURL(ctx context.Context, _ string, _ ...storage.Option) ([]byte, error) {
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		b.ended <- ctx.Err()
		return nil, ctx.Err()
	case <-b.release:
		b.ended <- nil
		return []byte("openapi: 3.1.0\n"), nil
	}
}

func TestService_CancelAbortsDownload(t *testing.T) {
	fs := newBlockingFS()
	svc := New(WithFS(fs))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Load(ctx, "https://example.com/slow.yaml")
		done <- err
	}()

	<-fs.started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	select {
	case err := <-fs.ended:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("download kept running after its only caller left")
	}
}

func TestService_SharedDownloadOutlivesOneCaller(t *testing.T) {
	fs := newBlockingFS()
	svc := New(WithFS(fs))
	location := "https://example.com/shared.yaml"

	first, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Load(first, location)
		firstDone <- err
	}()
	<-fs.started

	secondDone := make(chan error, 1)
	go func() {
		doc, err := svc.Load(context.Background(), location)
		if err == nil && !doc.Has("openapi") {
			err = errors.New("unexpected document")
		}
		secondDone <- err
	}()

	// The second caller must be waiting on the same download before the first leaves.
	require.Eventually(t, func() bool {
		svc.flightMu.Lock()
		defer svc.flightMu.Unlock()
		f := svc.flights[location]
		return f != nil && f.waiters == 2
	}, 5*time.Second, time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstDone, context.Canceled)

	select {
	case err := <-fs.ended:
		t.Fatalf("download ended early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(fs.release)
	require.NoError(t, <-secondDone)
	assert.NoError(t, <-fs.ended)
}

func TestStatic(t *testing.T) {
	doc := element.MustFromValue(map[string]any{"a": 1})
	src := Static{"https://example.com/a.yaml": doc}

	got, err := src.Load(context.Background(), "https://example.com/a.yaml")
	require.NoError(t, err)
	assert.True(t, element.Equal(doc, got))
	assert.NotSame(t, doc, got)

	_, err = src.Load(context.Background(), "https://example.com/b.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, oaserrors.ErrLoad))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "https://example.com/a.yaml", Normalize("https://example.com/a.yaml"))
	assert.Equal(t, "mem://localhost/a.yaml", Normalize("mem://localhost/a.yaml"))
	assert.True(t, filepath.IsAbs(Normalize("specs/a.yaml")))
	assert.Equal(t, "", Normalize(""))
}
