package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"pantry/internal/config"
	"pantry/internal/storage"
	"pantry/internal/todo"
)

type fakeTodoStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []todo.Todo
	err    error
}

func (f *fakeTodoStore) List(_ context.Context, skip, limit int) (int64, []todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, nil, f.err
	}
	page := make([]todo.Todo, 0)
	for i, row := range f.rows {
		if i < skip {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, row)
	}
	return int64(len(f.rows)), page, nil
}

func (f *fakeTodoStore) Create(_ context.Context, label string, quantity int) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return todo.Todo{}, f.err
	}
	f.nextID++
	row := todo.Todo{ID: f.nextID, Label: label, Quantity: quantity}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeTodoStore) Delete(_ context.Context, id int64) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return todo.Todo{}, f.err
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return row, nil
		}
	}
	return todo.Todo{}, todo.ErrNotFound
}

type fakeGateway struct {
	mu         sync.Mutex
	bucketType config.BucketType
	bucket     string
	objects    map[string][]byte
	err        error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		bucketType: config.BucketTypeS3,
		bucket:     "test-bucket",
		objects:    map[string][]byte{},
	}
}

func (f *fakeGateway) path(name string) string {
	return storage.ObjectPath(f.bucketType, f.bucket, name)
}

func (f *fakeGateway) ListObjects(context.Context) ([]storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	names := make([]string, 0, len(f.objects))
	for name := range f.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]storage.Object, 0, len(names))
	for _, name := range names {
		out = append(out, storage.Object{Name: name, Path: f.path(name)})
	}
	return out, nil
}

func (f *fakeGateway) PutObject(_ context.Context, name string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.objects[name] = append([]byte(nil), content...)
	return f.path(name), nil
}

func (f *fakeGateway) DeleteObject(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	delete(f.objects, name)
	return f.path(name), nil
}

func (f *fakeGateway) GetObject(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.objects[name]
	if !ok {
		return nil, errors.New("NoSuchKey: The specified key does not exist.")
	}
	return content, nil
}

func (f *fakeGateway) BucketType() config.BucketType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bucketType
}

func testServerConfig() config.ServerConfig {
	return config.DefaultConfig().Server
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *fakeTodoStore, *fakeGateway) {
	t.Helper()
	todos := &fakeTodoStore{}
	objects := newFakeGateway()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, todos, objects, logger), todos, objects
}

func decodeErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v body=%s", err, rr.Body.String())
	}
	return resp
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
}
