package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariata-os/ariata/errors"
)

// Row is one captured relational insert.
type Row struct {
	Table   string
	Columns map[string]any
}

// FakeRelational is an in-memory RelationalStore that records inserts
// in order. Set FailNext to make upcoming writes fail transiently.
type FakeRelational struct {
	mu       sync.Mutex
	rows     []Row
	FailNext int
}

// InsertRow captures the insert, or fails while FailNext is positive.
func (f *FakeRelational) InsertRow(_ context.Context, table string, columns map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext > 0 {
		f.FailNext--
		return &errors.StorageWriteError{Store: "relational", Op: "insert " + table, Err: errors.ErrStorageUnavailable}
	}

	copied := make(map[string]any, len(columns))
	for k, v := range columns {
		copied[k] = v
	}
	f.rows = append(f.rows, Row{Table: table, Columns: copied})
	return nil
}

// Close implements RelationalStore.
func (f *FakeRelational) Close() {}

// Rows returns the captured inserts in write order.
func (f *FakeRelational) Rows() []Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Row(nil), f.rows...)
}

// Blob is one captured object write.
type Blob struct {
	Content     []byte
	ContentType string
}

// FakeBlob is an in-memory BlobStore keyed by path. Set FailNext to
// make upcoming writes fail transiently.
type FakeBlob struct {
	mu       sync.Mutex
	objects  map[string]Blob
	order    []string
	FailNext int
}

// Put stores content at path, or fails while FailNext is positive.
func (f *FakeBlob) Put(_ context.Context, path string, content []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext > 0 {
		f.FailNext--
		return &errors.StorageWriteError{Store: "blob", Op: "put " + path, Err: errors.ErrStorageUnavailable}
	}

	if f.objects == nil {
		f.objects = make(map[string]Blob)
	}
	f.objects[path] = Blob{Content: append([]byte(nil), content...), ContentType: contentType}
	f.order = append(f.order, path)
	return nil
}

// Get returns the content at path.
func (f *FakeBlob) Get(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[path]
	if !ok {
		return nil, errors.WrapInvalid(fmt.Errorf("no object at %q", path), "FakeBlob", "Get", "lookup")
	}
	return append([]byte(nil), obj.Content...), nil
}

// Object returns the stored blob and whether it exists.
func (f *FakeBlob) Object(path string) (Blob, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[path]
	return obj, ok
}

// Paths returns blob paths in write order.
func (f *FakeBlob) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}
