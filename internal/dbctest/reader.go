package dbctest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// LoadJSON loads a JSON file from the caller's testdata directory into target.
func LoadJSON(t *testing.T, filename string, target interface{}) {
	b := loadBytes(t, fmt.Sprintf("testdata/%v", filename), 2)

	if err := json.Unmarshal(b, &target); err != nil {
		t.Fatal(fmt.Errorf("dbctest.LoadJSON failure: %w", err))
	}
}

// LoadBytes loads a file's contents from the caller's testdata directory.
func LoadBytes(t *testing.T, name string) []byte {
	return loadBytes(t, fmt.Sprintf("testdata/%v", name), 2)
}

func loadBytes(t *testing.T, name string, callDepth int) []byte {
	_, b, _, _ := runtime.Caller(callDepth)
	basepath := filepath.Dir(b)

	path := filepath.Join(basepath, name)
	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return bytes
}

// ReadResult is one scripted return value for MockReaderWriter.Read.
type ReadResult struct {
	Read []byte
	Err  error
}

// WriteResult is one scripted return value for MockReaderWriter.Write.
type WriteResult struct {
	N   int
	Err error
}

// MockReaderWriter replays a scripted sequence of Read/Write results, used to
// drive the candump frame source in tests without a real CAN interface.
type MockReaderWriter struct {
	Reads      []ReadResult
	Writes     []WriteResult
	readIndex  int
	writeIndex int
}

func (m *MockReaderWriter) Read(p []byte) (n int, err error) {
	r := m.Reads[m.readIndex]
	m.readIndex++

	if r.Err != nil {
		return len(r.Read), r.Err
	}

	n = copy(p, r.Read)
	return n, nil
}

func (m *MockReaderWriter) Write(p []byte) (n int, err error) {
	w := m.Writes[m.writeIndex]
	m.writeIndex++
	return w.N, w.Err
}
