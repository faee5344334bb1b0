package execute

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/afero"
)

// faultFs wraps an afero.Fs, counting directory probes and failing selected
// operations with EACCES
type faultFs struct {
	afero.Fs

	failCreate func(name string) bool
	failRename func(oldname, newname string) bool
	failMkdir  func(name string) bool

	mu     sync.Mutex
	stats  map[string]int
	mkdirs map[string]int
}

func newFaultFs(base afero.Fs) *faultFs {
	return &faultFs{
		Fs:     base,
		stats:  make(map[string]int),
		mkdirs: make(map[string]int),
	}
}

func denied(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: syscall.EACCES}
}

func (f *faultFs) Create(name string) (afero.File, error) {
	if f.failCreate != nil && f.failCreate(name) {
		return nil, denied("open", name)
	}
	return f.Fs.Create(name)
}

func (f *faultFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && f.failCreate != nil && f.failCreate(name) {
		return nil, denied("open", name)
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *faultFs) Rename(oldname, newname string) error {
	if f.failRename != nil && f.failRename(oldname, newname) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EACCES}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultFs) Mkdir(name string, perm os.FileMode) error {
	f.mu.Lock()
	f.mkdirs[name]++
	f.mu.Unlock()
	if f.failMkdir != nil && f.failMkdir(name) {
		return denied("mkdir", name)
	}
	return f.Fs.Mkdir(name, perm)
}

func (f *faultFs) Stat(name string) (os.FileInfo, error) {
	f.mu.Lock()
	f.stats[name]++
	f.mu.Unlock()
	return f.Fs.Stat(name)
}

func writeFile(t *testing.T, fsys afero.Fs, path string, content []byte) {
	t.Helper()

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := afero.WriteFile(fsys, path, content, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()

	ok, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("Failed to stat %s: %v", path, err)
	}
	return ok
}

// captureLog redirects the diagnostic channel into a buffer for the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	util.SetLogOutput(&buf)
	t.Cleanup(func() { util.SetLogOutput(os.Stderr) })
	return &buf
}
