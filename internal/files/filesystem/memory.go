package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ErrInjectedRead is returned by readers of files added with AddFailingFile.
var ErrInjectedRead = errors.New("injected read failure")

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryFile implements File interface for in-memory files
type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    fs.FileInfo

	// failAfter >= 0 makes reads fail once that many bytes were served
	failAfter int
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	entries := d.fs.getEntriesUnder(d.absPath)

	// Sort by path for deterministic order
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})

	for _, entry := range entries {
		rel := strings.TrimPrefix(entry.absPath, d.absPath)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			rel = "."
		}
		view := &memoryFile{absPath: entry.absPath, relPath: rel, info: entry.info}

		var callbackErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					callbackErr = fmt.Errorf("walk callback panicked at %s: %v", entry.absPath, r)
				}
			}()

			callbackErr = fn(view, nil)
		}()

		if callbackErr != nil {
			return callbackErr
		}
	}

	return nil
}

// memoryReader serves file content and reports Close back to the filesystem
type memoryReader struct {
	fs        *MemoryFileSystem
	content   []byte
	pos       int
	failAfter int
	closed    bool
}

func (r *memoryReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, fs.ErrClosed
	}
	limit := len(r.content)
	if r.failAfter >= 0 && r.failAfter < limit {
		limit = r.failAfter
	}
	if r.pos >= limit {
		if r.failAfter >= 0 && r.failAfter < len(r.content) {
			return 0, ErrInjectedRead
		}
		return 0, io.EOF
	}
	n := copy(p, r.content[r.pos:limit])
	r.pos += n
	return n, nil
}

func (r *memoryReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.fs.mu.Lock()
	r.fs.openHandles--
	r.fs.mu.Unlock()
	return nil
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// It counts opened and still-open readers so tests can assert that every
// handle was released.
type MemoryFileSystem struct {
	mu          sync.Mutex
	files       map[string]*memoryFile // map of absolute path -> file
	root        string                 // root directory path
	opens       int
	openHandles int
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}

	mfs.files[root] = &memoryFile{
		absPath:   root,
		relPath:   ".",
		failAfter: -1,
		info: &memoryFileInfo{
			name:    path.Base(root),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	return mfs
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.addFile(filePath, content, -1)
}

// AddFailingFile adds a file whose readers fail with ErrInjectedRead after
// failAfter bytes have been served.
func (mfs *MemoryFileSystem) AddFailingFile(filePath string, content string, failAfter int) {
	mfs.addFile(filePath, content, failAfter)
}

func (mfs *MemoryFileSystem) addFile(filePath string, content string, failAfter int) {
	absPath := mfs.resolve(filePath)
	contentBytes := []byte(content)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.files[absPath] = &memoryFile{
		absPath:   absPath,
		relPath:   strings.TrimPrefix(absPath, mfs.root+"/"),
		content:   contentBytes,
		failAfter: failAfter,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(contentBytes)),
			mode:    0644,
			modTime: time.Now(),
		},
	}

	mfs.ensureDirectoriesExist(absPath)
}

// Opens returns how many readers were opened so far.
func (mfs *MemoryFileSystem) Opens() int {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	return mfs.opens
}

// OpenHandles returns how many readers are currently open.
func (mfs *MemoryFileSystem) OpenHandles() int {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	return mfs.openHandles
}

// resolve maps a caller path onto an absolute virtual path
func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "." || p == "" {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureDirectoriesExist creates directory entries for all parent directories.
// Caller holds mfs.mu.
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == mfs.root {
		return
	}

	if _, exists := mfs.files[dir]; exists {
		return
	}

	mfs.files[dir] = &memoryFile{
		absPath:   dir,
		relPath:   strings.TrimPrefix(dir, mfs.root+"/"),
		failAfter: -1,
		info: &memoryFileInfo{
			name:    path.Base(dir),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	mfs.ensureDirectoriesExist(dir)
}

// getEntriesUnder returns all files and directories under the given path
func (mfs *MemoryFileSystem) getEntriesUnder(basePath string) []*memoryFile {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	var entries []*memoryFile
	for p, file := range mfs.files {
		var matched bool
		if basePath == "/" {
			matched = strings.HasPrefix(p, "/")
		} else {
			matched = p == basePath || strings.HasPrefix(p, basePath+"/")
		}
		if matched {
			entries = append(entries, file)
		}
	}

	return entries
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.resolve(openPath)

	mfs.mu.Lock()
	file, exists := mfs.files[absPath]
	mfs.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("directory not found: %s: %w", openPath, fs.ErrNotExist)
	}
	if !file.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}

	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

// OpenFile implements FileSystemProvider.OpenFile
func (mfs *MemoryFileSystem) OpenFile(filePath string) (io.ReadCloser, error) {
	absPath := mfs.resolve(filePath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	if file.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s: %w", filePath, syscall.EISDIR)
	}

	mfs.opens++
	mfs.openHandles++
	return &memoryReader{fs: mfs, content: file.content, failAfter: file.failAfter}, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	absPath := mfs.resolve(statPath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: statPath, Err: fs.ErrNotExist}
	}

	return file.info, nil
}
