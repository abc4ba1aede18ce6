package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Paths are cleaned and
// treated as absolute; relative paths are resolved against the mock's working
// directory.
type MockFileSystem struct {
	nodes map[string]*mockNode
	cwd   string

	// ReadFileErrors forces ReadFile to fail for specific paths.
	ReadFileErrors map[string]error
}

type mockNode struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

func (n *mockNode) isDir() bool { return n.mode.IsDir() }

// mockInfo implements fs.FileInfo and fs.DirEntry at once.
type mockInfo struct {
	name string
	node *mockNode
}

func (m mockInfo) Name() string               { return m.name }
func (m mockInfo) Size() int64                { return int64(len(m.node.content)) }
func (m mockInfo) Mode() fs.FileMode          { return m.node.mode }
func (m mockInfo) ModTime() time.Time         { return m.node.modTime }
func (m mockInfo) IsDir() bool                { return m.node.isDir() }
func (m mockInfo) Sys() interface{}           { return nil }
func (m mockInfo) Type() fs.FileMode          { return m.node.mode.Type() }
func (m mockInfo) Info() (fs.FileInfo, error) { return m, nil }

// NewMockFileSystem creates an empty MockFileSystem rooted at "/".
func NewMockFileSystem() *MockFileSystem {
	mfs := &MockFileSystem{
		nodes:          make(map[string]*mockNode),
		cwd:            "/",
		ReadFileErrors: make(map[string]error),
	}
	mfs.nodes["/"] = &mockNode{mode: fs.ModeDir | 0755, modTime: time.Now()}
	return mfs
}

func (mfs *MockFileSystem) clean(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(mfs.cwd, path)
	}
	return filepath.Clean(path)
}

// AddFile adds a file, creating missing parent directories.
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	p := mfs.clean(path)
	mfs.AddDir(filepath.Dir(p))
	mfs.nodes[p] = &mockNode{content: content, mode: 0644, modTime: time.Now()}
}

// AddDir adds a directory and its parents.
func (mfs *MockFileSystem) AddDir(path string) {
	p := mfs.clean(path)
	for {
		if _, ok := mfs.nodes[p]; !ok {
			mfs.nodes[p] = &mockNode{mode: fs.ModeDir | 0755, modTime: time.Now()}
		}
		parent := filepath.Dir(p)
		if parent == p {
			return
		}
		p = parent
	}
}

// SetCurrentDir sets the directory relative paths are resolved against.
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.cwd = filepath.Clean(dir)
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	p := mfs.clean(path)
	if err, ok := mfs.ReadFileErrors[p]; ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	node, ok := mfs.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if node.isDir() {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}
	return append([]byte(nil), node.content...), nil
}

// ReadDir lists the direct children of path sorted by name, like os.ReadDir.
func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	p := mfs.clean(path)
	node, ok := mfs.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !node.isDir() {
		return nil, &fs.PathError{Op: "readdirent", Path: path, Err: errors.New("not a directory")}
	}

	var entries []fs.DirEntry
	for candidate, child := range mfs.nodes {
		if candidate == p || filepath.Dir(candidate) != p {
			continue
		}
		entries = append(entries, mockInfo{name: filepath.Base(candidate), node: child})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	p := mfs.clean(path)
	for dir := p; ; dir = filepath.Dir(dir) {
		if node, ok := mfs.nodes[dir]; ok && !node.isDir() {
			return &fs.PathError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	mfs.AddDir(p)
	return nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, ok := mfs.nodes[mfs.clean(path)]
	return ok
}

func (mfs *MockFileSystem) IsDir(path string) bool {
	node, ok := mfs.nodes[mfs.clean(path)]
	return ok && node.isDir()
}

func (mfs *MockFileSystem) Abs(path string) (string, error) {
	return mfs.clean(path), nil
}

// Paths returns every path in the mock, sorted (for debugging and assertions).
func (mfs *MockFileSystem) Paths() []string {
	paths := make([]string, 0, len(mfs.nodes))
	for p := range mfs.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Tree renders the mock as an indented listing.
func (mfs *MockFileSystem) Tree() string {
	var b strings.Builder
	for _, p := range mfs.Paths() {
		depth := strings.Count(p, string(filepath.Separator))
		if p == "/" {
			depth = 0
		}
		name := filepath.Base(p)
		if mfs.nodes[p].isDir() && p != "/" {
			name += "/"
		}
		b.WriteString(strings.Repeat("  ", depth) + name + "\n")
	}
	return b.String()
}
