// In-memory sdk.Host fakes shared by the device-side packages' tests.
package xtctest

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/jpl-au/xtc/sdk"
)

// MemFS is an in-memory sdk.Filesystem. Paths are flat strings; a
// directory exists when any file lives under it or it was explicitly
// created.
type MemFS struct {
	Files     map[string][]byte
	Dirs      map[string]bool
	Unmounted bool
	MountErr  error
}

func NewMemFS() *MemFS {
	return &MemFS{Files: map[string][]byte{}, Dirs: map[string]bool{}}
}

func (fs *MemFS) Mounted() bool { return !fs.Unmounted }

func (fs *MemFS) Mount() error {
	if fs.MountErr != nil {
		return fs.MountErr
	}
	fs.Unmounted = false
	return nil
}

func (fs *MemFS) Open(path string) (sdk.File, error) {
	data, ok := fs.Files[path]
	if !ok {
		return nil, sdk.ErrNotFound
	}
	return &memFile{fs: fs, path: path, r: bytes.NewReader(data)}, nil
}

func (fs *MemFS) Create(path string) (sdk.File, error) {
	f := &memFile{fs: fs, path: path, w: new(bytes.Buffer), writing: true}
	return f, nil
}

func (fs *MemFS) Remove(path string) error {
	if _, ok := fs.Files[path]; !ok {
		return sdk.ErrNotFound
	}
	delete(fs.Files, path)
	return nil
}

func (fs *MemFS) MkdirAll(path string) error {
	fs.Dirs[path] = true
	return nil
}

func (fs *MemFS) ReadDir(path string) ([]sdk.DirEntry, error) {
	prefix := path + "/"
	seen := map[string]bool{}
	var out []sdk.DirEntry
	for p := range fs.Files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, sdk.DirEntry{Name: name, IsDir: isDir})
	}
	for p := range fs.Dirs {
		if strings.HasPrefix(p, prefix) {
			rest := strings.TrimPrefix(p, prefix)
			name, _, _ := strings.Cut(rest, "/")
			if !seen[name] {
				seen[name] = true
				out = append(out, sdk.DirEntry{Name: name, IsDir: true})
			}
		}
	}
	if len(out) == 0 && !fs.Dirs[path] {
		return nil, sdk.ErrNotFound
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memFile struct {
	fs      *MemFS
	path    string
	r       *bytes.Reader
	w       *bytes.Buffer
	writing bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.writing {
		return 0, errors.New("file open for writing")
	}
	return f.r.Read(p)
}

func (f *memFile) Write(p []byte) (int, error) {
	if !f.writing {
		return 0, errors.New("file open for reading")
	}
	return f.w.Write(p)
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.writing {
		return 0, errors.New("seek on write handle")
	}
	return f.r.Seek(offset, whence)
}

func (f *memFile) Close() error {
	if f.writing {
		f.fs.Files[f.path] = f.w.Bytes()
	}
	return nil
}

// MemKV is an in-memory sdk.KV with commit semantics.
type MemKV struct {
	Committed map[string]uint32
	pending   map[string]uint32
	OpenErr   error
}

func NewMemKV() *MemKV {
	return &MemKV{Committed: map[string]uint32{}, pending: map[string]uint32{}}
}

func (kv *MemKV) Open(namespace string, readOnly bool) (sdk.KVHandle, error) {
	if kv.OpenErr != nil {
		return nil, kv.OpenErr
	}
	return kv, nil
}

func (kv *MemKV) GetU32(key string) (uint32, bool) {
	v, ok := kv.Committed[key]
	return v, ok
}

func (kv *MemKV) SetU32(key string, value uint32) error {
	kv.pending[key] = value
	return nil
}

func (kv *MemKV) Commit() error {
	for k, v := range kv.pending {
		kv.Committed[k] = v
	}
	kv.pending = map[string]uint32{}
	return nil
}

func (kv *MemKV) Close() {}

// Display records draw calls for assertions.
type Display struct {
	W, H    int
	Fills   int
	Pushes  int
	XTH     int
	Texts   []string
	Updates int
}

func (d *Display) Size() (int, int)                       { return d.W, d.H }
func (d *Display) FillScreen(sdk.Color)                   { d.Fills++ }
func (d *Display) HLine(int, int, int, sdk.Color)         {}
func (d *Display) VLine(int, int, int, sdk.Color)         {}
func (d *Display) FillRect(int, int, int, int, sdk.Color) {}
func (d *Display) DrawRect(int, int, int, int, sdk.Color) {}
func (d *Display) PushImage1bpp(int, int, int, int, []byte, [2]sdk.Color) {
	d.Pushes++
}
func (d *Display) DrawXTH([]byte) error { d.XTH++; return nil }
func (d *Display) SetFont(string) error { return nil }
func (d *Display) DrawText(_, _ int, s string, _ sdk.Color) {
	d.Texts = append(d.Texts, s)
}
func (d *Display) TextWidth(s string) int { return 6 * len(s) }
func (d *Display) Update()                { d.Updates++ }

// Logger discards everything.
type Logger struct{}

func (Logger) Debugf(string, ...any) {}
func (Logger) Infof(string, ...any)  {}
func (Logger) Errorf(string, ...any) {}
