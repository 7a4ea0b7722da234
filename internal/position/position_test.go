package position

import (
	"errors"
	"strings"
	"testing"

	"github.com/jpl-au/xtc/sdk"
)

// fakeKV is an in-memory sdk.KV. failOpen/failSet/failCommit inject
// faults; commits snapshot the pending writes so tests can verify the
// commit-before-return contract.
type fakeKV struct {
	committed  map[string]uint32
	pending    map[string]uint32
	failOpen   bool
	failSet    bool
	failCommit bool
	opens      int
	readOnly   bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{committed: map[string]uint32{}, pending: map[string]uint32{}}
}

func (f *fakeKV) Open(namespace string, readOnly bool) (sdk.KVHandle, error) {
	if namespace != Namespace {
		return nil, errors.New("unknown namespace")
	}
	if f.failOpen {
		return nil, errors.New("nvs open failed")
	}
	f.opens++
	f.readOnly = readOnly
	return f, nil
}

func (f *fakeKV) GetU32(key string) (uint32, bool) {
	v, ok := f.committed[key]
	return v, ok
}

func (f *fakeKV) SetU32(key string, value uint32) error {
	if f.failSet {
		return errors.New("nvs set failed")
	}
	f.pending[key] = value
	return nil
}

func (f *fakeKV) Commit() error {
	if f.failCommit {
		return errors.New("nvs commit failed")
	}
	for k, v := range f.pending {
		f.committed[k] = v
	}
	f.pending = map[string]uint32{}
	return nil
}

func (f *fakeKV) Close() {}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

func TestKeyShape(t *testing.T) {
	key := Key("moby-dick.xtc")

	if key[0] != 'p' {
		t.Errorf("key[0] = %q, want 'p'", key[0])
	}
	if key[KeySize] != 0 {
		t.Errorf("key[%d] = %#x, want NUL", KeySize, key[KeySize])
	}
	for _, c := range key[1:KeySize] {
		if !strings.ContainsRune("0123456789abcdef", rune(c)) {
			t.Errorf("key digit %q not lowercase hex", c)
		}
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("moby-dick.xtc")
	b := Key("moby-dick.xtc")
	if a != b {
		t.Errorf("Key not deterministic: %q vs %q", a, b)
	}
}

func TestKeyVariesWithName(t *testing.T) {
	if Key("a.xtc") == Key("b.xtc") {
		t.Error("different names produced the same key")
	}
}

func TestSaveThenLoad(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, nopLogger{})

	s.Save("moby-dick.xtc", 42)
	page, ok := s.Load("moby-dick.xtc")
	if !ok || page != 42 {
		t.Errorf("Load = (%d, %v), want (42, true)", page, ok)
	}
}

// Save must commit before returning; the page turn ordering guarantee
// depends on it.
func TestSaveCommits(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, nopLogger{})

	s.Save("book.xtc", 7)
	if len(kv.pending) != 0 {
		t.Error("Save returned with uncommitted writes")
	}
	key := Key("book.xtc")
	if _, ok := kv.committed[string(key[:KeySize])]; !ok {
		t.Error("value not committed under the derived key")
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(newFakeKV(), nopLogger{})

	if _, ok := s.Load("never-read.xtc"); ok {
		t.Error("Load of unknown book reported a value")
	}
}

func TestEmptyNameIgnored(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, nopLogger{})

	s.Save("", 3)
	if kv.opens != 0 {
		t.Error("Save with empty name touched the KV store")
	}
	if _, ok := s.Load(""); ok {
		t.Error("Load with empty name reported a value")
	}
}

// Open, set, and commit failures are all swallowed; reading back simply
// misses.
func TestSaveFailuresSwallowed(t *testing.T) {
	for _, tt := range []struct {
		name string
		set  func(*fakeKV)
	}{
		{"open", func(f *fakeKV) { f.failOpen = true }},
		{"set", func(f *fakeKV) { f.failSet = true }},
		{"commit", func(f *fakeKV) { f.failCommit = true }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			tt.set(kv)
			s := New(kv, nopLogger{})

			s.Save("book.xtc", 5)
			if _, ok := s.Load("book.xtc"); ok {
				t.Error("failed save still produced a readable value")
			}
		})
	}
}

func TestLoadUsesReadOnlyNamespace(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, nopLogger{})

	s.Load("book.xtc")
	if !kv.readOnly {
		t.Error("Load opened the namespace read-write")
	}
}
