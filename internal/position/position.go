// Package position persists the last-read page index per book in the
// host's non-volatile key-value store.
//
// NVS keys are short, so the book's filename is not usable directly.
// Instead the key is "p" plus the lowercase-hex Jenkins one-at-a-time hash
// of the filename: deterministic across runs, 9 characters, NUL-terminated
// in its 10-byte buffer. A 32-bit hash can collide; the cost is cosmetic
// (wrong resume position), so collisions are accepted.
//
// Persistence is best-effort: a failed write is swallowed after logging,
// and the next start simply tolerates a missing value.
package position

import (
	"encoding/hex"

	"github.com/jpl-au/xtc/sdk"
)

// Namespace is the NVS namespace holding all reading positions.
const Namespace = "xtc_reader"

// KeySize is the length of the key string excluding its NUL terminator.
const KeySize = 9

// Key derives the NVS key buffer for a book filename: 'p', eight lowercase
// hex digits of the name hash, and a NUL terminator.
func Key(name string) [KeySize + 1]byte {
	var key [KeySize + 1]byte
	key[0] = 'p'
	var h [4]byte
	sum := jenkins([]byte(name))
	h[0] = byte(sum >> 24)
	h[1] = byte(sum >> 16)
	h[2] = byte(sum >> 8)
	h[3] = byte(sum)
	hex.Encode(key[1:KeySize], h[:])
	return key
}

// jenkins is the one-at-a-time hash over the raw filename bytes. The value
// is part of the on-device key format and must never change.
func jenkins(data []byte) uint32 {
	var h uint32
	for _, b := range data {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

// Store reads and writes positions through the host KV capability.
type Store struct {
	kv  sdk.KV
	log sdk.Logger
}

func New(kv sdk.KV, log sdk.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Load returns the saved page index for name, or false when the name is
// empty, the namespace cannot be opened, or no value was ever stored.
func (s *Store) Load(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	h, err := s.kv.Open(Namespace, true)
	if err != nil {
		return 0, false
	}
	defer h.Close()

	key := Key(name)
	return h.GetU32(string(key[:KeySize]))
}

// Save persists the page index for name and commits before returning, so a
// crash after a page turn resumes on the page about to be shown. Failures
// are logged and swallowed.
func (s *Store) Save(name string, page uint32) {
	if name == "" {
		return
	}
	h, err := s.kv.Open(Namespace, false)
	if err != nil {
		s.log.Errorf("position: open %s: %v", Namespace, err)
		return
	}
	defer h.Close()

	key := Key(name)
	if err := h.SetU32(string(key[:KeySize]), page); err != nil {
		s.log.Errorf("position: save %s: %v", name, err)
		return
	}
	if err := h.Commit(); err != nil {
		s.log.Errorf("position: commit %s: %v", name, err)
	}
}
