// Container fingerprinting.
//
// Fingerprints identify a book across transfers without trusting
// filenames. Three algorithms are supported: xxh3 (default, fastest),
// fnv1a (no dependencies, for comparison against other tooling), and
// blake2b truncated to 64 bits (best distribution). The digest is always
// printed as 16 hex characters regardless of algorithm.
package main

import (
	"fmt"
	"hash/fnv"
	"os"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"

	"github.com/jpl-au/xtc"
)

// Fingerprint algorithm names.
const (
	AlgXXH3    = "xxh3"
	AlgFNV1a   = "fnv1a"
	AlgBlake2b = "blake2b"
)

// digest hashes data with the named algorithm into 16 hex characters.
func digest(data []byte, alg string) (string, error) {
	switch alg {
	case AlgXXH3:
		return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64()), nil
	case AlgBlake2b:
		h, err := blake2b.New(8, nil) // 8 bytes = 64 bits
		if err != nil {
			return "", err
		}
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil)), nil
	default:
		return "", fmt.Errorf("unknown algorithm %q", alg)
	}
}

// FingerprintCmd digests a container file and, optionally, every page
// payload.
type FingerprintCmd struct {
	File  string `arg:"" type:"existingfile" help:"Container file."`
	Alg   string `default:"xxh3" enum:"xxh3,fnv1a,blake2b" help:"Digest algorithm."`
	Pages bool   `help:"Also fingerprint each page payload."`
	JSON  bool   `help:"Emit JSON."`
}

type fileFingerprint struct {
	File  string   `json:"file"`
	Alg   string   `json:"alg"`
	Whole string   `json:"whole"`
	Pages []string `json:"pages,omitempty"`
}

func (c *FingerprintCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	whole, err := digest(data, c.Alg)
	if err != nil {
		return err
	}
	fp := fileFingerprint{File: c.File, Alg: c.Alg, Whole: whole}

	if c.Pages {
		f, r, err := openContainer(c.File)
		if err != nil {
			return err
		}
		defer f.Close()

		var buf []byte
		for i := 0; i < r.PageCount(); i++ {
			entry, err := r.PageEntry(i)
			if err != nil {
				return err
			}
			need, err := xtc.PayloadSize(entry.Width, entry.Height, r.BitDepth())
			if err != nil {
				return err
			}
			if cap(buf) < need {
				buf = make([]byte, need)
			}
			n, err := r.LoadPage(i, buf[:need])
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			d, err := digest(buf[:n], c.Alg)
			if err != nil {
				return err
			}
			fp.Pages = append(fp.Pages, d)
		}
	}

	if c.JSON {
		return emitJSON(fp)
	}
	fmt.Printf("%s  %s  %s\n", fp.Whole, fp.Alg, fp.File)
	for i, d := range fp.Pages {
		fmt.Printf("%s  page %d\n", d, i)
	}
	return nil
}
