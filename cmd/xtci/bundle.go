// Transfer bundles.
//
// A bundle is a zstd-compressed tar whose first entry is a JSON manifest
// of xxh3 checksums. Bundles exist for moving books between machines and
// onto cards; the device format itself stays uncompressed, so unbundling
// always yields files the reader can stream directly.
package main

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

const bundleManifest = "manifest.json"

type bundleEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	XXH3 string `json:"xxh3"`
}

// BundleCmd packs book files into a bundle.
type BundleCmd struct {
	Files []string `arg:"" type:"existingfile" help:"Book files to pack."`
	Out   string   `short:"o" required:"" help:"Output bundle path."`
}

func (c *BundleCmd) Run() error {
	type packed struct {
		entry bundleEntry
		data  []byte
	}
	var files []packed
	var manifest []bundleEntry
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		e := bundleEntry{
			Name: filepath.Base(path),
			Size: int64(len(data)),
			XXH3: fmt.Sprintf("%016x", xxh3.Hash(data)),
		}
		files = append(files, packed{e, data})
		manifest = append(manifest, e)
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	if err := writeTarFile(tw, bundleManifest, manifestData); err != nil {
		return err
	}
	for _, f := range files {
		if err := writeTarFile(tw, f.entry.Name, f.data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	slog.Info("bundle written", "path", c.Out, "books", len(files))
	return nil
}

func writeTarFile(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(data))}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// UnbundleCmd unpacks a bundle, verifying every checksum before writing.
type UnbundleCmd struct {
	In  string `arg:"" type:"existingfile" help:"Bundle path."`
	Dir string `short:"C" default:"." help:"Destination directory."`
}

func (c *UnbundleCmd) Run() error {
	in, err := os.Open(c.In)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()
	tr := tar.NewReader(zr)

	hdr, err := tr.Next()
	if err != nil {
		return fmt.Errorf("not a bundle: %w", err)
	}
	if hdr.Name != bundleManifest {
		return errors.New("not a bundle: manifest missing")
	}
	manifestData, err := io.ReadAll(tr)
	if err != nil {
		return err
	}
	var manifest []bundleEntry
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return fmt.Errorf("bad manifest: %w", err)
	}
	byName := make(map[string]bundleEntry, len(manifest))
	for _, e := range manifest {
		byName[e.Name] = e
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.ContainsAny(hdr.Name, "/\\") {
			return fmt.Errorf("refusing entry with path separators: %q", hdr.Name)
		}
		want, ok := byName[hdr.Name]
		if !ok {
			return fmt.Errorf("entry %q not in manifest", hdr.Name)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		got := fmt.Sprintf("%016x", xxh3.Hash(data))
		if got != want.XXH3 || int64(len(data)) != want.Size {
			return fmt.Errorf("%s: checksum mismatch (got %s, want %s)", hdr.Name, got, want.XXH3)
		}

		dst := filepath.Join(c.Dir, hdr.Name)
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}
		slog.Info("extracted", "file", dst, "bytes", len(data))
	}
}
