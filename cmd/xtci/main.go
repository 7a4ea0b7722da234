// Command xtci inspects, verifies, and packages XTC/XTCH e-book
// containers on a host machine. It shares the container reader, catalog
// codec, and XTH decoder with the device firmware, so what xtci accepts is
// exactly what the device will accept.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/jpl-au/xtc"
	"github.com/jpl-au/xtc/catalog"
	"github.com/jpl-au/xtc/internal/library"
	"github.com/jpl-au/xtc/internal/render"
)

// CLI is the command tree.
var CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Info        InfoCmd        `cmd:"" help:"Show container header and metadata."`
	Ls          LsCmd          `cmd:"" help:"List the books in a directory."`
	Toc         TocCmd         `cmd:"" help:"Show the chapter list."`
	Extract     ExtractCmd     `cmd:"" help:"Extract a page as a netpbm image."`
	Fingerprint FingerprintCmd `cmd:"" help:"Fingerprint a container and its pages."`
	Bundle      BundleCmd      `cmd:"" help:"Pack books into a compressed transfer bundle."`
	Unbundle    UnbundleCmd    `cmd:"" help:"Unpack and verify a transfer bundle."`
	Catalog     CatalogCmd     `cmd:"" help:"Decode a device catalog file."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("xtci"),
		kong.Description("XTC/XTCH container tool"),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx.FatalIfErrorf(ctx.Run())
}

// openContainer opens path and parses its header. The caller closes the
// file.
func openContainer(path string) (*os.File, *xtc.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := xtc.Open(xtc.NewIOStream(f))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, r, nil
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// InfoCmd prints the parsed header and metadata of one container.
type InfoCmd struct {
	File string `arg:"" type:"existingfile" help:"Container file."`
	JSON bool   `help:"Emit JSON."`
}

type bookInfo struct {
	File     string `json:"file"`
	Format   string `json:"format"`
	Version  string `json:"version"`
	Pages    int    `json:"pages"`
	BitDepth int    `json:"bit_depth"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Chapters int    `json:"chapters"`
}

func (c *InfoCmd) Run() error {
	f, r, err := openContainer(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := r.Header()
	info := bookInfo{
		File:     c.File,
		Format:   "XTC",
		Version:  fmt.Sprintf("%d.%d", hdr.VersionMajor, hdr.VersionMinor),
		Pages:    r.PageCount(),
		BitDepth: r.BitDepth(),
	}
	if r.BitDepth() == 2 {
		info.Format = "XTCH"
	}

	var m xtc.Metadata
	if err := r.ReadMetadata(&m); err != nil {
		return err
	}
	info.Title = string(m.Title())
	info.Author = string(m.Author())

	err = r.ForEachChapter(func([]byte, int, int) error {
		info.Chapters++
		return nil
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return emitJSON(info)
	}
	fmt.Printf("%s: %s v%s, %d pages, %d-bit\n", info.File, info.Format, info.Version, info.Pages, info.BitDepth)
	if info.Title != "" {
		fmt.Printf("  title:    %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("  author:   %s\n", info.Author)
	}
	if info.Chapters > 0 {
		fmt.Printf("  chapters: %d\n", info.Chapters)
	}
	return nil
}

// LsCmd lists the books in a directory the way the device library scan
// would see them.
type LsCmd struct {
	Dir  string `arg:"" type:"existingdir" help:"Books directory."`
	JSON bool   `help:"Emit JSON."`
}

func (c *LsCmd) Run() error {
	dirents, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}

	var books []bookInfo
	for _, de := range dirents {
		if de.IsDir() || !library.IsBookName(de.Name()) {
			continue
		}
		path := c.Dir + "/" + de.Name()
		f, r, err := openContainer(path)
		if err != nil {
			slog.Warn("skipping unreadable book", "file", path, "err", err)
			continue
		}
		info := bookInfo{File: de.Name(), Format: "XTC", Pages: r.PageCount(), BitDepth: r.BitDepth()}
		if r.BitDepth() == 2 {
			info.Format = "XTCH"
		}
		var m xtc.Metadata
		if err := r.ReadMetadata(&m); err == nil {
			info.Title = string(m.Title())
			info.Author = string(m.Author())
		}
		f.Close()
		books = append(books, info)
	}

	if c.JSON {
		return emitJSON(books)
	}
	for _, b := range books {
		title := b.Title
		if title == "" {
			title = b.File
		}
		fmt.Printf("%-40s %-24s %4d pages  %s\n", title, b.Author, b.Pages, b.Format)
	}
	return nil
}

// TocCmd prints the chapter list with 0-based page ranges.
type TocCmd struct {
	File string `arg:"" type:"existingfile" help:"Container file."`
}

func (c *TocCmd) Run() error {
	f, r, err := openContainer(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	n := 0
	err = r.ForEachChapter(func(name []byte, start, end int) error {
		n++
		fmt.Printf("%3d  %-60s %d-%d\n", n, name, start, end)
		return nil
	})
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("no chapters")
	}
	return nil
}

// ExtractCmd writes one page as a netpbm image: P4 (packed 1-bit, the
// bitwise complement of the XTG payload) or P5 gray from the decoded XTH
// planes.
type ExtractCmd struct {
	File string `arg:"" type:"existingfile" help:"Container file."`
	Page int    `arg:"" help:"0-based page index."`
	Out  string `short:"o" required:"" help:"Output image path."`
}

func (c *ExtractCmd) Run() error {
	f, r, err := openContainer(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := r.PageEntry(c.Page)
	if err != nil {
		return err
	}
	payload, err := xtc.PayloadSize(entry.Width, entry.Height, r.BitDepth())
	if err != nil {
		return err
	}
	buf := make([]byte, payload)
	if _, err := r.LoadPage(c.Page, buf); err != nil {
		return err
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if r.BitDepth() == 1 {
		// XTG rows are byte-aligned MSB-first, exactly PBM's raster,
		// except PBM wants 1 = black.
		for i := range buf {
			buf[i] = ^buf[i]
		}
		if _, err := fmt.Fprintf(out, "P4\n%d %d\n", entry.Width, entry.Height); err != nil {
			return err
		}
		_, err = out.Write(buf)
		return err
	}

	pixels, err := render.DecodeXTH(buf, int(entry.Width), int(entry.Height))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "P5\n%d %d\n255\n", entry.Width, entry.Height); err != nil {
		return err
	}
	_, err = out.Write(pixels)
	return err
}

// CatalogCmd decodes a device catalog.bin.
type CatalogCmd struct {
	Dump CatalogDumpCmd `cmd:"" help:"Decode a catalog file."`
}

type CatalogDumpCmd struct {
	File string `arg:"" type:"existingfile" help:"catalog.bin path."`
	JSON bool   `help:"Emit JSON."`
}

func (c *CatalogDumpCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	records := make([]catalog.Record, catalog.MaxBooks)
	n, err := catalog.Decode(data, records)
	if err != nil {
		return err
	}
	records = records[:n]

	if c.JSON {
		return emitJSON(records)
	}
	for _, r := range records {
		fmt.Printf("%-40s %-24s %4d pages  %3d%%  %s\n", r.Title, r.Author, r.PageCount, r.Progress, r.Filename)
	}
	return nil
}
