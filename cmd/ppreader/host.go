//go:build wasip1

// Bindings from the sdk capability interfaces onto the host's imported
// functions. Strings and buffers cross the boundary as (pointer, length)
// pairs into linear memory; handles are plain int32s owned by the host.
package main

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/jpl-au/xtc/sdk"
)

// --- display imports ---

//go:wasmimport env pp_display_fill
func impDisplayFill(color int32)

//go:wasmimport env pp_display_hline
func impDisplayHLine(x, y, w, color int32)

//go:wasmimport env pp_display_vline
func impDisplayVLine(x, y, h, color int32)

//go:wasmimport env pp_display_fill_rect
func impDisplayFillRect(x, y, w, h, color int32)

//go:wasmimport env pp_display_draw_rect
func impDisplayDrawRect(x, y, w, h, color int32)

//go:wasmimport env pp_display_push_1bpp
func impDisplayPush1bpp(x, y, w, h int32, data unsafe.Pointer, dataLen, pal0, pal1 int32)

//go:wasmimport env pp_display_draw_xth
func impDisplayDrawXTH(blob unsafe.Pointer, blobLen int32) int32

//go:wasmimport env pp_display_set_font
func impDisplaySetFont(name unsafe.Pointer, nameLen int32) int32

//go:wasmimport env pp_display_draw_text
func impDisplayDrawText(x, y int32, text unsafe.Pointer, textLen, color int32)

//go:wasmimport env pp_display_text_width
func impDisplayTextWidth(text unsafe.Pointer, textLen int32) int32

//go:wasmimport env pp_display_update
func impDisplayUpdate()

// --- filesystem imports ---

//go:wasmimport env pp_fs_mounted
func impFSMounted() int32

//go:wasmimport env pp_fs_mount
func impFSMount() int32

//go:wasmimport env pp_fs_open
func impFSOpen(path unsafe.Pointer, pathLen, writable int32) int32

//go:wasmimport env pp_fs_read
func impFSRead(fd int32, buf unsafe.Pointer, bufLen int32) int32

//go:wasmimport env pp_fs_write
func impFSWrite(fd int32, buf unsafe.Pointer, bufLen int32) int32

//go:wasmimport env pp_fs_seek
func impFSSeek(fd int32, offset int64, whence int32) int64

//go:wasmimport env pp_fs_close
func impFSClose(fd int32) int32

//go:wasmimport env pp_fs_remove
func impFSRemove(path unsafe.Pointer, pathLen int32) int32

//go:wasmimport env pp_fs_mkdir
func impFSMkdir(path unsafe.Pointer, pathLen int32) int32

//go:wasmimport env pp_fs_dir_open
func impFSDirOpen(path unsafe.Pointer, pathLen int32) int32

//go:wasmimport env pp_fs_dir_next
func impFSDirNext(dir int32, name unsafe.Pointer, nameCap int32, isDir unsafe.Pointer) int32

//go:wasmimport env pp_fs_dir_close
func impFSDirClose(dir int32)

// --- non-volatile KV imports ---

//go:wasmimport env pp_nvs_open
func impNVSOpen(ns unsafe.Pointer, nsLen, readOnly int32) int32

//go:wasmimport env pp_nvs_get_u32
func impNVSGetU32(h int32, key unsafe.Pointer, keyLen int32, out unsafe.Pointer) int32

//go:wasmimport env pp_nvs_set_u32
func impNVSSetU32(h int32, key unsafe.Pointer, keyLen, value int32) int32

//go:wasmimport env pp_nvs_commit
func impNVSCommit(h int32) int32

//go:wasmimport env pp_nvs_close
func impNVSClose(h int32)

// --- log import ---

//go:wasmimport env pp_log
func impLog(level int32, msg unsafe.Pointer, msgLen int32)

func strArgs(s string) (unsafe.Pointer, int32) {
	if s == "" {
		return nil, 0
	}
	return unsafe.Pointer(unsafe.StringData(s)), int32(len(s))
}

func bufArgs(b []byte) (unsafe.Pointer, int32) {
	if len(b) == 0 {
		return nil, 0
	}
	return unsafe.Pointer(&b[0]), int32(len(b))
}

func logError(msg string) {
	p, n := strArgs(msg)
	impLog(2, p, n)
}

// bindHost assembles the sdk.Host for the shell.
func bindHost(w, h int) sdk.Host {
	return sdk.Host{
		Display: &hostDisplay{w: w, h: h},
		FS:      hostFS{},
		KV:      hostKV{},
		Log:     hostLog{},
	}
}

// --- sdk.Display ---

type hostDisplay struct {
	w, h int
}

func (d *hostDisplay) Size() (int, int) { return d.w, d.h }

func (d *hostDisplay) FillScreen(c sdk.Color) { impDisplayFill(int32(c)) }

func (d *hostDisplay) HLine(x, y, w int, c sdk.Color) {
	impDisplayHLine(int32(x), int32(y), int32(w), int32(c))
}

func (d *hostDisplay) VLine(x, y, h int, c sdk.Color) {
	impDisplayVLine(int32(x), int32(y), int32(h), int32(c))
}

func (d *hostDisplay) FillRect(x, y, w, h int, c sdk.Color) {
	impDisplayFillRect(int32(x), int32(y), int32(w), int32(h), int32(c))
}

func (d *hostDisplay) DrawRect(x, y, w, h int, c sdk.Color) {
	impDisplayDrawRect(int32(x), int32(y), int32(w), int32(h), int32(c))
}

func (d *hostDisplay) PushImage1bpp(x, y, w, h int, bitmap []byte, pal [2]sdk.Color) {
	p, n := bufArgs(bitmap)
	impDisplayPush1bpp(int32(x), int32(y), int32(w), int32(h), p, n, int32(pal[0]), int32(pal[1]))
}

func (d *hostDisplay) DrawXTH(blob []byte) error {
	p, n := bufArgs(blob)
	if impDisplayDrawXTH(p, n) != 0 {
		return fmt.Errorf("display rejected XTH blob of %d bytes", len(blob))
	}
	return nil
}

func (d *hostDisplay) SetFont(name string) error {
	p, n := strArgs(name)
	if impDisplaySetFont(p, n) != 0 {
		return fmt.Errorf("font %s not available", name)
	}
	return nil
}

func (d *hostDisplay) DrawText(x, y int, s string, c sdk.Color) {
	p, n := strArgs(s)
	impDisplayDrawText(int32(x), int32(y), p, n, int32(c))
}

func (d *hostDisplay) TextWidth(s string) int {
	p, n := strArgs(s)
	return int(impDisplayTextWidth(p, n))
}

func (d *hostDisplay) Update() { impDisplayUpdate() }

// --- sdk.Filesystem ---

type hostFS struct{}

func (hostFS) Mounted() bool { return impFSMounted() != 0 }

func (hostFS) Mount() error {
	if impFSMount() != 0 {
		return errors.New("SD card not available")
	}
	return nil
}

func (hostFS) Open(path string) (sdk.File, error) {
	p, n := strArgs(path)
	fd := impFSOpen(p, n, 0)
	if fd < 0 {
		return nil, sdk.ErrNotFound
	}
	return &hostFile{fd: fd}, nil
}

func (hostFS) Create(path string) (sdk.File, error) {
	p, n := strArgs(path)
	fd := impFSOpen(p, n, 1)
	if fd < 0 {
		return nil, fmt.Errorf("create %s failed", path)
	}
	return &hostFile{fd: fd}, nil
}

func (hostFS) Remove(path string) error {
	p, n := strArgs(path)
	if impFSRemove(p, n) != 0 {
		return sdk.ErrNotFound
	}
	return nil
}

func (hostFS) MkdirAll(path string) error {
	p, n := strArgs(path)
	if impFSMkdir(p, n) != 0 {
		return fmt.Errorf("mkdir %s failed", path)
	}
	return nil
}

func (hostFS) ReadDir(path string) ([]sdk.DirEntry, error) {
	p, n := strArgs(path)
	dir := impFSDirOpen(p, n)
	if dir < 0 {
		return nil, sdk.ErrNotFound
	}
	defer impFSDirClose(dir)

	var out []sdk.DirEntry
	name := make([]byte, 256)
	for {
		var isDir int32
		np, nn := bufArgs(name)
		n := impFSDirNext(dir, np, nn, unsafe.Pointer(&isDir))
		if n <= 0 {
			return out, nil
		}
		out = append(out, sdk.DirEntry{Name: string(name[:n]), IsDir: isDir != 0})
	}
}

type hostFile struct {
	fd int32
}

func (f *hostFile) Read(p []byte) (int, error) {
	bp, bn := bufArgs(p)
	n := impFSRead(f.fd, bp, bn)
	if n < 0 {
		return 0, fmt.Errorf("read failed on fd %d", f.fd)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

func (f *hostFile) Write(p []byte) (int, error) {
	bp, bn := bufArgs(p)
	n := impFSWrite(f.fd, bp, bn)
	if n < 0 || int(n) != len(p) {
		return int(max(n, 0)), fmt.Errorf("short write on fd %d", f.fd)
	}
	return int(n), nil
}

func (f *hostFile) Seek(offset int64, whence int) (int64, error) {
	pos := impFSSeek(f.fd, offset, int32(whence))
	if pos < 0 {
		return 0, fmt.Errorf("seek failed on fd %d", f.fd)
	}
	return pos, nil
}

func (f *hostFile) Close() error {
	if impFSClose(f.fd) != 0 {
		return fmt.Errorf("close failed on fd %d", f.fd)
	}
	return nil
}

// --- sdk.KV ---

type hostKV struct{}

func (hostKV) Open(namespace string, readOnly bool) (sdk.KVHandle, error) {
	ro := int32(0)
	if readOnly {
		ro = 1
	}
	p, n := strArgs(namespace)
	h := impNVSOpen(p, n, ro)
	if h < 0 {
		return nil, fmt.Errorf("nvs namespace %s unavailable", namespace)
	}
	return hostKVHandle{h: h}, nil
}

type hostKVHandle struct {
	h int32
}

func (k hostKVHandle) GetU32(key string) (uint32, bool) {
	var value uint32
	p, n := strArgs(key)
	if impNVSGetU32(k.h, p, n, unsafe.Pointer(&value)) != 0 {
		return 0, false
	}
	return value, true
}

func (k hostKVHandle) SetU32(key string, value uint32) error {
	p, n := strArgs(key)
	if impNVSSetU32(k.h, p, n, int32(value)) != 0 {
		return fmt.Errorf("nvs set %s failed", key)
	}
	return nil
}

func (k hostKVHandle) Commit() error {
	if impNVSCommit(k.h) != 0 {
		return fmt.Errorf("nvs commit failed")
	}
	return nil
}

func (k hostKVHandle) Close() { impNVSClose(k.h) }

// --- sdk.Logger ---

type hostLog struct{}

func (hostLog) logf(level int32, format string, args []any) {
	msg := fmt.Sprintf(format, args...)
	p, n := strArgs(msg)
	impLog(level, p, n)
}

func (l hostLog) Debugf(format string, args ...any) { l.logf(0, format, args) }
func (l hostLog) Infof(format string, args ...any)  { l.logf(1, format, args) }
func (l hostLog) Errorf(format string, args ...any) { l.logf(2, format, args) }
