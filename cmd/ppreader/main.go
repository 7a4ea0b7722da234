//go:build wasip1

// Command ppreader is the device build of the reader: a WASM module whose
// pp_* exports the Paper-Portal host calls. The host owns the loop (init
// once, tick periodically, gestures as they happen) and provides display,
// filesystem, key-value, and log capabilities through the imports bound in
// host.go.
package main

import "github.com/jpl-au/xtc/internal/app"

const contractVersion = 1

// gesture kinds as the host reports them; everything but tap is ignored.
const gestureTap = 1

var shell *app.Shell

// The host drives everything through the exports.
func main() {}

//go:wasmexport pp_contract_version
func ppContractVersion() int32 { return contractVersion }

//go:wasmexport pp_init
func ppInit(apiVersion int32, apiFeatures int64, screenW, screenH int32) int32 {
	shell = app.New(bindHost(int(screenW), int(screenH)))
	if err := shell.Init(); err != nil {
		logError("init: " + err.Error())
		shell = nil
		return -1
	}
	return 0
}

//go:wasmexport pp_tick
func ppTick(nowMS int32) int32 {
	if shell == nil {
		return -1
	}
	shell.Tick(nowMS)
	return 0
}

//go:wasmexport pp_on_gesture
func ppOnGesture(kind, x, y, dx, dy, durationMS, nowMS, flags int32) int32 {
	if shell == nil {
		return -1
	}
	if kind == gestureTap {
		shell.OnTap(int(x), int(y))
	}
	return 0
}
