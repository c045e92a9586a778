//go:build js && wasm

// Command probe exposes the capability detector to page scripts.
//
//	GOOS=js GOARCH=wasm go build -o probe.wasm ./cmd/probe
//
// After instantiation, globalThis.sceneGate offers canRender3D(),
// qualityFactor() and assess(). Each call probes the page afresh.
package main

import (
	"syscall/js"

	"github.com/shehryarbajwa/scenegate/internal/device"
)

func main() {
	env := device.NewBrowserEnvironment()

	api := js.Global().Get("Object").New()
	api.Set("canRender3D", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return device.CanRender3D(env)
	}))
	api.Set("qualityFactor", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return device.QualityFactor(env)
	}))
	api.Set("assess", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		report := device.Assess(env)
		return map[string]interface{}{
			"canRender3D":   report.CanRender3D,
			"qualityFactor": report.QualityFactor,
			"qualityTier":   report.QualityTier,
			"mobile":        report.Mobile,
		}
	}))
	js.Global().Set("sceneGate", api)

	// Let the loader know the functions are in place
	if ready := js.Global().Get("onSceneGateReady"); ready.Type() == js.TypeFunction {
		ready.Invoke(api)
	}

	// Block Main Thread
	select {}
}
