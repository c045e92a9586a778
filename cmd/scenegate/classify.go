package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/shehryarbajwa/scenegate/internal/device"
	"github.com/shehryarbajwa/scenegate/pkg/models"
)

type classifyOptions struct {
	userAgent string
	memory    float64
	renderer  string
	noWebGL   bool
	noWindow  bool
}

func newClassifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the capability report for a described client",
		Example: `  scenegate classify --ua "Mozilla/5.0 (iPhone; ...)" --renderer "Apple GPU" --memory 4
  scenegate classify --ua "Mozilla/5.0 (X11; Linux x86_64)" --no-webgl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot := opts.snapshot(cmd.Flags().Changed("renderer"))
			report := device.Assess(device.NewStaticEnvironment(snapshot))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.userAgent, "ua", "", "user-agent string of the client")
	f.Float64Var(&opts.memory, "memory", 0, "reported device memory in GiB (0 = not reported)")
	f.StringVar(&opts.renderer, "renderer", "", "unmasked WebGL renderer (omit when the debug extension is unavailable)")
	f.BoolVar(&opts.noWebGL, "no-webgl", false, "client could not acquire a WebGL context")
	f.BoolVar(&opts.noWindow, "no-window", false, "classify as a non-browser context")
	return cmd
}

func (o classifyOptions) snapshot(rendererSet bool) models.EnvironmentSnapshot {
	snapshot := models.EnvironmentSnapshot{
		HasWindow: !o.noWindow,
		UserAgent: o.userAgent,
	}
	if o.memory != 0 {
		memory := o.memory
		snapshot.DeviceMemory = &memory
	}
	if !o.noWebGL {
		snapshot.Graphics = &models.GraphicsSnapshot{API: "webgl"}
		if rendererSet {
			renderer := o.renderer
			snapshot.Graphics.Renderer = &renderer
		}
	}
	return snapshot
}
