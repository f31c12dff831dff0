package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset/scene/reader"
	"github.com/rtlab/pathtracer/renderer"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NumFlags() == 0 && ctx.NArg() == 0 {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	objFile := ctx.String("obj")
	if objFile == "" && ctx.NArg() == 1 {
		objFile = ctx.Args().First()
	}
	if objFile == "" {
		return errors.New("missing required --obj scene file")
	}

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	// Load scene
	logger.Noticef("loading scene %s", objFile)
	start := time.Now()
	sc, err := reader.ReadScene(objFile, ctx.String("mtl"))
	if err != nil {
		return err
	}
	logger.Infof("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	// Create renderer
	r, err := renderer.NewDefault(sc, renderer.DefaultRegistries(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %dx%d frame", opts.FrameW, opts.FrameH)
	frame, err := r.Render(sigCtx)
	if err != nil {
		return err
	}

	// Export PNG
	imgFile := ctx.String("out")
	start = time.Now()
	if err = renderer.SavePNG(imgFile, frame); err != nil {
		return err
	}
	encodeTime := time.Since(start)
	logger.Noticef("wrote frame to %s", imgFile)

	// Display stats
	displayFrameStats(r.Stats(), encodeTime)
	return nil
}

func displayFrameStats(stats renderer.FrameStats, encodeTime time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Blocks", "Rows", "% of frame", "Primary rays", "Shadow rays", "Reflection rays", "Render time"})
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.Blocks),
			fmt.Sprintf("%d", stat.Rows),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Counters.PrimaryRays),
			fmt.Sprintf("%d", stat.Counters.ShadowRays),
			fmt.Sprintf("%d", stat.Counters.ReflectionRays),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		"", "", "", "TOTAL",
		fmt.Sprintf("%d", stats.Counters.PrimaryRays),
		fmt.Sprintf("%d", stats.Counters.ShadowRays),
		fmt.Sprintf("%d", stats.Counters.ReflectionRays),
		stats.RenderTime.String(),
	})
	table.Render()

	buf.WriteString(fmt.Sprintf("samples: %d, faces: %d, BVH nodes: %d, leafs: %d, depth: %d, build time: %s, encode time: %s\n",
		stats.Samples, stats.Faces, stats.BVH.Nodes, stats.BVH.Leafs, stats.BVH.MaxDepth, stats.BVH.BuildTime, encodeTime))
	logger.Noticef("frame statistics\n%s", buf.String())
}
