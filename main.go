package main

import (
	"os"

	"github.com/rtlab/pathtracer/cmd"
	"github.com/rtlab/pathtracer/log"
	"github.com/urfave/cli"
)

var logger = log.New("pathtracer")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "render wavefront obj scenes using ray tracing"
	app.Version = "0.1.0"
	app.Flags = cmd.GlobalFlags()
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame to a png file",
			Description: `
Load a scene from a wavefront obj file and its material libraries, build a BVH
tree to speed up ray intersection tests and trace a frame using direct lighting
from point lights and mirror reflections.

Example:
   pathtracer render --obj scene.obj -o output.png -w 1920 -H 1080 --spp 16`,
			ArgsUsage: "[scene_file.obj]",
			Flags:     cmd.RenderFlags(),
			Action:    cmd.RenderFrame,
		},
		{
			Name:      "scene-info",
			Usage:     "display scene statistics and material mapping",
			ArgsUsage: "scene_file.obj",
			Flags:     cmd.SceneInfoFlags(),
			Action:    cmd.ShowSceneInfo,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("error: %s", err.Error())
		os.Exit(1)
	}
}
