package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/rtlab/pathtracer/asset/scene"
	"github.com/rtlab/pathtracer/asset/scene/reader"
	"github.com/rtlab/pathtracer/brdf"
	"github.com/rtlab/pathtracer/material"
	"github.com/urfave/cli"
)

// Get the flags accepted by the scene-info command.
func SceneInfoFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "mtl",
			Usage: "material library to load before the scene file",
		},
	}
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First(), ctx.String("mtl"))
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sceneInfo(sc))
	return nil
}

// Format scene statistics and the material mapping as tables.
func sceneInfo(sc *scene.Scene) string {
	var buf bytes.Buffer
	stats := sc.Stats()

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Objects", "Polygons", "Triangles", "Vertices", "Normals", "Materials"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.Objects),
		fmt.Sprintf("%d", stats.Polygons),
		fmt.Sprintf("%d", stats.Triangles),
		fmt.Sprintf("%d", stats.Vertices),
		fmt.Sprintf("%d", stats.Normals),
		fmt.Sprintf("%d", stats.Materials),
	})
	table.Render()
	if stats.Vertices > 0 {
		buf.WriteString(fmt.Sprintf("bounds: %v - %v\n", stats.BBox[0], stats.BBox[1]))
	}

	table = tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Material", "Illum", "Kd", "Ns", "BRDF", "Roughness"})
	for index, m := range material.FromSceneList(brdf.DefaultRegistry(), sc.Materials) {
		mat := sc.Materials[index]
		roughness := "-"
		if ct, isCookTorrance := m.BRDF.(*brdf.CookTorrance); isCookTorrance {
			roughness = fmt.Sprintf("%.3f", ct.Roughness())
		}
		table.Append([]string{
			mat.Name,
			fmt.Sprintf("%d", mat.Illum),
			fmt.Sprintf("%.2f %.2f %.2f", mat.Kd[0], mat.Kd[1], mat.Kd[2]),
			fmt.Sprintf("%.1f", mat.Ns),
			m.Model,
			roughness,
		})
	}
	table.Render()

	return buf.String()
}
