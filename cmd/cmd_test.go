package cmd

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rtlab/pathtracer/asset/scene/reader"
	"github.com/rtlab/pathtracer/renderer"
	"github.com/rtlab/pathtracer/types"
	"github.com/urfave/cli"
)

const wallObj = `
mtllib wall.mtl
v -5 -4 -1
v 5 -4 -1
v 5 6 -1
v -5 6 -1
usemtl shiny
f 1 2 3 4
`

const wallMtl = `
newmtl shiny
Kd 0.8 0.2 0.2
Ks 0.5 0.5 0.5
Ns 100
illum 2

newmtl rough_fallback
Ns -2
illum 2
`

func writeScene(t *testing.T) string {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wall.obj"), []byte(wallObj), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wall.mtl"), []byte(wallMtl), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testApp(action cli.ActionFunc) *cli.App {
	app := cli.NewApp()
	app.Flags = GlobalFlags()
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Flags:  RenderFlags(),
			Action: action,
		},
		{
			Name:   "scene-info",
			Flags:  SceneInfoFlags(),
			Action: ShowSceneInfo,
		},
	}
	return app
}

func TestParseVec3(t *testing.T) {
	type spec struct {
		in     string
		exp    types.Vec3
		expErr bool
	}
	specs := []spec{
		spec{"0,1,2.8", types.XYZ(0, 1, 2.8), false},
		spec{" -1 , 0.5,3 ", types.XYZ(-1, 0.5, 3), false},
		spec{"1,2", types.Vec3{}, true},
		spec{"1,2,3,4", types.Vec3{}, true},
		spec{"1,x,3", types.Vec3{}, true},
	}

	for index, s := range specs {
		v, err := parseVec3(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if v != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, v)
		}
	}

	if got := formatVec3(types.XYZ(0, 1, 2.8)); got != "0,1,2.8" {
		t.Fatalf("expected 0,1,2.8; got %s", got)
	}
}

func TestRenderOptions(t *testing.T) {
	var opts renderer.Options
	app := testApp(func(ctx *cli.Context) error {
		var err error
		opts, err = renderOptions(ctx)
		return err
	})

	err := app.Run([]string{"pathtracer", "render", "-w", "320", "-H", "200", "--spp", "4", "--fov", "90", "--yaw", "180", "--eye", "1,2,3", "--projection", "fisheye"})
	if err != nil {
		t.Fatal(err)
	}

	if opts.FrameW != 320 || opts.FrameH != 200 || opts.SamplesPerPixel != 4 {
		t.Fatalf("unexpected frame options %+v", opts)
	}
	if opts.Camera.Projection != "fisheye" || opts.Camera.Eye != types.XYZ(1, 2, 3) {
		t.Fatalf("unexpected camera options %+v", opts.Camera)
	}
	if d := opts.Camera.FovY - 1.5707964; d > 1e-5 || d < -1e-5 {
		t.Fatalf("expected fov to be converted to radians; got %f", opts.Camera.FovY)
	}
	if d := opts.Camera.Yaw - 3.1415927; d > 1e-5 || d < -1e-5 {
		t.Fatalf("expected yaw to be converted to radians; got %f", opts.Camera.Yaw)
	}
	if opts.MaxDepth != 3 || opts.Reflectivity != 0.8 {
		t.Fatalf("expected default tracer options; got %d, %f", opts.MaxDepth, opts.Reflectivity)
	}
}

func TestRenderOptionsErrors(t *testing.T) {
	specs := [][]string{
		{"-w", "0"},
		{"-H", "-5"},
		{"--spp", "0"},
		{"--workers", "0"},
		{"--eye", "1,2"},
		{"--look", "a,b,c"},
		{"--lens-seed", "-1"},
		{"--reflectivity", "-0.5"},
		// Values that would wrap around when narrowed to 32 bits
		{"-w", "4294967297"},
		{"--spp", "4294967296"},
		{"--lens-seed", "4294967296"},
	}

	for index, s := range specs {
		app := testApp(func(ctx *cli.Context) error {
			_, err := renderOptions(ctx)
			return err
		})
		if err := app.Run(append([]string{"pathtracer", "render"}, s...)); err == nil {
			t.Fatalf("[spec %d] expected an error for %v", index, s)
		}
	}
}

func TestRenderFrame(t *testing.T) {
	dir := writeScene(t)
	out := filepath.Join(dir, "out.png")

	app := testApp(RenderFrame)
	err := app.Run([]string{"pathtracer", "render", "--obj", filepath.Join(dir, "wall.obj"), "-o", out, "-w", "4", "-H", "3", "--workers", "2"})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("expected a 4x3 image; got %v", img.Bounds())
	}
	if r, _, _, a := img.At(2, 1).RGBA(); r == 0 || a != 0xffff {
		t.Fatalf("expected a lit opaque center pixel; got r=%d a=%d", r, a)
	}
}

func TestRenderFrameErrors(t *testing.T) {
	dir := writeScene(t)

	specs := [][]string{
		// Missing scene
		{"-w", "4"},
		{"--obj", filepath.Join(dir, "missing.obj")},
		{"--obj", filepath.Join(dir, "wall.mtl")},
		{"--obj", filepath.Join(dir, "wall.obj"), "--projection", "panini"},
		{"--obj", filepath.Join(dir, "wall.obj"), "-o", filepath.Join(dir, "missing", "out.png"), "-w", "2", "-H", "2"},
	}

	for index, s := range specs {
		app := testApp(RenderFrame)
		if err := app.Run(append([]string{"pathtracer", "render"}, s...)); err == nil {
			t.Fatalf("[spec %d] expected an error for %v", index, s)
		}
	}
}

func TestSceneInfo(t *testing.T) {
	dir := writeScene(t)
	sc, err := reader.ReadScene(filepath.Join(dir, "wall.obj"), "")
	if err != nil {
		t.Fatal(err)
	}

	info := sceneInfo(sc)
	for _, exp := range []string{"Triangles", "shiny", "cook_torrance", "0.140"} {
		if !strings.Contains(info, exp) {
			t.Fatalf("expected scene info to contain %q; got\n%s", exp, info)
		}
	}

	// Roughness is read back from the built model, so a material whose
	// Cook-Torrance parameters are rejected shows the Lambert fallback.
	var fallbackRow string
	for _, line := range strings.Split(info, "\n") {
		if strings.Contains(line, "rough_fallback") {
			fallbackRow = line
		}
	}
	if !strings.Contains(fallbackRow, "lambert") || strings.Contains(fallbackRow, "cook_torrance") {
		t.Fatalf("expected the fallback material to use lambert; got %q", fallbackRow)
	}

	app := testApp(RenderFrame)
	if err = app.Run([]string{"pathtracer", "scene-info", filepath.Join(dir, "wall.obj")}); err != nil {
		t.Fatal(err)
	}
	if err = app.Run([]string{"pathtracer", "scene-info"}); err == nil {
		t.Fatal("expected an error for a missing scene argument")
	}
}
