package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/loaders"
	"github.com/df07/go-csg-raytracer/pkg/material"
	"github.com/df07/go-csg-raytracer/pkg/renderer"
	"github.com/df07/go-csg-raytracer/pkg/scene"
	"github.com/df07/go-csg-raytracer/pkg/terminal"
	"github.com/df07/go-csg-raytracer/web/server"
)

// renderOptions holds the flags of the render command. Zero values keep the
// settings stored with the scene.
type renderOptions struct {
	width, height int
	depth         int
	preview       bool
	noSupersample bool
	threshold     float64
	background    string
	workers       int
	format        string
	outputDir     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "csgtracer",
		Short: "Recursive ray tracer for constructive solid geometry scenes",
		Long: "csgtracer renders scenes built from quadrics, planes, quads, triangle meshes and\n" +
			"imported models combined with CSG union, intersection, difference and clip.\n\n" +
			"A scene is a builtin ID (" + strings.Join(scene.BuiltinIDs(), ", ") + "),\n" +
			scene.FilePrefix + "<name> for a file in the scenes directory, or a path to a " + scene.FileExtension + " file.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRenderCmd(),
		newPreviewCmd(),
		newImportCmd(),
		newScenesCmd(),
		newDescribeCmd(),
		newServeCmd(),
	)
	return root
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to an image file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := sceneArg(args)
			s, err := loaders.OpenScene(id)
			if err != nil {
				return err
			}
			path, err := renderScene(cmd.Context(), cmd.OutOrStdout(), s, id, opts, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Render saved as %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.width, "width", 0, "image width (default: scene setting)")
	f.IntVar(&opts.height, "height", 0, "image height (default: scene setting)")
	f.IntVar(&opts.depth, "depth", -1, "reflection/refraction recursion depth (default: scene setting)")
	f.BoolVar(&opts.preview, "preview", false, "render a block preview without reflection or refraction")
	f.BoolVar(&opts.noSupersample, "no-supersampling", false, "disable adaptive supersampling")
	f.Float64Var(&opts.threshold, "threshold", 0, "supersampling colour distance threshold (default: scene setting)")
	f.StringVar(&opts.background, "background", "", `background colour, hex ("#1a2b3c") or "r,g,b"`)
	f.IntVar(&opts.workers, "workers", 1, "goroutines sharing each row (0: CPU count)")
	f.StringVar(&opts.format, "format", "png", "output format: png, bmp or tiff")
	f.StringVar(&opts.outputDir, "output", "output", "output directory; images go to <output>/<scene>/")
	return cmd
}

// renderScene renders s with the flag overrides applied and saves the image
// as <outputDir>/<scene>/render_<timestamp>.<format>
func renderScene(ctx context.Context, out io.Writer, s *scene.Scene, id string, opts renderOptions, now time.Time) (string, error) {
	rt := renderer.NewRaytracer(s, loggerFor(out))
	if err := applyRenderOptions(rt, opts); err != nil {
		return "", err
	}

	outputDir := filepath.Join(opts.outputDir, sceneDirName(id))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(out, "Rendering %s at %dx%d...\n", id, rt.Width(), rt.Height())
	rt.Render(ctx)
	if rt.Cancelled() {
		return "", fmt.Errorf("render cancelled after %d of %d rows", rt.Stats().Rows, rt.Height())
	}
	stats := rt.Stats()
	fmt.Fprintf(out, "Render completed in %v (%.0f rays/s)\n", stats.Elapsed, stats.RaysPerSecond())

	path := filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), opts.format))
	if err := renderer.SaveImage(path, rt.Image()); err != nil {
		return "", err
	}
	return path, nil
}

func applyRenderOptions(rt *renderer.Raytracer, opts renderOptions) error {
	width, height := rt.Width(), rt.Height()
	if opts.width > 0 {
		width = opts.width
	}
	if opts.height > 0 {
		height = opts.height
	}
	rt.SetSize(width, height)

	if opts.depth >= 0 {
		rt.SetRecursionDepth(opts.depth)
	}
	if opts.threshold > 0 {
		rt.SetSupersamplingThreshold(opts.threshold)
	}
	if opts.noSupersample {
		rt.SetAdaptiveSupersampling(false)
	}
	if opts.background != "" {
		c, err := renderer.ParseColor(opts.background)
		if err != nil {
			return err
		}
		rt.SetBackgroundColor(c)
	}
	rt.SetNumWorkers(opts.workers)
	rt.SetPreviewMode(opts.preview)

	switch opts.format {
	case "png", "bmp", "tiff", "tif":
	default:
		return fmt.Errorf("unsupported format %q (supported: png, bmp, tiff)", opts.format)
	}
	return nil
}

func newPreviewCmd() *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "preview [scene]",
		Short: "Fly the camera through a scene in the terminal",
		Long: "Renders the scene with half-block characters and lets the camera move:\n" +
			"  W/S     forward/backward\n" +
			"  A/D     left/right\n" +
			"  R/F     up/down\n" +
			"  Arrows  look around\n" +
			"  Space   full render without a preview\n" +
			"  Q/Esc   quit",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("preview needs an interactive terminal")
			}
			id := sceneArg(args)
			s, err := loaders.OpenScene(id)
			if err != nil {
				return err
			}
			return terminal.Run(cmd.Context(), s, terminal.Config{Title: id, FPS: fps})
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "camera update rate")
	return cmd
}

func newImportCmd() *cobra.Command {
	var output, colour string
	cmd := &cobra.Command{
		Use:   "import <model>",
		Short: "Import a model into a new scene file",
		Long: "Imports a model (" + strings.Join(loaders.SupportedExtensions(), " ") + ") and writes\n" +
			"a scene with the model, a light and a material. Without --output the\n" +
			"scene description is printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diffuse, err := renderer.ParseColor(colour)
			if err != nil {
				return err
			}
			s, summary, err := importScene(args[0], diffuse)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), summary)

			if output == "" {
				return loaders.WriteScene(cmd.OutOrStdout(), s)
			}
			title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if err := loaders.SaveSceneFile(output, s, title); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scene saved as %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "scene file to write")
	cmd.Flags().StringVar(&colour, "color", "#cc8855", "diffuse colour of the model")
	return cmd
}

// importScene builds a scene around an imported model
func importScene(path string, diffuse core.Color) (*scene.Scene, string, error) {
	model, err := loaders.ImportModel(path)
	if err != nil {
		return nil, "", err
	}

	s := scene.New()
	s.AddLight(lights.NewPointLight("key", core.NewVec3(5, 10, 10), core.White))

	props := material.DefaultProperties()
	props.Diffuse = diffuse
	props.Ambient = diffuse.Multiply(0.1)
	mat := s.AddMaterial(material.NewSimple("model", props))

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.AddPrimitive(name, model, mat)

	summary := fmt.Sprintf("Imported %s: %d meshes, %d triangles", filepath.Base(path), len(model.Meshes), model.TriangleCount())
	return s, summary, nil
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List builtin scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			scenes, err := scene.ListAllScenes(scene.FindScenesDir(), loggerFor(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			for _, group := range scenes.Groups {
				fmt.Fprintf(out, "%s:\n", group.Name)
				for _, info := range group.Scenes {
					fmt.Fprintf(out, "  %-24s %s\n", info.ID, info.DisplayName)
				}
			}
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [scene]",
		Short: "Print the description text of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loaders.OpenScene(sceneArg(args))
			if err != nil {
				return err
			}
			return loaders.WriteScene(cmd.OutOrStdout(), s)
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int
	var static string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with streaming renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.NewServer(port, static).Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to serve on")
	cmd.Flags().StringVar(&static, "static", "web/static", "directory of static files (empty to disable)")
	return cmd
}

func sceneArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "default"
}

// sceneDirName turns a scene ID into an output directory name
func sceneDirName(id string) string {
	id = strings.TrimPrefix(id, scene.FilePrefix)
	return strings.TrimSuffix(filepath.Base(id), scene.FileExtension)
}

type writerLogger struct{ w io.Writer }

func (l writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
}

func loggerFor(w io.Writer) core.Logger {
	return writerLogger{w: w}
}
