package main

import (
	"flag"
	"fmt"
	"os"

	"doodle/render"
	"doodle/scene"
	"doodle/shape"
)

func main() {
	var (
		interactive = flag.Bool("i", false, "Interactive TUI mode (default when a terminal is attached)")
		exportPNG   = flag.String("png", "", "Export the document to a PNG file and exit")
		scale       = flag.Float64("scale", 0, "Pixels per document unit for PNG export (default from DOODLE_EXPORT_SCALE)")
		demo        = flag.Bool("demo", false, "Start with a small sample document")
		help        = flag.Bool("help", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [document.json]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A diagram editor for shapes, connectors, and scripted text.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Start with an empty document\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s diagram.json             # Open a document in the TUI\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -png out.png diagram.json  # Export without opening the TUI\n", os.Args[0])
	}
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *scale > 0 {
		cfg.ExportScale = *scale
	}

	sc := scene.New()
	sc.GridSize = cfg.GridSize
	sc.SnapToGrid = cfg.SnapToGrid
	if *demo {
		sc = demoScene()
	}
	meta := scene.Metadata{}
	path := flag.Arg(0)
	if path != "" {
		sc, meta, err = loadDocument(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	if *exportPNG != "" {
		if err := exportDocument(sc, *exportPNG, cfg.ExportScale); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// With a document argument and no -i, emit the normalized document
	// to stdout instead of opening the editor.
	if path != "" && !*interactive {
		data, err := sc.Serialize(meta)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	app, err := newApp(sc, meta, cfg, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting editor: %v\n", err)
		os.Exit(1)
	}
	if err := app.run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadDocument(path string) (*scene.Scene, scene.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A new filename: start empty and create on save.
			return scene.New(), scene.Metadata{}, nil
		}
		return nil, scene.Metadata{}, err
	}
	return scene.Deserialize(data)
}

func saveDocument(sc *scene.Scene, meta scene.Metadata, path string) error {
	data, err := sc.Serialize(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func exportDocument(sc *scene.Scene, path string, scale float64) error {
	f := render.Build(sc)
	if len(f.Items) == 0 {
		return fmt.Errorf("document has no shapes")
	}
	r, err := render.NewRaster(path, scale)
	if err != nil {
		return err
	}
	return r.Render(f)
}

// demoScene seeds a small document for first-run exploration.
func demoScene() *scene.Scene {
	sc := scene.New()
	a, _ := shape.New(shape.KindRect, 40, 40, 120, 56, shape.DefaultStyle())
	a.Text = "inputs x_1, x_2"
	b, _ := shape.New(shape.KindEllipse, 260, 40, 100, 64, shape.DefaultStyle())
	b.Text = "f(x)"
	aid := sc.AddShape(a)
	bid := sc.AddShape(b)
	sc.AutoConnect(aid, bid, shape.KindArrow)
	return sc
}
