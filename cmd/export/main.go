// Command export converts a saved diagram document to a PNG image
// without opening the editor.
package main

import (
	"flag"
	"fmt"
	"os"

	"doodle/render"
	"doodle/scene"
)

func main() {
	var (
		inputFile = flag.String("i", "", "Input document path")
		output    = flag.String("o", "diagram.png", "Output PNG path")
		scale     = flag.Float64("scale", 2, "Pixels per document unit")
	)
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: input file required (-i)\n")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	sc, _, err := scene.Deserialize(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing document: %v\n", err)
		os.Exit(1)
	}

	f := render.Build(sc)
	if len(f.Items) == 0 {
		fmt.Fprintf(os.Stderr, "Error: document has no shapes\n")
		os.Exit(1)
	}

	r, err := render.NewRaster(*output, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.Render(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)
}
