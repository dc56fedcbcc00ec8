package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"slices"
	"strings"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/config"
	"github.com/costott/mandlebrot-sub000/palette"
	"github.com/costott/mandlebrot-sub000/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML render description; built in defaults when empty")
	output := flag.String("o", "", "output PNG, overrides the config")
	landmark := flag.String("landmark", "", "render a named landmark instead of the configured view")
	dump := flag.Bool("dump", false, "print the effective config as YAML and exit")
	list := flag.Bool("list", false, "list landmarks and palette presets and exit")
	flag.Parse()

	if *list {
		names := make([]string, 0, len(mandel.Landmarks))
		for name := range mandel.Landmarks {
			names = append(names, name)
		}
		slices.Sort(names)
		fmt.Println("landmarks:", strings.Join(names, ", "))
		fmt.Println("palettes:", strings.Join(palette.PresetNames(), ", "))
		return nil
	}

	f := config.Default()
	if *configPath != "" {
		var err error
		if f, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *landmark != "" {
		f.View = config.View{Landmark: *landmark}
	}
	if *output != "" {
		f.Output = *output
	}

	if *dump {
		b, err := f.Marshal()
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = os.Stdout.Write(b)
		return err
	}

	v, cfg, layers, err := f.Build()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log.Printf("rendering %dx%d at %s, step %g, %d iterations", v.Width, v.Height, v.Center, v.PixelStep, v.MaxIterations)
	img, err := render.Render(cfg, v, layers)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := writePNG(f.Output, img); err != nil {
		return err
	}
	log.Printf("fully rendered file saved to %q", f.Output)
	return nil
}

// writePNG encodes img to path. The file is only reported written once it
// has been closed without error.
func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("png.Encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
