// Command extract runs detection and card extraction over image files
// without the UI: every detected region above the confidence threshold is
// written out as a standardized PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cardsmith/internal/config"
	"cardsmith/internal/detect"
	"cardsmith/internal/export"
	"cardsmith/internal/identify"

	"github.com/disintegration/imaging"
)

func main() {
	outputDir := flag.String("o", "cards", "Output directory for extracted PNGs")
	minConfidence := flag.Float64("min-confidence", 0, "Skip regions below this confidence")
	dryRun := flag.Bool("dry-run", false, "Detect and report, write nothing")
	ocr := flag.Bool("ocr", false, "Recognize card titles for file naming")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: extract [-o <dir>] [-min-confidence <f>] [-dry-run] [-ocr] <image>...")
		os.Exit(1)
	}

	cfg := config.Load()
	detector := detect.NewDetector(detect.DefaultOptions())
	renderer := export.NewRenderer(cfg.OutputWidth, cfg.OutputHeight)

	var reader *identify.Reader
	if *ocr {
		reader = identify.NewReader()
		defer reader.Close()
	}

	failed := 0
	paths := flag.Args()
	for i, path := range paths {
		fmt.Printf("[%d/%d] %s\n", i+1, len(paths), path)
		if err := processImage(path, detector, renderer, reader, *outputDir, *minConfidence, *dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func processImage(path string, detector *detect.Detector, renderer *export.Renderer,
	reader *identify.Reader, outputDir string, minConfidence float64, dryRun bool) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	regions, err := detector.Detect(img)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if minConfidence > 0 {
		kept := regions[:0]
		for _, r := range regions {
			if r.Confidence >= minConfidence {
				kept = append(kept, r)
			}
		}
		regions = kept
	}
	if len(regions) == 0 {
		fmt.Println("  no cards found")
		return nil
	}

	for _, r := range regions {
		fmt.Printf("  %s: %dx%d at (%d,%d) confidence %.2f\n",
			r.ID, r.Bounds.Width, r.Bounds.Height, r.Bounds.X, r.Bounds.Y, r.Confidence)
	}
	if dryRun {
		return nil
	}

	sourceID := filepath.Base(path)
	results := renderer.ExtractAll(img, sourceID, regions)
	if reader != nil {
		for i := range results {
			if results[i].Err == nil {
				if title, err := reader.ReadTitle(results[i].Card); err == nil {
					results[i].Card.Title = title
				}
			}
		}
	}

	ok := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.Region.ID, res.Err)
			continue
		}
		ok++
	}
	if err := export.WriteCards(outputDir, sourceID, results); err != nil {
		return err
	}
	fmt.Printf("  wrote %d of %d card(s) to %s\n", ok, len(results), outputDir)
	return nil
}
