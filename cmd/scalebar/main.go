// Command scalebar runs scale bar detection and OCR on a micrograph and
// prints the suggested calibration.
package main

import (
	"flag"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"micromeasure/internal/scalebar"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	ocr := flag.Bool("ocr", true, "Read the bar annotation with OCR")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: scalebar -image <path> [-ocr=false]")
		os.Exit(1)
	}

	mat := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if mat.Empty() {
		fmt.Fprintf(os.Stderr, "Failed to read image: %s\n", *imagePath)
		os.Exit(1)
	}
	defer mat.Close()

	fmt.Printf("Loaded image: %dx%d pixels\n", mat.Cols(), mat.Rows())

	if !*ocr {
		bar, ok := scalebar.DetectBar(mat)
		if !ok {
			fmt.Fprintln(os.Stderr, "No scale bar found")
			os.Exit(1)
		}
		fmt.Printf("Scale bar: %.0f px wide at (%d,%d) %dx%d\n",
			bar.LengthPx, bar.Bounds.X, bar.Bounds.Y, bar.Bounds.Width, bar.Bounds.Height)
		return
	}

	reader, err := scalebar.NewReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	sug, err := scalebar.Suggest(mat, reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scale bar: %.0f px wide at (%d,%d) %dx%d\n",
		sug.Bar.LengthPx, sug.Bar.Bounds.X, sug.Bar.Bounds.Y,
		sug.Bar.Bounds.Width, sug.Bar.Bounds.Height)
	fmt.Printf("Annotation: %q\n", sug.Text)

	if sug.KnownUm <= 0 {
		fmt.Println("Annotation could not be parsed; enter the known length manually")
		return
	}

	fmt.Printf("Known length: %g µm\n", sug.KnownUm)
	fmt.Printf("Suggested scale: %.9f µm/px\n", sug.KnownUm/sug.Bar.LengthPx)
}
