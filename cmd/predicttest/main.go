// Command predicttest submits a prediction request to the segmentation
// backend and prints the result, without starting the GUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"glacier-annotator/internal/geo"
	"glacier-annotator/internal/predict"
	"glacier-annotator/internal/raster"
)

func main() {
	backend := flag.String("backend", "http://localhost:5000", "Backend base URL")
	lat := flag.Float64("lat", 35.72, "Extent center latitude")
	lng := flag.Float64("lng", 75.35, "Extent center longitude")
	side := flag.Float64("side", 10000, "Extent side length in meters")
	model := flag.String("model", "unet_dropout", "Model identifier")
	classes := flag.String("classes", "clean_ice,debris", "Comma-separated class list")
	timeout := flag.Duration("timeout", 60*time.Second, "Request timeout")
	maskOut := flag.String("mask-out", "", "Write the decoded soft mask as PNG to this path")
	flag.Parse()

	ext := geo.SquareExtent(geo.LatLng{Lat: *lat, Lng: *lng}, *side)
	fmt.Printf("Extent (EPSG:%d): x[%.0f, %.0f] y[%.0f, %.0f]\n",
		ext.CRS, ext.XMin, ext.XMax, ext.YMin, ext.YMax)

	client := predict.NewClient(*backend, *timeout)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if models, err := client.Models(ctx); err == nil {
		names := make([]string, len(models))
		for i, m := range models {
			names[i] = m.Name
		}
		fmt.Printf("Backend models: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Printf("Model list unavailable: %v\n", err)
	}

	fmt.Printf("Requesting prediction (model %s)...\n", *model)
	resp, err := client.Predict(ctx, predict.Request{
		Extent:  ext,
		Classes: strings.Split(*classes, ","),
		Models:  *model,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
		os.Exit(1)
	}

	if resp.Geometry != nil {
		fmt.Printf("Geometry: %d feature(s)\n", len(resp.Geometry.Features))
	} else {
		fmt.Println("Geometry: none")
	}

	if resp.OutputSoft == "" {
		fmt.Println("Soft output: none")
		return
	}

	mask, err := raster.DecodeSoftMask(resp.OutputSoft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decode soft output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Soft output: %dx%d\n", mask.Width, mask.Height)
	fmt.Printf("  mean prob:  %.3f\n", mask.Mean())
	fmt.Printf("  median:     %.3f\n", mask.Quantile(0.5))
	fmt.Printf("  90th pct:   %.3f\n", mask.Quantile(0.9))

	polys, err := raster.Vectorize(mask, 0.6)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Vectorize: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  contours at 0.6: %d\n", len(polys))

	if *maskOut != "" {
		data, err := mask.EncodePNG()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode mask: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*maskOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Write mask: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote mask to %s\n", *maskOut)
	}
}
