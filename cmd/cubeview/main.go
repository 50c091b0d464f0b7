package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cubeview/pkg/config"
	"cubeview/pkg/cube"
	"cubeview/pkg/loader"
	"cubeview/pkg/render"
	"cubeview/pkg/spectra"
)

func main() {
	cubePath := flag.String("cube", "", "Cube data file (.bsq, .img, .tif)")
	wvlPath := flag.String("wvl", "", "Axis calibration file (.wvl, .hdr, .txt, .csv)")
	configPath := flag.String("config", "cubeview.yaml", "Configuration file")
	band := flag.Int("band", -1, "Band to select (default: from config)")
	pixel := flag.String("pixel", "0,0", "Pixel to select as row,col")
	noData := flag.String("nodata", "", "No-data sentinel override (e.g. -999)")
	extractSlices := flag.Bool("extract-slices", false, "Render every band as a grayscale JPEG")
	slicesDir := flag.String("slices-dir", "", "Directory for extracted band images (default: from config)")
	chartPath := flag.String("chart", "", "Write the selected profile as an interactive HTML chart")
	exportPath := flag.String("export", "", "Save the selected profile as .yaml or .h5")
	flag.Parse()

	if *cubePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var opts []cube.Option
	if cfg.Viewer.NoDataValue != nil {
		opts = append(opts, cube.WithNoData(*cfg.Viewer.NoDataValue))
	}
	if *noData != "" {
		v, err := strconv.ParseFloat(*noData, 64)
		if err != nil {
			log.Fatalf("Invalid -nodata value %q: %v", *noData, err)
		}
		opts = append(opts, cube.WithNoData(v))
	}

	registry := loader.NewRegistry()
	var calIn *loader.CalibrationInput
	if *wvlPath != "" {
		calIn = &loader.CalibrationInput{Path: *wvlPath}
	}

	coord, err := registry.Load(loader.CubeInput{Path: *cubePath}, calIn, opts...)
	if err != nil {
		// A calibration length mismatch degrades to index labels; anything
		// else is fatal for this load attempt.
		if coord == nil || !errors.Is(err, cube.ErrShapeMismatch) {
			log.Fatalf("Failed to load cube: %v", err)
		}
		log.Printf("Warning: calibration not bound: %v", err)
	}
	defer coord.Close()

	c := coord.Cube()
	shape := c.Shape()

	fmt.Println("================================")
	fmt.Println("CUBEVIEW - INTERACTIVE DATA CUBE INSPECTION")
	fmt.Println("================================")
	fmt.Printf("Cube: %s\n", *cubePath)
	fmt.Printf("Shape (rows, cols, bands): %s\n", shape)
	fmt.Printf("Element type: %s\n", c.DType())
	if nd, ok := c.NoData(); ok {
		fmt.Printf("No-data sentinel: %g\n", nd)
	}
	if cal := c.Calibration(); cal != nil {
		fmt.Printf("Calibration: %d labels from %g to %g %s\n",
			cal.Len(), cal.Label(0), cal.Label(cal.Len()-1), cal.Unit())
		if !cal.Monotonic() {
			fmt.Println("Note: calibration labels are not monotonic")
		}
	} else {
		fmt.Println("Calibration: none (plain band indices)")
	}

	// Select the requested band and pixel.
	selBand := cfg.Viewer.DefaultBand
	if *band >= 0 {
		selBand = *band
	}
	if _, err := coord.OnBandPicked(selBand); err != nil {
		log.Fatalf("Failed to read band %d: %v", selBand, err)
	}

	row, col, err := parsePixel(*pixel)
	if err != nil {
		log.Fatalf("Invalid -pixel value %q: %v", *pixel, err)
	}
	profile, err := coord.OnPixelPicked(row, col)
	if err != nil {
		log.Fatalf("Failed to read profile at (%d, %d): %v", row, col, err)
	}

	snap := coord.Selection()
	fmt.Printf("\nSelection: pixel (%d, %d), band %d\n", snap.Row, snap.Col, snap.Band)
	fmt.Printf("Profile length: %d\n", len(profile.Values))

	if *extractSlices {
		dir := cfg.Export.SlicesDir
		if *slicesDir != "" {
			dir = *slicesDir
		}
		fmt.Printf("\nExtracting %d band slices to: %s\n", shape.Bands, dir)
		if err := render.SaveSliceSequence(c, dir, cfg.Export.JPEGQuality); err != nil {
			log.Fatalf("Failed to extract band slices: %v", err)
		}
		fmt.Println("Slice extraction completed!")
	}

	if *chartPath == "" && *exportPath == "" {
		return
	}

	collection := spectra.NewCollection(profile.Labels, profile.Unit)
	if _, err := collection.AddPixel(c, snap.Row, snap.Col); err != nil {
		log.Fatalf("Failed to collect profile: %v", err)
	}

	if *chartPath != "" {
		chartOpts := spectra.ChartOptions{
			Title:  cfg.Chart.Title,
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
		}
		if err := collection.SaveChart(*chartPath, chartOpts); err != nil {
			log.Fatalf("Failed to write chart: %v", err)
		}
		fmt.Printf("Profile chart saved to: %s\n", *chartPath)
	}

	if *exportPath != "" {
		switch strings.ToLower(filepath.Ext(*exportPath)) {
		case ".yaml", ".yml":
			err = collection.SaveYAML(*exportPath)
		case ".h5", ".hdf5":
			err = collection.SaveHDF5(*exportPath)
		default:
			log.Fatalf("Unsupported export format: %s", *exportPath)
		}
		if err != nil {
			log.Fatalf("Failed to export spectra: %v", err)
		}
		fmt.Printf("Spectra saved to: %s\n", *exportPath)
	}
}

func parsePixel(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected row,col")
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}
