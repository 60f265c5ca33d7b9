package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"refillmap/internal/browser"
	"refillmap/internal/config"
	"refillmap/internal/debug"
	"refillmap/internal/geo"
	"refillmap/internal/metrics"
	"refillmap/internal/render"
	"refillmap/internal/station"
	"refillmap/internal/ui"
)

func main() {
	// Parse command line flags
	help := flag.Bool("h", false, "Show help message")
	configPath := flag.String("config", "", "Config file (default: ./refillmap.yaml or ~/.refillmap/refillmap.yaml)")
	mode := flag.String("mode", "", "Coordinate mode: geographic or plane")
	dataPath := flag.String("data", "", "Station dataset, .yaml or .csv (default: built-in London set)")
	basemapDir := flag.String("basemap", "", "Directory of shapefiles drawn under the markers")
	debugLog := flag.String("d", "", "Debug log file (e.g., debug.log)")
	aspectRatio := flag.Float64("a", 0, "Character aspect ratio - cell height over width (1.0-4.0, default: 2.0)")
	snapshotPath := flag.String("snapshot", "", "Render the initial view to a .webp or .png file and exit")
	snapshotSize := flag.String("size", "1280x800", "Snapshot size in pixels, WxH")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("refillmap - Terminal map of water refill stations")
		fmt.Println("\nUsage: refillmap [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *aspectRatio != 0 && (*aspectRatio < 1.0 || *aspectRatio > 4.0) {
		fmt.Fprintf(os.Stderr, "Error: Aspect ratio must be between 1.0 and 4.0\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath, *mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{
		Stations: *dataPath,
		Basemap:  *basemapDir,
		LogFile:  *debugLog,
		Aspect:   *aspectRatio,
	})

	// Set up debug logging if requested
	if cfg.Log.File != "" {
		logFile, err := os.Create(cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			debug.SetOutput(logFile)
			debug.SetLevel(cfg.Log.Level)
			debug.Logger().Info().Str("mode", cfg.Mode).Msg("refillmap log started")
			fmt.Printf("Debug logging enabled: %s\n", cfg.Log.File)
		}
	}

	stations, err := loadStations(cfg.Data.Stations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	catalog := station.NewCatalog(stations)
	fmt.Printf("Loaded %d stations\n", catalog.Len())

	// The basemap is optional, so a broken one only warns
	var layers geo.Layers
	if cfg.Data.Basemap != "" {
		fmt.Println("Loading basemap...")
		layers, err = geo.NewShapefileLoader(cfg.Data.Basemap).LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load basemap: %v\n", err)
			layers = nil
		} else {
			fmt.Printf("Loaded %d basemap features\n", layers.Count())
		}
	}

	m := metrics.New()
	defer logSummary(m)

	if *snapshotPath != "" {
		size, err := parseSize(*snapshotSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := snapshot(*snapshotPath, size, cfg, catalog, layers, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshotPath)
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		os.Exit(1)
	}

	cellW, cellH := cfg.Terminal.CellSize()
	app, err := ui.NewApp(screen, catalog, ui.Options{
		Session:   browser.OptionsFromConfig(cfg),
		Layers:    layers,
		Cell:      render.CellSize{W: cellW, H: cellH},
		WheelStep: cfg.Gesture.WheelStep,
	}, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create application: %v\n", err)
		os.Exit(1)
	}

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	fmt.Println("\nGoodbye!")
}

func loadStations(path string) ([]station.Station, error) {
	if path == "" {
		return station.Default()
	}
	return station.Load(path)
}

// snapshot renders the initial view headlessly
func snapshot(path string, size geo.Size, cfg *config.Config, catalog *station.Catalog, layers geo.Layers, m *metrics.Metrics) error {
	s := browser.New(browser.OptionsFromConfig(cfg), nil, m)
	s.SetSize(size)
	s.SetStations(catalog.All())

	img := render.Rasterize(s.Markers(), layers, s.Projection(), s.Viewport(), s.Size(), render.DefaultRasterOptions())
	return render.WriteImage(path, img)
}

// parseSize reads a WxH pixel size
func parseSize(s string) (geo.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geo.Size{}, fmt.Errorf("invalid size %q, want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return geo.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return geo.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	return geo.Size{W: float64(width), H: float64(height)}, nil
}

func logSummary(m *metrics.Metrics) {
	summary, err := m.Summary()
	if err != nil {
		debug.Logger().Warn().Err(err).Msg("metrics summary failed")
		return
	}
	debug.Logger().Info().Msg("session metrics\n" + summary)
}
