package viewer

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"gwmap/highlight"
	"gwmap/imagecache"
	"gwmap/surface"
	"gwmap/utils/config"
)

// Run wires a headless console session from the environment and blocks until
// the process is told to stop. This is the demo entry point; real frontends
// construct a [Session] themselves with their own surface and renderer.
func Run(dataURL string) {
	cfg := Config{
		DataURL:     dataURL,
		MapImageURL: config.GetEnviroVarOr("GWMAP_MAP_IMAGE", ""),
		Bounds:      surface.Bounds{MinLat: -90, MinLng: -180, MaxLat: 90, MaxLng: 180},
		WarmLimit:   config.ParsedEnviroVarOr[int]("GWMAP_WARM_LIMIT", 10),
	}

	// Persistent emphasis is the default; set GWMAP_HIGHLIGHT=transient for
	// the auto-clearing flavour.
	if strings.EqualFold(config.GetEnviroVarOr("GWMAP_HIGHLIGHT", "persistent"), "transient") {
		cfg.HighlightPolicy = highlight.POLICY_TRANSIENT
	}

	var disk *imagecache.DiskStore
	if dir := config.GetEnviroVarOr("GWMAP_CACHE_DIR", ""); dir != "" {
		var err error
		disk, err = imagecache.OpenDiskStore(dir)
		if err != nil {
			log.Fatalf("Cannot open image store at '%s':\n%v", dir, err)
		}
	}

	// Clipboard is the reference sink; the buffer flavour keeps headless
	// boxes (no display server) working.
	var sink surface.ExportSink = surface.ClipboardSink{}
	if strings.EqualFold(config.GetEnviroVarOr("GWMAP_SINK", "clipboard"), "buffer") {
		sink = &surface.BufferSink{}
	}

	surf := surface.NewConsoleSurface()
	sess := NewSession(cfg, surf, surface.ConsolePanel{}, sink, imagecache.New(disk))

	fmt.Printf("\nLoading map data from %s..\n", dataURL)

	if err := sess.Start(); err != nil {
		log.Fatalf("Cannot start viewer session:\n%v", err)
	}

	// Wait for Ctrl+C or kill.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-c

	fmt.Printf("\nShutting down viewer with signal: %s\n", strings.ToUpper(sig.String()))

	// Since the `defer` keyword only works in successful exits,
	// closing explicitly here makes sure we always properly cleanup.
	if disk != nil {
		if err := disk.Close(); err != nil {
			log.Printf("Error closing image store: %v", err)
		}
	}
}
