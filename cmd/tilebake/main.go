// tilebake is a CLI utility for baking terrain tile pyramids to disk.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arpentry/relief/internal/config"
	"github.com/arpentry/relief/internal/dem"
	"github.com/arpentry/relief/internal/pipeline"
	"github.com/arpentry/relief/internal/tileset"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bake":
		cmdBake(args)
	case "tileset":
		cmdTileset(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tilebake - terrain tile pyramid baker

Usage:
  tilebake <command> [options]

Commands:
  bake -config <file> -out <dir> [-workers N]  Bake every tile level to disk
  tileset -config <file> -out <dir>            Write only the tileset descriptor
  info -config <file>                          Show dataset and pyramid summary

Examples:
  tilebake bake -config config.yaml -out ./tiles
  tilebake bake -config config.yaml -out ./tiles -workers 8
  tilebake info -config config.yaml`)
}

func openPipeline(configPath string) (*pipeline.Pipeline, *config.Config) {
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "a -config file is required")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p, err := pipeline.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return p, cfg
}

func cmdBake(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	out := fs.String("out", "tiles-out", "Output directory")
	workers := fs.Int("workers", runtime.NumCPU(), "Parallel tile builds")
	fs.Parse(args)

	p, _ := openPipeline(*configPath)
	defer p.Close()

	start := time.Now()
	if err := writeTilesetFile(p, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Baking levels 0-%d to %s (%d workers)\n", p.MaxLevel(), *out, *workers)

	var written, skipped int
	for level := uint32(0); level <= p.MaxLevel(); level++ {
		wr, sk, err := bakeLevel(p, *out, level, *workers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		written += wr
		skipped += sk
		fmt.Printf("  Level %d: %d written, %d skipped\n", level, wr, sk)
	}

	fmt.Printf("Done: %d tiles written, %d skipped in %s\n",
		written, skipped, time.Since(start).Round(time.Millisecond))
}

// bakeLevel builds every tile of one level with a bounded worker pool.
// Tiles with no elevation or no valid geometry are skipped, not failed;
// the pyramid legitimately thins out over voids.
func bakeLevel(p *pipeline.Pipeline, outDir string, level uint32, workers int) (written, skipped int, err error) {
	var wrote, skip atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(workers)

	n := uint32(1) << level
	for column := uint32(0); column < n; column++ {
		for row := uint32(0); row < n; row++ {
			addr := tileset.Address{Level: level, Column: column, Row: row}
			g.Go(func() error {
				res, err := p.BuildTile(addr)
				if errors.Is(err, dem.ErrNoData) || errors.Is(err, pipeline.ErrNoValidGeometry) {
					skip.Add(1)
					return nil
				}
				if err != nil {
					return err
				}

				path := tileset.ContentPath(outDir, addr, p.Format())
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return err
				}
				if err := os.WriteFile(path, res.Data, 0644); err != nil {
					return err
				}
				wrote.Add(1)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return int(wrote.Load()), int(skip.Load()), err
	}
	return int(wrote.Load()), int(skip.Load()), nil
}

func cmdTileset(args []string) {
	fs := flag.NewFlagSet("tileset", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	out := fs.String("out", ".", "Output directory")
	fs.Parse(args)

	p, _ := openPipeline(*configPath)
	defer p.Close()

	if err := writeTilesetFile(p, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", filepath.Join(*out, "tileset.json"))
}

func writeTilesetFile(p *pipeline.Pipeline, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.Tileset(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(outDir, "tileset.json"), data, 0644)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	p, cfg := openPipeline(*configPath)
	defer p.Close()

	meta := p.Metadata()
	total := 0
	for level := uint32(0); level <= p.MaxLevel(); level++ {
		total += 1 << (2 * level)
	}

	fmt.Printf("Dataset:    %s\n", cfg.Dataset.Path)
	fmt.Printf("Projection: %s\n", meta.Projection)
	fmt.Printf("Raster:     %d x %d samples\n", meta.Width, meta.Height)
	fmt.Printf("Extent:     [%.1f, %.1f] - [%.1f, %.1f]\n",
		meta.Bounds.Min[0], meta.Bounds.Min[1], meta.Bounds.Max[0], meta.Bounds.Max[1])
	fmt.Printf("Square:     [%.1f, %.1f] - [%.1f, %.1f]\n",
		meta.SquareBounds.Min[0], meta.SquareBounds.Min[1],
		meta.SquareBounds.Max[0], meta.SquareBounds.Max[1])
	fmt.Printf("Resolution: %.2f units/sample\n", meta.Resolution())
	fmt.Printf("Elevation:  %.1f - %.1f m\n", meta.MinElevation, meta.MaxElevation)
	fmt.Printf("Pyramid:    levels 0-%d, %d tiles max, %s payloads\n",
		p.MaxLevel(), total, p.Format())
}
