// Command terrainview flies a viewpoint across generated terrain, streaming
// chunks and frontier tiles the way a client would, and reports what the
// world did each frame.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"os"

	"github.com/gekko3d/terrastream"
	"github.com/gekko3d/terrastream/voxel/block"
	"github.com/gekko3d/terrastream/voxel/gen"
	"github.com/gekko3d/terrastream/voxel/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/image/draw"
)

var palette = map[block.ID]color.RGBA{
	block.Bedrock: {40, 40, 40, 255},
	block.Stone:   {120, 120, 120, 255},
	block.Dirt:    {110, 80, 50, 255},
	block.Grass:   {70, 150, 60, 255},
	block.Sand:    {220, 200, 140, 255},
	block.Snow:    {240, 240, 250, 255},
	block.Water:   {50, 90, 200, 255},
	block.Trunk:   {90, 60, 30, 255},
	block.Leaves:  {40, 110, 40, 255},
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML world config (defaults when empty)")
		frames      = flag.Int("frames", 600, "frames to simulate")
		speed       = flag.Float64("speed", 2, "viewpoint speed in blocks per frame")
		every       = flag.Int("report", 60, "frames between stat reports")
		dig         = flag.Int("dig", 0, "carve a shaft under the viewpoint every N frames (0 disables)")
		metricsAddr = flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :2112")
		pngPath     = flag.String("png", "", "write a top-down map of the loaded chunks")
		scale       = flag.Int("scale", 4, "pixels per column in the PNG")
		debug       = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()
	if *scale < 1 {
		*scale = 1
	}

	cfg := terrastream.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = terrastream.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(2)
		}
	}
	logger := terrastream.NewDefaultLogger("terrainview", cfg.Debug || *debug)

	metrics := terrastream.NewMetrics(prometheus.DefaultRegisterer)
	if *metricsAddr != "" {
		go func() {
			logger.Infof("metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, promhttp.Handler()); err != nil {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	registry := block.DefaultRegistry()
	mesher := mesh.NewCountingMesher(registry)
	profiler := terrastream.NewProfiler()
	world, err := terrastream.NewWorld(cfg, registry, mesher,
		terrastream.WithLogger(logger),
		terrastream.WithMetrics(metrics),
		terrastream.WithProfiler(profiler))
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(2)
	}
	generator := gen.New(cfg.Seed, cfg.WorldHeight)
	world.SetLoader(block.Bedrock, generator.LoadChunk, generator.LoadFrontier)

	pos := mgl32.Vec3{0.5, float32(generator.SeaLevel()), 0.5}
	step := mgl32.Vec3{1, 0, 0.5}.Normalize().Mul(float32(*speed))
	for frame := 1; frame <= *frames; frame++ {
		world.Recenter(pos)
		if *dig > 0 && frame%*dig == 0 {
			carve(world, pos)
		}
		world.Remesh()

		if *every > 0 && frame%*every == 0 {
			profiler.Set("live", mesher.Live())
			logger.Infof("frame %d at (%.0f, %.0f): %s", frame, pos.X(), pos.Z(), world.Stats())
			logger.Debugf("\n%s", profiler)
		}
		profiler.Frame()
		pos = pos.Add(step)
	}

	if *pngPath != "" {
		if err := writeMap(world, pos, *scale, *pngPath); err != nil {
			logger.Errorf("map: %v", err)
		} else {
			logger.Infof("map written to %s", *pngPath)
		}
	}

	world.Dispose()
	if live := mesher.Live(); live != 0 {
		logger.Warnf("%d meshes leaked", live)
	}
	logger.Infof("done: %d chunk meshes, %d frontier meshes built", mesher.ChunkCalls, mesher.FrontierCalls)
}

// carve removes the top four voxels of the column under pos.
func carve(world *terrastream.World, pos mgl32.Vec3) {
	x := int(math.Floor(float64(pos.X())))
	z := int(math.Floor(float64(pos.Z())))
	if h, ok := world.HeightAt(x, z); ok && h > 4 {
		world.SetColumn(x, z, h-4, 4, block.Empty)
	}
}

// writeMap renders the top block of every loaded column around pos, shaded
// by height, and scales it up for viewing.
func writeMap(world *terrastream.World, pos mgl32.Vec3, scale int, path string) error {
	cfg := world.Config()
	r := int(cfg.ChunkRadius)
	cx, cz := terrastream.ChunkCoords(pos)
	side := (2*r + 1) * terrastream.ChunkWidth
	x0 := (cx - r) * terrastream.ChunkWidth
	z0 := (cz - r) * terrastream.ChunkWidth

	src := image.NewRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < side; i++ {
		for k := 0; k < side; k++ {
			h, ok := world.HeightAt(x0+i, z0+k)
			if !ok || h == 0 {
				continue
			}
			c := palette[world.GetBlock(x0+i, h-1, z0+k)]
			shade := 0.5 + 0.5*float64(h)/float64(cfg.WorldHeight)
			src.Set(i, k, color.RGBA{
				R: uint8(float64(c.R) * shade),
				G: uint8(float64(c.G) * shade),
				B: uint8(float64(c.B) * shade),
				A: 255,
			})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, side*scale, side*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
