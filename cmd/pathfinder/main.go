package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/lukaszgryglicki/cnossos-paths/internal/pathfinder"
)

func main() {
	app := &cli.App{
		Name:  "pathfinder",
		Usage: "CNOSSOS-EU propagation path finder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "scenes/config.yaml",
				Usage:   "scene and settings file (YAML or JSON)",
			},
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"DEBUG"},
				Usage:   "verbose debug output",
			},
			&cli.StringFlag{
				Name:    "cpuprofile",
				EnvVars: []string{"PROFILE"},
				Usage:   "write a CPU profile to this file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "compute every source/receiver path",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "threads", Aliases: []string{"t"}, Usage: "worker count, 0 = one per CPU"},
					&cli.IntFlag{Name: "order", Usage: "maximum reflection order"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "GeoJSON output file"},
					&cli.BoolFlag{Name: "progress", Usage: "print [PROGRESS] lines"},
					&cli.StringFlag{Name: "metrics-addr", EnvVars: []string{"METRICS_ADDR"}, Usage: "serve prometheus metrics on this address while running"},
				},
				Action: runCommand,
			},
			{
				Name:   "scene",
				Usage:  "build the scene and print its statistics",
				Action: sceneCommand,
			},
			{
				Name:  "cones",
				Usage: "write the mirror tree visibility cones of one receiver as GeoJSON",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{Name: "receiver", Aliases: []string{"r"}, Required: true, Usage: "receiver position x,y[,z]"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "cones.geojson", Usage: "GeoJSON output file"},
				},
				Action: conesCommand,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	pathfinder.Debug = c.Bool("debug")
	level := slog.LevelInfo
	if pathfinder.Debug {
		level = slog.LevelDebug
	}
	runID := uuid.New().String()
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run", runID)
	slog.SetDefault(l)
	pathfinder.SetLogger(l)
	return nil
}

func startProfile(c *cli.Context) (func(), error) {
	path := c.String("cpuprofile")
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

func runCommand(c *cli.Context) error {
	stop, err := startProfile(c)
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var ov pathfinder.Overrides
	if c.IsSet("threads") {
		n := c.Int("threads")
		ov.Threads = &n
	}
	if c.IsSet("order") {
		n := c.Int("order")
		ov.Order = &n
	}
	ov.Out = c.String("out")
	pathfinder.Progress = c.Bool("progress")

	reg := prometheus.NewRegistry()
	if addr := c.String("metrics-addr"); addr != "" {
		m, err := pathfinder.ServeMetrics(addr, reg)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Close(sctx)
		}()
	}

	snap, err := pathfinder.Run(ctx, c.String("config"), ov, reg)
	if pathfinder.Debug {
		if werr := pathfinder.WriteMetrics(os.Stderr, reg); werr != nil {
			slog.Warn("metrics dump failed", "err", werr)
		}
	}
	if err != nil {
		return err
	}
	fmt.Printf("pairs=%d failed=%d dropped=%d paths=%v\n", snap.PairsProcessed, snap.PairsFailed, snap.PairsDropped, snap.Paths)
	return nil
}

func sceneCommand(c *cli.Context) error {
	cfg, err := pathfinder.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	scene, err := cfg.BuildScene()
	if err != nil {
		return err
	}
	b := scene.Bound()
	fmt.Printf("buildings=%d walls=%d triangles=%d ground=%d\n",
		scene.BuildingCount(), scene.WallCount(), scene.TriangleCount(), scene.GroundRegionCount())
	fmt.Printf("bounds=[%.2f %.2f]-[%.2f %.2f]\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	return nil
}

func conesCommand(c *cli.Context) error {
	xyz := c.Float64Slice("receiver")
	if len(xyz) < 2 || len(xyz) > 3 {
		return fmt.Errorf("--receiver wants x,y[,z], got %v", xyz)
	}
	rcv := pathfinder.Point3{X: xyz[0], Y: xyz[1]}
	if len(xyz) == 3 {
		rcv.Z = xyz[2]
	}
	cfg, err := pathfinder.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	scene, err := cfg.BuildScene()
	if err != nil {
		return err
	}
	asm := pathfinder.NewPathAssembler(scene, cfg.Settings)
	mirrors, err := asm.MirrorIndex(c.Context, rcv, nil)
	if err != nil {
		return err
	}
	defer mirrors.Release()

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	if err := mirrors.ExportVisibility(f); err != nil {
		_ = f.Close()
		return err
	}
	fmt.Printf("images=%d out=%s\n", mirrors.Len(), c.String("out"))
	return f.Close()
}
