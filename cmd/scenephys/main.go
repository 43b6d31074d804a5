package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/san-kum/scenephys/internal/config"
	"github.com/san-kum/scenephys/internal/physics"
	"github.com/san-kum/scenephys/internal/scenegraph"
	"github.com/san-kum/scenephys/internal/solver"
	"github.com/san-kum/scenephys/internal/stream"
	"github.com/san-kum/scenephys/internal/viz"
)

var (
	configFile string
	preset     string
	dt         float64
	steps      int
	numBodies  int
	savePath   string
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scenephys",
		Short: "rigid body physics for 3d scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "run the falling-bodies demo scene",
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	demoCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	demoCmd.Flags().Float64Var(&dt, "dt", float64(config.DefaultDt), "timestep")
	demoCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	demoCmd.Flags().IntVar(&numBodies, "bodies", config.DefaultSpawnBodies, "number of falling bodies")
	demoCmd.Flags().StringVar(&savePath, "save", "", "write the final scene snapshot to this file")

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "summarize a saved scene snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectSnapshot,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the demo scene with live visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().IntVar(&numBodies, "bodies", config.DefaultSpawnBodies, "number of falling bodies")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream debug geometry to websocket viewers",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	serveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	serveCmd.Flags().IntVar(&numBodies, "bodies", config.DefaultSpawnBodies, "number of falling bodies")
	serveCmd.Flags().StringVar(&addr, "addr", ":8089", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(demoCmd, inspectCmd, liveCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file and CLI flags, in that
// order of increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = float32(dt)
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("bodies") {
		cfg.Spawn.Bodies = numBodies
	}

	return cfg, cfg.Validate()
}

// buildDemoScene assembles a ground trimesh derived from a mesh node
// plus a column of falling balls above it.
func buildDemoScene(cfg *config.Config, logger *slog.Logger) (*physics.World, *physics.Binder, *scenegraph.Graph) {
	graph := scenegraph.New()
	root := graph.AddNode(scenegraph.NewNode("Scene"))

	ground := scenegraph.NewNode("Ground")
	ground.Mesh = &scenegraph.MeshData{
		Vertices: []mgl32.Vec3{
			{-20, 0, -20}, {20, 0, -20}, {20, 0, 20}, {-20, 0, 20},
		},
		Indices: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
	groundNode := graph.AddNode(ground)
	graph.Link(root, groundNode)

	world := physics.NewWorld()
	world.SetLogger(logger)
	world.Gravity = mgl32.Vec3{cfg.Gravity.X, cfg.Gravity.Y, cfg.Gravity.Z}
	world.IntegrationParameters.Dt = cfg.Dt
	world.IntegrationParameters.MaxVelocityIterations = cfg.Iterations.Velocity
	world.IntegrationParameters.MaxPositionIterations = cfg.Iterations.Position

	binder := physics.NewBinder()

	groundBody := world.AddBody(solver.NewRigidBody(solver.BodyStatusStatic))
	binder.Bind(groundNode, groundBody)
	mesh := physics.MakeTrimesh(graph, groundNode, logger)
	world.AddCollider(solver.NewCollider(mesh), groundBody)

	for i := 0; i < cfg.Spawn.Bodies; i++ {
		body := solver.NewRigidBody(solver.BodyStatusDynamic)
		offset := float32(i-cfg.Spawn.Bodies/2) * cfg.Spawn.Spacing
		body.Position = mgl32.Vec3{offset, cfg.Spawn.Height + float32(i)*cfg.Spawn.Radius, 0}
		h := world.AddBody(body)
		world.AddCollider(solver.NewCollider(solver.Ball{Radius: cfg.Spawn.Radius}), h)
	}

	return world, binder, graph
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	world, _, _ := buildDemoScene(cfg, logger)

	fmt.Println(viz.HeaderStyle.Render("scenephys demo"))
	fmt.Println(viz.StatRow("bodies", fmt.Sprintf("%d", world.BodyCount())))
	fmt.Println(viz.StatRow("colliders", fmt.Sprintf("%d", world.ColliderCount())))
	fmt.Println(viz.StatRow("dt", fmt.Sprintf("%.5fs", cfg.Dt)))
	fmt.Println(viz.StatRow("steps", fmt.Sprintf("%d", cfg.Steps)))
	fmt.Println()

	stepTimes := make([]float64, 0, cfg.Steps)
	var prev time.Duration
	start := time.Now()
	for i := 0; i < cfg.Steps; i++ {
		world.Step()
		total := world.Statistics().StepTime
		stepTimes = append(stepTimes, float64(total-prev)/float64(time.Millisecond))
		prev = total
	}
	elapsed := time.Since(start)

	fmt.Println(viz.StatRow("wall time", elapsed.String()))
	fmt.Println(viz.StatRow("sim time", fmt.Sprintf("%.2fs", float32(cfg.Steps)*cfg.Dt)))
	fmt.Println()
	fmt.Println(viz.StepTimePlot(stepTimes, 80, 10))

	if savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return err
		}
		defer f.Close()
		desc := world.GenerateDesc()
		if err := desc.Save(f); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("\nsnapshot written to %s\n", savePath)
	}

	return nil
}

func inspectSnapshot(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	desc, err := physics.LoadDesc(f)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "gravity\t(%.2f, %.2f, %.2f)\n",
		desc.Gravity.X(), desc.Gravity.Y(), desc.Gravity.Z())
	fmt.Fprintf(w, "dt\t%.5fs\n", desc.IntegrationParameters.DeltaTime)
	fmt.Fprintf(w, "bodies\t%d\n", len(desc.Bodies))
	fmt.Fprintf(w, "colliders\t%d\n", len(desc.Colliders))
	fmt.Fprintf(w, "joints\t%d\n", len(desc.Joints))
	if err := w.Flush(); err != nil {
		return err
	}

	byStatus := map[string]int{}
	for _, b := range desc.Bodies {
		switch b.Status {
		case 0:
			byStatus["dynamic"]++
		case 1:
			byStatus["static"]++
		case 2:
			byStatus["kinematic"]++
		}
	}
	fmt.Println("\nbody status:")
	for _, name := range []string{"dynamic", "static", "kinematic"} {
		if byStatus[name] > 0 {
			fmt.Printf("  %s: %d\n", name, byStatus[name])
		}
	}

	byShape := map[string]int{}
	for _, c := range desc.Colliders {
		byShape[shapeName(c.Shape.ID())]++
	}
	fmt.Println("\ncollider shapes:")
	fmt.Fprintln(w, "SHAPE\tCOUNT")
	for name, count := range byShape {
		fmt.Fprintf(w, "%s\t%d\n", name, count)
	}
	return w.Flush()
}

func shapeName(id uint32) string {
	names := []string{
		"ball", "cylinder", "round_cylinder", "cone", "cuboid",
		"capsule", "segment", "triangle", "trimesh", "heightfield",
	}
	if int(id) < len(names) {
		return names[id]
	}
	return fmt.Sprintf("unknown(%d)", id)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	world, _, _ := buildDemoScene(cfg, logger)

	p := tea.NewProgram(viz.NewModel(world))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	world, _, _ := buildDemoScene(cfg, logger)

	broadcaster := stream.NewBroadcaster(logger)
	defer broadcaster.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", broadcaster)

	go func() {
		ticker := time.NewTicker(time.Duration(float64(cfg.Dt) * float64(time.Second)))
		defer ticker.Stop()
		ctx := &physics.DrawContext{}
		var tick uint64
		for range ticker.C {
			world.Step()
			tick++
			if broadcaster.ClientCount() == 0 {
				continue
			}
			ctx.Clear()
			world.DebugDraw(ctx)
			broadcaster.Broadcast(stream.FrameFrom(tick, ctx))
		}
	}()

	logger.Info("serving debug geometry", "addr", addr, "path", "/ws")
	return http.ListenAndServe(addr, mux)
}
