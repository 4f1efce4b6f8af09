package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banyan-robotics/banyan/internal/api"
	"github.com/banyan-robotics/banyan/internal/auto"
	"github.com/banyan-robotics/banyan/internal/config"
	"github.com/banyan-robotics/banyan/internal/field"
	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/mqtt"
	"github.com/banyan-robotics/banyan/internal/sim"
	"github.com/banyan-robotics/banyan/internal/storage/postgres"
	"github.com/banyan-robotics/banyan/internal/telemetry"
	"github.com/banyan-robotics/banyan/internal/version"
	"github.com/banyan-robotics/banyan/internal/vision"
)

func main() {
	var (
		configPath  = flag.String("config", "config/robot.yaml", "robot configuration file")
		tuningPath  = flag.String("tuning", "", "tuning overrides file (optional)")
		routinePath = flag.String("routine", "routines/demo.json", "routine to execute")
		layoutPath  = flag.String("layout", "", "landmark layout file (optional)")
		tablePath   = flag.String("locations", "", "named location table file (optional)")
		withMQTT    = flag.Bool("mqtt", false, "mirror telemetry to the MQTT broker")
		withDB      = flag.Bool("db", false, "persist telemetry to Postgres")
	)
	flag.Parse()

	robotCfg, err := config.LoadRobotConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load robot config: %v", err)
	}

	tuning := &config.TuningConfig{}
	if *tuningPath != "" {
		tuning, err = config.LoadTuningConfig(*tuningPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	layout := defaultLayout()
	if *layoutPath != "" {
		layout, err = vision.LoadLayout(*layoutPath)
		if err != nil {
			log.Fatalf("failed to load landmark layout: %v", err)
		}
	}

	table := field.DefaultTable()
	if *tablePath != "" {
		table, err = field.LoadTable(*tablePath)
		if err != nil {
			log.Fatalf("failed to load location table: %v", err)
		}
	}

	if *withDB {
		pg, err := postgres.New(robotCfg.Robot.ID)
		if err != nil {
			log.Printf("postgres unavailable, events stay in memory: %v", err)
		} else {
			telemetry.SetPostgresClient(pg)
			defer pg.Close()
		}
	}

	if *withMQTT {
		client := mqtt.NewClient("banyan-" + robotCfg.Robot.ID)
		if client.StartWithRetry() {
			telemetry.SetUplink(client, "banyan/"+robotCfg.Robot.ID+"/telemetry")
			defer client.Disconnect()
		}
	}

	period := robotCfg.Period()
	drive := sim.NewDrivetrain(period.Seconds())
	follower := sim.NewFollower(drive)
	mechanisms := sim.NewMechanisms(25)
	camera := sim.NewCamera(drive, layout, 3.0)

	builder := &auto.Builder{
		Table:      table,
		Layout:     layout,
		Provider:   camera,
		AlignerCfg: tuning.AlignerConfig(),
		Drivetrain: drive,
		Follower:   follower,
		Mechanisms: mechanisms,
	}

	orch, startPose, err := builder.BuildFromFile(*routinePath)
	if err != nil {
		log.Fatalf("failed to build routine: %v", err)
	}

	api.SetStatusSource(&robotStatus{orch: orch, drive: drive})
	api.SetRoutineController(orch)
	go func() {
		if err := api.ListenAndServe(robotCfg.APIPort()); err != nil {
			log.Printf("api server failed: %v", err)
		}
	}()

	hostname, _ := os.Hostname()
	telemetry.Emit("info", "system.startup", "banyan starting", map[string]interface{}{
		"robot":    robotCfg.Robot.ID,
		"version":  version.Version,
		"hostname": hostname,
		"pid":      os.Getpid(),
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	orch.Start(startPose)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-sigs:
			orch.Cancel()
			break loop
		case <-ticker.C:
			follower.Step()
			mechanisms.Step()
			orch.Update()
			drive.Step()

			if orch.CurrentState() == auto.StateComplete {
				break loop
			}
		}
	}

	telemetry.Emit("info", "system.shutdown", "banyan stopping", map[string]interface{}{
		"robot": robotCfg.Robot.ID,
		"state": orch.CurrentState().String(),
	})
}

// robotStatus adapts the running orchestrator to the API's status
// endpoint.
type robotStatus struct {
	orch  *auto.Orchestrator
	drive *sim.Drivetrain
}

func (s *robotStatus) Status() api.RobotStatus {
	pose := s.drive.Pose()
	return api.RobotStatus{
		Mode:           "auto",
		State:          s.orch.CurrentState().String(),
		TaskIndex:      s.orch.Context().CurrentTaskIndex(),
		TaskCount:      s.orch.Context().TaskCount(),
		X:              pose.X(),
		Y:              pose.Y(),
		HeadingDegrees: pose.Rotation.Degrees(),
	}
}

// defaultLayout matches the landmarks referenced by the built-in
// location table.
func defaultLayout() vision.Layout {
	return vision.Layout{
		12: geom.PoseFromDegrees(0.85, 0.65, 54.0),
		13: geom.PoseFromDegrees(0.85, 7.40, -54.0),
		22: geom.PoseFromDegrees(4.90, 3.31, -60.0),
	}
}
