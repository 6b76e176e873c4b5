package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/Anvesh-Bunga/MTP-MTECH/bwp"
	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/lbt"
	"github.com/Anvesh-Bunga/MTP-MTECH/monitoring"
	"github.com/Anvesh-Bunga/MTP-MTECH/phy"
	"github.com/Anvesh-Bunga/MTP-MTECH/rlenv"
	"github.com/Anvesh-Bunga/MTP-MTECH/sched"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
	"github.com/Anvesh-Bunga/MTP-MTECH/simulation"
)

var (
	flagUes            int
	flagBwpRbs         []int
	flagWifi           []float64
	flagAlgorithm      string
	flagWindows        int
	flagWindowSlots    int
	flagMaxScheduled   int
	flagArrivalRate    float64
	flagMeanPacketBits float64
	flagSwitchLatency  float64
	flagEpsilon        float64
	flagEpsilonMin     float64
	flagEpsilonDecay   float64
	flagAlpha          float64
	flagBeta           float64
	flagMaxThroughput  float64
	flagEpisodeSteps   int
	flagSeed           int64
	flagNoMonitor      bool
	flagMonitorPort    int
	flagOpenMonitor    bool
	flagNoRecording    bool
	flagOutput         string
	flagClickHouse     string
	flagTraceAccess    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an NR-U spectrum sharing simulation",
	Run: func(_ *cobra.Command, _ []string) {
		runSimulation()
	},
}

func init() {
	f := runCmd.Flags()

	f.IntVar(&flagUes, "ues", 24,
		"number of user equipments")
	f.IntSliceVar(&flagBwpRbs, "bwp-rbs", []int{50, 70, 100},
		"resource blocks per sub-band, one entry per sub-band")
	f.Float64SliceVar(&flagWifi, "wifi-interference",
		[]float64{0.1, 0.2, 0.3},
		"WiFi activity fraction per sub-band")
	f.StringVar(&flagAlgorithm, "algorithm", "rla",
		"assignment policy, lca or rla")
	f.IntVar(&flagWindows, "windows", 200,
		"number of decision windows to run")
	f.IntVar(&flagWindowSlots, "window-slots", 500,
		"slots per decision window")
	f.IntVar(&flagMaxScheduled, "max-scheduled-ues", 16,
		"users a sub-band schedules per slot")
	f.Float64Var(&flagArrivalRate, "arrival-rate", 200,
		"mean packet arrivals per user per second")
	f.Float64Var(&flagMeanPacketBits, "mean-packet-bits", 4000,
		"mean packet size in bits")
	f.Float64Var(&flagSwitchLatency, "switch-latency", 0.001,
		"sub-band retune time in seconds")
	f.Float64Var(&flagEpsilon, "epsilon", 1.0,
		"initial exploration rate of the learned policy")
	f.Float64Var(&flagEpsilonMin, "epsilon-min", 0.01,
		"exploration rate floor")
	f.Float64Var(&flagEpsilonDecay, "epsilon-decay", 0.995,
		"per-window exploration decay")
	f.Float64Var(&flagAlpha, "alpha", 1.0,
		"delay weight of the reward")
	f.Float64Var(&flagBeta, "beta", 1.0,
		"throughput shortfall weight of the reward")
	f.Float64Var(&flagMaxThroughput, "max-throughput", 1000,
		"throughput target of the reward, in Mbps")
	f.IntVar(&flagEpisodeSteps, "episode-steps", 1000,
		"decision windows per learning episode")
	f.Int64Var(&flagSeed, "seed", 1,
		"seed of the random sources")
	f.BoolVar(&flagNoMonitor, "no-monitor", false,
		"disable the monitoring server")
	f.IntVar(&flagMonitorPort, "monitor-port", 0,
		"fixed port for the monitoring server")
	f.BoolVar(&flagOpenMonitor, "open-monitor", false,
		"open the monitoring page in a browser")
	f.BoolVar(&flagNoRecording, "no-recording", false,
		"disable metric recording")
	f.StringVar(&flagOutput, "output", "",
		"output file name, without extension ($NRUSIM_OUTPUT)")
	f.StringVar(&flagClickHouse, "clickhouse", "",
		"record into a clickhouse://host:port/db URL ($NRUSIM_CLICKHOUSE)")
	f.BoolVar(&flagTraceAccess, "trace-access", false,
		"record every channel access attempt")

	rootCmd.AddCommand(runCmd)
}

func runSimulation() {
	algorithm := parseAlgorithm(flagAlgorithm)
	validateScenario()

	if flagOutput == "" {
		flagOutput = os.Getenv("NRUSIM_OUTPUT")
	}
	if flagClickHouse == "" {
		flagClickHouse = os.Getenv("NRUSIM_CLICKHOUSE")
	}

	s := buildSimulation()
	defer s.Terminate()

	engine := s.GetEngine()
	recorder := s.GetDataRecorder()

	execRecorder := datarecording.NewExecRecorder(recorder)
	execRecorder.Start()
	execRecorder.AddProperty("Seed", strconv.FormatInt(flagSeed, 10))
	execRecorder.AddProperty("Algorithm", algorithm.Name())

	slotFreq := 2 * sim.KHz
	windowDuration :=
		slotFreq.Period() * sim.VTimeInSec(flagWindowSlots)
	horizon := windowDuration*sim.VTimeInSec(flagWindows-1) +
		windowDuration/2

	lbtComp := lbt.MakeBuilder().
		WithEngine(engine).
		WithSlotFreq(slotFreq).
		WithHorizon(horizon).
		WithSeed(flagSeed).
		Build("LBT")
	for i := range flagBwpRbs {
		lbtComp.AddBwp(i, flagWifi[i]*float64(slotFreq))
	}

	if flagTraceAccess {
		lbtComp.AcceptHook(lbt.NewAccessRecorder(engine, recorder))
	}

	registry := bwp.MakeBuilder().
		WithEngine(engine).
		WithSwitchLatency(sim.VTimeInSec(flagSwitchLatency)).
		Build("Bwp")

	link := phy.MakeBuilder().
		WithEngine(engine).
		WithChannelAccess(lbtComp).
		WithCapacities(registry).
		WithSlotFreq(slotFreq).
		WithArrivalRate(flagArrivalRate).
		WithMeanPacketBits(flagMeanPacketBits).
		WithMaxScheduledUes(flagMaxScheduled).
		WithHorizon(horizon).
		WithSeed(flagSeed + 1).
		Build("Phy")
	registry.SetNotifier(link)

	for i, rbs := range flagBwpRbs {
		registry.AddBwp(i, rbs)
	}
	for ue := 0; ue < flagUes; ue++ {
		registry.AddUe(ue)
		link.AddUe(ue, registry.DefaultBwp())
	}

	schedBuilder := sched.MakeBuilder().
		WithEngine(engine).
		WithAccessStats(lbtComp).
		WithRegistry(registry).
		WithLinkStats(link).
		WithRecorder(recorder).
		WithAlgorithm(algorithm).
		WithSlotFreq(slotFreq).
		WithWindowSlots(flagWindowSlots).
		WithMaxScheduledUes(flagMaxScheduled).
		WithEpsilon(flagEpsilon).
		WithEpsilonMin(flagEpsilonMin).
		WithEpsilonDecay(flagEpsilonDecay).
		WithHorizon(horizon).
		WithSeed(flagSeed + 2)

	var env *rlenv.Env
	if algorithm == sched.RLA {
		env = rlenv.MakeBuilder().
			WithOracle(rlenv.NewGreedyOracle(flagBwpRbs)).
			WithRecorder(recorder).
			WithTimeTeller(engine).
			WithAlpha(flagAlpha).
			WithBeta(flagBeta).
			WithMaxThroughput(flagMaxThroughput).
			WithEpisodeSteps(flagEpisodeSteps).
			WithSeed(flagSeed + 3).
			Build("Env")
		schedBuilder = schedBuilder.WithEnv(env)
	}

	scheduler := schedBuilder.Build("Sched")

	s.RegisterComponent(lbtComp)
	s.RegisterComponent(registry)
	s.RegisterComponent(link)
	s.RegisterComponent(scheduler)

	if monitor := s.GetMonitor(); monitor != nil {
		monitor.RegisterQueueSource(link)

		bar := monitor.CreateProgressBar(
			"Decision windows", uint64(flagWindows))
		scheduler.AcceptHook(windowProgressHook{bar: bar})

		if flagOpenMonitor {
			err := browser.OpenURL(monitor.URL())
			if err != nil {
				fmt.Fprintf(os.Stderr,
					"Cannot open browser: %s\n", err)
			}
		}
	}

	link.TickNow()
	scheduler.StartAt(0)

	err := engine.Run()
	if err != nil {
		log.Panic(err)
	}

	execRecorder.End()

	printSummary(scheduler, lbtComp, registry, link, env)
}

func parseAlgorithm(name string) sched.Algorithm {
	switch name {
	case "lca":
		return sched.LCA
	case "rla":
		return sched.RLA
	default:
		log.Fatalf("unknown algorithm %q, expected lca or rla", name)
		return 0
	}
}

func validateScenario() {
	if flagUes < 1 {
		log.Fatalf("at least one user equipment is required")
	}

	if len(flagBwpRbs) == 0 {
		log.Fatalf("at least one sub-band is required")
	}

	if len(flagWifi) != len(flagBwpRbs) {
		log.Fatalf(
			"%d wifi interference fractions given for %d sub-bands",
			len(flagWifi), len(flagBwpRbs))
	}

	if flagWindows < 1 {
		log.Fatalf("at least one decision window is required")
	}
}

func buildSimulation() *simulation.Simulation {
	builder := simulation.MakeBuilder()

	if flagNoMonitor {
		builder = builder.WithoutMonitoring()
	} else if flagMonitorPort > 0 {
		builder = builder.WithMonitorPort(flagMonitorPort)
	}

	if flagNoRecording {
		builder = builder.WithoutDataRecording()
	} else if flagClickHouse != "" {
		builder = builder.WithRecorderConfig(datarecording.RecorderConfig{
			Type:    "clickhouse",
			ConnStr: flagClickHouse,
		})
	} else if flagOutput != "" {
		builder = builder.WithOutputFileName(flagOutput)
	}

	return builder.Build()
}

// windowProgressHook feeds each completed decision window into the
// monitor's progress bar.
type windowProgressHook struct {
	bar *monitoring.ProgressBar
}

func (h windowProgressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sched.HookPosWindowDone {
		return
	}

	h.bar.SetFinished(uint64(ctx.Item.(int)) + 1)
}

func printSummary(
	scheduler *sched.Scheduler,
	lbtComp *lbt.Comp,
	registry *bwp.Manager,
	link *phy.Comp,
	env *rlenv.Env,
) {
	fmt.Printf("\nRan %d decision windows with the %s policy.\n",
		scheduler.CurrentWindow(), scheduler.Algorithm().Name())

	if env != nil {
		fmt.Printf("Exploration rate ended at %.4f, episode %d step %d, "+
			"episode reward %.2f.\n",
			scheduler.Epsilon(), env.Episode(), env.Step(),
			env.TotalReward())
	}

	fmt.Printf("\n%-6s %6s %6s %10s %10s %6s\n",
		"bwp", "rbs", "ues", "failure", "wifi", "cw")
	for _, id := range registry.BwpIDs() {
		fmt.Printf("%-6d %6d %6d %10.3f %10.3f %6d\n",
			id,
			registry.NumRbs(id),
			registry.ActiveUes(id),
			lbtComp.FailureRate(id),
			lbtComp.WifiOccupancy(id),
			lbtComp.ContentionWindow(id))
	}

	totalQueue := 0
	totalDelay := 0.0
	totalThroughput := 0.0
	ues := registry.UeIDs()
	for _, ue := range ues {
		totalQueue += link.QueueSize(ue)
		totalDelay += float64(link.HolDelay(ue))
		totalThroughput += link.AvgThroughput(ue)
	}

	n := float64(len(ues))
	if n > 0 {
		fmt.Printf("\nPer user: queue %.1f packets, head-of-line delay "+
			"%.2f ms, smoothed throughput %.3f Mbps.\n",
			float64(totalQueue)/n, totalDelay/n*1000, totalThroughput/n)
	}
}
