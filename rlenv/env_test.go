package rlenv

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Anvesh-Bunga/MTP-MTECH/sched"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

type scriptedOracle struct {
	action  int
	lastObs []float64
}

func (o *scriptedOracle) Act(obs []float64) int {
	o.lastObs = obs
	return o.action
}

type recordedRow struct {
	table string
	entry any
}

type captureRecorder struct {
	tables []string
	rows   []recordedRow
}

func (r *captureRecorder) CreateTable(tableName string, sampleEntry any) {
	r.tables = append(r.tables, tableName)
}

func (r *captureRecorder) InsertData(tableName string, entry any) {
	r.rows = append(r.rows, recordedRow{table: tableName, entry: entry})
}

func (r *captureRecorder) ListTables() []string { return r.tables }
func (r *captureRecorder) Flush()               {}
func (r *captureRecorder) Close() error         { return nil }

func twoUeSnapshot() sched.Snapshot {
	return sched.Snapshot{
		Bwps: []sched.BwpSnapshot{
			{BwpID: 0, WifiOccupancy: 0.1, FailureRate: 0.2,
				ContentionWindow: 8},
			{BwpID: 1, WifiOccupancy: 0.3, FailureRate: 0.4,
				ContentionWindow: 16},
			{BwpID: 2, WifiOccupancy: 0.5, FailureRate: 0.6,
				ContentionWindow: 32},
		},
		Ues: []sched.UeSnapshot{
			{UeID: 4, CurrentBwp: 1, QueueSize: 3,
				HolDelay: sim.VTimeInSec(0.002), AvgBitsPerRb: 22.0,
				Throughput: 300.0, AvgThroughput: 280.0},
			{UeID: 9, CurrentBwp: 2, QueueSize: 7,
				HolDelay: sim.VTimeInSec(0.004), AvgBitsPerRb: 18.0,
				Throughput: 200.0, AvgThroughput: 240.0},
		},
	}
}

var _ = Describe("Env", func() {
	var (
		oracle *scriptedOracle
		env    *Env
	)

	BeforeEach(func() {
		oracle = &scriptedOracle{}
		env = MakeBuilder().WithOracle(oracle).Build("Env")
		env.UpdateSnapshot(twoUeSnapshot())
	})

	It("should panic when built without an oracle", func() {
		Expect(func() {
			MakeBuilder().Build("Env")
		}).To(Panic())
	})

	Context("when building the observation", func() {
		It("should produce the documented length", func() {
			obs := env.Observation()

			Expect(obs).To(HaveLen(2*(5+3) + 3*3))
		})

		It("should lay out the user metrics and one-hot encoding", func() {
			obs := env.Observation()

			Expect(obs[0]).To(Equal(3.0))
			Expect(obs[1]).To(BeNumerically("~", 0.002, 1e-12))
			Expect(obs[2]).To(Equal(22.0))
			Expect(obs[3]).To(Equal(300.0))
			Expect(obs[4]).To(Equal(280.0))
			Expect(obs[5:8]).To(Equal([]float64{0, 1, 0}))

			Expect(obs[8]).To(Equal(7.0))
			Expect(obs[13:16]).To(Equal([]float64{0, 0, 1}))
		})

		It("should close the vector with the sub-band statistics", func() {
			obs := env.Observation()

			Expect(obs[16:19]).To(Equal([]float64{0.1, 0.2, 8}))
			Expect(obs[19:22]).To(Equal([]float64{0.3, 0.4, 16}))
			Expect(obs[22:25]).To(Equal([]float64{0.5, 0.6, 32}))
		})
	})

	Context("when choosing actions", func() {
		It("should sample actions inside the action space", func() {
			for i := 0; i < 100; i++ {
				action := env.SampleAction()
				Expect(action).To(SatisfyAll(
					BeNumerically(">=", 0),
					BeNumerically("<", 3),
				))
			}
		})

		It("should forward the observation to the oracle", func() {
			oracle.action = 2

			action := env.OracleAction()

			Expect(action).To(Equal(2))
			Expect(oracle.lastObs).To(HaveLen(25))
		})

		It("should direct every user to the selected sub-band", func() {
			Expect(env.Assignments(1)).To(Equal([]int{1, 1}))
		})

		It("should wrap actions beyond the action space", func() {
			Expect(env.Assignments(4)).To(Equal([]int{1, 1}))
		})

		It("should return no assignment without sub-bands", func() {
			env.UpdateSnapshot(sched.Snapshot{})

			Expect(env.Assignments(0)).To(BeNil())
		})
	})

	Context("when computing the reward", func() {
		It("should charge delay and throughput shortfall", func() {
			reward := env.Reward()

			Expect(reward).To(BeNumerically("~", -(0.003 + 500.0), 1e-9))
		})

		It("should weight the terms", func() {
			env = MakeBuilder().
				WithOracle(oracle).
				WithAlpha(100.0).
				WithBeta(0.5).
				Build("Env")
			env.UpdateSnapshot(twoUeSnapshot())

			reward := env.Reward()

			Expect(reward).To(BeNumerically("~", -(0.3 + 250.0), 1e-9))
		})

		It("should skip the delay average without users", func() {
			env.UpdateSnapshot(sched.Snapshot{})

			Expect(env.Reward()).To(BeNumerically("~", -1000.0, 1e-9))
		})
	})

	Context("when accounting episodes", func() {
		BeforeEach(func() {
			env = MakeBuilder().
				WithOracle(oracle).
				WithEpisodeSteps(3).
				Build("Env")
			env.UpdateSnapshot(twoUeSnapshot())
		})

		It("should accumulate the reward over steps", func() {
			env.RecordStep()
			env.RecordStep()

			Expect(env.Step()).To(Equal(2))
			Expect(env.TotalReward()).
				To(BeNumerically("~", 2*env.Reward(), 1e-9))
		})

		It("should roll the episode over after the step limit", func() {
			env.RecordStep()
			env.RecordStep()
			Expect(env.Done()).To(BeFalse())

			env.RecordStep()

			Expect(env.Done()).To(BeTrue())
			Expect(env.Episode()).To(Equal(1))
			Expect(env.Step()).To(BeZero())
			Expect(env.TotalReward()).To(BeZero())
		})

		It("should start the next episode cleanly", func() {
			for i := 0; i < 3; i++ {
				env.RecordStep()
			}

			env.RecordStep()

			Expect(env.Done()).To(BeFalse())
			Expect(env.Episode()).To(Equal(1))
			Expect(env.Step()).To(Equal(1))

			info := env.CurrentInfo()
			Expect(info.Episode).To(Equal(1))
			Expect(info.Step).To(Equal(1))
		})
	})

	Context("when recording steps", func() {
		var recorder *captureRecorder

		BeforeEach(func() {
			recorder = &captureRecorder{}
			engine := sim.NewMockEngine()
			engine.Now = 0.25

			env = MakeBuilder().
				WithOracle(oracle).
				WithRecorder(recorder).
				WithTimeTeller(engine).
				Build("Env")
			env.UpdateSnapshot(twoUeSnapshot())
		})

		It("should create the step table at build time", func() {
			Expect(recorder.tables).To(ContainElement("rl_steps"))
		})

		It("should write one row per step", func() {
			env.Assignments(2)
			env.RecordStep()

			Expect(recorder.rows).To(HaveLen(1))

			row := recorder.rows[0].entry.(stepEntry)
			Expect(row.Time).To(BeNumerically("~", 0.25, 1e-12))
			Expect(row.Episode).To(BeZero())
			Expect(row.Step).To(Equal(1))
			Expect(row.Action).To(Equal(2))
			Expect(row.Reward).To(BeNumerically("~", -(0.003 + 500.0), 1e-9))
		})
	})
})

var _ = Describe("GreedyOracle", func() {
	It("should pick the sub-band with the best expected throughput", func() {
		env := MakeBuilder().
			WithOracle(&scriptedOracle{}).
			Build("Env")
		snap := twoUeSnapshot()
		snap.Bwps[0].FailureRate = 0.9
		snap.Bwps[1].FailureRate = 0.9
		snap.Bwps[2].FailureRate = 0.0
		env.UpdateSnapshot(snap)

		oracle := NewGreedyOracle([]int{50, 70, 100})

		Expect(oracle.Act(env.Observation())).To(Equal(2))
	})

	It("should score empty sub-bands with the population mean", func() {
		env := MakeBuilder().
			WithOracle(&scriptedOracle{}).
			Build("Env")
		snap := sched.Snapshot{
			Bwps: []sched.BwpSnapshot{
				{BwpID: 0}, {BwpID: 1},
			},
			Ues: []sched.UeSnapshot{
				{UeID: 1, CurrentBwp: 0, AvgBitsPerRb: 40.0},
			},
		}
		env.UpdateSnapshot(snap)

		oracle := NewGreedyOracle([]int{10, 20})

		// 40*10 on the populated sub-band against 40*20 on the empty one.
		Expect(oracle.Act(env.Observation())).To(Equal(1))
	})

	It("should fall back to the first action on an empty observation", func() {
		oracle := NewGreedyOracle([]int{10, 20})

		Expect(oracle.Act(nil)).To(BeZero())
	})
})
