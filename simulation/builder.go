package simulation

import (
	"github.com/rs/xid"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/monitoring"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn       bool
	monitorPort     int
	dataRecordingOn bool
	outputFileName  string
	recorderConfig  *datarecording.RecorderConfig
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:       true,
		dataRecordingOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutDataRecording replaces the data recorder with one that drops
// everything.
func (b Builder) WithoutDataRecording() Builder {
	b.dataRecordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data
// recorder, without the extension.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithRecorderConfig selects a recording backend explicitly, for
// example a ClickHouse server instead of the default SQLite file.
func (b Builder) WithRecorderConfig(
	cfg datarecording.RecorderConfig,
) Builder {
	b.recorderConfig = &cfg
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.dataRecordingOn && b.outputFileName != "" {
		panic("output file cannot be set when data recording is disabled")
	}

	if !b.dataRecordingOn && b.recorderConfig != nil {
		panic("recorder config cannot be set when data recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()
	s.engine = sim.NewSerialEngine()
	s.dataRecorder = b.buildRecorder(s.id)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}

func (b Builder) buildRecorder(id string) datarecording.DataRecorder {
	if !b.dataRecordingOn {
		return datarecording.NullRecorder{}
	}

	if b.recorderConfig != nil {
		cfg := *b.recorderConfig
		if cfg.Path == "" {
			cfg.Path = b.outputFileName
		}
		return datarecording.NewDataRecorderWithConfig(cfg)
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "nrusim_" + id
	}

	return datarecording.New(outputPath)
}
