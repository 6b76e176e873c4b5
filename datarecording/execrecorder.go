package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type execInfo struct {
	Property string
	Value    string
}

// ExecRecorder logs the metadata of one program execution into the
// exec_info table of a DataRecorder.
type ExecRecorder struct {
	tablename string
	recorder  DataRecorder
	entries   []execInfo
}

// NewExecRecorder creates an ExecRecorder writing through the given
// recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tablename: "exec_info",
		recorder:  recorder,
		entries:   []execInfo{},
	}

	e.recorder.CreateTable(e.tablename, execInfo{})

	return e
}

// Start captures the launch time, the command line, and the executable
// directory.
func (e *ExecRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, execInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	e.entries = append(e.entries, execInfo{"Command", cmd})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	cwd := filepath.Dir(ex)
	e.entries = append(e.entries, execInfo{"Working Directory", cwd})
}

// AddProperty attaches an extra property to the execution log.
func (e *ExecRecorder) AddProperty(property, value string) {
	e.entries = append(e.entries, execInfo{property, value})
}

// End writes the collected entries along with the program exit time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tablename, entry)
	}

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.recorder.InsertData(e.tablename, execInfo{"End Time", endTime})

	e.entries = nil

	e.recorder.Flush()
}
