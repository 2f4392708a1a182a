package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const execInfoTable = "exec_info"

type execInfo struct {
	Property string
	Value    string
}

// execRecorder records when and how the program was executed.
type execRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

func newExecRecorderWithWriter(writer DataRecorder) *execRecorder {
	e := &execRecorder{
		recorder: writer,
	}

	e.recorder.CreateTable(execInfoTable, execInfo{})

	return e
}

// Start collects the start time, the command and the working directory.
func (e *execRecorder) Start() {
	e.entries = append(e.entries,
		execInfo{"Start Time", now()},
		execInfo{"Command", strings.Join(os.Args, " ")},
	)

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	e.entries = append(e.entries,
		execInfo{"Working Directory", filepath.Dir(ex)})
}

// End writes the collected entries along with the end time.
func (e *execRecorder) End() {
	e.entries = append(e.entries, execInfo{"End Time", now()})

	for _, entry := range e.entries {
		e.recorder.InsertData(execInfoTable, entry)
	}

	e.entries = nil
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
