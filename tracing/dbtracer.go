package tracing

import (
	"sync"

	"github.com/sarchlab/threephase/datarecording"
	"github.com/sarchlab/threephase/sim"
	"github.com/tebeka/atexit"
)

const traceTable = "trace"

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	Run       uint32
	StartTime sim.VTime
	EndTime   sim.VTime
}

// DBTracer is a tracer that stores the completed tasks into a data recorder.
// It is also a hook of the controller, so that every task is tagged with the
// run it belongs to.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTime

	currentRun   uint32
	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(traceTable, taskTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		currentRun:   1,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange only keeps the tasks that overlap with the time range. An end
// time of 0 means no upper limit.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// Func follows the runs of the controller. Tasks that have not ended when a
// run finishes are dropped.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosStartRun {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentRun = ctx.Item.(sim.Info).Run
	t.tracingTasks = make(map[string]Task)
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	taskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// EndTask marks the end of a task and writes it.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	if originalTask.EndTime < t.startTime {
		return
	}

	t.backend.InsertData(traceTable, taskTableEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Location,
		Run:       t.currentRun,
		StartTime: originalTask.StartTime,
		EndTime:   originalTask.EndTime,
	})
}

// Terminate drops the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
