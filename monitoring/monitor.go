// Package monitoring turns a running simulation into a web server that can be
// observed and controlled from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/threephase/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

type entitySnapshot struct {
	ID          sim.EntityID
	Name        string
	Available   bool
	Utilisation uint64
}

type resourceSnapshot struct {
	Name         string
	InitialValue uint32
	Count        uint32
	Utilisation  uint64
}

type entityList struct {
	Entities []entitySnapshot
}

type resourceList struct {
	Resources []resourceSnapshot
}

type nowRsp struct {
	Run   uint32    `json:"run"`
	Time  sim.VTime `json:"time"`
	State string    `json:"state"`
}

type configRsp struct {
	Duration      sim.VTime `json:"duration"`
	NumberOfRuns  uint32    `json:"number_of_runs"`
	WarmUpTime    sim.VTime `json:"warm_up_time"`
	Speed         uint8     `json:"speed"`
	DelayDuration uint32    `json:"delay_duration"`
	Step          bool      `json:"step"`
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
//
// The model state is only read by the goroutine that runs the simulation: the
// monitor is a hook of the controller and takes a snapshot of the entities and
// resources after every tick. The web handlers serve the latest snapshot.
type Monitor struct {
	controller  *sim.Controller
	portNumber  int
	openBrowser bool
	url         string

	snapshotLock sync.RWMutex
	entities     []entitySnapshot
	resources    []resourceSnapshot

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	runBar           *ProgressBar
	simulationBar    *ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		logrus.Warnf("Port number %d is assigned to the monitoring server, "+
			"which is not allowed. Using a random port instead.", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its page in a browser when the server
// starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterController registers the controller of the simulation. The monitor
// also hooks to the controller to follow its progress.
func (m *Monitor) RegisterController(c *sim.Controller) {
	m.controller = c
	c.AcceptHook(m)
	m.takeSnapshot()
}

// URL returns the address of the server, once started.
func (m *Monitor) URL() string {
	return m.url
}

// Func follows the lifecycle of the controller.
func (m *Monitor) Func(ctx sim.HookCtx) {
	info, ok := ctx.Item.(sim.Info)
	if !ok {
		return
	}

	switch ctx.Pos {
	case sim.HookPosStartSimulation:
		m.startSimulationBar()
	case sim.HookPosStartRun:
		m.startRunBar(info.Run)
	case sim.HookPosCompleteThreePhases:
		if m.runBar != nil {
			m.runBar.SetFinished(uint64(info.Time))
		}
		m.takeSnapshot()
	case sim.HookPosFinishRun:
		m.CompleteProgressBar(m.runBar)
		if m.simulationBar != nil {
			m.simulationBar.IncrementFinished(1)
		}
	case sim.HookPosFinishSimulation:
		m.CompleteProgressBar(m.simulationBar)
		m.takeSnapshot()
	}
}

func (m *Monitor) startSimulationBar() {
	m.simulationBar = m.CreateProgressBar("Runs",
		uint64(m.controller.Configurator().NumberOfRuns()))
}

func (m *Monitor) startRunBar(run uint32) {
	if m.simulationBar == nil {
		m.startSimulationBar()
	}

	m.runBar = m.CreateProgressBar(fmt.Sprintf("Run %d", run),
		uint64(m.controller.Configurator().Duration()))
}

func (m *Monitor) takeSnapshot() {
	registry := m.controller.EntityAndResourceManager()

	entities := make([]entitySnapshot, 0)
	for _, e := range registry.Entities() {
		entities = append(entities, entitySnapshot{
			ID:          e.ID,
			Name:        e.Name,
			Available:   e.Available,
			Utilisation: e.Utilisation,
		})
	}

	resources := make([]resourceSnapshot, 0)
	for _, r := range registry.Resources() {
		resources = append(resources, resourceSnapshot{
			Name:         r.Name,
			InitialValue: r.InitialValue,
			Count:        r.Count,
			Utilisation:  r.Utilisation,
		})
	}

	m.snapshotLock.Lock()
	m.entities = entities
	m.resources = resources
	m.snapshotLock.Unlock()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/reset", m.reset)
	r.HandleFunc("/api/config", m.config).Methods(http.MethodGet)
	r.HandleFunc("/api/config/speed/{speed}", m.setSpeed).
		Methods(http.MethodPut, http.MethodPost)
	r.HandleFunc("/api/entities", m.listEntities)
	r.HandleFunc("/api/resources", m.listResources)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listProcessResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(m.url + "/api/now")
		if err != nil {
			logrus.Warnf("cannot open browser: %s", err)
		}
	}
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	info := m.controller.CurrentInformation().Info()

	m.writeJSON(w, nowRsp{
		Run:   info.Run,
		Time:  info.Time,
		State: m.controller.State().String(),
	})
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.controller.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) run(w http.ResponseWriter, _ *http.Request) {
	switch m.controller.State() {
	case sim.Running, sim.Finished:
		w.WriteHeader(http.StatusConflict)
		return
	}

	go func() {
		err := m.controller.Run()
		if err != nil {
			logrus.Errorf("simulation stopped: %s", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	if m.controller.State() == sim.Running {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, "pause the simulation before resetting it")
		return
	}

	m.controller.Reset()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) config(w http.ResponseWriter, _ *http.Request) {
	c := m.controller.Configurator()

	m.writeJSON(w, configRsp{
		Duration:      c.Duration(),
		NumberOfRuns:  c.NumberOfRuns(),
		WarmUpTime:    c.WarmUpTime(),
		Speed:         c.Speed(),
		DelayDuration: c.DelayDuration(),
		Step:          c.Step(),
	})
}

func (m *Monitor) setSpeed(w http.ResponseWriter, r *http.Request) {
	speed, err := strconv.ParseUint(mux.Vars(r)["speed"], 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	err = m.controller.Configurator().SetSpeed(uint32(speed))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	m.config(w, r)
}

func (m *Monitor) listEntities(w http.ResponseWriter, _ *http.Request) {
	m.snapshotLock.RLock()
	defer m.snapshotLock.RUnlock()

	m.serialize(w, &entityList{Entities: m.entities})
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	m.snapshotLock.RLock()
	defer m.snapshotLock.RUnlock()

	m.serialize(w, &resourceList{Resources: m.resources})
}

func (m *Monitor) serialize(w http.ResponseWriter, root any) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(root)
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listProcessResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		logrus.Panic(err)
	}
}
