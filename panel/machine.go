package panel

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	spinnerSteps  = 12
	noticeDwell   = time.Second
	gameOverDwell = 2 * time.Second
	farewellDwell = 800 * time.Millisecond
	noticeLimit   = 60
)

// Clock abstracts wall time for the machine and the loop; tests inject
// fakes so dwell pauses and hold timers run instantly.
type Clock struct {
	Now   func() time.Time
	Sleep func(time.Duration)
}

func SystemClock() Clock {
	return Clock{Now: time.Now, Sleep: time.Sleep}
}

// Screen is the drawing surface the machine renders to.
type Screen interface {
	Menu(labels []string, selected int) error
	Text(s string) error
	Spinner(message string, frame int) error
	Clear() error
}

// Container is one row of the docker list.
type Container struct {
	ID     string
	Name   string
	Status string
	Image  string
}

// ContainerOps lists and controls containers. Control ops take the id or
// name, whichever the docker CLI would accept.
type ContainerOps interface {
	List(ctx context.Context) ([]Container, error)
	Start(ctx context.Context, ident string) error
	Stop(ctx context.Context, ident string) error
	Restart(ctx context.Context, ident string) error
}

// SystemOps exposes host lookups and maintenance tasks.
type SystemOps interface {
	Info() (string, error)
	IP() (string, error)
	CPUTemp() (string, error)
	DiskUsage() (string, error)
	Memory() (string, error)
	AptUpdate() (string, error)
	Reboot() (string, error)
	Shutdown() (string, error)
}

// Game is a playable screen driven by rotation and loop ticks.
type Game interface {
	Reset()
	Turn(clockwise bool)
	Step() bool // false once the game is over
	Render() error
	StepInterval() time.Duration
	Score() int
}

// TaskRunner is the slice of Runner the machine needs.
type TaskRunner interface {
	Running() bool
	Submit(Task) bool
}

// MachineConfig wires a Machine.
type MachineConfig struct {
	Screen Screen
	Docker ContainerOps
	System SystemOps
	Game   Game
	Runner TaskRunner
	Root   *MenuNode
	Clock  Clock
	Log    *slog.Logger
}

// Machine owns all UI state: the current mode, the navigation stack and
// the per-mode cursors. It mutates state only from Handle, which the
// dispatch loop calls from a single goroutine.
type Machine struct {
	screen Screen
	docker ContainerOps
	system SystemOps
	game   Game
	runner TaskRunner
	clock  Clock
	log    *slog.Logger

	mode        Mode
	root        *MenuNode
	current     *MenuNode
	index       int
	stack       []frame
	containers  []Container
	dockerIndex int
	spinner     int
	progress    string
	returnMode  Mode
	lastStep    time.Time
	test        testCounters
	done        bool
}

type testCounters struct {
	detents int
	presses [3]int
}

func NewMachine(cfg MachineConfig) *Machine {
	clock := cfg.Clock
	if clock.Now == nil || clock.Sleep == nil {
		clock = SystemClock()
	}
	return &Machine{
		screen:  cfg.Screen,
		docker:  cfg.Docker,
		system:  cfg.System,
		game:    cfg.Game,
		runner:  cfg.Runner,
		clock:   clock,
		log:     cfg.Log,
		root:    cfg.Root,
		current: cfg.Root,
	}
}

// Start renders the root menu.
func (m *Machine) Start() error {
	return m.renderMenu()
}

// Done reports that an Exit action or the exit chord has finished the
// panel.
func (m *Machine) Done() bool {
	return m.done
}

// Mode returns the current top-level state.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Handle dispatches one logical event. Collaborator failures are returned
// for the loop to absorb; the machine itself never terminates the panel
// other than through Done.
func (m *Machine) Handle(ev Event) error {
	switch ev := ev.(type) {
	case Rotate:
		return m.onRotate(ev.Delta)
	case Press:
		return m.onPress(ev.Button)
	case TaskDone:
		return m.onTaskDone(ev)
	case Tick:
		return m.onTick()
	}
	return nil
}

func (m *Machine) onRotate(delta int) error {
	switch m.mode {
	case ModeMenu:
		if len(m.current.Items) == 0 {
			return nil
		}
		// One step per rotation event; the magnitude only matters to the
		// input test's running total.
		m.index = wrap(m.index+sign(delta), len(m.current.Items))
		return m.renderMenu()
	case ModeDockerList:
		if err := m.refreshContainers(); err != nil {
			return err
		}
		count := len(m.containers)
		if count == 0 {
			count = 1
		}
		m.dockerIndex = wrap(m.dockerIndex+sign(delta), count)
		return m.renderDockerList()
	case ModeGame:
		m.game.Turn(delta > 0)
		return nil
	case ModeInputTest:
		m.test.detents += delta
		return m.renderInputTest()
	}
	return nil
}

func (m *Machine) onPress(b Button) error {
	switch m.mode {
	case ModeMenu:
		switch b {
		case ButtonConfirm:
			if len(m.current.Items) == 0 {
				return nil
			}
			return m.apply(m.current.Items[m.index].Action)
		case ButtonBack:
			return m.popFrame()
		}
	case ModeDockerList:
		switch b {
		case ButtonConfirm:
			return m.confirmContainer()
		case ButtonBack:
			m.mode = ModeMenu
			return m.renderMenu()
		}
	case ModeGame:
		if b == ButtonBack {
			m.mode = ModeMenu
			return m.renderMenu()
		}
	case ModeInputTest:
		m.test.presses[b]++
		if b == ButtonBack {
			m.mode = ModeMenu
			return m.renderMenu()
		}
		return m.renderInputTest()
	}
	return nil
}

// apply interprets one action. All menu behavior funnels through here.
func (m *Machine) apply(a Action) error {
	switch a.Kind {
	case ActionEnterSubmenu:
		m.pushFrame(a.Submenu)
		return m.renderMenu()
	case ActionShowInfo:
		return m.showInfo(a.Info)
	case ActionSubmitTask:
		return m.submitTask(a.Task, a.Target, a.Display)
	case ActionChangeMode:
		return m.enterMode(a.Mode)
	case ActionPopMenu:
		return m.popFrame()
	case ActionExit:
		m.Farewell()
	}
	return nil
}

func (m *Machine) pushFrame(n *MenuNode) {
	m.stack = append(m.stack, frame{node: m.current, index: m.index})
	m.current = n
	m.index = 0
}

func (m *Machine) popFrame() error {
	if len(m.stack) == 0 {
		return nil
	}
	m.restoreFrame()
	return m.renderMenu()
}

func (m *Machine) restoreFrame() {
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.current = top.node
	m.index = top.index
}

func (m *Machine) showInfo(k InfoKind) error {
	var (
		text string
		err  error
	)
	switch k {
	case InfoSystem:
		text, err = m.system.Info()
	case InfoIP:
		text, err = m.system.IP()
	case InfoCPUTemp:
		text, err = m.system.CPUTemp()
	case InfoDisk:
		text, err = m.system.DiskUsage()
	case InfoMemory:
		text, err = m.system.Memory()
	}
	if err != nil {
		return err
	}
	// Mode stays Menu; the next rotation or press repaints the menu over
	// this page.
	return m.screen.Text(text)
}

func (m *Machine) submitTask(kind TaskKind, target, display string) error {
	if m.runner.Running() {
		return nil
	}
	task, message, returnMode := m.buildTask(kind, target, display)
	if task == nil {
		return nil
	}
	m.returnMode = returnMode
	m.progress = message
	m.spinner = 0
	m.mode = ModeProgress
	if err := m.screen.Spinner(m.progress, m.spinner); err != nil {
		return err
	}
	m.runner.Submit(task)
	m.log.Info("task submitted", "message", message)
	return nil
}

func (m *Machine) buildTask(kind TaskKind, target, display string) (Task, string, Mode) {
	bg := context.Background()
	if display == "" {
		display = target
	}
	// Container ops address the id; both the progress and result pages
	// show the name.
	container := func(op func(context.Context, string) error, done string) Task {
		return func() (string, error) {
			if err := op(bg, target); err != nil {
				return "", err
			}
			return done, nil
		}
	}
	switch kind {
	case TaskAptUpdate:
		return m.system.AptUpdate, "Updating... This may take a while", ModeMenu
	case TaskReboot:
		return m.system.Reboot, "Rebooting...", ModeMenu
	case TaskShutdown:
		return m.system.Shutdown, "Shutting down...", ModeMenu
	case TaskContainerStart:
		return container(m.docker.Start, "Started "+display),
			"Starting " + display + "...", ModeDockerList
	case TaskContainerStop:
		return container(m.docker.Stop, "Stopped "+display),
			"Stopping " + display + "...", ModeDockerList
	case TaskContainerRestart:
		return container(m.docker.Restart, "Restarted "+display),
			"Restarting " + display + "...", ModeDockerList
	}
	return nil, "", ModeMenu
}

func (m *Machine) enterMode(mode Mode) error {
	switch mode {
	case ModeMenu:
		m.mode = ModeMenu
		return m.renderMenu()
	case ModeDockerList:
		return m.enterDockerList(true)
	case ModeGame:
		m.game.Reset()
		m.lastStep = m.clock.Now()
		m.mode = ModeGame
		return m.game.Render()
	case ModeInputTest:
		m.test = testCounters{}
		m.mode = ModeInputTest
		return m.renderInputTest()
	}
	return nil
}

func (m *Machine) enterDockerList(reset bool) error {
	if err := m.refreshContainers(); err != nil {
		return err
	}
	if reset {
		m.dockerIndex = 0
	}
	count := len(m.containers)
	if count == 0 {
		count = 1
	}
	if m.dockerIndex >= count {
		m.dockerIndex = count - 1
	}
	m.mode = ModeDockerList
	return m.renderDockerList()
}

func (m *Machine) refreshContainers() error {
	list, err := m.docker.List(context.Background())
	if err != nil {
		return fmt.Errorf("docker list: %w", err)
	}
	m.containers = list
	return nil
}

func (m *Machine) confirmContainer() error {
	if len(m.containers) == 0 {
		// The placeholder row is not actionable.
		return nil
	}
	if m.dockerIndex >= len(m.containers) {
		m.dockerIndex = len(m.containers) - 1
	}
	c := m.containers[m.dockerIndex]
	ident := c.ID
	if ident == "" {
		ident = c.Name
	}
	sub := &MenuNode{
		Title: c.Name,
		Items: []MenuItem{
			{Label: "Start", Action: ContainerTask(TaskContainerStart, ident, c.Name)},
			{Label: "Stop", Action: ContainerTask(TaskContainerStop, ident, c.Name)},
			{Label: "Restart", Action: ContainerTask(TaskContainerRestart, ident, c.Name)},
			{Label: "Back", Action: PopMenu()},
		},
	}
	m.pushFrame(sub)
	m.mode = ModeMenu
	return m.renderMenu()
}

func (m *Machine) onTaskDone(ev TaskDone) error {
	message := ev.Message
	if !ev.OK {
		message = "Error: " + truncate(ev.Message, noticeLimit)
		m.log.Warn("task finished with error", "message", ev.Message)
	} else {
		m.log.Info("task finished", "message", ev.Message)
	}
	if err := m.screen.Text(message); err != nil {
		return err
	}
	m.clock.Sleep(noticeDwell)

	target := m.returnMode
	m.returnMode = ModeMenu
	m.mode = ModeMenu
	if target == ModeDockerList {
		// Drop the container submenu so the stack matches the screen,
		// then land on a freshly fetched list.
		if len(m.stack) > 0 {
			m.restoreFrame()
		}
		return m.enterDockerList(false)
	}
	return m.renderMenu()
}

func (m *Machine) onTick() error {
	switch m.mode {
	case ModeProgress:
		m.spinner = (m.spinner + 1) % spinnerSteps
		return m.screen.Spinner(m.progress, m.spinner)
	case ModeGame:
		now := m.clock.Now()
		if now.Sub(m.lastStep) < m.game.StepInterval() {
			return nil
		}
		m.lastStep = now
		if !m.game.Step() {
			if err := m.screen.Text(fmt.Sprintf("Game Over!\nScore: %d", m.game.Score())); err != nil {
				return err
			}
			m.clock.Sleep(gameOverDwell)
			m.mode = ModeMenu
			return m.renderMenu()
		}
		return m.game.Render()
	}
	return nil
}

// Farewell renders the goodbye page, pauses briefly, blanks the panel and
// marks the machine done.
func (m *Machine) Farewell() {
	if err := m.screen.Text("Goodbye!"); err == nil {
		m.clock.Sleep(farewellDwell)
	}
	_ = m.screen.Clear()
	m.done = true
}

// ShowFault renders a collaborator failure briefly. The page is left up
// afterwards; the next event repaints over it.
func (m *Machine) ShowFault(err error) {
	_ = m.screen.Text("Error: " + truncate(err.Error(), noticeLimit))
	m.clock.Sleep(noticeDwell)
}

func (m *Machine) renderMenu() error {
	labels := make([]string, len(m.current.Items))
	for i, it := range m.current.Items {
		labels[i] = it.Label
	}
	return m.screen.Menu(labels, m.index)
}

func (m *Machine) renderDockerList() error {
	if len(m.containers) == 0 {
		return m.screen.Menu([]string{"<no containers>"}, 0)
	}
	labels := make([]string, len(m.containers))
	for i, c := range m.containers {
		labels[i] = c.Name
	}
	return m.screen.Menu(labels, m.dockerIndex)
}

func (m *Machine) renderInputTest() error {
	return m.screen.Text(fmt.Sprintf(
		"Input Test\nDetents: %d\nBack: %d\nConfirm: %d\nPush: %d\nBack exits",
		m.test.detents,
		m.test.presses[ButtonBack],
		m.test.presses[ButtonConfirm],
		m.test.presses[ButtonPush],
	))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
