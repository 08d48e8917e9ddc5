package panel

// Mode identifies the top-level UI state.
type Mode uint8

const (
	ModeMenu Mode = iota
	ModeDockerList
	ModeProgress
	ModeGame
	ModeInputTest
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModeDockerList:
		return "docker_list"
	case ModeProgress:
		return "progress"
	case ModeGame:
		return "game"
	case ModeInputTest:
		return "input_test"
	}
	return "unknown"
}

// InfoKind names an instant system lookup rendered as a text page.
type InfoKind uint8

const (
	InfoSystem InfoKind = iota
	InfoIP
	InfoCPUTemp
	InfoDisk
	InfoMemory
)

// TaskKind names a background task a menu item can submit.
type TaskKind uint8

const (
	TaskAptUpdate TaskKind = iota
	TaskReboot
	TaskShutdown
	TaskContainerStart
	TaskContainerStop
	TaskContainerRestart
)

// ActionKind discriminates Action variants.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionEnterSubmenu
	ActionShowInfo
	ActionSubmitTask
	ActionChangeMode
	ActionPopMenu
	ActionExit
)

// Action is what a menu item does when confirmed. Actions are plain data
// interpreted by the machine, so a whole menu tree can be inspected and
// tested without executing anything.
type Action struct {
	Kind    ActionKind
	Submenu *MenuNode
	Info    InfoKind
	Task    TaskKind
	Target  string // container id (or name) for container tasks
	Display string // human name shown in progress messages
	Mode    Mode
}

func EnterSubmenu(n *MenuNode) Action { return Action{Kind: ActionEnterSubmenu, Submenu: n} }
func ShowInfo(k InfoKind) Action      { return Action{Kind: ActionShowInfo, Info: k} }
func SubmitTask(k TaskKind) Action    { return Action{Kind: ActionSubmitTask, Task: k} }
func ChangeMode(m Mode) Action        { return Action{Kind: ActionChangeMode, Mode: m} }
func PopMenu() Action                 { return Action{Kind: ActionPopMenu} }
func Exit() Action                    { return Action{Kind: ActionExit} }

// ContainerTask targets a task at one container. The ops layer gets ident
// (usually the id), while display is what progress pages show.
func ContainerTask(k TaskKind, ident, display string) Action {
	return Action{Kind: ActionSubmitTask, Task: k, Target: ident, Display: display}
}

// MenuItem is one selectable row.
type MenuItem struct {
	Label  string
	Action Action
}

// MenuNode is one level of the menu tree.
type MenuNode struct {
	Title string
	Items []MenuItem
}

// frame is a suspended menu level on the navigation stack.
type frame struct {
	node  *MenuNode
	index int
}

// wrap maps i into [0, n) with Python-style modulo.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func sign(d int) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	}
	return 0
}
