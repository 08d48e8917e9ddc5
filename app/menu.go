package app

import "knurl/panel"

// rootMenu builds the panel's menu tree.
func rootMenu() *panel.MenuNode {
	games := &panel.MenuNode{
		Title: "Games",
		Items: []panel.MenuItem{
			{Label: "Snake", Action: panel.ChangeMode(panel.ModeGame)},
			{Label: "Back", Action: panel.PopMenu()},
		},
	}
	return &panel.MenuNode{
		Title: "Main Menu",
		Items: []panel.MenuItem{
			{Label: "Docker", Action: panel.ChangeMode(panel.ModeDockerList)},
			{Label: "System Info", Action: panel.ShowInfo(panel.InfoSystem)},
			{Label: "Check IP", Action: panel.ShowInfo(panel.InfoIP)},
			{Label: "CPU Temp", Action: panel.ShowInfo(panel.InfoCPUTemp)},
			{Label: "Disk Usage", Action: panel.ShowInfo(panel.InfoDisk)},
			{Label: "Memory Info", Action: panel.ShowInfo(panel.InfoMemory)},
			{Label: "Update System", Action: panel.SubmitTask(panel.TaskAptUpdate)},
			{Label: "Games", Action: panel.EnterSubmenu(games)},
			{Label: "Input Test", Action: panel.ChangeMode(panel.ModeInputTest)},
			{Label: "Restart Pi", Action: panel.SubmitTask(panel.TaskReboot)},
			{Label: "Shutdown", Action: panel.SubmitTask(panel.TaskShutdown)},
			{Label: "Exit", Action: panel.Exit()},
		},
	}
}
