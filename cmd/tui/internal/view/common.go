package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Rows taken by the header, filters, status line and help under a table.
const chromeRows = 10

const minTableRows = 3

// CommonModel tracks the terminal size shared by every view.
type CommonModel struct {
	Width  int
	Height int
}

// Resize records the new terminal size and returns the table height that fits it.
func (c *CommonModel) Resize(msg tea.WindowSizeMsg) int {
	c.Width = msg.Width
	c.Height = msg.Height

	return max(msg.Height-chromeRows, minTableRows)
}

// BackMsg returns the program to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
