package main

import (
	"github.com/charmbracelet/lipgloss"
	domain "github.com/example/task-manager/domain/task"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	progressStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusCompleted:
		return completedStyle
	case domain.StatusInProgress:
		return progressStyle
	default:
		return pendingStyle
	}
}
