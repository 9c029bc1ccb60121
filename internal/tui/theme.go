package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/supportdesk-io/sdesk/internal/types"
)

// Theme defines the color palette for the ticket browser. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	StatusOpen            lipgloss.Color
	StatusInProgress      lipgloss.Color
	StatusWaitingCustomer lipgloss.Color
	StatusResolved        lipgloss.Color
	StatusClosed          lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
}

// StatusColor returns the color for a ticket status, falling back to
// FaintText for unknown values.
func (theme Theme) StatusColor(status types.Status) lipgloss.Color {
	switch status {
	case types.StatusOpen:
		return theme.StatusOpen
	case types.StatusInProgress:
		return theme.StatusInProgress
	case types.StatusWaitingCustomer:
		return theme.StatusWaitingCustomer
	case types.StatusResolved:
		return theme.StatusResolved
	case types.StatusClosed:
		return theme.StatusClosed
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusOpen:            lipgloss.Color("114"), // green
	StatusInProgress:      lipgloss.Color("220"), // yellow/amber
	StatusWaitingCustomer: lipgloss.Color("141"), // light purple
	StatusResolved:        lipgloss.Color("75"),  // blue
	StatusClosed:          lipgloss.Color("245"), // gray

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"),
}
