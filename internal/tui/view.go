package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xeonx/timeago"

	"github.com/supportdesk-io/sdesk/internal/types"
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "loading..."
	}
	if model.sessionGone {
		return "Session expired. Run `sdesk login` and try again.\n"
	}

	var body string
	switch model.mode {
	case modeDetail, modeStatusPick, modeComment:
		body = model.detailView()
	default:
		body = model.listView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.headerView(),
		body,
		model.statusBarView(),
	)
}

func (model Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground).
		Render("SupportDesk")

	context := ""
	switch {
	case model.mode == modeSearch:
		context = model.searchInput.View()
	case model.filter.Query != "":
		context = fmt.Sprintf("search: %q", model.filter.Query)
	case model.filter.Status != nil:
		context = fmt.Sprintf("status: %s", *model.filter.Status)
	}
	if context != "" {
		context = "  " + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(context)
	}
	return title + context
}

func (model Model) listView() string {
	if model.page == nil {
		return "\n  fetching tickets...\n"
	}
	if len(model.page.Items) == 0 {
		return "\n  no tickets match\n"
	}

	selected := lipgloss.NewStyle().
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)

	var rows []string
	for index, item := range model.page.Items {
		badge := lipgloss.NewStyle().
			Foreground(model.theme.StatusColor(item.Status)).
			Render(fmt.Sprintf("%-16s", item.Status))

		assignee := "unassigned"
		if item.AssigneeID != nil {
			assignee = shortID(item.AssigneeID.String())
		}

		row := fmt.Sprintf("  #%-5d %s %-50s %s", item.Number, badge, truncate(item.Title, 50), assignee)
		if index == model.cursor {
			row = selected.Render(row)
		}
		rows = append(rows, row)
	}

	pageLine := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(
		fmt.Sprintf("  page %d/%d  %d tickets", model.page.Page, model.page.TotalPages(), model.page.Total))
	return "\n" + strings.Join(rows, "\n") + "\n\n" + pageLine
}

func (model Model) detailView() string {
	d := model.detail
	if d == nil {
		return "\n  no ticket open\n"
	}

	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("#%d  %s", d.Number, d.Title))
	badge := lipgloss.NewStyle().Foreground(model.theme.StatusColor(d.Status)).Render(string(d.Status))

	assignee := "unassigned"
	if d.AssigneeID != nil {
		assignee = shortID(d.AssigneeID.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", header)
	fmt.Fprintf(&b, "  %s  requester %s <%s>  assignee %s\n\n", badge, d.RequesterName, d.RequesterEmail, assignee)
	fmt.Fprintf(&b, "  %s\n", d.Description)

	if len(d.Messages) > 0 {
		fmt.Fprintf(&b, "\n  Messages (%d)\n", len(d.Messages))
		for _, m := range d.Messages {
			when := lipgloss.NewStyle().Foreground(model.theme.FaintText).
				Render(timeago.English.Format(m.CreatedAt))
			fmt.Fprintf(&b, "  %s  %s\n    %s\n", when, shortID(m.AuthorID.String()), m.Body)
		}
	}
	if len(d.Attachments) > 0 {
		fmt.Fprintf(&b, "\n  Attachments (%d)\n", len(d.Attachments))
		for _, a := range d.Attachments {
			fmt.Fprintf(&b, "    %s (%d bytes)\n", a.Filename, a.Size)
		}
	}

	switch model.mode {
	case modeStatusPick:
		b.WriteString("\n  Set status:\n")
		for index, status := range types.Statuses() {
			marker := "  "
			if index == model.statusCursor {
				marker = "> "
			}
			line := fmt.Sprintf("  %s%s", marker, status)
			if index == model.statusCursor {
				line = lipgloss.NewStyle().Bold(true).Render(line)
			}
			b.WriteString(line + "\n")
		}
	case modeComment:
		fmt.Fprintf(&b, "\n  %s\n", model.commentInput.View())
	}

	return b.String()
}

func (model Model) statusBarView() string {
	if model.errNotice != "" {
		return lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render("  " + model.errNotice)
	}

	help := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	var hints string
	switch model.mode {
	case modeDetail:
		hints = "s set status · c comment · r refresh · esc back · q quit"
	case modeStatusPick:
		hints = "↑/↓ choose · enter apply · esc cancel"
	case modeComment:
		hints = "enter send · esc cancel"
	case modeSearch:
		hints = "type to search · enter confirm · esc clear"
	default:
		hints = "↑/↓ move · ←/→ page · enter open · / search · r refresh · q quit"
	}
	if model.loading {
		hints = "working... · " + hints
	}
	return help.Render("  " + hints)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// shortID renders a UUID as its first segment, enough to tell users
// apart on screen.
func shortID(id string) string {
	if cut := strings.IndexByte(id, '-'); cut > 0 {
		return id[:cut]
	}
	return id
}
