// Package tui is an interactive terminal browser for tickets: a
// filtered, paginated list with live search, and a detail pane with
// status changes and comments.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/supportdesk-io/sdesk/internal/errors"
	"github.com/supportdesk-io/sdesk/internal/session"
	"github.com/supportdesk-io/sdesk/internal/tickets"
	"github.com/supportdesk-io/sdesk/internal/types"
)

// mode identifies which input surface is active.
type mode int

const (
	// modeList shows the ticket list; navigation keys move the cursor.
	modeList mode = iota
	// modeDetail shows the open ticket.
	modeDetail
	// modeSearch routes keystrokes to the search input. The list
	// refreshes as the user types, after a short debounce.
	modeSearch
	// modeStatusPick shows the status options for the open ticket.
	modeStatusPick
	// modeComment routes keystrokes to the comment input.
	modeComment
)

// searchDebounce is how long typing must pause before a search
// keystroke triggers a list refresh.
const searchDebounce = 300 * time.Millisecond

// errorFadeDelay is how long an error notice stays in the status bar.
const errorFadeDelay = 4 * time.Second

// listLoadedMsg delivers the result of an asynchronous list refresh.
type listLoadedMsg struct {
	page *types.ListPage
	err  error
}

// detailLoadedMsg delivers the result of opening a ticket.
type detailLoadedMsg struct {
	detail *types.TicketDetail
	err    error
}

// mutationResultMsg delivers the result of a write. On success the
// detail is the server's re-fetched record.
type mutationResultMsg struct {
	detail *types.TicketDetail
	err    error
}

// searchDebounceMsg fires after the debounce interval. seq identifies
// the keystroke that scheduled it; stale timers are ignored.
type searchDebounceMsg struct {
	seq int
}

// errorFadeMsg clears the error notice from the status bar.
type errorFadeMsg struct{}

// Model is the top-level bubbletea model for the ticket browser.
type Model struct {
	controller *tickets.Controller
	auth       *session.Service
	keys       KeyMap
	theme      Theme

	width  int
	height int
	ready  bool

	mode   mode
	filter types.Filter
	page   *types.ListPage
	detail *types.TicketDetail
	cursor int

	searchInput  textinput.Model
	commentInput textinput.Model
	statusCursor int
	searchSeq    int

	loading     bool
	errNotice   string
	sessionGone bool
}

// NewModel creates a ticket browser bound to the given controller.
func NewModel(controller *tickets.Controller, auth *session.Service, pageSize int) Model {
	search := textinput.New()
	search.Placeholder = "search tickets"
	search.Prompt = "/ "
	search.CharLimit = 200

	comment := textinput.New()
	comment.Placeholder = "type a message"
	comment.Prompt = "> "
	comment.CharLimit = 2000

	if pageSize <= 0 {
		pageSize = types.DefaultLimit
	}

	return Model{
		controller:   controller,
		auth:         auth,
		keys:         DefaultKeyMap,
		theme:        DefaultTheme,
		filter:       types.Filter{Page: 1, Limit: pageSize},
		searchInput:  search,
		commentInput: comment,
		loading:      true,
	}
}

// Init implements tea.Model. Loads the first list page.
func (model Model) Init() tea.Cmd {
	return model.refreshCmd(model.filter)
}

// refreshCmd fetches a list page in the background. The model's filter
// is advanced by the caller before dispatch so the header reflects the
// request in flight.
func (model Model) refreshCmd(filter types.Filter) tea.Cmd {
	controller := model.controller
	filter = filter.Normalized()
	return func() tea.Msg {
		page, err := controller.RefreshList(context.Background(), filter)
		return listLoadedMsg{page: page, err: err}
	}
}

// openCmd fetches a ticket's detail in the background.
func (model Model) openCmd(item types.TicketSummary) tea.Cmd {
	controller := model.controller
	return func() tea.Msg {
		detail, err := controller.OpenTicket(context.Background(), item.ID)
		return detailLoadedMsg{detail: detail, err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case listLoadedMsg:
		model.loading = false
		if message.err != nil {
			return model.fail(message.err)
		}
		model.page = message.page
		if model.cursor >= len(model.page.Items) {
			model.cursor = len(model.page.Items) - 1
		}
		if model.cursor < 0 {
			model.cursor = 0
		}
		return model, nil

	case detailLoadedMsg:
		model.loading = false
		if message.err != nil {
			return model.fail(message.err)
		}
		model.detail = message.detail
		model.mode = modeDetail
		return model, nil

	case mutationResultMsg:
		model.loading = false
		if message.err != nil {
			// Validation and API errors leave the view alone; the
			// notice in the status bar is the only change.
			next, cmd := model.fail(message.err)
			return next, cmd
		}
		model.detail = message.detail
		model.mode = modeDetail
		model.page = model.controller.List()
		return model, nil

	case searchDebounceMsg:
		if message.seq != model.searchSeq {
			return model, nil
		}
		filter := model.filter
		filter.Query = model.searchInput.Value()
		filter.Page = 1
		model.loading = true
		model.filter = filter.Normalized()
		return model, model.refreshCmd(filter)

	case errorFadeMsg:
		model.errNotice = ""
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.mode {
	case modeSearch:
		return model.handleSearchKey(message)
	case modeComment:
		return model.handleCommentKey(message)
	case modeStatusPick:
		return model.handleStatusKey(message)
	case modeDetail:
		return model.handleDetailKey(message)
	default:
		return model.handleListKey(message)
	}
}

func (model Model) handleListKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.page != nil && model.cursor < len(model.page.Items)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.NextPage):
		if model.page != nil && model.filter.Page < model.page.TotalPages() {
			filter := model.filter
			filter.Page++
			model.loading = true
			model.cursor = 0
			model.filter = filter.Normalized()
			return model, model.refreshCmd(filter)
		}

	case key.Matches(message, model.keys.PrevPage):
		if model.filter.Page > 1 {
			filter := model.filter
			filter.Page--
			model.loading = true
			model.cursor = 0
			model.filter = filter.Normalized()
			return model, model.refreshCmd(filter)
		}

	case key.Matches(message, model.keys.Open):
		if item, ok := model.selectedItem(); ok {
			model.loading = true
			return model, model.openCmd(item)
		}

	case key.Matches(message, model.keys.Search):
		model.mode = modeSearch
		model.searchInput.SetValue(model.filter.Query)
		model.searchInput.CursorEnd()
		return model, model.searchInput.Focus()

	case key.Matches(message, model.keys.Refresh):
		model.loading = true
		return model, model.refreshCmd(model.filter)
	}
	return model, nil
}

func (model Model) handleDetailKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Back):
		model.mode = modeList
		model.detail = nil
		model.controller.CloseDetail()

	case key.Matches(message, model.keys.Status):
		model.mode = modeStatusPick
		model.statusCursor = model.currentStatusIndex()

	case key.Matches(message, model.keys.Comment):
		model.mode = modeComment
		model.commentInput.SetValue("")
		return model, model.commentInput.Focus()

	case key.Matches(message, model.keys.Refresh):
		if model.detail != nil {
			model.loading = true
			return model, model.openCmd(model.detail.Summary())
		}
	}
	return model, nil
}

func (model Model) handleSearchKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEsc:
		model.mode = modeList
		model.searchInput.Blur()
		if model.filter.Query != "" {
			filter := model.filter
			filter.Query = ""
			filter.Page = 1
			model.loading = true
			model.filter = filter.Normalized()
			return model, model.refreshCmd(filter)
		}
		return model, nil

	case tea.KeyEnter:
		model.mode = modeList
		model.searchInput.Blur()
		filter := model.filter
		filter.Query = model.searchInput.Value()
		filter.Page = 1
		model.loading = true
		model.filter = filter.Normalized()
		return model, model.refreshCmd(filter)
	}

	var cmd tea.Cmd
	model.searchInput, cmd = model.searchInput.Update(message)

	// Each keystroke restarts the debounce window; only the timer from
	// the last keystroke triggers a refresh.
	model.searchSeq++
	seq := model.searchSeq
	debounce := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
	return model, tea.Batch(cmd, debounce)
}

func (model Model) handleStatusKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := types.Statuses()
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.Back):
		model.mode = modeDetail

	case key.Matches(message, model.keys.Up):
		if model.statusCursor > 0 {
			model.statusCursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.statusCursor < len(all)-1 {
			model.statusCursor++
		}

	case message.Type == tea.KeyEnter:
		if model.detail == nil {
			model.mode = modeList
			return model, nil
		}
		controller := model.controller
		ticketID := model.detail.ID
		status := all[model.statusCursor]
		model.loading = true
		model.mode = modeDetail
		return model, func() tea.Msg {
			detail, err := controller.SetStatus(context.Background(), ticketID, status)
			return mutationResultMsg{detail: detail, err: err}
		}
	}
	return model, nil
}

func (model Model) handleCommentKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEsc:
		model.mode = modeDetail
		model.commentInput.Blur()
		return model, nil

	case tea.KeyEnter:
		if model.detail == nil {
			model.mode = modeList
			return model, nil
		}
		body := model.commentInput.Value()
		model.commentInput.Blur()
		model.mode = modeDetail
		controller := model.controller
		ticketID := model.detail.ID
		model.loading = true
		return model, func() tea.Msg {
			detail, err := controller.PostMessage(context.Background(), ticketID, body)
			return mutationResultMsg{detail: detail, err: err}
		}
	}

	var cmd tea.Cmd
	model.commentInput, cmd = model.commentInput.Update(message)
	return model, cmd
}

// fail records an error in the status bar. Session expiry ends the
// program: the stored token is already gone and every further call
// would fail the same way.
func (model Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.IsSessionExpired(err) {
		model.sessionGone = true
		return model, tea.Quit
	}
	model.errNotice = err.Error()
	return model, tea.Tick(errorFadeDelay, func(time.Time) tea.Msg {
		return errorFadeMsg{}
	})
}

func (model Model) selectedItem() (types.TicketSummary, bool) {
	if model.page == nil || model.cursor < 0 || model.cursor >= len(model.page.Items) {
		return types.TicketSummary{}, false
	}
	return model.page.Items[model.cursor], true
}

func (model Model) currentStatusIndex() int {
	if model.detail == nil {
		return 0
	}
	for index, status := range types.Statuses() {
		if status == model.detail.Status {
			return index
		}
	}
	return 0
}
