// Package tickets implements the client-side ticket state: the
// current list page, the open ticket, and every mutation against them.
package tickets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/supportdesk-io/sdesk/internal/errors"
	"github.com/supportdesk-io/sdesk/internal/session"
	"github.com/supportdesk-io/sdesk/internal/transport"
	"github.com/supportdesk-io/sdesk/internal/types"
)

// View receives change notifications so a presentation layer can
// re-render. Notifications may arrive with the controller lock held;
// implementations must not call back into the controller.
type View interface {
	ListChanged(page *types.ListPage)
	DetailChanged(detail *types.TicketDetail)
	SessionExpired()
}

// NopView discards all notifications.
type NopView struct{}

func (NopView) ListChanged(*types.ListPage) {}

func (NopView) DetailChanged(*types.TicketDetail) {}

func (NopView) SessionExpired() {}

// Controller coordinates list and detail state against the backend.
// Safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	api    *transport.Adapter
	holder *session.Holder
	view   View

	filter types.Filter
	list   *types.ListPage
	detail *types.TicketDetail

	// listGen identifies the most recently issued list request.
	// Responses carrying an older generation are discarded so a
	// slow request can never overwrite a newer page.
	listGen uint64

	openID  uuid.UUID
	hasOpen bool
}

// NewController creates a controller with the default filter.
func NewController(api *transport.Adapter, holder *session.Holder, view View) *Controller {
	if view == nil {
		view = NopView{}
	}
	return &Controller{
		api:    api,
		holder: holder,
		view:   view,
		filter: types.Filter{Page: 1, Limit: types.DefaultLimit},
	}
}

// List returns the current page, or nil before the first refresh.
func (c *Controller) List() *types.ListPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list
}

// Detail returns the open ticket, or nil when none is open.
func (c *Controller) Detail() *types.TicketDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// CurrentFilter returns the filter of the most recent refresh.
func (c *Controller) CurrentFilter() types.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// RefreshList fetches a list page for the given filter. The fetched
// page becomes the current list only if no newer refresh was issued
// while this one was in flight; either way the page is returned to the
// caller.
func (c *Controller) RefreshList(ctx context.Context, filter types.Filter) (*types.ListPage, error) {
	filter = filter.Normalized()

	c.mu.Lock()
	c.listGen++
	gen := c.listGen
	c.filter = filter
	c.mu.Unlock()

	var page types.ListPage
	path := "/tickets?" + filter.Values().Encode()
	if err := c.api.Get(ctx, path, &page); err != nil {
		return nil, c.fail(err)
	}
	if page.Items == nil {
		page.Items = []types.TicketSummary{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.listGen {
		slog.Debug("discarding stale list page", "generation", gen, "latest", c.listGen)
		return &page, nil
	}
	c.list = &page
	c.view.ListChanged(c.list)
	return &page, nil
}

// OpenTicket fetches a ticket's full detail and makes it the open
// ticket. The list's cached row for the ticket is left as-is even if
// the detail disagrees with it.
func (c *Controller) OpenTicket(ctx context.Context, id uuid.UUID) (*types.TicketDetail, error) {
	c.mu.Lock()
	c.openID = id
	c.hasOpen = true
	c.mu.Unlock()

	detail, err := c.fetchDetail(ctx, id)
	if err != nil {
		return nil, c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasOpen || c.openID != id {
		slog.Debug("discarding stale ticket detail", "ticket_id", id)
		return detail, nil
	}
	c.detail = detail
	c.view.DetailChanged(c.detail)
	return detail, nil
}

// CloseDetail drops the open ticket without touching the list.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasOpen = false
	c.openID = uuid.UUID{}
	c.detail = nil
	c.view.DetailChanged(nil)
}

// SetStatus changes a ticket's status then re-fetches its detail. The
// list row's status badge is refreshed from the server's answer, not
// from the value that was sent.
func (c *Controller) SetStatus(ctx context.Context, id uuid.UUID, status types.Status) (*types.TicketDetail, error) {
	if !status.Valid() {
		return nil, &errors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return c.mutate(ctx, id, func(ctx context.Context) error {
		return c.api.Patch(ctx, "/tickets/"+id.String()+"/status", types.StatusUpdate{Status: status}, nil)
	})
}

// SetAssignee assigns a ticket to a user, or clears the assignment
// when assigneeID is nil.
func (c *Controller) SetAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) (*types.TicketDetail, error) {
	return c.mutate(ctx, id, func(ctx context.Context) error {
		return c.api.Patch(ctx, "/tickets/"+id.String()+"/assignee", types.AssigneeUpdate{AssigneeID: assigneeID}, nil)
	})
}

// PostMessage appends a message to a ticket's conversation as the
// authenticated user.
func (c *Controller) PostMessage(ctx context.Context, id uuid.UUID, body string) (*types.TicketDetail, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &errors.ValidationError{Field: "body", Message: "message body is required"}
	}
	identity, ok := c.holder.Identity()
	if !ok {
		return nil, errors.ErrMissingIdentity
	}
	return c.mutate(ctx, id, func(ctx context.Context) error {
		msg := types.MessageCreate{AuthorID: identity.UserID, Body: body}
		return c.api.Post(ctx, "/tickets/"+id.String()+"/messages", msg, nil)
	})
}

// UploadAttachment attaches a file to a ticket. A failed upload leaves
// the cached detail untouched.
func (c *Controller) UploadAttachment(ctx context.Context, id uuid.UUID, filename string, content io.Reader) (*types.TicketDetail, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, &errors.ValidationError{Field: "filename", Message: "filename is required"}
	}
	return c.mutate(ctx, id, func(ctx context.Context) error {
		return c.api.Upload(ctx, "/tickets/"+id.String()+"/attachments", filename, content, nil)
	})
}

// CreateTicket creates a ticket and returns its list row. No request
// is sent when the input fails validation.
func (c *Controller) CreateTicket(ctx context.Context, req types.TicketCreateRequest) (types.TicketSummary, error) {
	req = req.Trimmed()
	if err := req.Validate(); err != nil {
		return types.TicketSummary{}, err
	}
	var created types.TicketDetail
	if err := c.api.Post(ctx, "/tickets", req, &created); err != nil {
		return types.TicketSummary{}, c.fail(err)
	}
	return created.Summary(), nil
}

// FetchAudit returns a ticket's audit trail. Admin only: the role gate
// is checked locally so a non-admin never sends the request.
func (c *Controller) FetchAudit(ctx context.Context, id uuid.UUID) ([]types.AuditRow, error) {
	identity, ok := c.holder.Identity()
	if !ok {
		return nil, errors.ErrMissingIdentity
	}
	if identity.Role != types.RoleAdmin {
		return nil, errors.ErrForbidden
	}
	var rows []types.AuditRow
	if err := c.api.Get(ctx, "/tickets/"+id.String()+"/audit", &rows); err != nil {
		return nil, c.fail(err)
	}
	return rows, nil
}

// mutate runs a write against a ticket, then re-fetches its detail so
// cached state reflects what the server actually stored. When the
// mutated ticket is the open one, both the detail and its list row are
// refreshed from the re-fetched copy.
func (c *Controller) mutate(ctx context.Context, id uuid.UUID, write func(context.Context) error) (*types.TicketDetail, error) {
	if err := write(ctx); err != nil {
		return nil, c.fail(err)
	}

	detail, err := c.fetchDetail(ctx, id)
	if err != nil {
		return nil, c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasOpen && c.openID == id {
		c.detail = detail
		c.view.DetailChanged(c.detail)
	}
	c.refreshRowLocked(detail)
	return detail, nil
}

// refreshRowLocked updates the ticket's row in the cached list from a
// freshly fetched detail. Caller holds c.mu.
func (c *Controller) refreshRowLocked(detail *types.TicketDetail) {
	if c.list == nil {
		return
	}
	for i := range c.list.Items {
		if c.list.Items[i].ID == detail.ID {
			// Pages handed out earlier stay snapshots, so the row is
			// patched into a fresh copy rather than the shared backing
			// array.
			page := *c.list
			page.Items = make([]types.TicketSummary, len(c.list.Items))
			copy(page.Items, c.list.Items)
			page.Items[i] = detail.Summary()
			c.list = &page
			c.view.ListChanged(c.list)
			return
		}
	}
}

// fetchDetail reads a ticket's full detail without touching state.
func (c *Controller) fetchDetail(ctx context.Context, id uuid.UUID) (*types.TicketDetail, error) {
	var detail types.TicketDetail
	if err := c.api.Get(ctx, "/tickets/"+id.String(), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// fail routes session expiry to the view before returning the error.
func (c *Controller) fail(err error) error {
	if errors.IsSessionExpired(err) {
		c.mu.Lock()
		c.list = nil
		c.detail = nil
		c.hasOpen = false
		c.mu.Unlock()
		c.view.SessionExpired()
	}
	return err
}
