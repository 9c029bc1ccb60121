package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/xeonx/timeago"

	"github.com/supportdesk-io/sdesk/internal/types"
)

func renderList(w io.Writer, page *types.ListPage) {
	if page.Total == 0 {
		fmt.Fprintln(w, "No tickets found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tTITLE\tSTATUS\tASSIGNEE")
	fmt.Fprintln(tw, "------\t-----\t------\t--------")
	for _, t := range page.Items {
		assignee := "-"
		if t.AssigneeID != nil {
			assignee = t.AssigneeID.String()
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", t.Number, t.Title, t.Status, assignee)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nPage %d/%d (%d tickets)\n", page.Page, page.TotalPages(), page.Total)
}

func renderDetail(w io.Writer, d *types.TicketDetail) {
	fmt.Fprintf(w, "Ticket #%d: %s\n", d.Number, d.Title)
	fmt.Fprintf(w, "ID:        %s\n", d.ID)
	fmt.Fprintf(w, "Status:    %s\n", d.Status)
	fmt.Fprintf(w, "Requester: %s <%s>\n", d.RequesterName, d.RequesterEmail)
	if d.AssigneeID != nil {
		fmt.Fprintf(w, "Assignee:  %s\n", d.AssigneeID)
	} else {
		fmt.Fprintln(w, "Assignee:  unassigned")
	}
	fmt.Fprintf(w, "\n%s\n", d.Description)

	if len(d.Messages) > 0 {
		fmt.Fprintf(w, "\nMessages (%d):\n", len(d.Messages))
		for _, m := range d.Messages {
			fmt.Fprintf(w, "  [%s] %s\n", timeago.English.Format(m.CreatedAt), m.AuthorID)
			fmt.Fprintf(w, "    %s\n", m.Body)
		}
	}
	if len(d.Attachments) > 0 {
		fmt.Fprintf(w, "\nAttachments (%d):\n", len(d.Attachments))
		for _, a := range d.Attachments {
			fmt.Fprintf(w, "  %s (%d bytes)\n", a.Filename, a.Size)
		}
	}
}

func renderCreated(w io.Writer, s types.TicketSummary) {
	fmt.Fprintf(w, "Created ticket #%d: %s [%s]\n", s.Number, s.Title, s.Status)
	fmt.Fprintf(w, "ID: %s\n", s.ID)
}

func renderStatusChanged(w io.Writer, d *types.TicketDetail) {
	fmt.Fprintf(w, "Ticket #%d is now %s\n", d.Number, d.Status)
}

func renderAssigned(w io.Writer, d *types.TicketDetail) {
	if d.AssigneeID == nil {
		fmt.Fprintf(w, "Ticket #%d is now unassigned\n", d.Number)
	} else {
		fmt.Fprintf(w, "Ticket #%d assigned to %s\n", d.Number, d.AssigneeID)
	}
}

func renderCommented(w io.Writer, d *types.TicketDetail) {
	fmt.Fprintf(w, "Added message to ticket #%d (%d messages)\n", d.Number, len(d.Messages))
}

func renderAttached(w io.Writer, filename string, d *types.TicketDetail) {
	fmt.Fprintf(w, "Attached %s to ticket #%d (%d attachments)\n", filename, d.Number, len(d.Attachments))
}

func renderAudit(w io.Writer, rows []types.AuditRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No audit events")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tEVENT\tACTOR\tPAYLOAD")
	fmt.Fprintln(tw, "----\t-----\t-----\t-------")
	for _, row := range rows {
		actor := "-"
		if row.ActorID != nil {
			actor = row.ActorID.String()
		}
		payload := ""
		if len(row.Payload) > 0 {
			if raw, err := json.Marshal(row.Payload); err == nil {
				payload = string(raw)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", timeago.English.Format(row.CreatedAt), row.EventType, actor, payload)
	}
	tw.Flush()
}
