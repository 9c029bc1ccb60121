package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/supportdesk-io/sdesk/internal/tui"
	"github.com/supportdesk-io/sdesk/internal/types"
)

var (
	queryFlag    string
	statusFlag   string
	assigneeFlag string
	pageFlag     int
	limitFlag    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tickets, optionally filtered",
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show a ticket's full detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	titleFlag          string
	descriptionFlag    string
	requesterNameFlag  string
	requesterEmailFlag string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new ticket",
	RunE:  runCreate,
}

var statusCmd = &cobra.Command{
	Use:   "status <ticket-id> <status>",
	Short: fmt.Sprintf("Change a ticket's status (%s)", types.StatusList()),
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var assignCmd = &cobra.Command{
	Use:   "assign <ticket-id> [user-id]",
	Short: "Assign a ticket to a user, or clear the assignment",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAssign,
}

var commentCmd = &cobra.Command{
	Use:   "comment <ticket-id> <body>",
	Short: "Add a message to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE:  runComment,
}

var attachCmd = &cobra.Command{
	Use:   "attach <ticket-id> <file>",
	Short: "Upload a file attachment to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttach,
}

var auditCmd = &cobra.Command{
	Use:   "audit <ticket-id>",
	Short: "Show a ticket's audit trail (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse tickets in an interactive terminal UI",
	RunE:  runTUI,
}

func init() {
	listCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Search tickets by title or description")
	listCmd.Flags().StringVar(&statusFlag, "status", "", fmt.Sprintf("Filter by status (%s)", types.StatusList()))
	listCmd.Flags().StringVar(&assigneeFlag, "assignee", "", "Filter by assignee user ID")
	listCmd.Flags().IntVar(&pageFlag, "page", 1, "Page number")
	listCmd.Flags().IntVar(&limitFlag, "limit", 0, "Page size (0 uses the configured default)")

	createCmd.Flags().StringVar(&titleFlag, "title", "", "Ticket title (required)")
	createCmd.Flags().StringVar(&descriptionFlag, "description", "", "Ticket description (required)")
	createCmd.Flags().StringVar(&requesterNameFlag, "requester-name", "", "Requester display name (required)")
	createCmd.Flags().StringVar(&requesterEmailFlag, "requester-email", "", "Requester email (required)")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("description")
	createCmd.MarkFlagRequired("requester-name")
	createCmd.MarkFlagRequired("requester-email")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, statusCmd, assignCmd, commentCmd, attachCmd, auditCmd, tuiCmd)
}

func buildFilter() (types.Filter, error) {
	filter := types.Filter{Query: queryFlag, Page: pageFlag, Limit: limitFlag}
	if filter.Limit == 0 {
		filter.Limit = cfg.List.Limit
	}
	if statusFlag != "" {
		status, err := types.ParseStatus(statusFlag)
		if err != nil {
			return types.Filter{}, err
		}
		filter.Status = &status
	}
	if assigneeFlag != "" {
		id, err := uuid.Parse(assigneeFlag)
		if err != nil {
			return types.Filter{}, fmt.Errorf("invalid assignee id %q: %w", assigneeFlag, err)
		}
		filter.AssigneeID = &id
	}
	return filter, nil
}

func parseTicketID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid ticket id %q: %w", arg, err)
	}
	return id, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}
	page, err := controller.RefreshList(cmd.Context(), filter)
	if err != nil {
		return err
	}
	renderList(os.Stdout, page)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	detail, err := controller.OpenTicket(cmd.Context(), id)
	if err != nil {
		return err
	}
	renderDetail(os.Stdout, detail)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	summary, err := controller.CreateTicket(cmd.Context(), types.TicketCreateRequest{
		Title:          titleFlag,
		Description:    descriptionFlag,
		RequesterName:  requesterNameFlag,
		RequesterEmail: requesterEmailFlag,
	})
	if err != nil {
		return err
	}
	renderCreated(os.Stdout, summary)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	status, err := types.ParseStatus(args[1])
	if err != nil {
		return err
	}
	detail, err := controller.SetStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	renderStatusChanged(os.Stdout, detail)
	return nil
}

func runAssign(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	var assignee *uuid.UUID
	if len(args) == 2 {
		parsed, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[1], err)
		}
		assignee = &parsed
	}
	detail, err := controller.SetAssignee(cmd.Context(), id, assignee)
	if err != nil {
		return err
	}
	renderAssigned(os.Stdout, detail)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	detail, err := controller.PostMessage(cmd.Context(), id, args[1])
	if err != nil {
		return err
	}
	renderCommented(os.Stdout, detail)
	return nil
}

func runAttach(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	file, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer file.Close()

	detail, err := controller.UploadAttachment(cmd.Context(), id, filepath.Base(args[1]), file)
	if err != nil {
		return err
	}
	renderAttached(os.Stdout, filepath.Base(args[1]), detail)
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	rows, err := controller.FetchAudit(cmd.Context(), id)
	if err != nil {
		return err
	}
	renderAudit(os.Stdout, rows)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	model := tui.NewModel(controller, auth, cfg.List.Limit)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := program.Run()
	return err
}
