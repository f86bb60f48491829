package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
)

const timeLayout = "2006-01-02 15:04:05"

// maxErrorWidth keeps long server messages from wrapping the table.
const maxErrorWidth = 60

// RenderOutbox prints the outbox as a table, oldest record first.
func RenderOutbox(w io.Writer, records []models.OutboxRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "Outbox is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tCREATED\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, r.Status, r.CreatedAt.UTC().Format(timeLayout), truncate(r.LastError, maxErrorWidth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var pending, sent, failed int
	for _, r := range records {
		switch r.Status {
		case models.StatusPending:
			pending++
		case models.StatusSent:
			sent++
		case models.StatusError:
			failed++
		}
	}
	_, err := fmt.Fprintf(w, "%d pending, %d sent, %d failed\n", pending, sent, failed)
	return err
}

// RenderSyncResult prints the summary of one pass.
func RenderSyncResult(w io.Writer, res models.SyncResult) error {
	var b strings.Builder
	switch {
	case res.Skipped:
		fmt.Fprintf(&b, "Sync skipped: %s\n", strings.Join(res.Errors, "; "))
	case res.Processed == 0 && res.Failed == 0:
		b.WriteString("Nothing to sync\n")
	default:
		fmt.Fprintf(&b, "Sync finished: %d sent, %d failed\n", res.Processed, res.Failed)
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Status is what the "status" command shows.
type Status struct {
	User     string
	Mode     Mode
	Pending  int
	LastSync time.Time
	Syncing  bool
}

func RenderStatus(w io.Writer, s Status) error {
	user := s.User
	if user == "" {
		user = "(not logged in)"
	}
	mode := string(s.Mode)
	if mode == "" {
		mode = "unknown"
	}
	last := "never"
	if !s.LastSync.IsZero() {
		last = s.LastSync.UTC().Format(timeLayout)
	}
	syncing := "no"
	if s.Syncing {
		syncing = "yes"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "User:\t%s\n", user)
	fmt.Fprintf(tw, "Mode:\t%s\n", mode)
	fmt.Fprintf(tw, "Pending:\t%d\n", s.Pending)
	fmt.Fprintf(tw, "Last sync:\t%s\n", last)
	fmt.Fprintf(tw, "Syncing:\t%s\n", syncing)
	return tw.Flush()
}

// RenderWorkItems prints local work items of one kind.
func RenderWorkItems(w io.Writer, items []models.WorkItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, truncate(it.Title, maxErrorWidth), it.UpdatedAt.UTC().Format(timeLayout))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
