package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
)

const dateLayout = "2006-01-02"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printLists(out io.Writer, lists []*list.List) error {
	if len(lists) == 0 {
		_, err := fmt.Fprintln(out, `No lists yet. Create one with: tasklists lists add "Name"`)
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tUPDATED")
	for _, l := range lists {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", l.ID, l.Name, orDash(l.Color), l.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func printList(out io.Writer, l *list.List) error {
	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%d\n", l.ID)
	fmt.Fprintf(w, "Name:\t%s\n", l.Name)
	fmt.Fprintf(w, "Color:\t%s\n", orDash(l.Color))
	fmt.Fprintf(w, "Created:\t%s\n", l.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Updated:\t%s\n", l.UpdatedAt.Local().Format(time.DateTime))
	return w.Flush()
}

func printTasks(out io.Writer, tasks []*task.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No tasks found.")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tTITLE\tLIST\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, checkbox(t.IsCompleted), t.Priority, t.Title, listRef(t.ListID), dueDate(t.DueDate))
	}
	return w.Flush()
}

func printTask(out io.Writer, t *task.Task) error {
	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%d\n", t.ID)
	fmt.Fprintf(w, "Title:\t%s\n", t.Title)
	fmt.Fprintf(w, "Description:\t%s\n", orDash(t.Description))
	fmt.Fprintf(w, "List:\t%s\n", listRef(t.ListID))
	fmt.Fprintf(w, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(w, "Due:\t%s\n", dueDate(t.DueDate))
	fmt.Fprintf(w, "Completed:\t%t\n", t.IsCompleted)
	fmt.Fprintf(w, "Created:\t%s\n", t.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Updated:\t%s\n", t.UpdatedAt.Local().Format(time.DateTime))
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func listRef(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func dueDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// parseDue accepts a plain date or a full RFC 3339 timestamp.
func parseDue(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}
