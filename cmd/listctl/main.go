// Command listctl is a reference front end for the list state core. It
// drives the same service surface a UI collaborator would: record
// mutations, projected views, the theme preference, and snapshot export.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"listcore/internal/blob"
	"listcore/internal/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: listctl <command> [flags]

commands:
  add      add a record (-title, -notes, -category, -priority, -due)
  ls       print the projected view (-status, -search, -category, -sort, -order)
  done     toggle a record's completion (-id)
  edit     update a record (-id, plus any field flag to change)
  rm       remove a record (-id)
  theme    print the theme, or flip it with -toggle
  export   archive the current snapshot to the blob store (-key)
  reset    clear all records and the persisted state`)
}

func run(args []string, stdout, stderr io.Writer) int {
	log := slog.New(slog.NewJSONHandler(stderr, nil))
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	store, err := core.OpenPersistentStore(log)
	if err != nil {
		log.Error("open storage", "error", err)
		return 1
	}
	svc, err := core.NewService(store, core.WithLogger(log))
	if err != nil {
		log.Error("initialize service", "error", err)
		return 1
	}
	ctx := context.Background()

	switch args[0] {
	case "add":
		return cmdAdd(ctx, svc, args[1:], stdout, stderr)
	case "ls":
		return cmdList(svc, args[1:], stdout, stderr)
	case "done":
		return cmdDone(ctx, svc, args[1:], stdout, stderr)
	case "edit":
		return cmdEdit(ctx, svc, args[1:], stdout, stderr)
	case "rm":
		return cmdRemove(ctx, svc, args[1:], stdout, stderr)
	case "theme":
		return cmdTheme(ctx, svc, args[1:], stdout, stderr)
	case "export":
		return cmdExport(ctx, svc, args[1:], stdout, stderr)
	case "reset":
		if err := svc.Reset(ctx); err != nil {
			fmt.Fprintf(stderr, "reset: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "state cleared")
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
}

func cmdAdd(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "record title (required)")
	notes := fs.String("notes", "", "free-form notes")
	category := fs.String("category", "", "category label")
	priority := fs.String("priority", "", "priority: high|medium|low")
	due := fs.String("due", "", "due date, RFC 3339 or 2006-01-02")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	draft := core.Draft{Title: *title, Category: *category, Priority: core.Priority(*priority)}
	if *notes != "" {
		draft.Notes = notes
	}
	if *due != "" {
		when, err := parseWhen(*due)
		if err != nil {
			fmt.Fprintf(stderr, "bad -due: %v\n", err)
			return 2
		}
		draft.DueAt = &when
	}
	created, err := svc.Add(ctx, draft)
	if err != nil {
		fmt.Fprintf(stderr, "add: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "added %s\n", created.ID)
	return 0
}

func cmdList(svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	status := fs.String("status", "all", "status filter: all|active|done")
	search := fs.String("search", "", "substring search over title, notes, category")
	category := fs.String("category", "", "exact category filter")
	sortKey := fs.String("sort", "", "sort key: title|created_at|due_at|priority")
	order := fs.String("order", "asc", "sort order: asc|desc")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	q := core.Query{
		Search:   *search,
		Status:   core.StatusFilter(*status),
		Category: *category,
		Key:      core.SortKey(*sortKey),
		Order:    core.SortOrder(*order),
	}
	records := svc.Project(q)
	tw := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRI\tDUE\tTITLE")
	for _, r := range records {
		mark := " "
		if r.Done {
			mark = "x"
		}
		due := ""
		if r.DueAt != nil {
			due = r.DueAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n", r.ID, mark, r.Priority, due, r.Title)
	}
	_ = tw.Flush()
	return 0
}

func cmdDone(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "record id (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	record, found, err := svc.Toggle(ctx, *id)
	if err != nil {
		fmt.Fprintf(stderr, "toggle: %v\n", err)
		return 1
	}
	if !found {
		fmt.Fprintf(stderr, "no record %s\n", *id)
		return 1
	}
	state := "active"
	if record.Done {
		state = "done"
	}
	fmt.Fprintf(stdout, "%s is now %s\n", record.ID, state)
	return 0
}

func cmdEdit(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "record id (required)")
	title := fs.String("title", "", "new title")
	notes := fs.String("notes", "", "new notes")
	category := fs.String("category", "", "new category")
	priority := fs.String("priority", "", "new priority: high|medium|low|none")
	due := fs.String("due", "", "new due date, RFC 3339 or 2006-01-02; 'none' clears it")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["id"] {
		fmt.Fprintln(stderr, "edit requires -id")
		return 2
	}

	var dueAt *time.Time
	if set["due"] && !strings.EqualFold(*due, "none") {
		when, err := parseWhen(*due)
		if err != nil {
			fmt.Fprintf(stderr, "bad -due: %v\n", err)
			return 2
		}
		dueAt = &when
	}

	record, found, err := svc.Update(ctx, *id, func(r *core.Record) error {
		if set["title"] {
			r.Title = *title
		}
		if set["notes"] {
			if *notes == "" {
				r.Notes = nil
			} else {
				r.Notes = notes
			}
		}
		if set["category"] {
			r.Category = *category
		}
		if set["priority"] {
			p := core.Priority(*priority)
			if p == "none" {
				p = core.PriorityNone
			}
			if !p.Valid() {
				return fmt.Errorf("unknown priority %q", *priority)
			}
			r.Priority = p
		}
		if set["due"] {
			r.DueAt = dueAt
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(stderr, "edit: %v\n", err)
		return 1
	}
	if !found {
		fmt.Fprintf(stderr, "no record %s\n", *id)
		return 1
	}
	fmt.Fprintf(stdout, "updated %s\n", record.ID)
	return 0
}

func cmdRemove(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "record id (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	found, err := svc.Remove(ctx, *id)
	if err != nil {
		fmt.Fprintf(stderr, "remove: %v\n", err)
		return 1
	}
	if !found {
		fmt.Fprintf(stderr, "no record %s\n", *id)
		return 1
	}
	fmt.Fprintf(stdout, "removed %s\n", *id)
	return 0
}

func cmdTheme(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(stderr)
	toggle := fs.Bool("toggle", false, "flip the preference")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	dark := svc.Theme()
	if *toggle {
		var err error
		dark, err = svc.ToggleTheme(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "toggle theme: %v\n", err)
			return 1
		}
	}
	if dark {
		fmt.Fprintln(stdout, "dark")
	} else {
		fmt.Fprintln(stdout, "light")
	}
	return 0
}

func cmdExport(ctx context.Context, svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	key := fs.String("key", "", "archive key (default derives a timestamped one)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, err := blob.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open blob store: %v\n", err)
		return 1
	}
	info, err := svc.Export(ctx, target, *key)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "exported %s (%d bytes)\n", info.Key, info.Size)
	return 0
}

func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
