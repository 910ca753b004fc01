package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"donationhub/internal/explorer"
	"donationhub/internal/models"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse campaigns interactively",
	Long: `Browse public campaigns from the terminal.

Each line you type is search input and is applied after the debounce delay,
or straight away when input ends. Lines starting with ':' are commands:
  :set KEY VALUE  - set category, location, status or sort
  :more           - load the next page
  :clear          - reset every filter
  :quit           - exit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		e := explorer.New(client.Public,
			explorer.WithDebounce(cfg.SearchDebounce),
			explorer.WithFilters(explorer.DefaultFilters(cfg.ExplorePageSize)),
		)
		defer e.Close()
		return runExplorer(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), e)
	},
}

// syncWriter serializes writes from the input loop and explorer callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// runExplorer drives e from the lines of in until :quit, EOF or ctx ends.
// Commands wait for their fetch so output follows input order.
func runExplorer(ctx context.Context, in io.Reader, out io.Writer, e *explorer.Explorer) error {
	w := &syncWriter{w: out}
	unsubscribe := e.Subscribe(func(s explorer.State) {
		switch s.Phase {
		case explorer.Success:
			w.printf("%s", describe(s))
		case explorer.Error:
			w.printf("error: %s\n", s.Message())
		}
	})
	defer unsubscribe()

	e.Start()
	e.Wait()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, ":") {
			e.Search(line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q":
			return nil
		case ":more":
			if !e.LoadMore() {
				w.printf("no more campaigns\n")
			}
		case ":clear":
			e.ClearFilters()
		case ":set":
			if len(fields) < 3 {
				w.printf("usage: :set KEY VALUE\n")
				continue
			}
			if err := e.SetFilter(explorer.Key(fields[1]), strings.Join(fields[2:], " ")); err != nil {
				w.printf("error: %v\n", err)
				continue
			}
		default:
			w.printf("unknown command %s\n", fields[0])
			continue
		}
		e.Wait()
	}
	if e.FlushSearch() {
		e.Wait()
	}
	return scanner.Err()
}

func describe(s explorer.State) string {
	var b strings.Builder
	f := s.Filters
	fmt.Fprintf(&b, "%d of %d campaigns (category=%s location=%s status=%s sort=%s",
		len(s.Campaigns), s.Pagination.Total, f.Category, f.Location, f.Status, f.SortBy)
	if f.Search != "" {
		fmt.Fprintf(&b, " search=%q", f.Search)
	}
	b.WriteString(")\n")

	for _, c := range s.Campaigns {
		fmt.Fprintf(&b, "  %-40s %-9s %3d%% of %s\n", c.Title, c.Status, c.Percentage, models.Rupees(c.Goal))
	}
	if s.Pagination.HasNext {
		b.WriteString("  (:more for the next page)\n")
	}
	return b.String()
}
