package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logtail"
	"github.com/five82/hoard/internal/session"
)

// Messages

type tickMsg time.Time

type validatedMsg struct {
	origin string
	err    error
}

type pageMsg struct {
	seq   int
	page  hoarder.BookmarkPage
	pager pager
	err   error
}

type collectionsMsg struct {
	entries []scope
	err     error
}

type updatedMsg struct {
	bookmark hoarder.Bookmark
	verb     string
	err      error
}

type deletedMsg struct {
	id  string
	err error
}

type copiedMsg struct {
	url string
	err error
}

type logsMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func validateCmd(ctx context.Context, store *session.Store, origin, apiKey string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		return validatedMsg{origin: origin, err: store.ValidateAndStore(ctx, apiKey)}
	}
}

func fetchPageCmd(ctx context.Context, seq int, target pager, load func(context.Context) (hoarder.BookmarkPage, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		page, err := load(ctx)
		return pageMsg{seq: seq, page: page, pager: target, err: err}
	}
}

func loadCollectionsCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		lists, err := store.Lists(ctx)
		if err != nil {
			return collectionsMsg{err: err}
		}
		tags, err := store.Tags(ctx)
		if err != nil {
			return collectionsMsg{err: err}
		}
		return collectionsMsg{entries: collectionEntries(lists, tags)}
	}
}

func setFavouritedCmd(ctx context.Context, store *session.Store, id string, favourited bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		b, err := store.SetFavourited(ctx, id, favourited)
		return updatedMsg{bookmark: b, verb: ternary(favourited, "Starred", "Unstarred"), err: err}
	}
}

func setArchivedCmd(ctx context.Context, store *session.Store, id string, archived bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		b, err := store.SetArchived(ctx, id, archived)
		return updatedMsg{bookmark: b, verb: ternary(archived, "Archived", "Unarchived"), err: err}
	}
}

func deleteCmd(ctx context.Context, store *session.Store, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()
		return deletedMsg{id: id, err: store.DeleteBookmark(ctx, id)}
	}
}

func copyCmd(write func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{url: url, err: write(url)}
	}
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, LogPaneLines)
		return logsMsg{lines: logtail.FormatLines(lines), err: err}
	}
}
