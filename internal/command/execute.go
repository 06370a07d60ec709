package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
)

// DefaultFolderTitle names folders added without a title.
const DefaultFolderTitle = "New folder"

// Execute runs cmd on ids. The returned message is meant for a toast and may
// be empty.
func (m *Manager) Execute(ctx context.Context, cmd Command, ids []string, args Args) (string, error) {
	if !m.CanExecute(cmd, ids) {
		return "", fmt.Errorf("%s: %w", cmd, ErrNotAllowed)
	}
	m.log.WithFields(logrus.Fields{"command": cmd.String(), "items": len(ids)}).Debug("execute")

	msg, err := m.execute(ctx, cmd, ids, args)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return msg, nil
}

func (m *Manager) execute(ctx context.Context, cmd Command, ids []string, args Args) (string, error) {
	s := m.store.State()

	switch cmd {
	case Edit:
		return "", m.edit(s, ids[0], args)

	case CopyURL:
		if err := m.service.CopyURLs(ids); err != nil {
			return "", err
		}
		return "URL copied", nil

	case ShowInFolder:
		id := ids[0]
		m.store.Dispatch(state.NewSelectFolder(s.Nodes[id].ParentID, s.Nodes))
		action, err := state.NewSelectItem(id, m.store.State(), state.SelectConfig{Clear: true})
		if err != nil {
			return "", err
		}
		m.store.Dispatch(action)
		return "", nil

	case Delete:
		label := itemsLabel(s.Nodes, ids)
		if err := m.service.RemoveTrees(ids); err != nil {
			return "", err
		}
		return label + " deleted", nil

	case Cut:
		label := itemsLabel(s.Nodes, ids)
		if err := m.service.Cut(ids); err != nil {
			return "", err
		}
		return label + " cut", nil

	case Copy:
		if err := m.service.Copy(ids); err != nil {
			return "", err
		}
		return itemsLabel(s.Nodes, ids) + " copied", nil

	case Paste:
		var pasted []string
		err := m.highlighting(ctx, func() error {
			var err error
			pasted, err = m.service.Paste(s.SelectedFolder, state.SelectedIDs(s))
			return err
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d pasted", len(pasted)), nil

	case Sort:
		if err := m.service.SortChildren(s.SelectedFolder); err != nil {
			return "", err
		}
		return "Folder sorted", nil

	case AddBookmark:
		if args.URL == "" {
			return "", ErrMissingURL
		}
		return "", m.highlighting(ctx, func() error {
			_, err := m.service.Create(bookmarks.CreateParams{
				ParentID: s.SelectedFolder,
				Title:    args.Title,
				URL:      args.URL,
			})
			return err
		})

	case AddFolder:
		title := args.Title
		if title == "" {
			title = DefaultFolderTitle
		}
		return "", m.highlighting(ctx, func() error {
			_, err := m.service.Create(bookmarks.CreateParams{ParentID: s.SelectedFolder, Title: title})
			return err
		})

	case Undo:
		return "", m.service.Undo()

	case Redo:
		return "", m.service.Redo()

	case OpenInBrowser, OpenIncognito:
		urls := collectURLs(s.Nodes, ids)
		var errs []error
		for _, u := range urls {
			if err := m.open(u, cmd == OpenIncognito); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return "", err
		}
		if len(urls) == 1 {
			return "", nil
		}
		return fmt.Sprintf("Opened %d bookmarks", len(urls)), nil

	case Export:
		return m.export(args.Path)

	case Import:
		f, err := os.Open(args.Path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := m.service.ImportHTML(f); err != nil {
			return "", err
		}
		return "Bookmarks imported", nil
	}
	return "", ErrNotAllowed
}

func (m *Manager) edit(s state.BookmarksPageState, id string, args Args) error {
	n := s.Nodes[id]
	changes := model.ChangeInfo{}
	if args.Title != n.Title {
		title := args.Title
		changes.Title = &title
	}
	if !n.IsFolder() && args.URL != "" && args.URL != n.URL {
		url := args.URL
		changes.URL = &url
	}
	if changes.Title == nil && changes.URL == nil {
		return nil
	}
	return m.service.Update(id, changes)
}

func (m *Manager) export(path string) (string, error) {
	if path == "" {
		var err error
		path, err = exporter.DefaultExportPath()
		if err != nil {
			return "", err
		}
	}
	nodes := model.NormalizeNodes(m.service.GetTree())
	if err := os.WriteFile(path, []byte(exporter.ExportHTML(nodes)), 0644); err != nil {
		return "", err
	}
	return "Exported to " + path, nil
}

// highlighting runs change with item tracking on and highlights the
// resulting items once the listener has flushed.
func (m *Manager) highlighting(ctx context.Context, change func() error) error {
	if m.tracker == nil {
		return change()
	}
	m.tracker.TrackUpdatedItems()
	err := change()
	// Highlighting also ends the tracking when change failed.
	go func() {
		if err := m.tracker.HighlightUpdatedItems(ctx); err != nil {
			m.log.WithError(err).Debug("highlight abandoned")
		}
	}()
	return err
}

func itemsLabel(nodes model.NodeMap, ids []string) string {
	if len(ids) == 1 {
		return fmt.Sprintf("%q", nodes[ids[0]].Title)
	}
	return fmt.Sprintf("%d items", len(ids))
}
