package tui

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/storage"
)

// LoadFolderOpenState reads the saved folder open state. A missing value
// returns an empty state.
func LoadFolderOpenState(local storage.LocalStore) (state.FolderOpenState, error) {
	open := state.FolderOpenState{}
	if local == nil {
		return open, nil
	}
	raw, ok, err := local.GetItem(storage.KeyFolderOpenState)
	if err != nil || !ok {
		return open, err
	}
	if err := json.Unmarshal([]byte(raw), &open); err != nil {
		return state.FolderOpenState{}, fmt.Errorf("decode %s: %w", storage.KeyFolderOpenState, err)
	}
	return open, nil
}

// LoadSidebarWidth reads the saved sidebar width, or returns 0.
func LoadSidebarWidth(local storage.LocalStore) int {
	if local == nil {
		return 0
	}
	raw, ok, err := local.GetItem(storage.KeySidebarWidth)
	if err != nil || !ok {
		return 0
	}
	width, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return width
}

func saveFolderOpenState(local storage.LocalStore, open state.FolderOpenState) error {
	data, err := json.Marshal(open)
	if err != nil {
		return err
	}
	return local.SetItem(storage.KeyFolderOpenState, string(data))
}

func saveSidebarWidth(local storage.LocalStore, width int) error {
	return local.SetItem(storage.KeySidebarWidth, strconv.Itoa(width))
}
