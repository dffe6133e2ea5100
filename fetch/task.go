package fetch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brendan-ward/tilemosaic/tiles"
)

// Task is one tile to download. It is created by NewTasks and updated only
// by the Fetcher goroutine that owns it.
type Task struct {
	Tile tiles.TileID
	URL  string
	// Path is where the body is written; if empty the body is kept in Data
	Path string
	Data []byte
	// Err is set when every attempt failed
	Err      error
	Attempts int
}

// NewTasks creates a task for every tile in set, in the set's order.
// Files are named tile_{x}_{y}.{format} within dir; if dir is empty tiles
// are kept in memory.
func NewTasks(set *tiles.TileSet, url func(tiles.TileID) string, dir string, format string) []*Task {
	tasks := make([]*Task, 0, set.Len())
	for _, tile := range set.Tiles {
		task := &Task{
			Tile: tile,
			URL:  url(tile),
		}
		if dir != "" {
			task.Path = filepath.Join(dir, fmt.Sprintf("tile_%d_%d.%s", tile.X, tile.Y, format))
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// Succeeded returns true if the task was downloaded
func (t *Task) Succeeded() bool {
	return t.Attempts > 0 && t.Err == nil
}

// Bytes returns the downloaded body, reading it from Path if needed
func (t *Task) Bytes() ([]byte, error) {
	if !t.Succeeded() {
		return nil, fmt.Errorf("tile %v was not downloaded", &t.Tile)
	}
	if t.Path == "" {
		return t.Data, nil
	}
	return os.ReadFile(t.Path)
}

func (t *Task) store(data []byte) error {
	if t.Path == "" {
		t.Data = data
		return nil
	}
	if err := os.WriteFile(t.Path, data, 0644); err != nil {
		return fmt.Errorf("write tile %v: %w", &t.Tile, err)
	}
	return nil
}

// discard removes anything left behind by an earlier run or attempt
func (t *Task) discard() {
	t.Data = nil
	if t.Path != "" {
		os.Remove(t.Path)
	}
}
