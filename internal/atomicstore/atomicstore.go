// Package atomicstore provides lock-protected, atomic JSON file access
// for mission-scoped state files such as the stage engine's mission
// record. Reads take a shared flock, writes take an exclusive flock and
// land via write-temp-then-rename so a reader never observes a
// partially written file.
package atomicstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atlasforge/missionforge/internal/logging"
)

const (
	maxRetries  = 5
	retryMinGap = 100 * time.Millisecond
	retryMaxGap = 500 * time.Millisecond
)

// ReadJSON reads path into a value of the same shape as def, returning
// def if the file is absent, empty, or unreadable after retries.
func ReadJSON[T any](path string, def T) T {
	f, err := lockFile(path, syscall.LOCK_SH)
	if err != nil {
		logging.StoreDebug("read %s: %v, returning default", path, err)
		return def
	}
	defer unlock(f)

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return def
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		logging.StoreError("malformed json at %s: %v", path, err)
		return def
	}
	return out
}

// WriteJSON atomically replaces path's contents with value, marshaled
// as indented JSON. It never leaves a partially written file behind.
func WriteJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("atomicstore: mkdir: %w", err)
	}
	f, err := lockFile(path, syscall.LOCK_EX)
	if err != nil {
		return fmt.Errorf("atomicstore: lock %s: %w", path, err)
	}
	defer unlock(f)

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("atomicstore: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("atomicstore: write temp: %w", err)
	}
	tf, err := os.OpenFile(tmp, os.O_RDWR, 0644)
	if err == nil {
		tf.Sync()
		tf.Close()
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("atomicstore: rename: %w", err)
	}
	return nil
}

// UpdateJSON performs a read-modify-write of path under a single
// exclusive lock for the duration of fn, so concurrent updaters never
// interleave.
func UpdateJSON[T any](path string, fn func(T) T, def T) (T, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		var zero T
		return zero, fmt.Errorf("atomicstore: mkdir: %w", err)
	}
	f, err := lockFile(path, syscall.LOCK_EX)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("atomicstore: lock %s: %w", path, err)
	}
	defer unlock(f)

	current := def
	if data, rerr := os.ReadFile(path); rerr == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &current)
	}

	updated := fn(current)
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		var zero T
		return zero, fmt.Errorf("atomicstore: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		var zero T
		return zero, fmt.Errorf("atomicstore: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		var zero T
		return zero, fmt.Errorf("atomicstore: rename: %w", err)
	}
	return updated, nil
}

// lockFile opens (creating if needed) path and retries an flock of the
// given kind (LOCK_SH or LOCK_EX) with bounded backoff, matching the
// retry budget of at least 5 attempts across 100-500ms total.
func lockFile(path string, how int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	gap := retryMinGap
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := syscall.Flock(int(f.Fd()), how|syscall.LOCK_NB); err == nil {
			return f, nil
		} else {
			lastErr = err
		}
		time.Sleep(gap)
		if gap < retryMaxGap {
			gap *= 2
			if gap > retryMaxGap {
				gap = retryMaxGap
			}
		}
	}
	f.Close()
	return nil, fmt.Errorf("could not acquire lock after %d attempts: %w", maxRetries, lastErr)
}

func unlock(f *os.File) {
	if f == nil {
		return
	}
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	f.Close()
}
