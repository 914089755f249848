package atomicstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type record struct {
	Count int `json:"count"`
}

func TestReadJSONMissingReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	got := ReadJSON(path, record{Count: 7})
	if got.Count != 7 {
		t.Errorf("expected default, got %+v", got)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := WriteJSON(path, record{Count: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := ReadJSON(path, record{})
	if got.Count != 3 {
		t.Errorf("expected count=3, got %d", got.Count)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after rename")
	}
}

func TestUpdateJSONConcurrentIncrements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")
	if err := WriteJSON(path, record{Count: 0}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := UpdateJSON(path, func(r record) record {
				r.Count++
				return r
			}, record{})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	final := ReadJSON(path, record{})
	if final.Count != 20 {
		t.Errorf("expected count=20 after concurrent updates, got %d", final.Count)
	}
}
