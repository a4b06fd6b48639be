package catalog_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/apiref/adapters/catalog"
)

func TestHolder_Get(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	got := h.Get()
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if v, err := got.DefaultVersion("svc"); err != nil || v != "v1" {
		t.Errorf("DefaultVersion(svc) = %q, %v, want v1, nil", v, err)
	}
}

func TestHolder_Reload(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	newContent := `
apis:
  - name: svc
    default_version: v2
    versions:
      - version: v2
        base_url: "https://svc.googleapis.com/v2/"
        collections:
          - name: projects
            path: "projects/{project}"
`
	if err := os.WriteFile(path, []byte(newContent), 0644); err != nil {
		t.Fatalf("write new catalog: %v", err)
	}

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	if v, err := h.DefaultVersion("svc"); err != nil || v != "v2" {
		t.Errorf("reloaded DefaultVersion(svc) = %q, %v, want v2, nil", v, err)
	}
	if _, err := h.Collections("storage", "v1"); err == nil {
		t.Error("storage api should be gone after reload")
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var received *catalog.Catalog

	h.OnChange(func(c *catalog.Catalog) {
		mu.Lock()
		received = c
		mu.Unlock()
	})

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if received == nil {
		t.Fatal("OnChange callback was not called")
	}
	if received != h.Get() {
		t.Error("callback received a different snapshot than Get")
	}
}

func TestHolder_ReloadInvalidCatalog(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	invalid := `
apis:
  - name: svc
`
	if err := os.WriteFile(path, []byte(invalid), 0644); err != nil {
		t.Fatalf("write invalid catalog: %v", err)
	}

	if err := h.Reload(); err == nil {
		t.Error("Reload should fail for invalid catalog")
	}

	// Old catalog should still be served
	if _, err := h.Collections("svc", "v1"); err != nil {
		t.Errorf("should keep old catalog: %v", err)
	}
}

func TestHolder_WatchFile(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var callCount int

	h.OnChange(func(*catalog.Catalog) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})

	if err := h.WatchFile(); err != nil {
		t.Fatalf("WatchFile error: %v", err)
	}

	newContent := `
apis:
  - name: other
    versions:
      - version: v1
        base_url: "https://other.googleapis.com/v1/"
        collections:
          - name: things
            path: "things/{thing}"
`
	if err := os.WriteFile(path, []byte(newContent), 0644); err != nil {
		t.Fatalf("write new catalog: %v", err)
	}

	// Wait for file watcher to trigger
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if callCount == 0 {
		t.Error("file watcher did not trigger reload")
	}
	mu.Unlock()

	if _, err := h.Collections("other", "v1"); err != nil {
		t.Errorf("after file watch, Collections(other, v1) error: %v", err)
	}
}

func TestHolder_ConcurrentAccess(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)

	h, err := catalog.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if h.Get() == nil {
					t.Error("concurrent Get returned nil")
				}
			}
		}()
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Reload()
		}()
	}

	wg.Wait()
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}
