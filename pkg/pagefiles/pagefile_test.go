package pagefiles

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPageID(t *testing.T) {
	tests := []struct {
		filePath string
		want     string
	}{
		{"/pages/about.page.go", "/pages/about"},
		{"/pages/about.page.server.go", "/pages/about"},
		{"/pages/about.page.client.go", "/pages/about"},
		{"/pages/index.page.route.go", "/pages/index"},
		{"/pages/_default.page.server.go", "/pages/_default"},
	}
	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			if got := PageID(tt.filePath); got != tt.want {
				t.Errorf("PageID(%q) = %q, want %q", tt.filePath, got, tt.want)
			}
		})
	}
}

func TestIsDefaultFile(t *testing.T) {
	if !IsDefaultFile("/pages/_default.page.server.go") {
		t.Error("IsDefaultFile(_default) = false, want true")
	}
	if IsDefaultFile("/pages/about.page.server.go") {
		t.Error("IsDefaultFile(about) = true, want false")
	}
}

func TestErrorPage(t *testing.T) {
	ids := []string{"/pages/about", "/pages/_error", "/pages/index"}
	if got := GetErrorPageID(ids); got != "/pages/_error" {
		t.Errorf("GetErrorPageID() = %q, want /pages/_error", got)
	}
	if got := GetErrorPageID([]string{"/pages/about"}); got != "" {
		t.Errorf("GetErrorPageID() = %q, want empty", got)
	}
}

func TestLoadIsMemoized(t *testing.T) {
	var calls atomic.Int32
	f := New("/pages/about.page.server.go", FileTypePageServer, func(ctx context.Context) (Exports, error) {
		calls.Add(1)
		return Exports{"render": "hook"}, nil
	})

	first, err := f.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("loader invoked %d times, want 1", calls.Load())
	}
	// Reference-equal cached export table, never re-created.
	if first["render"] == nil || second["render"] == nil {
		t.Fatal("unexpected nil exports")
	}
	first["marker"] = true
	if _, ok := second["marker"]; !ok {
		t.Error("Load() returned different maps, want the identical cached table")
	}
}

func TestLoadConcurrentFirstLoad(t *testing.T) {
	var calls atomic.Int32
	f := New("/pages/about.page.go", FileTypePage, func(ctx context.Context) (Exports, error) {
		calls.Add(1)
		return Exports{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Load(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("loader invoked %d times under concurrency, want 1", calls.Load())
	}
}

func TestInventory(t *testing.T) {
	files := []*PageFile{
		NewLoaded("/pages/about.page.go", FileTypePage, Exports{}),
		NewLoaded("/pages/about.page.server.go", FileTypePageServer, Exports{}),
		NewLoaded("/pages/_default.page.go", FileTypePage, Exports{}),
		NewLoaded("/pages/_error.page.go", FileTypePage, Exports{}),
	}
	inv := NewInventory(files)

	if got := len(inv.ByType(FileTypePage)); got != 3 {
		t.Errorf("ByType(.page) len = %d, want 3", got)
	}
	ids := inv.PageIDs()
	want := []string{"/pages/about", "/pages/_error"}
	if len(ids) != len(want) {
		t.Fatalf("PageIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("PageIDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
