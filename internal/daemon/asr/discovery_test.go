package asr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCandidatesOrderAndOffsets(t *testing.T) {
	anchor := filepath.Join(t.TempDir(), "app", "bin")
	suffix := filepath.Join("python", "asr_service.py")

	got := Candidates([]string{anchor}, suffix)
	want := []string{
		filepath.Join(anchor, suffix),
		filepath.Join(anchor, "_up_", suffix),
		filepath.Join(anchor, "..", suffix),
		filepath.Join(anchor, "..", "_up_", suffix),
		filepath.Join(anchor, "..", "..", suffix),
	}
	if len(got) != len(want) {
		t.Fatalf("Candidates() returned %d paths, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCandidatesDeduplicates(t *testing.T) {
	// A root-level anchor makes ".." and "../.." collapse to the same
	// cleaned path, which must appear only once.
	anchor := string(filepath.Separator) + "a"
	got := Candidates([]string{anchor}, filepath.Join("python", "asr_service.py"))

	seen := make(map[string]int)
	for _, p := range got {
		seen[p]++
	}
	for p, n := range seen {
		if n > 1 {
			t.Errorf("candidate %q appears %d times", p, n)
		}
	}
	if len(got) != 4 {
		t.Errorf("Candidates() returned %d paths, want 4: %v", len(got), got)
	}
}

func TestCandidatesSkipsEmptyAnchors(t *testing.T) {
	anchor := filepath.Join(t.TempDir(), "a", "b")
	got := Candidates([]string{"", anchor, ""}, "f")
	if len(got) != len(probeOffsets) {
		t.Errorf("Candidates() returned %d paths, want %d", len(got), len(probeOffsets))
	}
}

func TestFindWorkerScript(t *testing.T) {
	tests := []struct {
		name   string
		layout func(root string) string // returns the anchor to search from
	}{
		{
			name: "directly under anchor",
			layout: func(root string) string {
				writeFile(t, filepath.Join(root, "python", "asr_service.py"))
				return root
			},
		},
		{
			name: "one level above anchor",
			layout: func(root string) string {
				writeFile(t, filepath.Join(root, "python", "asr_service.py"))
				return filepath.Join(root, "bin")
			},
		},
		{
			name: "under _up_ resource layout",
			layout: func(root string) string {
				writeFile(t, filepath.Join(root, "_up_", "python", "asr_service.py"))
				return root
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor := tt.layout(t.TempDir())
			got, err := FindWorkerScript([]string{anchor})
			if err != nil {
				t.Fatalf("FindWorkerScript() error = %v", err)
			}
			if filepath.Base(got) != "asr_service.py" {
				t.Errorf("FindWorkerScript() = %q, want path ending in asr_service.py", got)
			}
		})
	}
}

func TestFindWorkerScriptNotFound(t *testing.T) {
	anchor := filepath.Join(t.TempDir(), "deep", "anchor")
	_, err := FindWorkerScript([]string{anchor})
	if err == nil {
		t.Fatal("FindWorkerScript() error = nil, want not-found error")
	}
	want := "python/asr_service.py not found (checked 5 paths)"
	if err.Error() != want {
		t.Errorf("FindWorkerScript() error = %q, want %q", err.Error(), want)
	}
}

func TestFindWorkerScriptIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "python", "asr_service.py"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := FindWorkerScript([]string{root}); err == nil {
		t.Error("FindWorkerScript() found a directory, want not-found error")
	}
}

func TestFindBundledBinary(t *testing.T) {
	root := t.TempDir()
	name := BundledBinaryName()
	writeFile(t, filepath.Join(root, "python", "dist", "sber-whisper-sidecar", name))

	got, err := FindBundledBinary([]string{root})
	if err != nil {
		t.Fatalf("FindBundledBinary() error = %v", err)
	}
	if filepath.Base(got) != name {
		t.Errorf("FindBundledBinary() = %q, want path ending in %q", got, name)
	}
}

func TestFindBundledBinaryNotFound(t *testing.T) {
	anchor := filepath.Join(t.TempDir(), "deep", "anchor")
	_, err := FindBundledBinary([]string{anchor})
	if err == nil {
		t.Fatal("FindBundledBinary() error = nil, want not-found error")
	}
	want := fmt.Sprintf("bundled sidecar binary '%s' not found (checked 5 paths)", BundledBinaryName())
	if err.Error() != want {
		t.Errorf("FindBundledBinary() error = %q, want %q", err.Error(), want)
	}
	if !strings.Contains(err.Error(), "sber-whisper-sidecar") {
		t.Errorf("error %q does not name the binary", err.Error())
	}
}
