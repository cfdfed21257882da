package asr

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const bundledBinaryBase = "sber-whisper-sidecar"

// probeOffsets are the relative positions tried under each anchor. The
// literal "_up_" element matches the layout installers unpack resources
// into next to the executable.
var probeOffsets = []string{
	".",
	"_up_",
	"..",
	filepath.Join("..", "_up_"),
	filepath.Join("..", ".."),
}

// BundledBinaryName returns the packaged worker executable name for the
// current platform.
func BundledBinaryName() string {
	if runtime.GOOS == "windows" {
		return bundledBinaryBase + ".exe"
	}
	return bundledBinaryBase
}

// Anchors returns the directories worker files are searched under: the
// running binary's directory, the current working directory, and an
// optional resource directory. Anchors that cannot be resolved are
// silently skipped.
func Anchors(resourceDir string) []string {
	var anchors []string
	if exe, err := os.Executable(); err == nil {
		anchors = append(anchors, filepath.Dir(exe))
	}
	if cwd, err := os.Getwd(); err == nil {
		anchors = append(anchors, cwd)
	}
	if resourceDir != "" {
		anchors = append(anchors, resourceDir)
	}
	return anchors
}

// Candidates returns the ordered, deduplicated list of paths probed for a
// relative suffix under the given anchor directories. The function is pure
// apart from path cleaning; it never touches the filesystem.
func Candidates(anchors []string, suffix string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, anchor := range anchors {
		if anchor == "" {
			continue
		}
		for _, offset := range probeOffsets {
			p := filepath.Clean(filepath.Join(anchor, offset, suffix))
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// FindBundledBinary locates the packaged worker executable under the
// anchors, or reports how many paths were probed.
func FindBundledBinary(anchors []string) (string, error) {
	name := BundledBinaryName()
	suffix := filepath.Join("python", "dist", bundledBinaryBase, name)
	return findFirst(anchors, suffix, fmt.Sprintf("bundled sidecar binary '%s'", name))
}

// FindWorkerScript locates the development worker script under the anchors.
func FindWorkerScript(anchors []string) (string, error) {
	suffix := filepath.Join("python", "asr_service.py")
	return findFirst(anchors, suffix, "python/asr_service.py")
}

func findFirst(anchors []string, suffix, what string) (string, error) {
	candidates := Candidates(anchors, suffix)
	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found (checked %d paths)", what, len(candidates))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
