package runner

import (
	"os"
	"path/filepath"
	"strings"
)

// ProcessProbe reports how many external engine processes with the given
// name are currently alive. The runner uses it to throttle new submissions
// while a fixed pool of simulation engine processes is saturated. Reads are
// eventually consistent; races only affect submission rate, not correctness.
type ProcessProbe interface {
	Count(name string) int
}

// ProcProbe counts processes by executable name by scanning /proc. Any read
// error counts as zero, which simply disables throttling.
type ProcProbe struct{}

func (ProcProbe) Count(name string) int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() || !isNumeric(e.Name()) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", e.Name(), "comm"))
		if err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(string(comm)), name) {
			count++
		}
	}
	return count
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
