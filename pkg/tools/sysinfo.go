package tools

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
)

// SysInfo is a best-effort snapshot of the host. Any field that cannot be
// determined holds Unknown.
type SysInfo struct {
	OS           string
	Architecture string
	Processor    string
	Runtime      string
	User         string
	WorkingDir   string
}

// SystemInfo collects a SysInfo. It never fails.
func (t *Toolbox) SystemInfo() SysInfo {
	return SysInfo{
		OS:           orUnknown(t.goos),
		Architecture: orUnknown(runtime.GOARCH),
		Processor:    orUnknown(t.processor()),
		Runtime:      orUnknown(runtime.Version()),
		User:         orUnknown(currentUser()),
		WorkingDir:   orUnknown(workingDir()),
	}
}

func (s SysInfo) String() string {
	var b strings.Builder
	b.WriteString("System information:\n")
	fmt.Fprintf(&b, "  OS:           %s\n", s.OS)
	fmt.Fprintf(&b, "  Architecture: %s\n", s.Architecture)
	fmt.Fprintf(&b, "  Processor:    %s\n", s.Processor)
	fmt.Fprintf(&b, "  Go runtime:   %s\n", s.Runtime)
	fmt.Fprintf(&b, "  User:         %s\n", s.User)
	fmt.Fprintf(&b, "  Working dir:  %s", s.WorkingDir)
	return b.String()
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, env := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// processorName returns a human readable CPU description where the platform
// offers one cheaply.
func processorName() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("PROCESSOR_IDENTIFIER")
	case "linux":
		return cpuinfoModel("/proc/cpuinfo")
	default:
		return ""
	}
}

func cpuinfoModel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "model name", "Hardware", "Model":
			return strings.TrimSpace(value)
		}
	}
	return ""
}
