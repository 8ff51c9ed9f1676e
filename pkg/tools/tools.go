// Package tools implements the local tools reachable through "/command"
// syntax. Tools run without the model: directory listing, file preview,
// system and time queries, arithmetic and disk space.
package tools

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultListLimit caps the number of entries shown by /ls.
	DefaultListLimit = 20

	// DefaultReadLimit caps the number of bytes shown by /cat.
	DefaultReadLimit = 500

	// TimeLayout is the display format of /time.
	TimeLayout = "2006-01-02 15:04:05"

	// Unknown is shown for any system field that cannot be determined.
	Unknown = "unknown"
)

// Kind enumerates the tools known to the dispatcher.
type Kind int

const (
	KindHelp Kind = iota
	KindList
	KindRead
	KindSysInfo
	KindTime
	KindCalc
	KindDisk

	kindCount
)

type kindInfo struct {
	name  string
	usage string
	desc  string
}

var kinds = [kindCount]kindInfo{
	KindHelp:    {name: "help", desc: "Show this help"},
	KindList:    {name: "ls", usage: "[path]", desc: "List directory contents"},
	KindRead:    {name: "cat", usage: "<path>", desc: "Show the beginning of a file"},
	KindSysInfo: {name: "sysinfo", desc: "Show system information"},
	KindTime:    {name: "time", desc: "Show the current date and time"},
	KindCalc:    {name: "calc", usage: "<expression>", desc: "Evaluate arithmetic (+ - * / and parentheses)"},
	KindDisk:    {name: "disk", desc: "Show disk space (Windows only)"},
}

// Kinds returns every tool kind in display order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Name is the command name of k, without the prefix.
func (k Kind) Name() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kinds[k].name
}

// Usage is the argument shape of k, empty for tools without arguments.
func (k Kind) Usage() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kinds[k].usage
}

func (k Kind) String() string {
	if n := k.Name(); n != "" {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Lookup resolves a case-folded command name to its Kind.
func Lookup(name string) (Kind, bool) {
	name = strings.ToLower(name)
	for k := Kind(0); k < kindCount; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// Toolbox executes tools against a filesystem and clock.
type Toolbox struct {
	fs        FileSystem
	listLimit int
	readLimit int
	now       func() time.Time
	goos      string
	processor func() string
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithFileSystem replaces the OS filesystem.
func WithFileSystem(fsys FileSystem) Option {
	return func(t *Toolbox) {
		t.fs = fsys
	}
}

// WithListLimit sets the /ls entry cap. Non-positive values are ignored.
func WithListLimit(n int) Option {
	return func(t *Toolbox) {
		if n > 0 {
			t.listLimit = n
		}
	}
}

// WithReadLimit sets the /cat byte budget. Non-positive values are ignored.
func WithReadLimit(n int) Option {
	return func(t *Toolbox) {
		if n > 0 {
			t.readLimit = n
		}
	}
}

// WithClock overrides the time source used by /time.
func WithClock(now func() time.Time) Option {
	return func(t *Toolbox) {
		t.now = now
	}
}

// New returns a Toolbox with defaults applied before opts.
func New(opts ...Option) *Toolbox {
	t := &Toolbox{
		fs:        OSFileSystem{},
		listLimit: DefaultListLimit,
		readLimit: DefaultReadLimit,
		now:       time.Now,
		goos:      runtime.GOOS,
		processor: processorName,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Help returns the static command reference.
func Help() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, k := range Kinds() {
		fmt.Fprintf(&b, "  %-20s %s\n", usageLine(k), kinds[k].desc)
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "reset", "Clear conversation memory")
	fmt.Fprintf(&b, "  %-20s %s", "exit", "Quit")
	return b.String()
}
