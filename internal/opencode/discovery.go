package opencode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrNoServer is returned when no opencode server matches.
var ErrNoServer = errors.New("no opencode server")

// Server is a running opencode instance.
type Server struct {
	PID  int
	Port int
	Dir  string
}

// Process is a candidate command line found on the host.
type Process struct {
	PID     int
	Cmdline string
}

// ProcessLister enumerates running processes.
type ProcessLister interface {
	Processes() ([]Process, error)
}

// ClientFactory builds a client for a local port.
type ClientFactory func(port int) *Client

// Finder locates the opencode server that owns a directory.
type Finder struct {
	Procs     ProcessLister
	NewClient ClientFactory
	Logger    *slog.Logger
}

// NewFinder returns a Finder that scans the host's processes and dials
// candidate ports on host, localhost when empty.
func NewFinder(host string, opts ...Option) *Finder {
	return &Finder{
		Procs:     systemProcs{},
		NewClient: func(port int) *Client { return NewClient(host, port, opts...) },
		Logger:    slog.Default(),
	}
}

// Find returns the server whose directory contains cwd, or is contained
// by it.
func (f *Finder) Find(ctx context.Context, cwd string) (*Server, error) {
	procs, err := f.Procs.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var candidates []Process
	for _, p := range procs {
		if strings.Contains(p.Cmdline, "opencode") && strings.Contains(p.Cmdline, "--port") {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: No opencode processes found. Start opencode first with: opencode", ErrNoServer)
	}

	want := canonical(cwd)
	for _, p := range candidates {
		port, ok := ExtractPort(p.Cmdline)
		if !ok {
			continue
		}
		dir, err := f.validate(ctx, port)
		if err != nil {
			f.Logger.Debug("skipping opencode process", "pid", p.PID, "port", port, "error", err)
			continue
		}
		have := canonical(dir)
		if within(want, have) || within(have, want) {
			f.Logger.Debug("matched opencode server", "pid", p.PID, "port", port, "dir", dir)
			return &Server{PID: p.PID, Port: port, Dir: dir}, nil
		}
	}
	return nil, fmt.Errorf("%w: No opencode server found for directory: %s", ErrNoServer, cwd)
}

// Probe checks a known port and reports the server behind it.
func (f *Finder) Probe(ctx context.Context, port int) (*Server, error) {
	dir, err := f.validate(ctx, port)
	if err != nil {
		f.Logger.Debug("probe failed", "port", port, "error", err)
		return nil, fmt.Errorf("%w: No opencode server responding on port %d", ErrNoServer, port)
	}
	return &Server{Port: port, Dir: dir}, nil
}

func (f *Finder) validate(ctx context.Context, port int) (string, error) {
	info, err := f.NewClient(port).Path(ctx)
	if err != nil {
		return "", err
	}
	dir := info.Dir()
	if dir == "" {
		return "", errors.New("server reported no directory")
	}
	return dir, nil
}

// ExtractPort reads the value of --port from a command line, in either
// "--port N" or "--port=N" form.
func ExtractPort(cmdline string) (int, bool) {
	fields := strings.Fields(cmdline)
	for i, f := range fields {
		var raw string
		switch {
		case f == "--port" && i+1 < len(fields):
			raw = fields[i+1]
		case strings.HasPrefix(f, "--port="):
			raw = strings.TrimPrefix(f, "--port=")
		default:
			continue
		}
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return 0, false
		}
		return port, true
	}
	return 0, false
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	return filepath.Clean(path)
}

// within reports whether path equals dir or lies below it. Both must be
// clean absolute paths.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// systemProcs lists processes through gopsutil.
type systemProcs struct{}

func (systemProcs) Processes() ([]Process, error) {
	ctx := context.Background()
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	procs := make([]Process, 0, len(ps))
	for _, p := range ps {
		// Processes may exit or be unreadable between listing and reading.
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil || cmdline == "" {
			continue
		}
		procs = append(procs, Process{PID: int(p.Pid), Cmdline: cmdline})
	}
	return procs, nil
}
