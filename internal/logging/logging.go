package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tomat/internal/paths"
)

// DefaultMaxLogFiles matches the --max-log-files flag default
const DefaultMaxLogFiles = 1000

// Logger is the public logger instance accessible from all packages
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Options selects where debug logs go
type Options struct {
	Debug       bool
	File        string // explicit file, never rotated
	MaxLogFiles int    // 0 keeps every file
}

// withEnv applies TOMAT_DEBUG, TOMAT_DEBUG_FILE and TOMAT_MAX_LOG_FILES.
// The daemon spawned by `daemon start` inherits them from its parent.
func (o Options) withEnv() Options {
	if os.Getenv("TOMAT_DEBUG") == "1" {
		o.Debug = true
	}
	if file := os.Getenv("TOMAT_DEBUG_FILE"); file != "" && o.File == "" {
		o.File = file
	}
	if raw := os.Getenv("TOMAT_MAX_LOG_FILES"); raw != "" && o.MaxLogFiles == DefaultMaxLogFiles {
		if n, err := strconv.Atoi(raw); err == nil {
			o.MaxLogFiles = n
		}
	}
	return o
}

// Initialize sets up the logger based on the debug flag and configuration.
// It returns the path of the log file in use, or "" when logs are discarded.
func Initialize(debug bool, debugFile string, maxLogFiles int) (string, error) {
	opts := Options{Debug: debug, File: debugFile, MaxLogFiles: maxLogFiles}.withEnv()

	if !opts.Debug && opts.File == "" {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return "", nil
	}

	path, err := logFilePath(opts)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	Logger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Inherited debug settings stay quiet on stdout
	if os.Getenv("TOMAT_DEBUG") == "" {
		Logger.Info("Debug logging initialized", "log_file", path)
		fmt.Printf("Debug mode enabled. Logs: %s\n", path)
	}
	return path, nil
}

// logFilePath creates the log directory and picks the file. Generated
// names are uuids under paths.LogDir, pruned to opts.MaxLogFiles.
func logFilePath(opts Options) (string, error) {
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		return opts.File, nil
	}

	dir := paths.LogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if opts.MaxLogFiles > 0 {
		if err := rotateLogs(dir, opts.MaxLogFiles); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}
	return filepath.Join(dir, uuid.NewString()+".log"), nil
}

// MirrorToStderr duplicates records at or above level to w as text.
// The daemon uses it so supervisors (systemd, journald) see hook failures.
func MirrorToStderr(w io.Writer, level slog.Level) {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	Logger = slog.New(&teeHandler{handlers: []slog.Handler{Logger.Handler(), text}})
}

// teeHandler fans a record out to several handlers
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t.handlers, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = fn(h)
	}
	return &teeHandler{handlers: next}
}

// rotateLogs deletes the oldest *.log files so that, with the file about
// to be created, at most maxLogFiles remain
func rotateLogs(logDir string, maxLogFiles int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{filepath.Join(logDir, entry.Name()), info.ModTime()})
	}

	excess := len(files) - maxLogFiles + 1
	if excess <= 0 {
		return nil
	}

	slices.SortFunc(files, func(a, b logFile) int { return a.modTime.Compare(b.modTime) })
	for _, f := range files[:excess] {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", f.path, err)
		}
	}
	return nil
}
