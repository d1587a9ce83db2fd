// Package telemetry writes the per-session playthrough CSV.
package telemetry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/runlog/internal/model"
)

// Header is the first line of every playthrough file.
const Header = "Level Name,Level Completion Time,Total Enemy Count, Total Enemies Remaining,Total Bottles Used,Total Guns Used,Total Shields Used,Level One Completions,Level Two Completions, Level Three Completions"

const (
	filePrefix      = "Playthrough_"
	fileSuffix      = ".csv"
	timestampLayout = "20060102_150405"
)

// Filename returns the playthrough file name for a session start time.
func Filename(startedAt time.Time) string {
	return filePrefix + startedAt.Format(timestampLayout) + fileSuffix
}

// IsPlaythrough reports whether name looks like a playthrough file.
func IsPlaythrough(name string) bool {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	_, err := time.Parse(timestampLayout, stamp)
	return err == nil
}

// EncodeRow joins the row fields with commas. Fields are not escaped, so the
// level id must not contain a comma.
func EncodeRow(row model.TelemetryRow) string {
	fields := []string{
		row.Level,
		formatFloat(row.CompletionTime),
		formatFloat(row.TotalEnemies),
		formatFloat(row.EnemiesRemaining),
		formatFloat(row.BottlesUsed),
		formatFloat(row.GunsUsed),
		formatFloat(row.ShieldsUsed),
		strconv.Itoa(row.Completions.ReachExit),
		strconv.Itoa(row.Completions.KillAll),
		strconv.Itoa(row.Completions.Heist),
	}
	return strings.Join(fields, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Writer appends rows to a single playthrough file. The file is opened and
// closed on every Append, so a returned nil means the row is on disk.
type Writer struct {
	path string
}

// NewWriter fixes the session file path under dir. Nothing is created until
// the first Append.
func NewWriter(dir string, startedAt time.Time) *Writer {
	return &Writer{path: filepath.Join(dir, Filename(startedAt))}
}

// Path returns the session file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes row, preceded by the header if the file does not exist yet.
func (w *Writer) Append(row model.TelemetryRow) (err error) {
	exists := true
	if _, err := os.Stat(w.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("telemetry: stat %q: %w", w.path, err)
		}
		exists = false
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: open %q: %w", w.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("telemetry: close %q: %w", w.path, cerr)
		}
	}()

	var b strings.Builder
	if !exists {
		b.WriteString(Header)
		b.WriteByte('\n')
	}
	b.WriteString(EncodeRow(row))
	b.WriteByte('\n')
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("telemetry: write %q: %w", w.path, err)
	}
	return nil
}
