package chunkbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCancelled is returned by uploads and tasks that were abandoned.
	ErrCancelled = errors.New("chunkbuild: task cancelled")
	// ErrStopped rejects scheduling after Stop.
	ErrStopped = errors.New("chunkbuild: scheduler stopped")
)

// CrashReport describes an unrecoverable build failure.
type CrashReport struct {
	ID      uuid.UUID
	Title   string
	Err     error
	Details map[string]string
}

func newCrashReport(title string, err error, details map[string]string) CrashReport {
	return CrashReport{
		ID:      uuid.New(),
		Title:   title,
		Err:     err,
		Details: details,
	}
}

// String renders the report with the error's stack trace.
func (r CrashReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "---- Crash report %s ----\n%s\n\n", r.ID, r.Title)
	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, r.Details[k])
	}
	fmt.Fprintf(&sb, "\n%+v\n", r.Err)
	return sb.String()
}

// FatalLogger returns the default crash handler: it logs the report and
// exits the process.
func FatalLogger(log logrus.FieldLogger) func(CrashReport) {
	return func(r CrashReport) {
		log.WithFields(logrus.Fields{
			"crash_id": r.ID.String(),
			"title":    r.Title,
		}).Fatal(r.String())
	}
}

// safeCall runs fn and converts a panic into an error carrying a stack.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.WithStack(e)
				return
			}
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
