package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/checklist"
)

// subjectPrefix marks a message as a checklist import request. The
// remainder of the subject is the checklist's display name.
const subjectPrefix = "checklist:"

// fetchLimit bounds how many unseen messages one import pass inspects.
const fetchLimit = 50

// Fetcher is the mailbox access the importer needs. *IMAPClient
// satisfies it.
type Fetcher interface {
	FetchUnseenMessages(ctx context.Context, limit int) ([]Message, error)
	MarkSeen(ctx context.Context, uid uint32) error
}

// StoreOpener resolves a checklist store for a display name parsed out
// of a message subject.
type StoreOpener func(name string) (*checklist.Store, error)

// Importer turns emailed lists into checklist items. Messages whose
// subject is "checklist: <name>" contribute one item per non-empty
// body line; everything else in the mailbox is left untouched.
type Importer struct {
	fetcher Fetcher
	open    StoreOpener
	logger  *zap.Logger
}

// NewImporter creates an Importer reading messages from fetcher and
// appending items through stores resolved by open.
func NewImporter(fetcher Fetcher, open StoreOpener, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{fetcher: fetcher, open: open, logger: logger}
}

// Run performs one import pass: fetch unseen messages, import the ones
// addressed to a checklist, and mark each imported message seen. A
// failing message is recorded in the result and does not stop the pass.
func (i *Importer) Run(ctx context.Context) (ImportResult, error) {
	var result ImportResult

	messages, err := i.fetcher.FetchUnseenMessages(ctx, fetchLimit)
	if err != nil {
		return result, fmt.Errorf("fetching mailbox: %w", err)
	}

	for _, msg := range messages {
		name, ok := checklistName(msg.Envelope.Subject)
		if !ok {
			continue
		}
		result.MessagesSeen++

		added, err := i.importMessage(ctx, name, msg)
		result.ItemsAdded += added
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("message %s: %w", msg.Envelope.MessageID, err))
			i.logger.Warn("import failed",
				zap.String("subject", msg.Envelope.Subject),
				zap.Error(err),
			)
			continue
		}

		if err := i.fetcher.MarkSeen(ctx, msg.Envelope.UID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking message %s seen: %w", msg.Envelope.MessageID, err))
		}
	}

	return result, nil
}

// importMessage appends the message's body lines to the named
// checklist, creating the checklist when it does not exist yet.
func (i *Importer) importMessage(ctx context.Context, name string, msg Message) (int, error) {
	titles := parseItemLines(msg.TextBody)
	if len(titles) == 0 {
		return 0, nil
	}

	store, err := i.open(name)
	if err != nil {
		return 0, err
	}

	if _, err := store.CreateOrGet(ctx); err != nil {
		return 0, err
	}

	added := 0
	for _, title := range titles {
		if _, err := store.AddItem(ctx, title); err != nil {
			return added, err
		}
		added++
	}

	i.logger.Info("imported items",
		zap.String("checklist", store.Slug()),
		zap.Int("count", added),
	)
	return added, nil
}

// checklistName extracts the display name from an import subject.
// Matching is case-insensitive on the prefix.
func checklistName(subject string) (string, bool) {
	trimmed := strings.TrimSpace(subject)
	if len(trimmed) < len(subjectPrefix) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(subjectPrefix)], subjectPrefix) {
		return "", false
	}

	name := strings.TrimSpace(trimmed[len(subjectPrefix):])
	if name == "" {
		return "", false
	}
	return name, true
}

// parseItemLines splits a plain-text body into item titles. Blank
// lines are skipped and leading list markers ("-", "*", "[ ]", "[x]")
// are stripped.
func parseItemLines(body string) []string {
	var titles []string
	for _, line := range strings.Split(body, "\n") {
		title := stripMarker(strings.TrimSpace(line))
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}

// stripMarker removes a single leading bullet or checkbox marker.
func stripMarker(line string) string {
	for _, marker := range []string{"-", "*"} {
		if strings.HasPrefix(line, marker) {
			line = strings.TrimSpace(line[len(marker):])
			break
		}
	}
	for _, box := range []string{"[ ]", "[x]", "[X]"} {
		if strings.HasPrefix(line, box) {
			return strings.TrimSpace(line[len(box):])
		}
	}
	return line
}
