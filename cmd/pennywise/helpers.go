package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
)

const dateLayout = "2006-01-02"

// parseDateRange resolves --from/--to. Empty bounds default to the first of
// the current month and today.
func parseDateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	if from != "" {
		parsed, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewUserError(
				fmt.Sprintf("invalid --from date %q, expected YYYY-MM-DD", from), err)
		}
		start = parsed
	}
	if to != "" {
		parsed, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewUserError(
				fmt.Sprintf("invalid --to date %q, expected YYYY-MM-DD", to), err)
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, common.NewUserError("--to must not be before --from", nil)
	}
	return start, end, nil
}

// expandFiles resolves glob patterns. Arguments that match nothing are kept
// when they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
}

// imageMIME maps a receipt file name to its MIME type.
func imageMIME(path string) (string, error) {
	mime, ok := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", common.NewUserError(
			fmt.Sprintf("unsupported image type %q", filepath.Ext(path)), common.ErrUnsupportedImage)
	}
	return mime, nil
}

// aiError turns a pipeline failure into a localized user error.
func aiError(err error, loc *i18n.Localizer) error {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return common.NewUserError(loc.ErrorMessage(llmErr.Kind), err)
	}
	return err
}

// promoteAll converts processed drafts to ledger rows. Drafts that need
// confirmation are included only when force is set.
func promoteAll(drafts []model.ProcessedTransaction, force bool) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, draft := range drafts {
		if !draft.CanAutoSave() && (!force || !draft.IsComplete || draft.Parsed.Amount == nil) {
			continue
		}
		txn, err := engine.Promote(draft, model.SourceAIText)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}
