package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// FormatAmount renders an amount with two decimals and thousands separators.
func FormatAmount(amount float64) string {
	s := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatSigned renders an amount with a sign and color for its direction.
func FormatSigned(txnType model.TransactionType, amount float64) string {
	if txnType == model.TypeIncome {
		return SuccessStyle.Render("+" + FormatAmount(amount))
	}
	return ErrorStyle.Render("-" + FormatAmount(amount))
}

// RenderProcessResult lists processed drafts and the follow-up question.
func RenderProcessResult(result *model.ProcessResult, loc *i18n.Localizer) string {
	var lines []string
	for _, txn := range result.Transactions {
		lines = append(lines, renderProcessed(txn))
	}
	if result.FollowUpQuestion != "" {
		lines = append(lines, "", PromptStyle.Render(result.FollowUpQuestion))
	}
	if len(lines) == 0 {
		return InfoStyle.Render(loc.NothingFound())
	}
	return strings.Join(lines, "\n")
}

func renderProcessed(txn model.ProcessedTransaction) string {
	icon := SuccessStyle.Render(SuccessIcon)
	switch {
	case !txn.IsComplete:
		icon = SubtleStyle.Render(PendingIcon)
	case txn.Categorization.NeedsUserConfirmation:
		icon = WarningStyle.Render("?")
	}

	amount := SubtleStyle.Render("?")
	if txn.Parsed.Amount != nil {
		amount = FormatSigned(txn.Parsed.Type, *txn.Parsed.Amount)
	}

	return fmt.Sprintf("%s %s  %s  %s  %s",
		icon,
		txn.Parsed.Date.Format(dateLayout),
		BoldStyle.Render(txn.DisplayLabel),
		amount,
		SubtleStyle.Render(confidence(txn.Categorization)))
}

// RenderReceipt shows one processed receipt.
func RenderReceipt(receipt *model.ProcessedReceipt) string {
	amount := SubtleStyle.Render("?")
	if receipt.Receipt.TotalAmount != nil {
		amount = FormatSigned(receipt.Categorization.SuggestedType, *receipt.Receipt.TotalAmount)
	}

	content := strings.Join([]string{
		BoldStyle.Render(receipt.DisplayLabel),
		receipt.Receipt.Date.Format(dateLayout) + "  " + amount,
		SubtleStyle.Render(confidence(receipt.Categorization)),
	}, "\n")
	return RenderBox(ReceiptIcon+" "+receipt.Receipt.MerchantName, content)
}

// RenderCategorization describes a single category decision.
func RenderCategorization(result model.CategorizationResult, catalog model.Catalog, loc *i18n.Localizer) string {
	label := categoryLabel(catalog, loc, result.CategoryID)
	status := FormatSuccess("auto")
	if result.NeedsUserConfirmation {
		status = FormatWarning("needs confirmation")
	}
	return fmt.Sprintf("%s (%s)  %s  %s",
		BoldStyle.Render(label),
		result.SuggestedType,
		SubtleStyle.Render(confidence(result)),
		status)
}

// RenderCategories lists the catalog grouped by type.
func RenderCategories(categories []model.Category, loc *i18n.Localizer) string {
	var b strings.Builder
	for _, txnType := range []model.TransactionType{model.TypeExpense, model.TypeIncome} {
		var rows []string
		for _, cat := range categories {
			if cat.Type != txnType {
				continue
			}
			rows = append(rows, fmt.Sprintf("  %s %-24s %s",
				cat.Icon, loc.CategoryLabel(cat), SubtleStyle.Render(cat.ID)))
		}
		if len(rows) == 0 {
			continue
		}
		b.WriteString(TableHeaderStyle.Render(string(txnType)))
		b.WriteString("\n")
		b.WriteString(strings.Join(rows, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTransactions lists stored transactions, newest first as given.
func RenderTransactions(txns []model.Transaction, catalog model.Catalog, loc *i18n.Localizer) string {
	if len(txns) == 0 {
		return SubtleStyle.Render("No transactions.")
	}

	rows := make([]string, 0, len(txns))
	for _, txn := range txns {
		label := categoryLabel(catalog, loc, txn.CategoryID)
		text := txn.MerchantName
		if text == "" {
			text = txn.Description
		}
		rows = append(rows, fmt.Sprintf("%s  %-12s %-28s %12s  %s",
			txn.Date.Format(dateLayout),
			label,
			text,
			FormatSigned(txn.Type, txn.Amount),
			SubtleStyle.Render(shortID(txn.ID))))
	}
	return strings.Join(rows, "\n")
}

// RenderSummary shows income and expense totals with per-category lines.
func RenderSummary(summary *model.PeriodSummary, catalog model.Catalog, loc *i18n.Localizer) string {
	title := fmt.Sprintf("%s %s → %s", ChartIcon,
		summary.Start.Format(dateLayout), summary.End.Format(dateLayout))

	var sections []string
	for _, part := range []struct {
		totals  model.TypeSummary
		txnType model.TransactionType
	}{
		{summary.Expense, model.TypeExpense},
		{summary.Income, model.TypeIncome},
	} {
		lines := []string{fmt.Sprintf("%s  %s  (%d)",
			BoldStyle.Render(string(part.txnType)),
			FormatSigned(part.txnType, part.totals.Total),
			part.totals.Count)}

		ids := make([]string, 0, len(part.totals.ByCategory))
		for id := range part.totals.ByCategory {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return part.totals.ByCategory[ids[i]] > part.totals.ByCategory[ids[j]]
		})
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("  %-16s %12s",
				categoryLabel(catalog, loc, id), FormatAmount(part.totals.ByCategory[id])))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	net := SuccessStyle.Render(FormatAmount(summary.Net))
	if summary.Net < 0 {
		net = ErrorStyle.Render(FormatAmount(summary.Net))
	}
	sections = append(sections, BoldStyle.Render("net")+"  "+net)

	return RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, strings.Join(sections, "\n\n")))
}

func categoryLabel(catalog model.Catalog, loc *i18n.Localizer, id string) string {
	if cat, ok := catalog.Find(id); ok {
		return loc.CategoryLabel(cat)
	}
	return loc.Uncategorized()
}

func confidence(result model.CategorizationResult) string {
	if result.Source == "" {
		return ""
	}
	return fmt.Sprintf("%s %.0f%%", result.Source, result.Confidence*100)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
