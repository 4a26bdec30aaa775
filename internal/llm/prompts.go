package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/model"
)

const textSystemPrompt = "You are a bookkeeping assistant that extracts expense and income transactions from what a user says. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary."

const receiptSystemPrompt = "You are a bookkeeping assistant that reads shop receipts. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary."

func buildTextPrompt(text string, categories []model.Category, today time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Today is %s.\n\n", today.Format(dateLayout))
	writeCategories(&sb, categories)

	sb.WriteString(`Extract every transaction mentioned in the input. Respond with:
{"transactions":[{"type":"expense or income","amount":number or null,"date":"YYYY-MM-DD" or null,"merchantName":"string","categoryId":"string","description":"string","missingFields":["amount","categoryId","date"],"confidence":0.0}]}

Rules:
- Use null for an amount that is not stated and list "amount" in missingFields.
- Use null for a date that is not stated. Resolve relative dates such as "yesterday" against today.
- categoryId must be one of the ids listed above, or "" when none fits. List "categoryId" in missingFields when unsure.
- confidence is between 0 and 1 and reflects how sure you are of the category.
- Amounts are positive numbers without currency symbols.

Input:
`)
	sb.WriteString(text)
	sb.WriteString("\n")
	return sb.String()
}

func buildReceiptPrompt(categories []model.Category, today time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Today is %s.\n\n", today.Format(dateLayout))
	writeCategories(&sb, categories)

	sb.WriteString(`Read the attached receipt. Respond with:
{"merchantName":"string","totalAmount":number or null,"date":"YYYY-MM-DD" or null,"suggestedCategoryId":"string","confidence":0.0}

Rules:
- totalAmount is the final amount paid, as a positive number without currency symbols, or null when unreadable.
- suggestedCategoryId must be one of the ids listed above, or "" when none fits.
- confidence is between 0 and 1 and reflects how sure you are of the category.
`)
	return sb.String()
}

func writeCategories(sb *strings.Builder, categories []model.Category) {
	sb.WriteString("Categories (id | name | type):\n")
	for _, cat := range categories {
		fmt.Fprintf(sb, "- %s | %s | %s\n", cat.ID, cat.Label(), cat.Type)
	}
	sb.WriteString("\n")
}
