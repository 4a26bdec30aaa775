package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxAttempts = 2
	defaultRetryDelay  = time.Second
	dateLayout         = "2006-01-02"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
}

// Parser extracts draft transactions from free text and receipt images.
// It is safe for concurrent use.
type Parser struct {
	client    Client
	limiter   *rateLimiter
	logger    *slog.Logger
	now       func() time.Time
	retryOpts service.RetryOptions
}

// NewParser creates a parser over client. A nil client makes every call fail
// with KindAPIKeyMissing.
func NewParser(client Client, cfg Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}

	// One retry at most: a second failure goes back to the user.
	attempts := cfg.MaxAttempts
	if attempts <= 0 || attempts > defaultMaxAttempts {
		attempts = defaultMaxAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return &Parser{
		client:  client,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
		now:     time.Now,
		retryOpts: service.RetryOptions{
			ShouldRetry:  IsRetryable,
			MaxAttempts:  attempts,
			InitialDelay: delay,
			MaxDelay:     delay,
			Multiplier:   1.0,
		},
	}
}

// NewParserFromConfig builds the provider client described by cfg and wraps
// it in a Parser. A missing API key is not an error here; the parser reports
// it on first use.
func NewParserFromConfig(ctx context.Context, cfg Config, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("No API key configured for AI provider", "provider", cfg.Provider)
		return NewParser(nil, cfg, logger), nil
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewParser(client, cfg, logger), nil
}

// Close releases provider resources.
func (p *Parser) Close() error {
	if closer, ok := p.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ParseNaturalInput extracts every transaction mentioned in text. Suggested
// category ids are restricted to categories.
func (p *Parser) ParseNaturalInput(ctx context.Context, text string, categories []model.Category) ([]model.ParsedTransaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewError(KindParse, "empty input", common.ErrEmptyInput)
	}

	today := p.today()
	content, err := p.complete(ctx, CompletionRequest{
		System: textSystemPrompt,
		Prompt: buildTextPrompt(text, categories, today),
	})
	if err != nil {
		return nil, err
	}

	txns, err := decodeTransactions(content, model.Catalog(categories), today)
	if err != nil {
		p.logger.Debug("Rejected AI response", "error", err, "response", truncate(content, 500))
		return nil, err
	}

	p.logger.Debug("Parsed natural input", "transactions", len(txns))
	return txns, nil
}

// ParseReceiptImage extracts the merchant, total and date printed on a receipt.
func (p *Parser) ParseReceiptImage(ctx context.Context, image Image, categories []model.Category) (*model.ParsedReceipt, error) {
	if len(image.Data) == 0 {
		return nil, NewError(KindParse, "empty image", common.ErrUnsupportedImage)
	}
	if image.MIMEType == "" {
		image.MIMEType = http.DetectContentType(image.Data)
	}
	if !supportedImageTypes[image.MIMEType] {
		return nil, NewError(KindParse, "unsupported image type "+image.MIMEType, common.ErrUnsupportedImage)
	}

	today := p.today()
	content, err := p.complete(ctx, CompletionRequest{
		System: receiptSystemPrompt,
		Prompt: buildReceiptPrompt(categories, today),
		Image:  &image,
	})
	if err != nil {
		return nil, err
	}

	receipt, err := decodeReceipt(content, model.Catalog(categories), today)
	if err != nil {
		p.logger.Debug("Rejected AI response", "error", err, "response", truncate(content, 500))
		return nil, err
	}

	p.logger.Debug("Parsed receipt", "merchant", receipt.MerchantName)
	return receipt, nil
}

func (p *Parser) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.client == nil {
		return "", NewError(KindAPIKeyMissing, "", nil)
	}

	var content string
	err := common.WithRetry(ctx, func() error {
		if err := p.limiter.wait(ctx); err != nil {
			return err
		}
		out, err := p.client.Complete(ctx, req)
		if err != nil {
			p.logger.Debug("AI request failed", "kind", KindOf(err), "error", err)
			return err
		}
		content = out
		return nil
	}, p.retryOpts)
	if err != nil {
		return "", err
	}
	return content, nil
}

func (p *Parser) today() time.Time {
	now := p.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

type rawTransaction struct {
	Date          *string         `json:"date"`
	Confidence    *float64        `json:"confidence"`
	Type          string          `json:"type"`
	MerchantName  string          `json:"merchantName"`
	CategoryID    string          `json:"categoryId"`
	Description   string          `json:"description"`
	Amount        json.RawMessage `json:"amount"`
	MissingFields []string        `json:"missingFields"`
}

type rawReceipt struct {
	Date                *string         `json:"date"`
	Confidence          *float64        `json:"confidence"`
	MerchantName        string          `json:"merchantName"`
	SuggestedCategoryID string          `json:"suggestedCategoryId"`
	TotalAmount         json.RawMessage `json:"totalAmount"`
}

func decodeTransactions(content string, catalog model.Catalog, today time.Time) ([]model.ParsedTransaction, error) {
	var envelope struct {
		Transactions *[]rawTransaction `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(stripMarkdownFences(content)), &envelope); err != nil {
		return nil, invalidResponse("response is not a transactions object", err)
	}
	if envelope.Transactions == nil {
		return nil, invalidResponse("response has no transactions array", nil)
	}

	raws := *envelope.Transactions
	txns := make([]model.ParsedTransaction, 0, len(raws))
	for i, raw := range raws {
		txn, err := raw.toParsed(catalog, today)
		if err != nil {
			return nil, parseError("transaction %d: %s", i, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (r rawTransaction) toParsed(catalog model.Catalog, today time.Time) (model.ParsedTransaction, error) {
	txnType := model.TypeExpense
	if strings.TrimSpace(r.Type) != "" {
		parsed, err := model.ParseTransactionType(r.Type)
		if err != nil {
			return model.ParsedTransaction{}, err
		}
		txnType = parsed
	}

	amount, err := decodeAmount(r.Amount)
	if err != nil {
		return model.ParsedTransaction{}, err
	}

	date, err := decodeDate(r.Date, today)
	if err != nil {
		return model.ParsedTransaction{}, err
	}

	confidence, err := decodeConfidence(r.Confidence)
	if err != nil {
		return model.ParsedTransaction{}, err
	}

	categoryID := strings.TrimSpace(r.CategoryID)
	if !catalog.Contains(categoryID) {
		categoryID = ""
	}

	return model.ParsedTransaction{
		Type:          txnType,
		Amount:        amount,
		Date:          date,
		MerchantName:  strings.TrimSpace(r.MerchantName),
		CategoryID:    categoryID,
		Description:   strings.TrimSpace(r.Description),
		MissingFields: normalizeMissingFields(r.MissingFields, amount != nil),
		Confidence:    confidence,
	}, nil
}

func decodeReceipt(content string, catalog model.Catalog, today time.Time) (*model.ParsedReceipt, error) {
	cleaned := []byte(stripMarkdownFences(content))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		return nil, invalidResponse("response is not a receipt object", err)
	}

	var raw rawReceipt
	if err := json.Unmarshal(cleaned, &raw); err != nil {
		return nil, invalidResponse("receipt fields have the wrong shape", err)
	}

	amount, err := decodeAmount(raw.TotalAmount)
	if err != nil {
		return nil, parseError("receipt: %s", err)
	}
	date, err := decodeDate(raw.Date, today)
	if err != nil {
		return nil, parseError("receipt: %s", err)
	}
	confidence, err := decodeConfidence(raw.Confidence)
	if err != nil {
		return nil, parseError("receipt: %s", err)
	}

	receipt := &model.ParsedReceipt{
		Date:          date,
		TotalAmount:   amount,
		MerchantName:  strings.TrimSpace(raw.MerchantName),
		SuggestedType: model.TypeExpense,
		Confidence:    confidence,
	}
	if cat, ok := catalog.Find(strings.TrimSpace(raw.SuggestedCategoryID)); ok {
		receipt.SuggestedCategoryID = cat.ID
		receipt.SuggestedType = cat.Type
	}
	return receipt, nil
}

// decodeAmount accepts a JSON number or numeric string. Absent and null mean unknown.
func decodeAmount(raw json.RawMessage) (*float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil, nil
	}

	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(trimmed); err != nil {
		return nil, fmt.Errorf("invalid amount %s", trimmed)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}

	value := amount.Round(2).InexactFloat64()
	return &value, nil
}

func decodeDate(raw *string, today time.Time) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return today, nil
	}

	s := strings.TrimSpace(*raw)
	if t, err := time.ParseInLocation(dateLayout, s, today.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func decodeConfidence(raw *float64) (float64, error) {
	if raw == nil {
		return 0, nil
	}
	if *raw < 0 || *raw > 1 {
		return 0, fmt.Errorf("confidence %v outside [0,1]", *raw)
	}
	return *raw, nil
}

// normalizeMissingFields trims and dedupes the reported fields and keeps the
// amount entry consistent with whether an amount was found.
func normalizeMissingFields(fields []string, hasAmount bool) []string {
	seen := make(map[string]bool, len(fields)+1)
	out := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		if f == model.FieldAmount && hasAmount {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if !hasAmount && !seen[model.FieldAmount] {
		out = append(out, model.FieldAmount)
	}
	return out
}

// stripMarkdownFences removes a ```json ... ``` wrapper around a response.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[idx+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
