package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type categoryResponse struct {
	model.Category
	Label string `json:"label"`
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

type parseResponse struct {
	Result *model.ProcessResult `json:"result"`
	Saved  []*model.Transaction `json:"saved"`
}

type receiptResponse struct {
	Receipt *model.ProcessedReceipt `json:"receipt"`
	Saved   *model.Transaction      `json:"saved,omitempty"`
}

type categorizeRequest struct {
	Description  string                `json:"description"`
	MerchantName string                `json:"merchantName"`
	AICategoryID string                `json:"aiCategoryId"`
	Type         model.TransactionType `json:"type"`
	AIConfidence float64               `json:"aiConfidence"`
}

type transactionRequest struct {
	Amount       *float64 `json:"amount" binding:"required"`
	Date         string   `json:"date" binding:"required"`
	Type         string   `json:"type" binding:"required"`
	CategoryID   string   `json:"categoryId"`
	MerchantName string   `json:"merchantName"`
	Description  string   `json:"description"`
	Note         string   `json:"note"`
}

type transactionsResponse struct {
	From         string              `json:"from"`
	To           string              `json:"to"`
	Transactions []model.Transaction `json:"transactions"`
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		categories []model.Category
		err        error
	)
	if typ := c.Query("type"); typ != "" {
		txnType, parseErr := model.ParseTransactionType(typ)
		if parseErr != nil {
			badRequest(c, parseErr.Error())
			return
		}
		categories, err = s.store.GetCategoriesByType(ctx, txnType)
	} else {
		categories, err = s.store.GetCategories(ctx)
	}
	if err != nil {
		s.writeStoreError(c, err)
		return
	}

	loc := localizer(c)
	out := make([]categoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = categoryResponse{Category: cat, Label: loc.CategoryLabel(cat)}
	}
	c.JSON(http.StatusOK, out)
}

// parse processes free text. With ?save=true the auto-savable drafts are stored.
func (s *Server) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	result, err := s.processor.Process(ctx, req.Text)
	if err != nil {
		s.writeAIError(c, err)
		return
	}

	resp := parseResponse{Result: result, Saved: []*model.Transaction{}}
	if c.Query("save") == "true" {
		var txns []*model.Transaction
		for _, processed := range result.AutoSavable() {
			txn, err := engine.Promote(processed, model.SourceAIText)
			if err != nil {
				continue
			}
			txns = append(txns, txn)
		}
		if err := s.store.AddTransactions(ctx, txns); err != nil {
			s.writeStoreError(c, err)
			return
		}
		if len(txns) > 0 {
			resp.Saved = txns
			s.invalidate(ctx)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// parseReceipt processes a multipart "image" upload.
func (s *Server) parseReceipt(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "missing image upload")
		return
	}
	if file.Size > s.config.MaxImageBytes {
		writeError(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "image is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, "unreadable image upload")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxImageBytes))
	if err != nil {
		badRequest(c, "unreadable image upload")
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	ctx := c.Request.Context()
	receipt, err := s.processor.ProcessReceipt(ctx, llm.Image{MIMEType: mimeType, Data: data})
	if err != nil {
		s.writeAIError(c, err)
		return
	}

	resp := receiptResponse{Receipt: receipt}
	if c.Query("save") == "true" && receipt.CanAutoSave() {
		txn, err := engine.PromoteReceipt(*receipt)
		if err == nil {
			if err := s.store.AddTransaction(ctx, txn); err != nil {
				s.writeStoreError(c, err)
				return
			}
			resp.Saved = txn
			s.invalidate(ctx)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) categorize(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.MerchantName) == "" {
		badRequest(c, "description or merchantName is required")
		return
	}
	if req.AIConfidence < 0 || req.AIConfidence > 1 {
		badRequest(c, "aiConfidence must be between 0 and 1")
		return
	}

	result := s.categorizer.Categorize(engine.CategorizeInput{
		Description:  req.Description,
		MerchantName: req.MerchantName,
		AISuggestion: req.AICategoryID,
		AIConfidence: req.AIConfidence,
		Type:         req.Type,
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) listTransactions(c *gin.Context) {
	from, to, ok := s.dateRange(c)
	if !ok {
		return
	}

	key := "transactions:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	s.cachedJSON(c, key, func(ctx context.Context) (any, error) {
		txns, err := s.store.GetTransactions(ctx, service.TransactionFilter{Start: &from, End: &to})
		if err != nil {
			return nil, err
		}
		if txns == nil {
			txns = []model.Transaction{}
		}
		return transactionsResponse{
			From:         from.Format(dateLayout),
			To:           to.Format(dateLayout),
			Transactions: txns,
		}, nil
	})
}

func (s *Server) getTransaction(c *gin.Context) {
	txn, err := s.store.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	txn := &model.Transaction{
		ID:     uuid.NewString(),
		Source: model.SourceManual,
	}
	if err := req.apply(txn); err != nil {
		badRequest(c, err.Error())
		return
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	txn.Hash = txn.GenerateHash()

	ctx := c.Request.Context()
	if err := s.store.AddTransaction(ctx, txn); err != nil {
		s.writeStoreError(c, err)
		return
	}
	s.invalidate(ctx)
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) updateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	txn, err := s.store.GetTransaction(ctx, c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	if err := req.apply(txn); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		s.writeStoreError(c, err)
		return
	}
	s.invalidate(ctx)
	c.JSON(http.StatusOK, txn)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.store.DeleteTransaction(ctx, c.Param("id")); err != nil {
		s.writeStoreError(c, err)
		return
	}
	s.invalidate(ctx)
	c.Status(http.StatusNoContent)
}

func (s *Server) summary(c *gin.Context) {
	from, to, ok := s.dateRange(c)
	if !ok {
		return
	}

	key := "summary:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	s.cachedJSON(c, key, func(ctx context.Context) (any, error) {
		return s.store.SummarizeRange(ctx, from, to)
	})
}

// apply copies the editable fields of the request onto txn.
func (r transactionRequest) apply(txn *model.Transaction) error {
	date, err := time.ParseInLocation(dateLayout, r.Date, time.Local)
	if err != nil {
		return err
	}
	txnType, err := model.ParseTransactionType(r.Type)
	if err != nil {
		return err
	}

	txn.Date = date
	txn.Type = txnType
	txn.Amount = *r.Amount
	txn.CategoryID = r.CategoryID
	txn.MerchantName = strings.TrimSpace(r.MerchantName)
	txn.Description = strings.TrimSpace(r.Description)
	txn.Note = strings.TrimSpace(r.Note)
	return nil
}

// dateRange reads ?from and ?to (YYYY-MM-DD, inclusive). The default is the
// current month up to today.
func (s *Server) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := today

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			badRequest(c, "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if from.After(to) {
		badRequest(c, "from must not be after to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// cachedJSON serves key from the cache, or loads, stores and serves it.
func (s *Server) cachedJSON(c *gin.Context, key string, load func(context.Context) (any, error)) {
	ctx := c.Request.Context()

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	v, err := load(ctx)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	data, err = json.Marshal(v)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL); err != nil {
		s.logger.Warn("Cache write failed", "key", key, "error", err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Cache invalidation failed", "error", err)
	}
}
