package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"itemize/internal/domain"
	"itemize/internal/export"
	"itemize/internal/service"
)

// InvoiceHandler handles invoice processing and retrieval endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// processRequest is the JSON body for POST /api/v1/invoices. Exactly one of
// text or key must be set; key refers to an object in storage.
type processRequest struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
}

// Process handles POST /api/v1/invoices
func (h *InvoiceHandler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request body")
		return
	}

	switch {
	case req.Text != "" && req.Key != "":
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "provide either text or key, not both")
		return

	case req.Text != "":
		rec, err := h.invoiceService.ProcessText(c.Request.Context(), &service.ProcessTextInput{
			SourceName: req.SourceName,
			Text:       req.Text,
		})
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondCreated(c, rec)

	case req.Key != "":
		rec, err := h.invoiceService.ProcessObject(c.Request.Context(), &service.ProcessObjectInput{
			Bucket: req.Bucket,
			Key:    req.Key,
		})
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondCreated(c, rec)

	default:
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "text or key is required")
	}
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	escalatedOnly := c.Query("escalated") == "true"

	recs, total, err := h.invoiceService.List(c.Request.Context(), escalatedOnly, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, recs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	rec, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// Export handles GET /api/v1/invoices/:id/export?format=csv|xlsx
func (h *InvoiceHandler) Export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	rec, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	var lines []domain.LineItemOutput
	if err := json.Unmarshal(rec.LineItems, &lines); err != nil {
		HandleError(c, fmt.Errorf("decoding stored line items: %w", err))
		return
	}
	results := []domain.InvoiceResult{{
		SourceFile:   rec.Source,
		SupplierName: rec.SupplierName,
		LineItems:    lines,
	}}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		filename := export.BuildFilename(rec.Source, "csv")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Writer.WriteHeader(http.StatusOK)

		if _, err := c.Writer.Write(export.BOM); err != nil {
			return
		}
		w := export.NewWriter(c.Writer)
		if err := w.WriteHeader(); err != nil {
			return
		}
		if err := w.WriteResults(results); err != nil {
			return
		}
		w.Flush()

	case "xlsx":
		filename := export.BuildFilename(rec.Source, "xlsx")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Writer.WriteHeader(http.StatusOK)

		_ = export.WriteXLSX(c.Writer, results)

	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
	}
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
