package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"itemize/internal/domain"
	"itemize/internal/pipeline"
	"itemize/internal/port"
)

// ProcessTextInput is the DTO for processing raw invoice text.
type ProcessTextInput struct {
	SourceName string
	Text       string
}

// ProcessObjectInput is the DTO for processing a document stored in object storage.
type ProcessObjectInput struct {
	Bucket string
	Key    string
}

// InvoiceService defines the invoice processing and retrieval contract.
type InvoiceService interface {
	ProcessText(ctx context.Context, input *ProcessTextInput) (*domain.InvoiceRecord, error)
	ProcessObject(ctx context.Context, input *ProcessObjectInput) (*domain.InvoiceRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceRecord, error)
	List(ctx context.Context, escalatedOnly bool, offset, limit int) ([]domain.InvoiceRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	pipeline *pipeline.Pipeline
	repo     port.InvoiceRepository
	storage  port.ObjectStorage
	source   port.TextSource
	notifier port.EscalationNotifier
	digestTo string
}

// NewInvoiceService creates a new InvoiceService implementation. storage and
// notifier are optional; without storage ProcessObject fails, without notifier
// escalations are persisted but not reported.
func NewInvoiceService(
	p *pipeline.Pipeline,
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	source port.TextSource,
	notifier port.EscalationNotifier,
	digestTo string,
) InvoiceService {
	return &invoiceService{
		pipeline: p,
		repo:     repo,
		storage:  storage,
		source:   source,
		notifier: notifier,
		digestTo: digestTo,
	}
}

func (s *invoiceService) ProcessText(ctx context.Context, input *ProcessTextInput) (*domain.InvoiceRecord, error) {
	if input.Text == "" {
		return nil, domain.ErrEmptyDocument
	}
	name := input.SourceName
	if name == "" {
		name = "inline.txt"
	}

	result := s.pipeline.ProcessText(ctx, name, input.Text)
	return s.persist(ctx, result)
}

func (s *invoiceService) ProcessObject(ctx context.Context, input *ProcessObjectInput) (*domain.InvoiceRecord, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageUnavailable
	}

	data, err := s.storage.Download(ctx, input.Bucket, input.Key)
	if err != nil {
		return nil, fmt.Errorf("downloading %s/%s: %w", input.Bucket, input.Key, err)
	}

	name := filepath.Base(input.Key)
	text, err := s.extractFromBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, domain.ErrEmptyDocument
	}

	result := s.pipeline.ProcessText(ctx, name, text)
	return s.persist(ctx, result)
}

// extractFromBytes stages the object bytes in a temp file so the text source
// can run its extraction tooling on a real path.
func (s *invoiceService) extractFromBytes(ctx context.Context, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".txt"
	}
	tmp, err := os.CreateTemp("", "itemize-*"+ext)
	if err != nil {
		return "", fmt.Errorf("staging document: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("staging document: %w", err)
	}

	text, err := s.source.ExtractText(ctx, tmp.Name())
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", name, err)
	}
	return text, nil
}

func (s *invoiceService) persist(ctx context.Context, result *domain.InvoiceResult) (*domain.InvoiceRecord, error) {
	lineItems, err := json.Marshal(result.LineItems)
	if err != nil {
		return nil, fmt.Errorf("marshaling line items: %w", err)
	}
	metadata, err := json.Marshal(result.RawMetadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}

	rec := &domain.InvoiceRecord{
		ID:             uuid.New(),
		Source:         result.SourceFile,
		SupplierName:   result.SupplierName,
		Strategy:       domain.Strategy(result.RawMetadata["parser"]),
		LineItems:      lineItems,
		Metadata:       metadata,
		LineCount:      len(result.LineItems),
		EscalatedLines: result.EscalatedCount(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting invoice: %w", err)
	}

	log.Printf("invoiceService.persist: stored invoice %s (%s, %d lines, %d escalated)",
		rec.ID, rec.SupplierName, rec.LineCount, rec.EscalatedLines)

	s.notifyEscalations(ctx, result)
	return rec, nil
}

// notifyEscalations sends the digest for a single processed document.
// Failures are logged but never block persistence.
func (s *invoiceService) notifyEscalations(ctx context.Context, result *domain.InvoiceResult) {
	if s.notifier == nil || s.digestTo == "" {
		return
	}
	escalated := result.EscalatedCount()
	if escalated == 0 {
		return
	}
	summary := port.EscalationSummary{
		Source:         result.SourceFile,
		SupplierName:   result.SupplierName,
		EscalatedLines: escalated,
		TotalLines:     len(result.LineItems),
	}
	if err := s.notifier.SendEscalationDigest(ctx, s.digestTo, []port.EscalationSummary{summary}); err != nil {
		log.Printf("invoiceService.notifyEscalations: failed to send digest for %s: %v", result.SourceFile, err)
	}
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, escalatedOnly bool, offset, limit int) ([]domain.InvoiceRecord, int, error) {
	if escalatedOnly {
		return s.repo.ListEscalated(ctx, offset, limit)
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
