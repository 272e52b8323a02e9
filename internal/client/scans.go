package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

const (
	maxScanSize       = 10 << 20 // server rejects anything larger
	uploadConcurrency = 4
)

// imageContentTypes the scan pipeline accepts.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// CreateBatchRequest opens a new scan batch.
type CreateBatchRequest struct {
	Name                string     `json:"name,omitempty" validate:"max=100"`
	Description         string     `json:"description,omitempty" validate:"max=500"`
	AutoAddToCollection bool       `json:"auto_add_to_collection"`
	TargetCollectionID  *uuid.UUID `json:"target_collection_id,omitempty"`
	ConfidenceThreshold float64    `json:"confidence_threshold,omitempty" validate:"min=0,max=1"`
}

// ScanConfirmRequest accepts a recognition result, optionally filing the card
// into a collection.
type ScanConfirmRequest struct {
	CardScryfallID  uuid.UUID  `json:"card_scryfall_id" validate:"required"`
	AddToCollection bool       `json:"add_to_collection"`
	CollectionID    *uuid.UUID `json:"collection_id,omitempty"`
	Quantity        int        `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Condition       string     `json:"condition,omitempty"`
}

// CreateBatch opens a batch to group uploads under.
func (c *Client) CreateBatch(ctx context.Context, req CreateBatchRequest) (*model.ScanBatch, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate batch: %w", err)
	}
	var b model.ScanBatch
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/batches", nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Batches lists the user's scan batches.
func (c *Client) Batches(ctx context.Context) ([]model.ScanBatch, error) {
	var bs []model.ScanBatch
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/batches", nil, nil, &bs); err != nil {
		return nil, err
	}
	return bs, nil
}

// Batch fetches a batch with its scans and progress.
func (c *Client) Batch(ctx context.Context, id uuid.UUID) (*model.ScanBatch, error) {
	var b model.ScanBatch
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/batches/"+id.String(), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// FinalizeBatch marks a batch as fully uploaded, releasing it for processing.
func (c *Client) FinalizeBatch(ctx context.Context, id uuid.UUID) (*model.ScanBatch, error) {
	var b model.ScanBatch
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/batches/"+id.String()+"/finalize", nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBatch removes a batch and all scans inside it.
func (c *Client) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/scan/batches/"+id.String(), nil, nil, nil)
}

// UploadScan uploads one card image from disk. batchID may be nil for a
// standalone scan. The file type and size are checked client-side so an
// oversized upload fails before the bytes leave the machine.
func (c *Client) UploadScan(ctx context.Context, path string, batchID *uuid.UUID, autoProcess bool) (*model.Scan, error) {
	ctype, ok := imageContentTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q (want jpeg, png, or webp)", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxScanSize {
		return nil, fmt.Errorf("image %s is %d bytes, exceeds the 10MB limit", filepath.Base(path), len(data))
	}

	pl := scanPayload(filepath.Base(path), ctype, data, batchID, autoProcess)

	var scan model.Scan
	if err := c.exec(ctx, http.MethodPost, "/api/v1/scan/upload", nil, pl, &scan); err != nil {
		return nil, err
	}
	c.log.Debug("scan uploaded",
		zap.String("file", filepath.Base(path)), zap.String("scan_id", scan.ID.String()))
	return &scan, nil
}

// UploadResult pairs an uploaded file with its scan or failure.
type UploadResult struct {
	Path string
	Scan *model.Scan
	Err  error
}

// UploadScans uploads many images with bounded concurrency. Individual
// failures are reported per file rather than aborting the whole run.
func (c *Client) UploadScans(ctx context.Context, paths []string, batchID *uuid.UUID, autoProcess bool) []UploadResult {
	results := make([]UploadResult, len(paths))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			scan, err := c.UploadScan(ctx, p, batchID, autoProcess)
			mu.Lock()
			results[i] = UploadResult{Path: p, Scan: scan, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// scanPayload builds a multipart form body for a scan upload. Rebuilding from
// the in-memory image bytes keeps the request replayable.
func scanPayload(filename, ctype string, data []byte, batchID *uuid.UUID, autoProcess bool) payload {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		hdr.Set("Content-Type", ctype)
		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", fmt.Errorf("create form part: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", fmt.Errorf("write form part: %w", err)
		}

		if batchID != nil {
			if err := w.WriteField("batch_id", batchID.String()); err != nil {
				return nil, "", fmt.Errorf("write batch_id field: %w", err)
			}
		}
		if err := w.WriteField("auto_process", strconv.FormatBool(autoProcess)); err != nil {
			return nil, "", fmt.Errorf("write auto_process field: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("finish multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}
}

// Scans lists the user's scans, optionally filtered by status.
func (c *Client) Scans(ctx context.Context, status string, page, perPage int) ([]model.Scan, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var scans []model.Scan
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/scans", q, nil, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// PendingScans lists scans awaiting manual review.
func (c *Client) PendingScans(ctx context.Context) ([]model.Scan, error) {
	var scans []model.Scan
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/scans/pending", nil, nil, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// Scan fetches a single scan with full recognition detail.
func (c *Client) Scan(ctx context.Context, id uuid.UUID) (*model.Scan, error) {
	var s model.Scan
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/scans/"+id.String(), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ConfirmScan accepts a recognition result.
func (c *Client) ConfirmScan(ctx context.Context, id uuid.UUID, req ScanConfirmRequest) (*model.Scan, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate confirmation: %w", err)
	}
	var s model.Scan
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/scans/"+id.String()+"/confirm", nil, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RejectScan discards a recognition result.
func (c *Client) RejectScan(ctx context.Context, id uuid.UUID, reason string) (*model.Scan, error) {
	body := map[string]any{}
	if reason != "" {
		body["reason"] = reason
	}
	var s model.Scan
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/scans/"+id.String()+"/reject", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReprocessScan re-queues a failed or rejected scan.
func (c *Client) ReprocessScan(ctx context.Context, id uuid.UUID) (*model.Scan, error) {
	var s model.Scan
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/scans/"+id.String()+"/reprocess", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteScan removes a scan and its stored images.
func (c *Client) DeleteScan(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/scan/scans/"+id.String(), nil, nil, nil)
}

type batchConfirmRequest struct {
	ScanIDs         []uuid.UUID `json:"scan_ids"`
	AddToCollection bool        `json:"add_to_collection"`
	CollectionID    *uuid.UUID  `json:"collection_id,omitempty"`
}

type batchRejectRequest struct {
	ScanIDs []uuid.UUID `json:"scan_ids"`
	Reason  string      `json:"reason,omitempty"`
}

// BatchOutcome reports how many scans a bulk operation touched.
type BatchOutcome struct {
	Confirmed int `json:"confirmed,omitempty"`
	Rejected  int `json:"rejected,omitempty"`
	Failed    int `json:"failed,omitempty"`
}

// ConfirmScans accepts several recognition results in one call.
func (c *Client) ConfirmScans(ctx context.Context, ids []uuid.UUID, collectionID *uuid.UUID) (*BatchOutcome, error) {
	req := batchConfirmRequest{ScanIDs: ids, AddToCollection: collectionID != nil, CollectionID: collectionID}
	var out BatchOutcome
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/scans/confirm-batch", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectScans discards several recognition results in one call.
func (c *Client) RejectScans(ctx context.Context, ids []uuid.UUID, reason string) (*BatchOutcome, error) {
	var out BatchOutcome
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan/scans/reject-batch", nil, batchRejectRequest{ScanIDs: ids, Reason: reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScanStats summarizes the user's scanning activity.
func (c *Client) ScanStats(ctx context.Context) (*model.ScanStats, error) {
	var st model.ScanStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// QueueStatus reports the server-side processing queue depth.
func (c *Client) QueueStatus(ctx context.Context) (*model.QueueStatus, error) {
	var qs model.QueueStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/scan/queue-status", nil, nil, &qs); err != nil {
		return nil, err
	}
	return &qs, nil
}
