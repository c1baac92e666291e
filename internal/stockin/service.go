package stockin

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeopshq/storeops-backend/pkg/erp"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/inflight"
	"github.com/storeopshq/storeops-backend/pkg/logger"
	"github.com/storeopshq/storeops-backend/pkg/metrics"
)

const flowStockIn = "stock_in"

// Ingestor is the upstream surface the stock-in flow depends on.
type Ingestor interface {
	IngestInvoice(ctx context.Context, filename, contentType string, file io.Reader) (*erp.ExtractedInvoice, error)
	ConfirmStockIn(ctx context.Context, payload erp.StockInPayload) (*erp.StockInAck, error)
}

// RowView is one staged row plus its derived line total.
type RowView struct {
	StagedLineItem
	LineTotal decimal.Decimal `json:"line_total"`
}

// SessionView is the API-facing snapshot of one staging session.
type SessionView struct {
	SessionID  string            `json:"session_id"`
	Header     erp.InvoiceHeader `json:"header"`
	Rows       []RowView         `json:"line_items"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
	LastCommit *erp.StockInAck   `json:"last_commit,omitempty"`
}

// Service owns stock-in staging sessions from upload through commit.
type Service interface {
	Upload(ctx context.Context, filename, contentType string, file io.Reader) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	UpdateField(ctx context.Context, sessionID string, localID int, field Field, value string) (*SessionView, error)
	RemoveRow(ctx context.Context, sessionID string, localID int) (*SessionView, error)
	Commit(ctx context.Context, sessionID string) (*erp.StockInAck, error)
	Reset(ctx context.Context, sessionID string) error
}

type session struct {
	id        string
	mu        sync.Mutex
	staging   Staging
	commit    inflight.Guard
	lastAck   *erp.StockInAck
	expiresAt time.Time
}

type service struct {
	upstream Ingestor
	logger   *logger.Logger
	metrics  *metrics.StagingMetrics
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService builds the stock-in staging service.
func NewService(upstream Ingestor, logg *logger.Logger, m *metrics.StagingMetrics, sessionTTL time.Duration) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive")
	}
	return &service{
		upstream: upstream,
		logger:   logg,
		metrics:  m,
		ttl:      sessionTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
	}, nil
}

// Upload runs extraction and opens a fresh staging session seeded with
// the extracted rows. Nothing is staged when extraction fails.
func (s *service) Upload(ctx context.Context, filename, contentType string, file io.Reader) (*SessionView, error) {
	extracted, err := s.upstream.IngestInvoice(ctx, filename, contentType, file)
	if err != nil {
		s.logger.Error(ctx, "invoice ingestion failed", err)
		return nil, err
	}

	sess := &session{
		id:        uuid.NewString(),
		staging:   NewStaging(*extracted),
		expiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.purgeExpiredLocked()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.metrics.SessionOpened(flowStockIn)

	ctx = s.logger.WithSessionID(ctx, sess.id)
	s.logger.Info(ctx, fmt.Sprintf("staged %d extracted rows", len(sess.staging.Rows)))

	return snapshot(sess), nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess), nil
}

func (s *service) UpdateField(ctx context.Context, sessionID string, localID int, field Field, value string) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	updated, err := UpdateField(sess.staging, localID, field, value)
	if err != nil {
		return nil, err
	}
	sess.staging = updated
	sess.expiresAt = s.now().Add(s.ttl)

	return snapshotLocked(sess), nil
}

func (s *service) RemoveRow(ctx context.Context, sessionID string, localID int) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	updated, err := RemoveRow(sess.staging, localID)
	if err != nil {
		return nil, err
	}
	sess.staging = updated
	sess.expiresAt = s.now().Add(s.ttl)

	return snapshotLocked(sess), nil
}

// Commit submits the staged rows as one atomic stock entry. The
// staging table is kept in place on success and on failure, so a
// retried commit reuses the same corrected data.
func (s *service) Commit(ctx context.Context, sessionID string) (*erp.StockInAck, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.commit.TryAcquire() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a commit for this session is already in flight")
	}
	defer sess.commit.Release()

	sess.mu.Lock()
	if len(sess.staging.Rows) == 0 {
		sess.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no line items to process")
	}
	payload := sess.staging.Payload()
	sess.mu.Unlock()

	ctx = s.logger.WithSessionID(ctx, sessionID)

	ack, err := s.upstream.ConfirmStockIn(ctx, payload)
	s.metrics.CountCommit(flowStockIn, err)
	if err != nil {
		s.logger.Error(ctx, "stock-in commit failed", err)
		return nil, err
	}

	sess.mu.Lock()
	sess.lastAck = ack
	sess.expiresAt = s.now().Add(s.ttl)
	sess.mu.Unlock()

	s.logger.Info(ctx, fmt.Sprintf("stock entry %s created", ack.EntryName))
	return ack, nil
}

// Reset discards a staging session. This is the explicit "upload a new
// invoice" action.
func (s *service) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return sessionNotFound()
	}
	s.metrics.SessionClosed(flowStockIn)
	return nil
}

func (s *service) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sessionNotFound()
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		s.metrics.SessionClosed(flowStockIn)
		return nil, sessionNotFound()
	}
	return sess, nil
}

func (s *service) purgeExpiredLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			s.metrics.SessionClosed(flowStockIn)
		}
	}
}

func sessionNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "unknown or expired staging session")
}

func snapshot(sess *session) *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess)
}

func snapshotLocked(sess *session) *SessionView {
	rows := make([]RowView, 0, len(sess.staging.Rows))
	grand := decimal.Zero
	for _, row := range sess.staging.Rows {
		total := row.LineTotal()
		rows = append(rows, RowView{StagedLineItem: row, LineTotal: total})
		grand = grand.Add(total)
	}
	return &SessionView{
		SessionID:  sess.id,
		Header:     sess.staging.Header,
		Rows:       rows,
		GrandTotal: grand,
		LastCommit: sess.lastAck,
	}
}
