package stockout

import (
	"context"
	"fmt"
	"strings"
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

const flowStockOut = "stock_out"

// Resolver is the upstream surface the stock-out flow depends on.
type Resolver interface {
	LookupBarcode(ctx context.Context, barcode string) (*erp.ScannedItem, error)
	SubmitSale(ctx context.Context, payload erp.SalePayload) (*erp.SaleAck, error)
}

// LineView is one cart line plus its derived subtotal.
type LineView struct {
	CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the API-facing snapshot of one cart session.
type CartView struct {
	SessionID string          `json:"session_id"`
	Lines     []LineView      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

// Service owns stock-out cart sessions from first scan through sale.
type Service interface {
	Open(ctx context.Context) (*CartView, error)
	Get(ctx context.Context, sessionID string) (*CartView, error)
	Scan(ctx context.Context, sessionID, barcode string) (*CartView, error)
	SetQty(ctx context.Context, sessionID, itemCode string, qty int64) (*CartView, error)
	RemoveLine(ctx context.Context, sessionID, itemCode string) (*CartView, error)
	Checkout(ctx context.Context, sessionID string) (*erp.SaleAck, error)
	Close(ctx context.Context, sessionID string) error
}

type session struct {
	id        string
	mu        sync.Mutex
	cart      Cart
	scan      inflight.Guard
	commit    inflight.Guard
	expiresAt time.Time
}

type service struct {
	upstream Resolver
	logger   *logger.Logger
	metrics  *metrics.StagingMetrics
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService builds the stock-out cart service.
func NewService(upstream Resolver, logg *logger.Logger, m *metrics.StagingMetrics, sessionTTL time.Duration) (Service, error) {
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

// Open creates an empty cart session.
func (s *service) Open(ctx context.Context) (*CartView, error) {
	sess := &session{
		id:        uuid.NewString(),
		expiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.purgeExpiredLocked()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.metrics.SessionOpened(flowStockOut)
	return snapshot(sess), nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*CartView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess), nil
}

// Scan resolves a barcode and merges the result into the cart. Input
// is trimmed; blank input is a no-op. At most one lookup per session
// may be outstanding so scans land in the order they were issued.
func (s *service) Scan(ctx context.Context, sessionID, barcode string) (*CartView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return snapshotLocked(sess), nil
	}

	if !sess.scan.TryAcquire() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a lookup for this session is already in flight")
	}
	defer sess.scan.Release()

	ctx = s.logger.WithSessionID(ctx, sessionID)
	ctx = s.logger.WithItemCode(ctx, trimmed)

	item, err := s.upstream.LookupBarcode(ctx, trimmed)
	if err != nil {
		s.logger.Warn(ctx, "barcode lookup failed")
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart = AddScan(sess.cart, *item)
	sess.expiresAt = s.now().Add(s.ttl)

	return snapshotLocked(sess), nil
}

func (s *service) SetQty(ctx context.Context, sessionID, itemCode string, qty int64) (*CartView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	updated, err := SetQty(sess.cart, itemCode, qty)
	if err != nil {
		return nil, err
	}
	sess.cart = updated
	sess.expiresAt = s.now().Add(s.ttl)

	return snapshotLocked(sess), nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID, itemCode string) (*CartView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart = RemoveLine(sess.cart, itemCode)
	sess.expiresAt = s.now().Add(s.ttl)

	return snapshotLocked(sess), nil
}

// Checkout submits the cart as one atomic sale. The cart is cleared
// only when the upstream acknowledges success; any failure leaves it
// untouched for an explicit retry.
func (s *service) Checkout(ctx context.Context, sessionID string) (*erp.SaleAck, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.commit.TryAcquire() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a checkout for this session is already in flight")
	}
	defer sess.commit.Release()

	sess.mu.Lock()
	if len(sess.cart.Lines) == 0 {
		sess.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items in the sale")
	}
	payload := sess.cart.Payload()
	sess.mu.Unlock()

	ctx = s.logger.WithSessionID(ctx, sessionID)

	ack, err := s.upstream.SubmitSale(ctx, payload)
	s.metrics.CountCommit(flowStockOut, err)
	if err != nil {
		s.logger.Error(ctx, "sale commit failed", err)
		return nil, err
	}

	sess.mu.Lock()
	sess.cart = Cart{}
	sess.expiresAt = s.now().Add(s.ttl)
	sess.mu.Unlock()

	s.logger.Info(ctx, fmt.Sprintf("sale committed as %s", ack.StockEntryName))
	return ack, nil
}

// Close discards a cart session.
func (s *service) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return sessionNotFound()
	}
	s.metrics.SessionClosed(flowStockOut)
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
		s.metrics.SessionClosed(flowStockOut)
		return nil, sessionNotFound()
	}
	return sess, nil
}

func (s *service) purgeExpiredLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			s.metrics.SessionClosed(flowStockOut)
		}
	}
}

func sessionNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "unknown or expired cart session")
}

func snapshot(sess *session) *CartView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess)
}

func snapshotLocked(sess *session) *CartView {
	lines := make([]LineView, 0, len(sess.cart.Lines))
	for _, line := range sess.cart.Lines {
		lines = append(lines, LineView{CartLine: line, Subtotal: line.Subtotal()})
	}
	return &CartView{
		SessionID: sess.id,
		Lines:     lines,
		Total:     Total(sess.cart),
	}
}
