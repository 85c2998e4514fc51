package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/services/availability"
	"slotbook/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo mirrors the store's atomicity contract in memory: lock
// keys are claimed under one mutex, so at most one overlapping attempt wins.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	locks    map[string]string
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[string]*models.Booking),
		locks:    make(map[string]string),
	}
}

func (f *fakeBookingRepo) AcquireSlot(ctx context.Context, b *models.Booking, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := models.SlotLockKeys(b.HostID, b.StartTime, b.EndTime)
	for _, k := range keys {
		if _, taken := f.locks[k]; taken {
			return bookingRepo.ErrSlotTaken
		}
	}
	now := time.Now()
	for _, existing := range f.bookings {
		if existing.HostID != b.HostID {
			continue
		}
		if existing.Status != models.StatusConfirmed && !existing.ActivePending(now, ttl) {
			continue
		}
		if models.IntervalsOverlap(existing.StartTime, existing.EndTime, b.StartTime, b.EndTime) {
			return bookingRepo.ErrSlotTaken
		}
	}
	for _, k := range keys {
		f.locks[k] = b.ID
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetByTxnID(ctx context.Context, txnID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.TxnID == txnID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) FindActiveOverlapping(ctx context.Context, hostID string, start, end time.Time, ttl time.Duration) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, b := range f.bookings {
		if b.HostID != hostID {
			continue
		}
		if b.Status != models.StatusConfirmed && !b.ActivePending(now, ttl) {
			continue
		}
		if models.IntervalsOverlap(b.StartTime, b.EndTime, start, end) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) ConfirmFromPending(ctx context.Context, id, paymentID string) (*models.Booking, error) {
	return f.transition(id, func(b *models.Booking) {
		b.Status = models.StatusConfirmed
		b.PaymentID = paymentID
	})
}

func (f *fakeBookingRepo) FailFromPending(ctx context.Context, id string) (*models.Booking, error) {
	return f.transition(id, func(b *models.Booking) {
		b.Status = models.StatusFailed
	})
}

func (f *fakeBookingRepo) transition(id string, apply func(*models.Booking)) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if b.Status != models.StatusPending {
		return nil, bookingRepo.ErrNotPending
	}
	apply(b)
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	var n int64
	for _, b := range f.bookings {
		if b.Status == models.StatusPending && b.CreatedAt.Before(cutoff) {
			b.Status = models.StatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) SetEnrichment(ctx context.Context, id, meetingLink, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok && b.Status == models.StatusConfirmed {
		b.MeetingLink = meetingLink
		b.Reference = reference
	}
	return nil
}

func (f *fakeBookingRepo) ReleaseSlot(ctx context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, id := range f.locks {
		if id == bookingID {
			delete(f.locks, k)
		}
	}
	return nil
}

func (f *fakeBookingRepo) EnsureIndexes() error { return nil }

type stubAvailability struct {
	rule *models.AvailabilityRule
	err  error
}

func (s *stubAvailability) Resolve(ctx context.Context, hostID string, at time.Time) (*models.AvailabilityRule, error) {
	return s.rule, s.err
}

func (s *stubAvailability) DaySlots(ctx context.Context, hostID string, date time.Time) ([]models.Slot, error) {
	return nil, nil
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) DispatchConfirmed(ctx context.Context, bookingID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, bookingID)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

func paidRule() *models.AvailabilityRule {
	return &models.AvailabilityRule{
		ID: "rule-a", HostID: "host-1", DayOfWeek: 4,
		StartTime: "09:00", EndTime: "17:00",
		SlotDuration: 30, Price: 1500, PriceUSD: 20,
	}
}

func freeRule() *models.AvailabilityRule {
	r := paidRule()
	r.IsFree = true
	r.Price = 0
	r.PriceUSD = 0
	return r
}

func zeroPriceRule() *models.AvailabilityRule {
	r := paidRule()
	r.Price = 0
	r.PriceUSD = 0
	return r
}

func serviceSecrets() payment.Secrets {
	return payment.Secrets{
		payment.ProviderRazorpay: {"INR": {Key: "rzp_test_inr", Secret: "inr-secret"}},
		payment.ProviderPayU:     {"INR": {Key: "payu-key-inr", Secret: "payu-salt-inr"}},
	}
}

func newTestService(rule *models.AvailabilityRule) (*DefaultBookingService, *fakeBookingRepo, *recordingDispatcher) {
	repo := newFakeBookingRepo()
	dispatcher := &recordingDispatcher{}
	secrets := serviceSecrets()
	payu := &payment.PayUVerifier{Secrets: secrets}

	svc := &DefaultBookingService{
		Bookings:     repo,
		Availability: &stubAvailability{rule: rule},
		Orders:       &SandboxOrderClient{},
		Secrets:      secrets,
		Verifiers: map[string]payment.Verifier{
			models.GatewayRazorpay: &payment.RazorpayVerifier{Secrets: secrets},
			models.GatewayPayU:     payu,
		},
		PayU:           payu,
		Dispatcher:     dispatcher,
		LockTTL:        5 * time.Minute,
		BaseURL:        "http://localhost:8080",
		PayUPaymentURL: "https://test.payu.in/_payment",
	}
	return svc, repo, dispatcher
}

func bookingRequest(start time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		HostID:        "host-1",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Currency:      "INR",
		CustomerName:  "Priya Sharma",
		CustomerEmail: "priya@example.com",
	}
}

func TestCreateRazorpayOrderPending(t *testing.T) {
	svc, repo, dispatcher := newTestService(paidRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	resp, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	assert.False(t, resp.Free)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, 1500.0, resp.Amount)
	assert.Equal(t, "rzp_test_inr", resp.KeyID)

	stored, err := repo.GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, resp.OrderID, stored.OrderID)

	// Paid bookings are not enriched until payment confirms.
	assert.Zero(t, dispatcher.count())
}

func TestCreateRazorpayOrderFreeSlotConfirmsDirectly(t *testing.T) {
	svc, repo, dispatcher := newTestService(freeRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	resp, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	assert.True(t, resp.Free)
	assert.Empty(t, resp.OrderID)

	stored, err := repo.GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	assert.Equal(t, 1, dispatcher.count())
}

func TestCreateOrderZeroPriceConfirmsDirectly(t *testing.T) {
	// A rule pricing the slot at zero is free even without the IsFree flag.
	svc, repo, dispatcher := newTestService(zeroPriceRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	resp, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	assert.True(t, resp.Free)
	assert.Empty(t, resp.OrderID)
	assert.Zero(t, resp.Amount)

	stored, err := repo.GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	assert.Equal(t, 1, dispatcher.count())

	payuResp, err := svc.CreatePayUOrder(context.Background(), bookingRequest(start.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, payuResp.Free)
	assert.Empty(t, payuResp.Params.Hash)
}

func TestCreateOrderRuleNotFound(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	svc.Availability = &stubAvailability{err: availability.ErrRuleNotFound}
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	assert.ErrorIs(t, err, availability.ErrRuleNotFound)
	assert.Empty(t, repo.bookings)
}

func TestCreateOrderRejectsOverlap(t *testing.T) {
	svc, _, _ := newTestService(paidRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	_, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)

	// Identical interval.
	_, err = svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Overlapping but not identical.
	req := bookingRequest(start.Add(15 * time.Minute))
	_, err = svc.CreateRazorpayOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Back to back is legal.
	_, err = svc.CreateRazorpayOrder(context.Background(), bookingRequest(start.Add(30*time.Minute)))
	assert.NoError(t, err)
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	svc, repo, _ := newTestService(paidRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	const attempts = 25
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRazorpayOrder(context.Background(), bookingRequest(start))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
	assert.Len(t, repo.bookings, 1)
}

func TestCreatePayUOrder(t *testing.T) {
	svc, repo, _ := newTestService(paidRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	resp, err := svc.CreatePayUOrder(context.Background(), bookingRequest(start))
	require.NoError(t, err)
	assert.False(t, resp.Free)
	assert.Equal(t, "https://test.payu.in/_payment", resp.Action)
	assert.Equal(t, "payu-key-inr", resp.Params.Key)
	assert.Equal(t, "1500.00", resp.Params.Amount)
	assert.Equal(t, "Priya", resp.Params.Firstname)
	assert.Equal(t, "INR", resp.Params.UDF1)
	assert.NotEmpty(t, resp.Params.Hash)

	expected, err := svc.PayU.RequestHash(resp.Params, "INR")
	require.NoError(t, err)
	assert.Equal(t, expected, resp.Params.Hash)

	stored, err := repo.GetByTxnID(context.Background(), resp.Params.TxnID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, repo, _ := newTestService(paidRule())
	start := time.Date(2027, 1, 14, 10, 0, 0, 0, time.UTC)

	req := bookingRequest(start)
	req.EndTime = req.StartTime
	_, err := svc.CreateRazorpayOrder(context.Background(), req)
	assert.Error(t, err)

	req = bookingRequest(start)
	req.CustomerEmail = ""
	_, err = svc.CreateRazorpayOrder(context.Background(), req)
	assert.Error(t, err)

	assert.Empty(t, repo.bookings)
}
