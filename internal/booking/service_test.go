package booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/driverlink-backend/internal/booking"
)

const (
	d1 = "driver-1"
	d2 = "driver-2"
	d3 = "driver-3"
)

type recordingListener struct {
	mu        sync.Mutex
	snapshots []booking.Snapshot
}

func (l *recordingListener) BookingsChanged(s booking.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, s)
}

func (l *recordingListener) versions() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]uint64, len(l.snapshots))
	for i, s := range l.snapshots {
		out[i] = s.Version
	}
	return out
}

func newService(t *testing.T, listeners ...booking.Listener) booking.Service {
	t.Helper()
	return booking.NewService(booking.NewMemoryRepository(), booking.Options{
		Logger:    zap.NewNop(),
		Listeners: listeners,
	})
}

func validCreate() booking.CreateRequest {
	return booking.CreateRequest{
		ClientName:     "  Ravi  ",
		PickupLocation: "Koramangala 5th Block",
		TripType:       booking.TripRoundTrip,
		PackageHours:   "8hrs",
	}
}

func mustCreate(t *testing.T, svc booking.Service, actor string) *booking.Booking {
	t.Helper()
	p, err := svc.Create(context.Background(), actor, validCreate())
	require.NoError(t, err)
	b, err := p.Wait(context.Background())
	require.NoError(t, err)
	return b
}

func mustGet(t *testing.T, svc booking.Service, actor, id string) *booking.Booking {
	t.Helper()
	b, err := svc.GetByID(context.Background(), actor, id)
	require.NoError(t, err)
	return b
}

func TestService_Create(t *testing.T) {
	svc := newService(t)

	b := mustCreate(t, svc, d1)

	_, err := uuid.Parse(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", b.ClientName)
	assert.Equal(t, booking.StatusPersonal, b.Status)
	assert.Equal(t, d1, b.OriginalDriverID)
	assert.Empty(t, b.ClaimedByDriverID)
	assert.False(t, b.DateTime.IsZero(), "date time defaults to creation time")

	views, err := svc.Views(context.Background(), d1)
	require.NoError(t, err)
	require.Len(t, views.Personal, 1)
	assert.Equal(t, b.ID, views.Personal[0].ID)
}

func TestService_CreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *booking.CreateRequest)
		wantErr error
	}{
		{"blank client name", func(r *booking.CreateRequest) { r.ClientName = "   " }, booking.ErrClientNameRequired},
		{"blank pickup", func(r *booking.CreateRequest) { r.PickupLocation = "" }, booking.ErrPickupRequired},
		{"unknown trip type", func(r *booking.CreateRequest) { r.TripType = "helicopter" }, booking.ErrInvalidTripType},
		{"unknown package", func(r *booking.CreateRequest) { r.PackageHours = "3hrs" }, booking.ErrInvalidInput},
		{"unknown transmission", func(r *booking.CreateRequest) { r.CarTransmission = "cvt" }, booking.ErrInvalidInput},
		{"unknown car model", func(r *booking.CreateRequest) { r.CarModelType = "van" }, booking.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			p, err := svc.Create(ctx, d1, req)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	views, err := svc.Views(ctx, d1)
	require.NoError(t, err)
	assert.Empty(t, views.Personal)
	assert.False(t, svc.Busy())
}

func TestService_MissingActor(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc, d1)

	_, err := svc.Create(ctx, "", validCreate())
	assert.ErrorIs(t, err, booking.ErrUnauthenticated)

	_, err = svc.Update(ctx, "", b.ID, booking.UpdateRequest{})
	assert.ErrorIs(t, err, booking.ErrUnauthenticated)

	ops := map[string]func(ctx context.Context, actorID, id string) (*booking.Booking, error){
		"offer":          svc.Offer,
		"claim":          svc.Claim,
		"assign_to_self": svc.AssignToSelf,
		"cancel_offer":   svc.CancelOffer,
		"confirm":        svc.ConfirmRide,
		"start":          svc.StartTrip,
		"end":            svc.EndTrip,
		"complete":       svc.CompleteRide,
		"cancel":         svc.Cancel,
		"get":            svc.GetByID,
	}
	for name, op := range ops {
		_, err := op(ctx, "", b.ID)
		assert.ErrorIs(t, err, booking.ErrUnauthenticated, name)
	}

	_, err = svc.Views(ctx, "")
	assert.ErrorIs(t, err, booking.ErrUnauthenticated)

	assert.Equal(t, booking.StatusPersonal, mustGet(t, svc, d1, b.ID).Status)
}

// D1 creates and offers, D2 claims and drives the ride to completion.
func TestService_ScenarioFullLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)

	_, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)

	d2Views, err := svc.Views(ctx, d2)
	require.NoError(t, err)
	require.Len(t, d2Views.AvailableToClaim, 1)
	assert.Equal(t, b.ID, d2Views.AvailableToClaim[0].ID)

	d1Views, err := svc.Views(ctx, d1)
	require.NoError(t, err)
	assert.Empty(t, d1Views.AvailableToClaim)
	assert.Len(t, d1Views.MyOffered, 1)

	claimed, err := svc.Claim(ctx, d2, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusAssigned, claimed.Status)
	assert.Equal(t, d2, claimed.ClaimedByDriverID)

	steps := []struct {
		op   func(ctx context.Context, actorID, id string) (*booking.Booking, error)
		want booking.Status
	}{
		{svc.ConfirmRide, booking.StatusConfirmed},
		{svc.StartTrip, booking.StatusOnTrip},
		{svc.EndTrip, booking.StatusTripEnded},
		{svc.CompleteRide, booking.StatusCompleted},
	}
	for _, step := range steps {
		got, err := step.op(ctx, d2, b.ID)
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Status)
		assert.Equal(t, d1, got.OriginalDriverID)
	}

	d2Views, err = svc.Views(ctx, d2)
	require.NoError(t, err)
	assert.Empty(t, d2Views.MyActiveRides)
	require.Len(t, d2Views.MyHistory, 1)

	d1Views, err = svc.Views(ctx, d1)
	require.NoError(t, err)
	require.Len(t, d1Views.MyHistory, 1)
	assert.Empty(t, d1Views.MyOffered)
}

func TestService_ScenarioAssignToSelf(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)

	got, err := svc.AssignToSelf(ctx, d1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusAssigned, got.Status)
	assert.Equal(t, d1, got.ClaimedByDriverID)

	views, err := svc.Views(ctx, d1)
	require.NoError(t, err)
	assert.Empty(t, views.Personal)
	require.Len(t, views.MyActiveRides, 1)

	others, err := svc.Views(ctx, d2)
	require.NoError(t, err)
	assert.Empty(t, others.AvailableToClaim)
}

func TestService_ScenarioCancelOwnOffer(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)

	offered, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusOffered, offered.Status)

	back, err := svc.CancelOffer(ctx, d1, b.ID)
	require.NoError(t, err)

	// Apart from the bookkeeping timestamp, the booking is exactly as before.
	b.UpdatedAt = back.UpdatedAt
	assert.Equal(t, *b, *back)

	views, err := svc.Views(ctx, d2)
	require.NoError(t, err)
	assert.Empty(t, views.AvailableToClaim)
}

func TestService_ScenarioCreatorCannotCancelClaimedBooking(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)
	_, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, d2, b.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, d1, b.ID)
	assert.ErrorIs(t, err, booking.ErrTransitionNotAllowed)

	got := mustGet(t, svc, d2, b.ID)
	assert.Equal(t, booking.StatusAssigned, got.Status)
	assert.Equal(t, d2, got.ClaimedByDriverID)
}

func TestService_SecondClaimIsNoOp(t *testing.T) {
	listener := &recordingListener{}
	svc := newService(t, listener)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)
	_, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, d2, b.ID)
	require.NoError(t, err)
	before := listener.versions()

	_, err = svc.Claim(ctx, d3, b.ID)
	assert.ErrorIs(t, err, booking.ErrTransitionNotAllowed)

	got := mustGet(t, svc, d2, b.ID)
	assert.Equal(t, d2, got.ClaimedByDriverID)
	assert.Equal(t, before, listener.versions(), "rejected transition must not notify")
}

func TestService_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)
	_, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)

	const drivers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			if _, err := svc.Claim(ctx, actor, b.ID); err == nil {
				mu.Lock()
				winners = append(winners, actor)
				mu.Unlock()
			}
		}(fmt.Sprintf("driver-%d", i))
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, winners[0], mustGet(t, svc, d1, b.ID).ClaimedByDriverID)
}

func TestService_UnknownBooking(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := uuid.NewString()

	_, err := svc.Offer(ctx, d1, id)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	_, err = svc.Update(ctx, d1, id, booking.UpdateRequest{})
	assert.ErrorIs(t, err, booking.ErrNotFound)

	_, err = svc.GetByID(ctx, d1, id)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestService_GetByIDVisibility(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)

	_, err := svc.GetByID(ctx, d2, b.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound, "personal bookings are private")

	_, err = svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, mustGet(t, svc, d2, b.ID).ID, "offered bookings are visible to everyone")

	_, err = svc.Claim(ctx, d2, b.ID)
	require.NoError(t, err)
	mustGet(t, svc, d2, b.ID)
	mustGet(t, svc, d1, b.ID)

	_, err = svc.GetByID(ctx, d3, b.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestService_UpdateMergesDetails(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)

	notes := "Call on arrival"
	drop := "  MG Road  "
	transmission := booking.TransmissionAuto
	p, err := svc.Update(ctx, d1, b.ID, booking.UpdateRequest{
		Notes:           &notes,
		DropoffLocation: &drop,
		CarTransmission: &transmission,
	})
	require.NoError(t, err)
	got, err := p.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, "MG Road", got.DropoffLocation)
	assert.Equal(t, booking.TransmissionAuto, got.CarTransmission)
	assert.Equal(t, b.ClientName, got.ClientName)
	assert.Equal(t, b.Status, got.Status)
	assert.Equal(t, b.OriginalDriverID, got.OriginalDriverID)
}

func TestService_UpdateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc, d1)

	blank := " "
	_, err := svc.Update(ctx, d1, b.ID, booking.UpdateRequest{ClientName: &blank})
	assert.ErrorIs(t, err, booking.ErrClientNameRequired)

	bad := booking.CarModelType("limo")
	_, err = svc.Update(ctx, d1, b.ID, booking.UpdateRequest{CarModelType: &bad})
	assert.ErrorIs(t, err, booking.ErrInvalidInput)
}

func TestService_OverlappingUpdatesKeepBothFields(t *testing.T) {
	svc := booking.NewService(booking.NewMemoryRepository(), booking.Options{
		CommitDelay: 20 * time.Millisecond,
		Logger:      zap.NewNop(),
	})
	ctx := context.Background()
	b := mustCreate(t, svc, d1)

	notes := "Gate 3"
	usage := "200km"
	p1, err := svc.Update(ctx, d1, b.ID, booking.UpdateRequest{Notes: &notes})
	require.NoError(t, err)
	p2, err := svc.Update(ctx, d1, b.ID, booking.UpdateRequest{EstimatedUsage: &usage})
	require.NoError(t, err)

	_, err = p1.Wait(ctx)
	require.NoError(t, err)
	_, err = p2.Wait(ctx)
	require.NoError(t, err)

	got := mustGet(t, svc, d1, b.ID)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, usage, got.EstimatedUsage)
}

func TestService_BusyWhileCommitPending(t *testing.T) {
	svc := booking.NewService(booking.NewMemoryRepository(), booking.Options{
		CommitDelay: 50 * time.Millisecond,
		Logger:      zap.NewNop(),
	})
	ctx := context.Background()

	assert.False(t, svc.Busy())

	p, err := svc.Create(ctx, d1, validCreate())
	require.NoError(t, err)
	assert.True(t, svc.Busy())

	views, err := svc.Views(ctx, d1)
	require.NoError(t, err)
	assert.Empty(t, views.Personal, "nothing is visible before the commit")

	_, err = p.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, svc.Busy())

	views, err = svc.Views(ctx, d1)
	require.NoError(t, err)
	assert.Len(t, views.Personal, 1)
}

func TestService_CommitSurvivesCancelledWait(t *testing.T) {
	svc := booking.NewService(booking.NewMemoryRepository(), booking.Options{
		CommitDelay: 30 * time.Millisecond,
		Logger:      zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	p, err := svc.Create(ctx, d1, validCreate())
	require.NoError(t, err)
	cancel()

	_, err = p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("commit never happened")
	}

	views, err := svc.Views(context.Background(), d1)
	require.NoError(t, err)
	assert.Len(t, views.Personal, 1)
}

func TestService_UpdateOfVanishedBookingResolvesNotFound(t *testing.T) {
	repo := &flakyRepository{Repository: booking.NewMemoryRepository()}
	svc := booking.NewService(repo, booking.Options{Logger: zap.NewNop()})
	ctx := context.Background()

	b := mustCreate(t, svc, d1)
	repo.failReplace = true

	notes := "late"
	p, err := svc.Update(ctx, d1, b.ID, booking.UpdateRequest{Notes: &notes})
	require.NoError(t, err)

	_, err = p.Wait(ctx)
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.False(t, svc.Busy())
}

func TestService_ListenersSeeIncreasingVersions(t *testing.T) {
	listener := &recordingListener{}
	svc := newService(t, listener)
	ctx := context.Background()

	b := mustCreate(t, svc, d1)
	_, err := svc.Offer(ctx, d1, b.ID)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, d2, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3}, listener.versions())

	listener.mu.Lock()
	last := listener.snapshots[2]
	listener.mu.Unlock()
	require.Len(t, last.Bookings, 1)
	assert.Equal(t, booking.StatusAssigned, last.Bookings[0].Status)
}

func TestService_StatusAlwaysValid(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	actors := []string{d1, d2, d3}
	ops := []func(ctx context.Context, actorID, id string) (*booking.Booking, error){
		svc.Offer, svc.Claim, svc.AssignToSelf, svc.CancelOffer, svc.ConfirmRide,
		svc.StartTrip, svc.EndTrip, svc.CompleteRide, svc.Cancel,
	}

	var ids []string
	for _, a := range actors {
		ids = append(ids, mustCreate(t, svc, a).ID)
	}

	// Deterministic pseudo-random walk over every operation and actor.
	seed := 7
	for i := 0; i < 300; i++ {
		seed = (seed*31 + 11) % 1009
		op := ops[seed%len(ops)]
		actor := actors[(seed/7)%len(actors)]
		id := ids[(seed/3)%len(ids)]
		_, _ = op(ctx, actor, id)
	}

	for i, id := range ids {
		got := mustGet(t, svc, actors[i], id)
		assert.True(t, got.Status.Valid(), "status %q", got.Status)
		assert.Equal(t, actors[i], got.OriginalDriverID)
	}
}

type flakyRepository struct {
	booking.Repository
	failReplace bool
}

func (r *flakyRepository) Replace(ctx context.Context, id string, fn func(b *booking.Booking) error) (*booking.Booking, uint64, error) {
	if r.failReplace {
		return nil, 0, booking.ErrNotFound
	}
	return r.Repository.Replace(ctx, id, fn)
}
