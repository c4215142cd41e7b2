package booking

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type CreateRequest struct {
	ClientName         string
	PickupLocation     string
	DropoffLocation    string
	DateTime           time.Time
	Notes              string
	TripType           TripType
	WhenNeeded         WhenNeeded
	PackageHours       string
	OutstationTripType OutstationTripType
	EstimatedUsage     string
	CarTransmission    CarTransmission
	CarModelType       CarModelType
}

// UpdateRequest carries the booking details to merge; nil fields are left as they are.
// Status and driver ids are not editable here.
type UpdateRequest struct {
	ClientName         *string
	PickupLocation     *string
	DropoffLocation    *string
	DateTime           *time.Time
	Notes              *string
	TripType           *TripType
	WhenNeeded         *WhenNeeded
	PackageHours       *string
	OutstationTripType *OutstationTripType
	EstimatedUsage     *string
	CarTransmission    *CarTransmission
	CarModelType       *CarModelType
}

// Listener observes the collection after every committed mutation.
// Snapshots may arrive out of order; compare versions. Bookings must not be modified.
type Listener interface {
	BookingsChanged(s Snapshot)
}

type Service interface {
	Create(ctx context.Context, actorID string, req CreateRequest) (*Pending, error)
	Update(ctx context.Context, actorID, id string, req UpdateRequest) (*Pending, error)
	Offer(ctx context.Context, actorID, id string) (*Booking, error)
	Claim(ctx context.Context, actorID, id string) (*Booking, error)
	AssignToSelf(ctx context.Context, actorID, id string) (*Booking, error)
	CancelOffer(ctx context.Context, actorID, id string) (*Booking, error)
	ConfirmRide(ctx context.Context, actorID, id string) (*Booking, error)
	StartTrip(ctx context.Context, actorID, id string) (*Booking, error)
	EndTrip(ctx context.Context, actorID, id string) (*Booking, error)
	CompleteRide(ctx context.Context, actorID, id string) (*Booking, error)
	Cancel(ctx context.Context, actorID, id string) (*Booking, error)
	GetByID(ctx context.Context, actorID, id string) (*Booking, error)
	Views(ctx context.Context, actorID string) (Views, error)
	// Busy reports whether a delayed create or update is still waiting to commit.
	Busy() bool
}

type Options struct {
	// CommitDelay is the simulated latency applied before create and update commit.
	CommitDelay time.Duration
	Logger      *zap.Logger
	Listeners   []Listener
}

type service struct {
	repo        Repository
	commitDelay time.Duration
	logger      *zap.Logger
	listeners   []Listener
	inflight    atomic.Int64
}

func NewService(repo Repository, opts Options) Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:        repo,
		commitDelay: opts.CommitDelay,
		logger:      logger.Named("booking"),
		listeners:   slices.Clone(opts.Listeners),
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateRequest) (*Pending, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	b := Booking{
		ClientName:         strings.TrimSpace(req.ClientName),
		PickupLocation:     strings.TrimSpace(req.PickupLocation),
		DropoffLocation:    strings.TrimSpace(req.DropoffLocation),
		DateTime:           req.DateTime,
		Notes:              req.Notes,
		TripType:           req.TripType,
		WhenNeeded:         req.WhenNeeded,
		PackageHours:       req.PackageHours,
		OutstationTripType: req.OutstationTripType,
		EstimatedUsage:     req.EstimatedUsage,
		CarTransmission:    req.CarTransmission,
		CarModelType:       req.CarModelType,
		Status:             StatusPersonal,
		OriginalDriverID:   actorID,
	}
	if b.DateTime.IsZero() {
		b.DateTime = time.Now().UTC()
	}

	return s.delayed(func(ctx context.Context) (*Booking, uint64, error) {
		version, err := s.repo.Create(ctx, &b)
		if err != nil {
			return nil, 0, err
		}
		created := b
		s.logger.Info("booking created",
			zap.String("booking_id", created.ID),
			zap.String("actor_id", actorID),
			zap.String("trip_type", string(created.TripType)),
			zap.Uint64("version", version))
		return &created, version, nil
	}), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateRequest) (*Pending, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.delayed(func(ctx context.Context) (*Booking, uint64, error) {
		b, version, err := s.repo.Replace(ctx, id, func(b *Booking) error {
			req.merge(b)
			return nil
		})
		if err != nil {
			return nil, 0, err
		}
		s.logger.Info("booking updated",
			zap.String("booking_id", id),
			zap.String("actor_id", actorID),
			zap.Uint64("version", version))
		return b, version, nil
	}), nil
}

// delayed runs commit on its own goroutine after the configured delay.
func (s *service) delayed(commit func(ctx context.Context) (*Booking, uint64, error)) *Pending {
	p := newPending()
	s.inflight.Add(1)

	go func() {
		if s.commitDelay > 0 {
			time.Sleep(s.commitDelay)
		}

		// The caller's context is not used: once issued, the operation always applies.
		ctx := context.Background()
		b, _, err := commit(ctx)
		if err == nil {
			s.notify(ctx)
		}

		s.inflight.Add(-1)
		p.resolve(b, err)
	}()

	return p
}

func (s *service) Offer(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionOffer)
}

func (s *service) Claim(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionClaim)
}

func (s *service) AssignToSelf(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionAssignToSelf)
}

func (s *service) CancelOffer(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionCancelOffer)
}

func (s *service) ConfirmRide(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionConfirmRide)
}

func (s *service) StartTrip(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionStartTrip)
}

func (s *service) EndTrip(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionEndTrip)
}

func (s *service) CompleteRide(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionCompleteRide)
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (*Booking, error) {
	return s.transition(ctx, actorID, id, ActionCancel)
}

func (s *service) transition(ctx context.Context, actorID, id string, action Action) (*Booking, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	b, version, err := s.repo.Replace(ctx, id, func(b *Booking) error {
		next, err := Apply(*b, action, actorID)
		if err != nil {
			return err
		}
		*b = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTransitionNotAllowed) {
			s.logger.Debug("booking transition rejected",
				zap.String("booking_id", id),
				zap.String("action", string(action)),
				zap.String("actor_id", actorID))
		}
		return nil, err
	}

	s.logger.Info("booking transition applied",
		zap.String("booking_id", id),
		zap.String("action", string(action)),
		zap.String("actor_id", actorID),
		zap.String("status", string(b.Status)),
		zap.Uint64("version", version))

	s.notify(ctx)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (*Booking, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Other drivers only see bookings sitting in the pool.
	if b.OriginalDriverID != actorID && b.ClaimedByDriverID != actorID && b.Status != StatusOffered {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) Views(ctx context.Context, actorID string) (Views, error) {
	if actorID == "" {
		return Views{}, ErrUnauthenticated
	}
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return Views{}, err
	}
	return Project(snap.Bookings, actorID), nil
}

func (s *service) Busy() bool {
	return s.inflight.Load() > 0
}

func (s *service) notify(ctx context.Context) {
	if len(s.listeners) == 0 {
		return
	}
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to snapshot bookings for listeners", zap.Error(err))
		return
	}
	for _, l := range s.listeners {
		l.BookingsChanged(snap)
	}
}
