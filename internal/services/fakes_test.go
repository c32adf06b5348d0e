package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"nomineetracker/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every call returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeNomineeRepo is an in-memory NomineeRepository. feedback is consulted
// to attach feedback on ListByEventID.
type fakeNomineeRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Nominee
	order     []string
	nextID    int
	feedback  *fakeFeedbackRepo
	createErr error
	// failCreateAfter makes the n-th Create (1-based) fail with createErr.
	failCreateAfter int
	creates         int
	// staleUpdates makes the next n UpdateStatus calls report a lost race
	// after applying staleStatus to the stored row.
	staleUpdates int
	staleStatus  domain.NomineeStatus
}

func newFakeNomineeRepo() *fakeNomineeRepo {
	return &fakeNomineeRepo{byID: make(map[string]*domain.Nominee), nextID: 1}
}

func (f *fakeNomineeRepo) add(n *domain.Nominee) *domain.Nominee {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		n.ID = fmt.Sprintf("nm-%d", f.nextID)
		f.nextID++
	}
	cp := *n
	f.byID[n.ID] = &cp
	f.order = append(f.order, n.ID)
	return n
}

func (f *fakeNomineeRepo) Create(ctx context.Context, n *domain.Nominee) error {
	f.mu.Lock()
	f.creates++
	fail := f.createErr != nil && (f.failCreateAfter == 0 || f.creates == f.failCreateAfter)
	f.mu.Unlock()
	if fail {
		return f.createErr
	}
	f.add(n)
	return nil
}

func (f *fakeNomineeRepo) GetByID(ctx context.Context, id string) (*domain.Nominee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNomineeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Nominee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Nominee{}
	for _, id := range f.order {
		n, ok := f.byID[id]
		if !ok || n.EventID != eventID {
			continue
		}
		cp := *n
		if f.feedback != nil {
			if fb, ok := f.feedback.byNominee[id]; ok {
				fbCopy := *fb
				cp.Feedback = &fbCopy
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeNomineeRepo) UpdateStatus(ctx context.Context, id string, from, to domain.NomineeStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if f.staleUpdates > 0 {
		f.staleUpdates--
		n.Status = f.staleStatus
		return false, nil
	}
	if n.Status != from {
		return false, nil
	}
	n.Status = to
	n.UpdatedAt = at
	return true, nil
}

func (f *fakeNomineeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeNomineeRepo) CountStatusesByEvent(ctx context.Context) (map[string]map[domain.NomineeStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]map[domain.NomineeStatus]int)
	for _, n := range f.byID {
		if out[n.EventID] == nil {
			out[n.EventID] = make(map[domain.NomineeStatus]int)
		}
		out[n.EventID][n.Status]++
	}
	return out, nil
}

func (f *fakeNomineeRepo) status(id string) domain.NomineeStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

// fakeFeedbackRepo is an in-memory FeedbackRepository keyed by nominee.
type fakeFeedbackRepo struct {
	byNominee map[string]*domain.Feedback
	nominees  *fakeNomineeRepo
	createErr error
}

func newFakeFeedbackRepo(nominees *fakeNomineeRepo) *fakeFeedbackRepo {
	f := &fakeFeedbackRepo{byNominee: make(map[string]*domain.Feedback), nominees: nominees}
	nominees.feedback = f
	return f
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byNominee[fb.NomineeID]; ok {
		return domain.ErrAlreadySubmitted
	}
	fb.ID = "fb-" + fb.NomineeID
	cp := *fb
	f.byNominee[fb.NomineeID] = &cp
	return nil
}

func (f *fakeFeedbackRepo) GetByNomineeID(ctx context.Context, nomineeID string) (*domain.Feedback, error) {
	if fb, ok := f.byNominee[nomineeID]; ok {
		cp := *fb
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFeedbackRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.FeedbackEntry, error) {
	nominees, _ := f.nominees.ListByEventID(ctx, eventID)
	out := []*domain.FeedbackEntry{}
	for _, n := range nominees {
		if n.Feedback == nil {
			continue
		}
		out = append(out, &domain.FeedbackEntry{
			Feedback:          *n.Feedback,
			NomineeName:       n.Name,
			NomineeEmail:      n.Email,
			NomineeDepartment: n.Department,
		})
	}
	return out, nil
}

// fakeLinkRepo is an in-memory LinkTokenRepository.
type fakeLinkRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.LinkToken
	err     error
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{byToken: make(map[string]*domain.LinkToken)}
}

func (f *fakeLinkRepo) GetOrCreate(ctx context.Context, t *domain.LinkToken) (*domain.LinkToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byToken {
		if existing.NomineeID == t.NomineeID && existing.Purpose == t.Purpose {
			cp := *existing
			return &cp, nil
		}
	}
	cp := *t
	f.byToken[t.Token] = &cp
	return t, nil
}

func (f *fakeLinkRepo) Resolve(ctx context.Context, token string, purpose domain.LinkPurpose) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byToken[token]
	if !ok || t.Purpose != purpose {
		return "", domain.ErrNotFound
	}
	return t.NomineeID, nil
}

func (f *fakeLinkRepo) tokenFor(nomineeID string, purpose domain.LinkPurpose) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, t := range f.byToken {
		if t.NomineeID == nomineeID && t.Purpose == purpose {
			return tok
		}
	}
	return ""
}

// fakeNotifier records every hand-off.
type fakeNotifier struct {
	mu              sync.Mutex
	invitations     []*domain.InvitationEmailData
	feedback        []*domain.FeedbackRequestEmailData
	statusChanges   []*domain.StatusChangeEmailData
	invitationErrTo map[string]error // per recipient
	feedbackErr     error
}

func (f *fakeNotifier) NotifyInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.invitationErrTo[data.Email]; err != nil {
		return err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeNotifier) NotifyFeedbackRequest(ctx context.Context, data *domain.FeedbackRequestEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedback = append(f.feedback, data)
	return nil
}

func (f *fakeNotifier) NotifyStatusChange(ctx context.Context, data *domain.StatusChangeEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanges = append(f.statusChanges, data)
	return nil
}

var errBoom = errors.New("boom")

// fixture wires every service against the in-memory fakes.
type fixture struct {
	events    *fakeEventRepo
	nominees  *fakeNomineeRepo
	feedback  *fakeFeedbackRepo
	linkRepo  *fakeLinkRepo
	links     domain.LinkIssuer
	notifier  *fakeNotifier
	nomineeS  domain.NomineeService
	feedbackS domain.FeedbackService
	dispatchS domain.DispatchService
	eventS    domain.EventService
}

func newFixture() *fixture {
	fx := &fixture{
		events:   newFakeEventRepo(),
		nominees: newFakeNomineeRepo(),
		linkRepo: newFakeLinkRepo(),
		notifier: &fakeNotifier{},
	}
	fx.feedback = newFakeFeedbackRepo(fx.nominees)
	fx.links = NewLinkIssuer(fx.linkRepo, "https://api.example.com/", "https://app.example.com")
	fx.nomineeS = NewNomineeService(NomineeServiceConfig{
		EventRepo:   fx.events,
		NomineeRepo: fx.nominees,
		Links:       fx.links,
		Notifier:    fx.notifier,
		AdminEmail:  "admin@example.com",
		Logger:      testLogger,
		Timeout:     testTimeout,
	})
	fx.feedbackS = NewFeedbackService(fx.events, fx.nominees, fx.feedback, fx.links, testTimeout)
	fx.dispatchS = NewDispatchService(DispatchServiceConfig{
		EventRepo:    fx.events,
		NomineeRepo:  fx.nominees,
		FeedbackRepo: fx.feedback,
		Links:        fx.links,
		Notifier:     fx.notifier,
		Logger:       testLogger,
		Timeout:      testTimeout,
	})
	fx.eventS = NewEventService(fx.events, fx.nominees, testTimeout)
	return fx
}

func (fx *fixture) event(title string) *domain.Event {
	return fx.events.add(&domain.Event{
		Title: title, Date: "2025-06-01", Time: "09:00", Venue: "Room 1",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func (fx *fixture) nominee(eventID, name string, status domain.NomineeStatus) *domain.Nominee {
	return fx.nominees.add(&domain.Nominee{
		EventID: eventID, Name: name, Email: name + "@example.com", EmployeeID: "E-" + name,
		Department: "Engineering", Status: status,
	})
}
