package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
)

// memSessionStore mimics the Redis repository: Save and Get hand out copies,
// so state only travels through explicit saves.
type memSessionStore struct {
	sessions map[string]*entities.BookingSession
	busy     bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*entities.BookingSession{}}
}

func (m *memSessionStore) Get(_ context.Context, id string) (*entities.BookingSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) Save(_ context.Context, s *entities.BookingSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *memSessionStore) AcquireLock(_ context.Context, _ string) (bool, error) {
	return !m.busy, nil
}

func (m *memSessionStore) ReleaseLock(_ context.Context, _ string) {}

// scriptedSlotProvider returns one canned response per call and can run a hook
// mid-fetch to stand in for a concurrent writer.
type scriptedSlotProvider struct {
	responses []*entities.AvailabilityResponse
	calls     int
	during    func()
}

func (p *scriptedSlotProvider) CheckAvailability(_ int, _ string, _ int) (*entities.AvailabilityResponse, error) {
	idx := p.calls
	p.calls++
	if p.during != nil {
		p.during()
	}
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx], nil
}

type scriptedBookingCreator struct {
	createCalls int
	createErr   error
	lookups     int
	response    *entities.ReservationResponse
}

func (c *scriptedBookingCreator) Create(_ *entities.BookingDraft) (*entities.ReservationResponse, error) {
	c.createCalls++
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.response, nil
}

func (c *scriptedBookingCreator) GetByCode(_, _ string) (*entities.ReservationResponse, error) {
	c.lookups++
	return c.response, nil
}

type staticRestaurantGetter struct {
	rt  *db.Restaurant
	err error
}

func (g *staticRestaurantGetter) GetByID(_ int) (*db.Restaurant, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.rt, nil
}

type wizardFixture struct {
	svc      *WizardService
	store    *memSessionStore
	slots    *scriptedSlotProvider
	bookings *scriptedBookingCreator
}

func newWizardFixture(responses ...*entities.AvailabilityResponse) *wizardFixture {
	store := newMemSessionStore()
	slots := &scriptedSlotProvider{responses: responses}
	bookings := &scriptedBookingCreator{
		response: &entities.ReservationResponse{ID: 41, Code: "9F2C41AB", Status: db.StatusPending},
	}
	return &wizardFixture{
		svc:      NewWizardService(store, slots, bookings, &staticRestaurantGetter{rt: testRestaurant()}),
		store:    store,
		slots:    slots,
		bookings: bookings,
	}
}

func openGrid(times ...string) *entities.AvailabilityResponse {
	resp := &entities.AvailabilityResponse{FetchedAt: time.Now().UTC()}
	for _, tm := range times {
		resp.Slots = append(resp.Slots, entities.AvailabilitySlot{Time: tm, Available: true, SeatsAvailable: 1})
	}
	return resp
}

func fullGrid(times ...string) *entities.AvailabilityResponse {
	resp := &entities.AvailabilityResponse{Message: "No tables available on this date for your party size. Try another date or a smaller party."}
	for _, tm := range times {
		resp.Slots = append(resp.Slots, entities.AvailabilitySlot{Time: tm})
	}
	return resp
}

func bookingDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func validGuest() entities.GuestContact {
	return entities.GuestContact{
		FirstName: "Maya",
		LastName:  "Rossi",
		Email:     "maya.rossi@example.com",
		Phone:     "+15550100123",
	}
}

func advanceToGuestDetails(t *testing.T, fx *wizardFixture) string {
	t.Helper()
	ctx := context.Background()
	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := fx.svc.SetDateParty(ctx, session.ID, bookingDate(), 2); err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}
	if _, err := fx.svc.SetTime(ctx, session.ID, "19:30"); err != nil {
		t.Fatalf("SetTime failed: %v", err)
	}
	if _, err := fx.svc.SetGuestDetails(ctx, session.ID, validGuest(), "birthday", "window seat please", []string{"vegetarian"}, true); err != nil {
		t.Fatalf("SetGuestDetails failed: %v", err)
	}
	return session.ID
}

func TestWizard_HappyPath(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("18:00", "19:30"))

	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.State != entities.StateDateParty {
		t.Fatalf("expected state %s, got %s", entities.StateDateParty, session.State)
	}

	session, err = fx.svc.SetDateParty(ctx, session.ID, bookingDate(), 2)
	if err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}
	if session.State != entities.StateTimeSelection {
		t.Fatalf("expected state %s, got %s", entities.StateTimeSelection, session.State)
	}
	if !session.SlotsCurrent() {
		t.Fatalf("expected a current slot snapshot, fetch %d slots %d", session.FetchSeq, session.SlotsSeq)
	}

	session, err = fx.svc.SetTime(ctx, session.ID, "19:30")
	if err != nil {
		t.Fatalf("SetTime failed: %v", err)
	}
	if session.State != entities.StateGuestDetails || session.Time != "19:30" {
		t.Fatalf("expected guest details step with time 19:30, got %s %q", session.State, session.Time)
	}

	if _, err := fx.svc.SetGuestDetails(ctx, session.ID, validGuest(), "birthday", "", nil, true); err != nil {
		t.Fatalf("SetGuestDetails failed: %v", err)
	}

	session, reservation, err := fx.svc.Submit(ctx, session.ID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if session.State != entities.StateConfirmed {
		t.Fatalf("expected state %s, got %s", entities.StateConfirmed, session.State)
	}
	if reservation == nil || reservation.Code != "9F2C41AB" {
		t.Fatalf("expected confirmation code 9F2C41AB, got %+v", reservation)
	}
	if session.ConfirmationCode != "9F2C41AB" || session.ReservationID != 41 {
		t.Fatalf("expected the session to carry the reservation, got %+v", session)
	}
}

func TestWizard_ResubmitReturnsExistingReservation(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	id := advanceToGuestDetails(t, fx)

	if _, _, err := fx.svc.Submit(ctx, id); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	session, reservation, err := fx.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if fx.bookings.createCalls != 1 {
		t.Fatalf("expected one reservation created, got %d", fx.bookings.createCalls)
	}
	if fx.bookings.lookups != 1 {
		t.Fatalf("expected the resubmit to look up the existing reservation, got %d lookups", fx.bookings.lookups)
	}
	if session.State != entities.StateConfirmed || reservation.Code != "9F2C41AB" {
		t.Fatalf("expected the original confirmation back, got %s %+v", session.State, reservation)
	}
}

func TestWizard_NoAvailabilityStaysOnDateStep(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(fullGrid("18:00", "19:30"))

	start, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	session, err := fx.svc.SetDateParty(ctx, start.ID, bookingDate(), 2)
	if err == nil {
		t.Fatal("expected a conflict when nothing is bookable")
	}
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindConflict {
		t.Fatalf("expected a conflict, got %v", err)
	}
	if session == nil || session.State != entities.StateDateParty {
		t.Fatalf("expected the session back on %s, got %+v", entities.StateDateParty, session)
	}
	if !session.SlotsCurrent() {
		t.Fatal("expected the unavailable grid to still be recorded as current")
	}
}

func TestWizard_TimeBeforeDateRejected(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))

	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := fx.svc.SetTime(ctx, session.ID, "19:30"); err == nil {
		t.Fatal("expected SetTime to fail before a date is chosen")
	}
	if _, _, err := fx.svc.Submit(ctx, session.ID); err == nil {
		t.Fatal("expected Submit to fail before guest details")
	}
}

func TestWizard_RejectsTimesOutsideSnapshot(t *testing.T) {
	ctx := context.Background()
	grid := openGrid("18:00", "19:30")
	grid.Slots[0].Available = false
	grid.Slots[0].SeatsAvailable = 0
	fx := newWizardFixture(grid)

	start, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := fx.svc.SetDateParty(ctx, start.ID, bookingDate(), 2); err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}

	if _, err := fx.svc.SetTime(ctx, start.ID, "21:15"); err == nil {
		t.Fatal("expected an error for a time not on the grid")
	}
	_, err = fx.svc.SetTime(ctx, start.ID, "18:00")
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindConflict {
		t.Fatalf("expected a conflict for a full slot, got %v", err)
	}
}

func TestWizard_RejectsIncompleteGuestDetails(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))

	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := fx.svc.SetDateParty(ctx, session.ID, bookingDate(), 2); err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}
	if _, err := fx.svc.SetTime(ctx, session.ID, "19:30"); err != nil {
		t.Fatalf("SetTime failed: %v", err)
	}

	guest := validGuest()
	guest.Phone = ""
	_, err = fx.svc.SetGuestDetails(ctx, session.ID, guest, "", "", nil, true)
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindValidation {
		t.Fatalf("expected a validation error for a blank phone, got %v", err)
	}

	got, err := fx.svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.State != entities.StateGuestDetails {
		t.Fatalf("expected the session to stay on %s, got %s", entities.StateGuestDetails, got.State)
	}
	if got.Guest.FirstName != "" {
		t.Fatalf("expected the rejected details not stored, got %+v", got.Guest)
	}
}

func TestWizard_ChangingDateClearsSelectedTime(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	id := advanceToGuestDetails(t, fx)

	session, err := fx.svc.SetDateParty(ctx, id, bookingDate(), 4)
	if err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}
	if session.Time != "" {
		t.Fatalf("expected the selected time cleared, got %q", session.Time)
	}
	if session.State != entities.StateTimeSelection {
		t.Fatalf("expected state %s, got %s", entities.StateTimeSelection, session.State)
	}
	if session.PartySize != 4 {
		t.Fatalf("expected party size 4, got %d", session.PartySize)
	}
	if session.Guest.Email != "maya.rossi@example.com" {
		t.Fatalf("expected entered guest details kept, got %+v", session.Guest)
	}
}

func TestWizard_SubmitConflictReturnsToTimeSelection(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30", "20:00"), openGrid("20:00"))
	id := advanceToGuestDetails(t, fx)
	fx.bookings.createErr = apperrors.Conflict("that time was just booked by someone else, pick another slot")

	session, reservation, err := fx.svc.Submit(ctx, id)
	if err == nil {
		t.Fatal("expected the submit conflict to surface")
	}
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindConflict {
		t.Fatalf("expected a conflict, got %v", err)
	}
	if reservation != nil {
		t.Fatalf("expected no reservation, got %+v", reservation)
	}
	if session.State != entities.StateTimeSelection {
		t.Fatalf("expected state %s, got %s", entities.StateTimeSelection, session.State)
	}
	if session.Time != "" {
		t.Fatalf("expected the lost time cleared, got %q", session.Time)
	}
	if !session.SlotsCurrent() {
		t.Fatal("expected a fresh slot snapshot after the conflict")
	}
	if fx.slots.calls != 2 {
		t.Fatalf("expected a second availability fetch, got %d", fx.slots.calls)
	}
	if session.Guest.Email != "maya.rossi@example.com" {
		t.Fatalf("expected guest details kept for the retry, got %+v", session.Guest)
	}
}

func TestWizard_SubmitConflictFallsBackToDateStepWhenNothingLeft(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"), fullGrid("19:30"))
	id := advanceToGuestDetails(t, fx)
	fx.bookings.createErr = apperrors.Conflict("that time was just booked by someone else, pick another slot")

	session, _, err := fx.svc.Submit(ctx, id)
	if err == nil {
		t.Fatal("expected the submit conflict to surface")
	}
	if session.State != entities.StateDateParty {
		t.Fatalf("expected state %s when the refreshed grid is full, got %s", entities.StateDateParty, session.State)
	}
}

func TestWizard_PreviousWalksBackWithoutLosingData(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	id := advanceToGuestDetails(t, fx)

	session, err := fx.svc.Previous(ctx, id)
	if err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	if session.State != entities.StateTimeSelection {
		t.Fatalf("expected state %s, got %s", entities.StateTimeSelection, session.State)
	}
	if session.Time != "19:30" || session.Guest.FirstName != "Maya" {
		t.Fatalf("expected entered data kept, got time %q guest %+v", session.Time, session.Guest)
	}

	// Forward again: the guest details entered before stepping back are still there.
	session, err = fx.svc.SetTime(ctx, id, "19:30")
	if err != nil {
		t.Fatalf("SetTime after Previous failed: %v", err)
	}
	if session.State != entities.StateGuestDetails || session.Guest.Email != "maya.rossi@example.com" {
		t.Fatalf("expected guest details intact after going forward, got %s %+v", session.State, session.Guest)
	}

	if _, err := fx.svc.Previous(ctx, id); err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	session, err = fx.svc.Previous(ctx, id)
	if err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	if session.State != entities.StateDateParty {
		t.Fatalf("expected state %s, got %s", entities.StateDateParty, session.State)
	}

	if _, err := fx.svc.Previous(ctx, id); err == nil {
		t.Fatal("expected an error at the first step")
	}
}

func TestWizard_LockedSessionReportsBusy(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	fx.store.busy = true
	_, err = fx.svc.SetDateParty(ctx, session.ID, bookingDate(), 2)
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindConflict {
		t.Fatalf("expected a busy conflict, got %v", err)
	}
}

func TestWizard_StaleFetchDiscarded(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	// A newer generation starts while the availability query is in flight.
	fx.slots.during = func() {
		fx.store.sessions[session.ID].FetchSeq++
	}

	got, err := fx.svc.SetDateParty(ctx, session.ID, bookingDate(), 2)
	if err != nil {
		t.Fatalf("SetDateParty failed: %v", err)
	}
	if len(got.Slots) != 0 || got.SlotsSeq != 0 {
		t.Fatalf("expected the superseded fetch discarded, got %d slots seq %d", len(got.Slots), got.SlotsSeq)
	}
	if got.State != entities.StateDateParty {
		t.Fatalf("expected state %s, got %s", entities.StateDateParty, got.State)
	}
	if got.SlotsCurrent() {
		t.Fatal("expected the snapshot to read as stale")
	}
}

func TestWizard_StartSessionUnknownRestaurant(t *testing.T) {
	ctx := context.Background()
	svc := NewWizardService(newMemSessionStore(), &scriptedSlotProvider{}, &scriptedBookingCreator{}, &staticRestaurantGetter{err: sql.ErrNoRows})

	_, err := svc.StartSession(ctx, 99)
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWizard_AbandonDeletesSession(t *testing.T) {
	ctx := context.Background()
	fx := newWizardFixture(openGrid("19:30"))
	session, err := fx.svc.StartSession(ctx, 1)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if err := fx.svc.Abandon(ctx, session.ID); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	_, err = fx.svc.GetSession(ctx, session.ID)
	var httpErr *apperrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != apperrors.KindNotFound {
		t.Fatalf("expected not found after abandon, got %v", err)
	}
}
