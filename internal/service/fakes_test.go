package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
	"github.com/aeroway/aeroway-api/internal/sse"
)

// txStore is an in-memory store that can roll back to a snapshot.
type txStore interface {
	snapshot() (restore func())
}

// fakeTx runs fn directly and restores its stores when fn fails, as a
// rollback would.
type fakeTx struct {
	calls  int
	stores []txStore
}

func (f *fakeTx) WithTx(ctx context.Context, fn database.TxFunc) error {
	f.calls++
	restores := make([]func(), 0, len(f.stores))
	for _, st := range f.stores {
		restores = append(restores, st.snapshot())
	}
	if err := fn(nil); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	findErr error
	locked  []string
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	r.locked = append(r.locked, id)
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByTicketNumber(ctx context.Context, ticket string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TicketNumber != nil && *u.TicketNumber == ticket {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == params.Email {
			return nil, uniqueViolation("users")
		}
	}
	u := &model.User{
		ID:           fmt.Sprintf("user-%d", len(r.users)+1),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Nom:          params.Nom,
		Prenom:       params.Prenom,
		Telephone:    params.Telephone,
		Role:         params.Role,
		TicketNumber: params.TicketNumber,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetTicketNumber(ctx context.Context, id, ticket string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.TicketNumber = &ticket
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) WithTx(tx *sqlx.Tx) repository.UserRepository {
	return r
}

func (r *fakeUserRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make(map[string]*model.User, len(r.users))
	for id, u := range r.users {
		cp := *u
		users[id] = &cp
	}
	locked := append([]string(nil), r.locked...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users = users
		r.locked = locked
	}
}

type fakeFlightRepo struct {
	flights   []model.Flight
	ticketErr error
	created   []model.CreateFlightParams
	updates   map[string]model.UpdateFlightParams
	createErr error
	lastList  model.FlightFilter
	lastArr   model.ArrivalSearch

	// pool is set on copies returned by WithTx.
	pool        *fakeFlightRepo
	poolLookups int
	txLookups   int
}

func (r *fakeFlightRepo) FindByNumber(ctx context.Context, number string) (*model.Flight, error) {
	for i := range r.flights {
		if r.flights[i].FlightNumber == number {
			f := r.flights[i]
			return &f, nil
		}
	}
	return nil, nil
}

func (r *fakeFlightRepo) FindByTicket(ctx context.Context, ticket string) (*model.Flight, error) {
	if r.pool != nil {
		r.pool.txLookups++
	} else {
		r.poolLookups++
	}
	if r.ticketErr != nil {
		return nil, r.ticketErr
	}
	for i := range r.flights {
		if containsFold(r.flights[i].FlightNumber, ticket) {
			f := r.flights[i]
			return &f, nil
		}
	}
	return nil, nil
}

func (r *fakeFlightRepo) List(ctx context.Context, filter model.FlightFilter) ([]model.Flight, error) {
	r.lastList = filter
	return r.flights, nil
}

func (r *fakeFlightRepo) SearchArrivals(ctx context.Context, search model.ArrivalSearch) ([]model.Flight, error) {
	r.lastArr = search
	return r.flights, nil
}

func (r *fakeFlightRepo) Create(ctx context.Context, params model.CreateFlightParams) (*model.Flight, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = append(r.created, params)
	f := model.Flight{ID: "f-new", FlightNumber: params.FlightNumber, Airline: params.Airline, Status: params.Status}
	r.flights = append(r.flights, f)
	return &f, nil
}

func (r *fakeFlightRepo) Update(ctx context.Context, number string, params model.UpdateFlightParams) (*model.Flight, error) {
	if r.updates == nil {
		r.updates = make(map[string]model.UpdateFlightParams)
	}
	r.updates[number] = params
	return r.FindByNumber(ctx, number)
}

func (r *fakeFlightRepo) WithTx(tx *sqlx.Tx) repository.FlightRepository {
	return &fakeFlightRepo{flights: r.flights, ticketErr: r.ticketErr, pool: r}
}

// fakeSessionRepo is an in-memory meet_greet table with a unique index on
// tracking_code.
type fakeSessionRepo struct {
	mu   sync.Mutex
	rows []*model.TrackingSession

	// raceCodes are reported free by CodeExists but rejected by Create, as if
	// another request inserted them in between.
	raceCodes map[string]bool
	creates   int
	updateErr error
}

func (r *fakeSessionRepo) find(code string) *model.TrackingSession {
	for _, s := range r.rows {
		if s.TrackingCode == code {
			return s
		}
	}
	return nil
}

func (r *fakeSessionRepo) FindByCode(ctx context.Context, code string) (*model.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.find(code); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindActiveByPassenger(ctx context.Context, passengerID string) (*model.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *model.TrackingSession
	for _, s := range r.rows {
		if s.PassengerID == passengerID && s.Status == model.TrackingStatusActive {
			if newest == nil || s.CreatedAt.After(newest.CreatedAt) {
				newest = s
			}
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (r *fakeSessionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(code) != nil, nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, params model.CreateTrackingSessionParams) (*model.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.raceCodes[params.TrackingCode] || r.find(params.TrackingCode) != nil {
		return nil, uniqueViolation("meet_greet")
	}
	s := &model.TrackingSession{
		ID:              fmt.Sprintf("mg-%d", len(r.rows)+1),
		TrackingCode:    params.TrackingCode,
		PassengerID:     params.PassengerID,
		PassengerName:   params.PassengerName,
		FlightID:        params.FlightID,
		CurrentLocation: params.CurrentLocation,
		Status:          model.TrackingStatusActive,
		CreatedAt:       params.CreatedAt,
		ExpiresAt:       params.ExpiresAt,
		LastUpdated:     params.CreatedAt,
	}
	r.rows = append(r.rows, s)
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, code string, patch model.TrackingPatch, now time.Time) (*model.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	s := r.find(code)
	if s == nil {
		return nil, nil
	}
	if patch.CurrentLocation != nil {
		loc := *patch.CurrentLocation
		s.CurrentLocation = &loc
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	s.LastUpdated = now
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) MarkExpired(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.ID == id {
			s.Status = model.TrackingStatusExpired
			s.LastUpdated = now
		}
	}
	return nil
}

func (r *fakeSessionRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.rows {
		if s.Status == model.TrackingStatusActive && now.After(s.ExpiresAt) {
			s.Status = model.TrackingStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) WithTx(tx *sqlx.Tx) repository.TrackingSessionRepository {
	return r
}

func (r *fakeSessionRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]*model.TrackingSession, len(r.rows))
	for i, s := range r.rows {
		cp := *s
		rows[i] = &cp
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = rows
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
	codes  []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, code string, event sse.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes = append(p.codes, code)
	p.events = append(p.events, event)
	return p.err
}

func uniqueViolation(table string) error {
	return &database.OpError{Op: "insert", Table: table, Err: &pq.Error{Code: "23505"}}
}

func containsFold(s, sub string) bool {
	return sub != "" && strings.Contains(strings.ToUpper(s), strings.ToUpper(sub))
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	rows      []model.ChatMessage
	createErr error

	lastScope *string
	lastLimit int
	deleted   [][2]string
}

func (r *fakeMessageRepo) Create(ctx context.Context, params model.CreateChatMessageParams) (*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	m := model.ChatMessage{
		ID:          fmt.Sprintf("msg-%d", len(r.rows)+1),
		UserID:      params.UserID,
		SessionID:   params.SessionID,
		Sender:      params.Sender,
		MessageText: params.MessageText,
		Timestamp:   time.Now(),
	}
	r.rows = append(r.rows, m)
	return &m, nil
}

func (r *fakeMessageRepo) FindBySession(ctx context.Context, sessionID string, userID *string, limit int) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastScope = userID
	r.lastLimit = limit
	out := []model.ChatMessage{}
	for _, m := range r.rows {
		if m.SessionID != sessionID {
			continue
		}
		if userID != nil && (m.UserID == nil || *m.UserID != *userID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMessageRepo) FindByUser(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := []model.ChatMessage{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if m := r.rows[i]; m.UserID != nil && *m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteSession(ctx context.Context, sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, [2]string{sessionID, userID})
	kept := r.rows[:0]
	for _, m := range r.rows {
		if m.SessionID == sessionID && m.UserID != nil && *m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	r.rows = kept
	return nil
}

func (r *fakeMessageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeMessageRepo) WithTx(tx *sqlx.Tx) repository.ChatMessageRepository {
	return r
}

type fakePlaceRepo struct {
	services   []model.Service
	spaces     []model.Space
	lastFilter model.PlaceFilter
	err        error
}

func (r *fakePlaceRepo) ListServices(ctx context.Context, filter model.PlaceFilter) ([]model.Service, error) {
	r.lastFilter = filter
	return r.services, r.err
}

func (r *fakePlaceRepo) ListSpaces(ctx context.Context, filter model.PlaceFilter) ([]model.Space, error) {
	r.lastFilter = filter
	return r.spaces, r.err
}
