package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinsys/examflow/internal/domain"
	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// These tests are intentionally DB-free: the fakes model the store contracts
// (read-your-writes, guarded status updates) in memory.

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(start time.Time) *fixedClock {
	return &fixedClock{now: start}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) NewID() uuid.UUID {
	return uuid.New()
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeExamRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*examrequest.ExamRequest

	// onGet, when set, runs after every read; tests use it to interleave a
	// concurrent writer between a service's load and its update.
	onGet func(id uuid.UUID)
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{byID: map[uuid.UUID]*examrequest.ExamRequest{}}
}

func (r *fakeExamRepo) Create(_ context.Context, req *examrequest.ExamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *fakeExamRepo) GetByID(_ context.Context, id uuid.UUID) (*examrequest.ExamRequest, error) {
	r.mu.Lock()
	stored, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, examrequest.ErrNotFound
	}
	cp := *stored
	r.mu.Unlock()

	if r.onGet != nil {
		r.onGet(id)
	}
	return &cp, nil
}

func (r *fakeExamRepo) Update(_ context.Context, req *examrequest.ExamRequest, expectedStatus examrequest.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[req.ID]
	if !ok || stored.Status != expectedStatus {
		return examrequest.ErrStatusConflict
	}
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *fakeExamRepo) List(_ context.Context, q *examrequest.ListExamRequestsQuery) (*examrequest.PagedExamRequests, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []*examrequest.ExamRequest
	for _, stored := range r.byID {
		if q.PartnerID != nil && stored.PartnerID != *q.PartnerID {
			continue
		}
		if q.Status != nil && stored.Status != *q.Status {
			continue
		}
		if q.PaymentType != nil && stored.PaymentType != *q.PaymentType {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(stored.PatientName), strings.ToLower(q.Search)) {
			continue
		}
		if q.DateFrom != nil && stored.ConsultationDate.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && stored.ConsultationDate.After(*q.DateTo) {
			continue
		}
		cp := *stored
		rows = append(rows, &cp)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return &examrequest.PagedExamRequests{
		Requests:   rows,
		TotalCount: int64(len(rows)),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

func (r *fakeExamRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return examrequest.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// setStatus manipulates the store directly, bypassing the engine, the way a
// rogue writer or out-of-band migration would.
func (r *fakeExamRepo) setStatus(id uuid.UUID, status examrequest.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.byID[id]; ok {
		stored.Status = status
	}
}

type fakeCheckupRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*checkuprequest.CheckupRequest
}

func newFakeCheckupRepo() *fakeCheckupRepo {
	return &fakeCheckupRepo{byID: map[uuid.UUID]*checkuprequest.CheckupRequest{}}
}

func (r *fakeCheckupRepo) Create(_ context.Context, req *checkuprequest.CheckupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *fakeCheckupRepo) GetByID(_ context.Context, id uuid.UUID) (*checkuprequest.CheckupRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, checkuprequest.ErrNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeCheckupRepo) Update(_ context.Context, req *checkuprequest.CheckupRequest, expectedStatus checkuprequest.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[req.ID]
	if !ok || stored.Status != expectedStatus {
		return checkuprequest.ErrStatusConflict
	}
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *fakeCheckupRepo) List(_ context.Context, q *checkuprequest.ListCheckupRequestsQuery) (*checkuprequest.PagedCheckupRequests, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []*checkuprequest.CheckupRequest
	for _, stored := range r.byID {
		if q.Status != nil && stored.Status != *q.Status {
			continue
		}
		if q.BatteryID != nil && stored.BatteryID != *q.BatteryID {
			continue
		}
		if q.UnitID != nil && (stored.UnitID == nil || *stored.UnitID != *q.UnitID) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(stored.Company), strings.ToLower(q.Search)) {
			continue
		}
		cp := *stored
		rows = append(rows, &cp)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return &checkuprequest.PagedCheckupRequests{
		Requests:   rows,
		TotalCount: int64(len(rows)),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

func (r *fakeCheckupRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return checkuprequest.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeCheckupRepo) setStatus(id uuid.UUID, status checkuprequest.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.byID[id]; ok {
		stored.Status = status
	}
}

type fakeCatalogRepo struct {
	partners   map[uuid.UUID]bool
	doctors    map[uuid.UUID]bool
	insurances map[uuid.UUID]bool
	units      map[uuid.UUID]bool
	batteries  map[uuid.UUID]*catalog.Battery
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		partners:   map[uuid.UUID]bool{},
		doctors:    map[uuid.UUID]bool{},
		insurances: map[uuid.UUID]bool{},
		units:      map[uuid.UUID]bool{},
		batteries:  map[uuid.UUID]*catalog.Battery{},
	}
}

func (r *fakeCatalogRepo) PartnerExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.partners[id], nil
}

func (r *fakeCatalogRepo) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.doctors[id], nil
}

func (r *fakeCatalogRepo) InsuranceExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.insurances[id], nil
}

func (r *fakeCatalogRepo) UnitExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.units[id], nil
}

func (r *fakeCatalogRepo) GetBattery(_ context.Context, id uuid.UUID) (*catalog.Battery, error) {
	battery, ok := r.batteries[id]
	if !ok {
		return nil, catalog.ErrBatteryNotFound
	}
	cp := *battery
	cp.ExamNames = append([]string(nil), battery.ExamNames...)
	return &cp, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type testEnv struct {
	examRepo    *fakeExamRepo
	checkupRepo *fakeCheckupRepo
	catalogRepo *fakeCatalogRepo
	clk         *fixedClock

	examSvc     *ExamRequestService
	checkupSvc  *CheckupRequestService
	workflowSvc *WorkflowService

	partnerID uuid.UUID
	doctorID  uuid.UUID
	unitID    uuid.UUID
	batteryID uuid.UUID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		examRepo:    newFakeExamRepo(),
		checkupRepo: newFakeCheckupRepo(),
		catalogRepo: newFakeCatalogRepo(),
		clk:         newFixedClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)),
		partnerID:   uuid.New(),
		doctorID:    uuid.New(),
		unitID:      uuid.New(),
		batteryID:   uuid.New(),
	}

	env.catalogRepo.partners[env.partnerID] = true
	env.catalogRepo.doctors[env.doctorID] = true
	env.catalogRepo.units[env.unitID] = true
	env.catalogRepo.batteries[env.batteryID] = &catalog.Battery{
		ID:        env.batteryID,
		Name:      "admissional",
		ExamNames: []string{"hemograma", "raio-x torax", "audiometria"},
	}

	log := zap.NewNop()
	auditSvc := NewAuditService(&fakeAuditRepo{}, log)
	env.examSvc = NewExamRequestService(env.examRepo, env.catalogRepo, auditSvc, env.clk, log)
	env.checkupSvc = NewCheckupRequestService(env.checkupRepo, env.catalogRepo, auditSvc, env.clk, log)
	env.workflowSvc = NewWorkflowService(env.examSvc, env.checkupSvc, nil, log)
	return env
}

func (env *testEnv) parceiro() domain.Actor {
	pid := env.partnerID
	return domain.Actor{UserID: uuid.New(), Role: domain.RoleParceiro, PartnerID: &pid}
}

func (env *testEnv) admin() domain.Actor {
	return domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
}

func (env *testEnv) recepcao() domain.Actor {
	return domain.Actor{UserID: uuid.New(), Role: domain.RoleRecepcao}
}

func (env *testEnv) checkup() domain.Actor {
	return domain.Actor{UserID: uuid.New(), Role: domain.RoleCheckup}
}
