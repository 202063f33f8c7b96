package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ---- users ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	roles *fakeRoleRepo
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}, roles: roles}
}

func (r *fakeUserRepo) copyOf(u *model.User) *model.User {
	c := *u
	c.Privileges = append([]model.Privilege(nil), u.Privileges...)
	return &c
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return r.copyOf(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.copyOf(u), nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *r.copyOf(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, f repository.UserFilter) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
outer:
	for _, u := range r.users {
		code := u.RoleCode()
		if f.RoleCode != "" && code != f.RoleCode {
			continue
		}
		for _, ex := range f.ExcludeRoles {
			if code == ex {
				continue outer
			}
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if f.Search != "" {
			hay := strings.ToLower(u.FirstName + " " + u.MiddleName + " " + u.LastName + " " + u.Email)
			if !strings.Contains(hay, strings.ToLower(f.Search)) {
				continue
			}
		}
		out = append(out, *r.copyOf(u))
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Version == 0 {
		user.Version = 1
	}
	if user.RoleID != nil && user.Role == nil {
		user.Role = r.roles.byID(*user.RoleID)
	}
	r.users[user.ID] = r.copyOf(user)
	return nil
}

func (r *fakeUserRepo) CreateConfirmed(ctx context.Context, user *model.User, confirm func() error) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := confirm(); err != nil {
		return err
	}
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, id uuid.UUID, version int, changes map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Version != version {
		return repository.ErrStaleVersion
	}
	for k, v := range changes {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "middle_name":
			u.MiddleName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "email":
			u.Email = v.(string)
		case "designation":
			u.Designation = v.(string)
		case "laboratory_id":
			u.LaboratoryID = v.(uuid.UUID)
		case "status":
			u.Status = v.(model.UserStatus)
		case "password":
			u.Password = v.(string)
		case "token_version":
			u.TokenVersion = v.(string)
		case "role_id":
			id := v.(uint)
			u.RoleID = &id
			u.Role = r.roles.byID(id)
		case "updated_by":
			u.UpdatedBy = v.(string)
		}
	}
	u.Version++
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.UserStatus, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	u.UpdatedBy = updatedBy
	u.Version++
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed, tokenVersion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Password = hashed
	u.TokenVersion = tokenVersion
	return nil
}

func (r *fakeUserRepo) UpdatePrivileges(_ context.Context, id uuid.UUID, privileges []model.Privilege) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Privileges = append([]model.Privilege(nil), privileges...)
	return nil
}

func (r *fakeUserRepo) UpdateSession(_ context.Context, id uuid.UUID, tokenVersion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.users[id].TokenVersion = tokenVersion
	r.users[id].LastSeenAt = &now
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	u.LastSeenAt = &now
	return nil
}

// ---- roles, privileges, laboratories, categories ----

type fakeRoleRepo struct {
	roles []model.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	r := &fakeRoleRepo{}
	for i, role := range model.DefaultRoles {
		role.ID = uint(i + 1)
		r.roles = append(r.roles, role)
	}
	return r
}

func (r *fakeRoleRepo) byID(id uint) *model.Role {
	for i := range r.roles {
		if r.roles[i].ID == id {
			role := r.roles[i]
			return &role
		}
	}
	return nil
}

func (r *fakeRoleRepo) FindAll(context.Context) ([]model.Role, error) { return r.roles, nil }

func (r *fakeRoleRepo) FindByID(_ context.Context, id uint) (*model.Role, error) {
	if role := r.byID(id); role != nil {
		return role, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoleRepo) FindByCode(_ context.Context, code string) (*model.Role, error) {
	for i := range r.roles {
		if r.roles[i].Code == code {
			role := r.roles[i]
			return &role, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoleRepo) ReplacePrivileges(context.Context, *model.Role, []model.Privilege) error {
	return nil
}

func (r *fakeRoleRepo) SeedDefaults(context.Context) error { return nil }

type fakePrivilegeRepo struct {
	all []model.Privilege
}

func newFakePrivilegeRepo() *fakePrivilegeRepo {
	r := &fakePrivilegeRepo{}
	for i, p := range model.DefaultPrivileges {
		p.ID = uint(i + 1)
		r.all = append(r.all, p)
	}
	return r
}

func (r *fakePrivilegeRepo) FindByCodes(_ context.Context, codes []string) ([]model.Privilege, error) {
	var out []model.Privilege
	for _, p := range r.all {
		for _, c := range codes {
			if p.Code == c {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *fakePrivilegeRepo) FindAll(context.Context) ([]model.Privilege, error) { return r.all, nil }
func (r *fakePrivilegeRepo) SeedDefaults(context.Context) error                 { return nil }

type fakeLabRepo struct {
	labs []model.Laboratory
}

func newFakeLabRepo() *fakeLabRepo {
	r := &fakeLabRepo{}
	for _, lab := range model.DefaultLaboratories {
		lab.ID = uuid.New()
		r.labs = append(r.labs, lab)
	}
	return r
}

func (r *fakeLabRepo) FindAll(context.Context) ([]model.Laboratory, error) { return r.labs, nil }

func (r *fakeLabRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Laboratory, error) {
	for i := range r.labs {
		if r.labs[i].ID == id {
			return &r.labs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLabRepo) SeedDefaults(context.Context) error { return nil }

type fakeCategoryRepo struct {
	categories []model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	r := &fakeCategoryRepo{}
	for _, c := range model.DefaultCategories {
		c.ID = uuid.New()
		r.categories = append(r.categories, c)
	}
	return r
}

func (r *fakeCategoryRepo) byName(name string) model.Category {
	for _, c := range r.categories {
		if c.ShortName == name {
			return c
		}
	}
	panic("unknown category " + name)
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *model.Category) error {
	c.ID = uuid.New()
	r.categories = append(r.categories, *c)
	return nil
}

func (r *fakeCategoryRepo) FindAll(context.Context) ([]model.Category, error) {
	return r.categories, nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	for i := range r.categories {
		if r.categories[i].ID == id {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) SeedDefaults(context.Context) error { return nil }

// ---- suppliers ----

type fakeSupplierRepo struct {
	items map[uuid.UUID]*model.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{items: map[uuid.UUID]*model.Supplier{}}
}

func (r *fakeSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	c := *s
	r.items[s.ID] = &c
	return nil
}

func (r *fakeSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeSupplierRepo) FindByLaboratory(_ context.Context, labID uuid.UUID, onlyActive bool) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.items {
		if s.LaboratoryID != labID {
			continue
		}
		if onlyActive && s.Status != model.SupplierActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSupplierRepo) UpdateFields(_ context.Context, id uuid.UUID, version int, changes map[string]interface{}) error {
	s, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.Version != version {
		return repository.ErrStaleVersion
	}
	for k, v := range changes {
		switch k {
		case "company_name":
			s.CompanyName = v.(string)
		case "status":
			s.Status = model.SupplierStatus(v.(string))
		case "email":
			s.Email = v.(string)
		}
	}
	s.Version++
	return nil
}

// ---- materials, stock, records, logs ----

type fakeInventory struct {
	mu          sync.Mutex
	materials   map[uuid.UUID]*model.Material
	categories  *fakeCategoryRepo
	logs        []model.InventoryLog
	borrows     map[uuid.UUID]*model.Borrow
	disposals   []model.Disposition
	dispenses   []model.ReagentDispense
	calibration []model.Calibration
	incidents   []model.IncidentForm
}

func newFakeInventory(categories *fakeCategoryRepo) *fakeInventory {
	return &fakeInventory{
		materials:  map[uuid.UUID]*model.Material{},
		categories: categories,
		borrows:    map[uuid.UUID]*model.Borrow{},
	}
}

func (f *fakeInventory) addMaterial(labID uuid.UUID, category string, name string, qty int) *model.Material {
	c := f.categories.byName(category)
	m := &model.Material{
		LaboratoryID:      labID,
		CategoryID:        c.ID,
		Category:          &c,
		ItemName:          name,
		Cost:              decimal.NewFromInt(2),
		QuantityAvailable: qty,
		ReorderThreshold:  1,
		Status:            model.MaterialActive,
		Version:           1,
	}
	m.ID = uuid.New()
	f.materials[m.ID] = m
	return m
}

func (f *fakeInventory) quantity(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.materials[id].QuantityAvailable
}

// MaterialRepository

func (f *fakeInventory) Create(_ context.Context, m *model.Material, audit repository.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.New()
	c := *m
	f.materials[m.ID] = &c
	f.logs = append(f.logs, model.InventoryLog{UserID: audit.UserID, MaterialID: m.ID, Quantity: m.QuantityAvailable, Balance: m.QuantityAvailable, Source: model.SourceCreate})
	return nil
}

func (f *fakeInventory) FindAll(_ context.Context, filter repository.MaterialFilter) ([]model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Material
	for _, m := range f.materials {
		if !filter.IncludeDeleted && m.Status == model.MaterialDeleted {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeInventory) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *m
	return &c, nil
}

func (f *fakeInventory) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Material
	for _, id := range ids {
		if m, ok := f.materials[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeInventory) Update(_ context.Context, id uuid.UUID, version int, changes map[string]interface{}, audit repository.Audit) (*model.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.Version != version {
		return nil, repository.ErrStaleVersion
	}
	if q, ok := changes["quantity_available"]; ok {
		delta := q.(int) - m.QuantityAvailable
		m.QuantityAvailable = q.(int)
		if delta != 0 {
			f.logs = append(f.logs, model.InventoryLog{UserID: audit.UserID, MaterialID: id, Quantity: delta, Balance: m.QuantityAvailable, Source: model.SourceEdit})
		}
	}
	if v, ok := changes["item_name"]; ok {
		m.ItemName = v.(string)
	}
	if v, ok := changes["status"]; ok {
		m.Status = model.MaterialStatus(v.(string))
	}
	m.Version++
	c := *m
	return &c, nil
}

// StockRepository

func (f *fakeInventory) Move(_ context.Context, mv repository.StockMovement) (*repository.StockResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move(mv, false)
}

func (f *fakeInventory) move(mv repository.StockMovement, allowDeleted bool) (*repository.StockResult, error) {
	m, ok := f.materials[mv.MaterialID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.Status == model.MaterialDeleted && !allowDeleted {
		return nil, model.ErrMaterialDeleted
	}
	if err := m.Adjust(mv.Delta); err != nil {
		return nil, err
	}
	var sourceID *uuid.UUID
	if mv.Record != nil {
		id := uuid.New()
		switch rec := mv.Record.(type) {
		case *model.Borrow:
			rec.ID = id
			c := *rec
			f.borrows[id] = &c
		case *model.Disposition:
			rec.ID = id
			f.disposals = append(f.disposals, *rec)
		case *model.ReagentDispense:
			rec.ID = id
			f.dispenses = append(f.dispenses, *rec)
		case *model.Calibration:
			rec.ID = id
			f.calibration = append(f.calibration, *rec)
		}
		sourceID = &id
	}
	entry := model.InventoryLog{UserID: mv.UserID, MaterialID: m.ID, Quantity: mv.Delta, Balance: m.QuantityAvailable, Source: mv.Source, SourceID: sourceID, Remarks: mv.Remarks}
	f.logs = append(f.logs, entry)
	return &repository.StockResult{Material: *m, Log: entry}, nil
}

func (f *fakeInventory) ReturnBorrow(_ context.Context, id uuid.UUID, qty int, userID uuid.UUID, remarks string) (*model.Borrow, *repository.StockResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrows[id]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	if err := b.MarkReturned(qty, time.Now()); err != nil {
		return nil, nil, err
	}
	res, err := f.move(repository.StockMovement{MaterialID: b.MaterialID, Delta: qty, UserID: userID, Source: model.SourceReturn, Remarks: remarks}, true)
	if err != nil {
		return nil, nil, err
	}
	c := *b
	return &c, res, nil
}

// fakeRecords exposes fakeInventory as a RecordRepository.
type fakeRecords struct{ *fakeInventory }

func (r fakeRecords) FindBorrows(context.Context, uuid.UUID) ([]model.Borrow, error) {
	var out []model.Borrow
	for _, b := range r.borrows {
		out = append(out, *b)
	}
	return out, nil
}

func (r fakeRecords) FindBorrowByID(_ context.Context, id uuid.UUID) (*model.Borrow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.borrows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *b
	return &c, nil
}

func (r fakeRecords) FindDispositions(context.Context, uuid.UUID) ([]model.Disposition, error) {
	return r.disposals, nil
}

func (r fakeRecords) FindCalibrations(context.Context, uuid.UUID) ([]model.Calibration, error) {
	return r.calibration, nil
}

func (r fakeRecords) FindDispenses(context.Context, uuid.UUID) ([]model.ReagentDispense, error) {
	return r.dispenses, nil
}

func (r fakeRecords) FindIncidents(context.Context, uuid.UUID) ([]model.IncidentForm, error) {
	return r.incidents, nil
}

func (r fakeRecords) CreateIncident(_ context.Context, inc *model.IncidentForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc.ID = uuid.New()
	r.incidents = append(r.incidents, *inc)
	return nil
}

// fakeLogs shadows FindAll so fakeInventory can serve as an InventoryLogRepository.
type fakeLogs struct {
	*fakeInventory
	stats    repository.DashboardStats
	gotLab   uuid.UUID
	gotStart time.Time
	gotEnd   time.Time
}

func (r *fakeLogs) FindAll(_ context.Context, filter repository.LogFilter) ([]model.InventoryLog, error) {
	var out []model.InventoryLog
	for _, l := range r.logs {
		if filter.MaterialID != uuid.Nil && l.MaterialID != filter.MaterialID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLogs) GetStockMovement(_ context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	r.gotStart, r.gotEnd = start, end
	return []repository.StockMovementData{}, nil
}

func (r *fakeLogs) GetDashboardStats(_ context.Context, labID uuid.UUID, _ time.Time) (*repository.DashboardStats, error) {
	r.gotLab = labID
	s := r.stats
	return &s, nil
}

// ---- otp, mail, events ----

type fakeOTPRepo struct {
	codes    map[string]string
	attempts map[string]int
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{codes: map[string]string{}, attempts: map[string]int{}}
}

func (r *fakeOTPRepo) Save(_ context.Context, email, code string, _ time.Duration) error {
	r.codes[strings.ToLower(email)] = code
	r.attempts[strings.ToLower(email)] = 0
	return nil
}

func (r *fakeOTPRepo) Verify(_ context.Context, email, code string, max int) error {
	key := strings.ToLower(email)
	stored, ok := r.codes[key]
	if !ok {
		return repository.ErrOTPNotFound
	}
	if stored == code {
		delete(r.codes, key)
		return nil
	}
	r.attempts[key]++
	if r.attempts[key] >= max {
		delete(r.codes, key)
		return repository.ErrOTPAttemptsReached
	}
	return repository.ErrOTPMismatch
}

func (r *fakeOTPRepo) Delete(_ context.Context, email string) error {
	delete(r.codes, strings.ToLower(email))
	return nil
}

type fakeMailer struct {
	sent map[string]string
	err  error
}

func (m *fakeMailer) SendOTP(_ context.Context, to, _, code string) error {
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = code
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *fakeNotifier) Notify(_ context.Context, ev events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// ---- fixture ----

type fixture struct {
	roles      *fakeRoleRepo
	privileges *fakePrivilegeRepo
	labs       *fakeLabRepo
	categories *fakeCategoryRepo
	users      *fakeUserRepo
	suppliers  *fakeSupplierRepo
	inventory  *fakeInventory
	logs       *fakeLogs
	otps       *fakeOTPRepo
	mailer     *fakeMailer
	notifier   *fakeNotifier
	tokens     *jwt.Manager
}

func newFixture() *fixture {
	roles := newFakeRoleRepo()
	categories := newFakeCategoryRepo()
	inv := newFakeInventory(categories)
	return &fixture{
		roles:      roles,
		privileges: newFakePrivilegeRepo(),
		labs:       newFakeLabRepo(),
		categories: categories,
		users:      newFakeUserRepo(roles),
		suppliers:  newFakeSupplierRepo(),
		inventory:  inv,
		logs:       &fakeLogs{fakeInventory: inv},
		otps:       newFakeOTPRepo(),
		mailer:     &fakeMailer{},
		notifier:   &fakeNotifier{},
		tokens:     jwt.NewManager("test-secret", time.Hour),
	}
}

func (f *fixture) lab() uuid.UUID { return f.labs.labs[0].ID }

// addUser stores an account with the given role and status and returns an Actor for it.
func (f *fixture) addUser(email, roleCode string, status model.UserStatus) (*model.User, Actor) {
	role, _ := f.roles.FindByCode(context.Background(), roleCode)
	u := &model.User{
		FirstName:    strings.Split(email, "@")[0],
		LastName:     "Tester",
		Email:        email,
		LaboratoryID: f.lab(),
		RoleID:       &role.ID,
		Role:         role,
		Status:       status,
		Privileges:   model.PrivilegesForRole(roleCode, f.privileges.all),
	}
	u.SetPassword("secret123")
	f.users.Create(context.Background(), u)
	return u, Actor{ID: u.ID, Name: u.FullName(), Email: u.Email, RoleCode: roleCode, LaboratoryID: u.LaboratoryID}
}

func (f *fixture) authService() *authService {
	return NewAuthService(AuthDeps{
		Users:      f.users,
		Roles:      f.roles,
		Privileges: f.privileges,
		Labs:       f.labs,
		OTPs:       f.otps,
		Mailer:     f.mailer,
		Tokens:     f.tokens,
		Notifier:   f.notifier,
		OTP:        OTPPolicy{TTL: 10 * time.Minute, MaxAttempts: 3},
	}).(*authService)
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.privileges, f.roles, f.labs)
}

func (f *fixture) materialService() MaterialService {
	return NewMaterialService(f.inventory, f.categories, f.suppliers, f.labs, f.inventory, f.logs, f.notifier)
}

func (f *fixture) transactionService() TransactionService {
	return NewTransactionService(f.inventory, f.users, f.inventory, fakeRecords{f.inventory}, nil, f.notifier)
}
