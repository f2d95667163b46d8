package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coverduty/backend/config"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
	pkgerrors "coverduty/backend/pkg/errors"
)

// ── 内存版 Repository 实现 ──
//
// 与数据库实现保持相同的并发语义：
//   - 唯一约束冲突返回 gorm.ErrDuplicatedKey
//   - 条件更新未命中返回 pkgerrors.ErrStateConflict
//   - 确认超容量返回 pkgerrors.ErrCapacityExceeded

// newTestService 构造挂接内存仓储的服务聚合，返回仓储供测试预置数据
func newTestService() (*Service, *repository.Repository) {
	cfg := &config.Config{}
	repo := newMockRepository()
	logger := zap.NewNop()

	notification := NewNotificationService(repo, logger)
	svc := &Service{
		Shift:        NewShiftService(cfg, repo, notification, logger),
		Signup:       NewSignupService(cfg, repo, notification, logger),
		Assignment:   NewAssignmentService(repo, logger),
		Substitute:   NewSubstituteService(repo, notification, logger),
		Notification: notification,
		SystemConfig: NewSystemConfigService(repo, logger),
	}
	return svc, repo
}

func newMockRepository() *repository.Repository {
	signups := &mockShiftSignupRepo{data: map[string]*model.ShiftSignup{}}
	shifts := &mockOpenShiftRepo{data: map[string]*model.OpenShift{}, signups: signups}
	signups.shifts = shifts
	return &repository.Repository{
		User:              &mockUserRepo{data: map[string]*model.User{}},
		Department:        &mockDepartmentRepo{data: map[string]*model.Department{}},
		Location:          &mockLocationRepo{data: map[string]*model.Location{}},
		OpenShift:         shifts,
		ShiftSignup:       signups,
		Assignment:        &mockAssignmentRepo{data: map[string]*model.SessionAssignment{}},
		SubstituteRequest: &mockSubstituteRequestRepo{data: map[string]*model.SubstituteRequest{}},
		Notification:      &mockNotificationRepo{prefs: map[string]*model.NotificationPreference{}},
		SystemConfig:      &mockSystemConfigRepo{cfg: &model.SystemConfig{BroadcastEnabled: true}},
	}
}

var idSeq struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	idSeq.Lock()
	defer idSeq.Unlock()
	idSeq.n++
	return fmt.Sprintf("%s-%04d", prefix, idSeq.n)
}

// ────────────────────── User ──────────────────────

type mockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User
}

func (r *mockUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.EmployeeNo == user.EmployeeNo || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	r.data[user.UserID] = user
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) GetByEmployeeNo(_ context.Context, employeeNo string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.EmployeeNo == employeeNo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.data[user.UserID] = &cp
	return nil
}

func (r *mockUserRepo) List(_ context.Context, departmentID, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.User
	for _, u := range r.data {
		if departmentID != "" && u.DepartmentID != departmentID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (r *mockUserRepo) ListInstructorsByDepartment(_ context.Context, departmentID string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.User
	for _, u := range r.data {
		if u.DepartmentID == departmentID && u.Role == model.RoleInstructor {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ────────────────────── Department ──────────────────────

type mockDepartmentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Department
}

func (r *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dept.DepartmentID == "" {
		dept.DepartmentID = nextID("dept")
	}
	r.data[dept.DepartmentID] = dept
	return nil
}

func (r *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.data {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockDepartmentRepo) List(_ context.Context, includeInactive bool) ([]model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Department
	for _, d := range r.data {
		result = append(result, *d)
	}
	return result, nil
}

func (r *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[dept.DepartmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *dept
	r.data[dept.DepartmentID] = &cp
	return nil
}

func (r *mockDepartmentRepo) Delete(_ context.Context, id string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *mockDepartmentRepo) CountMembers(_ context.Context, departmentID string) (int64, error) {
	return 0, nil
}

// ────────────────────── Location ──────────────────────

type mockLocationRepo struct {
	mu   sync.Mutex
	data map[string]*model.Location
}

func (r *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc.LocationID == "" {
		loc.LocationID = nextID("loc")
	}
	r.data[loc.LocationID] = loc
	return nil
}

func (r *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *mockLocationRepo) List(_ context.Context, includeInactive bool) ([]model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Location
	for _, l := range r.data {
		result = append(result, *l)
	}
	return result, nil
}

func (r *mockLocationRepo) Update(_ context.Context, loc *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[loc.LocationID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *loc
	r.data[loc.LocationID] = &cp
	return nil
}

func (r *mockLocationRepo) Delete(_ context.Context, id string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.data, id)
	return nil
}

// ────────────────────── OpenShift ──────────────────────

type mockOpenShiftRepo struct {
	mu      sync.Mutex
	data    map[string]*model.OpenShift
	signups *mockShiftSignupRepo
}

func (r *mockOpenShiftRepo) Create(_ context.Context, shift *model.OpenShift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shift.ShiftID == "" {
		shift.ShiftID = nextID("shift")
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	cp := *shift
	r.data[shift.ShiftID] = &cp
	return nil
}

func (r *mockOpenShiftRepo) GetByID(_ context.Context, id string) (*model.OpenShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *mockOpenShiftRepo) List(_ context.Context, filter repository.OpenShiftFilter) ([]model.OpenShift, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.OpenShift
	for _, s := range r.data {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if !filter.IncludeCancelled && s.IsCancelled {
			continue
		}
		if filter.DateFrom != nil && s.ShiftDate.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && s.ShiftDate.After(*filter.DateTo) {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

// Update 模拟乐观锁：版本不一致返回 ErrOptimisticLock
func (r *mockOpenShiftRepo) Update(_ context.Context, shift *model.OpenShift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[shift.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *shift
	cp.Version++
	r.data[shift.ShiftID] = &cp
	shift.Version = cp.Version
	return nil
}

// Cancel 条件更新：已取消的班次返回 ErrStateConflict
func (r *mockOpenShiftRepo) Cancel(_ context.Context, id string, cancelledBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if s.IsCancelled {
		return pkgerrors.ErrStateConflict
	}
	now := time.Now()
	s.IsCancelled = true
	s.CancelledAt = &now
	s.UpdatedBy = &cancelledBy
	return nil
}

func (r *mockOpenShiftRepo) Delete(_ context.Context, id string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *mockOpenShiftRepo) CountSignups(ctx context.Context, shiftID string) (int64, error) {
	r.signups.mu.Lock()
	defer r.signups.mu.Unlock()
	var count int64
	for _, s := range r.signups.data {
		if s.ShiftID == shiftID {
			count++
		}
	}
	return count, nil
}

// ────────────────────── ShiftSignup ──────────────────────

type mockShiftSignupRepo struct {
	mu     sync.Mutex
	data   map[string]*model.ShiftSignup
	shifts *mockOpenShiftRepo
}

// attachShift 模拟 Preload("Shift")
func (r *mockShiftSignupRepo) attachShift(signup *model.ShiftSignup) {
	if r.shifts == nil {
		return
	}
	r.shifts.mu.Lock()
	defer r.shifts.mu.Unlock()
	if shift, ok := r.shifts.data[signup.ShiftID]; ok {
		cp := *shift
		signup.Shift = &cp
	}
}

func (r *mockShiftSignupRepo) Create(_ context.Context, signup *model.ShiftSignup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.data {
		if s.ShiftID == signup.ShiftID && s.InstructorID == signup.InstructorID {
			return gorm.ErrDuplicatedKey
		}
	}
	if signup.SignupID == "" {
		signup.SignupID = nextID("signup")
	}
	if signup.Version == 0 {
		signup.Version = 1
	}
	cp := *signup
	r.data[signup.SignupID] = &cp
	return nil
}

func (r *mockShiftSignupRepo) GetByID(_ context.Context, id string) (*model.ShiftSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	r.attachShift(&cp)
	return &cp, nil
}

func (r *mockShiftSignupRepo) GetByShiftAndInstructor(_ context.Context, shiftID, instructorID string) (*model.ShiftSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.data {
		if s.ShiftID == shiftID && s.InstructorID == instructorID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockShiftSignupRepo) ListByShift(_ context.Context, shiftID string, status string) ([]model.ShiftSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.ShiftSignup
	for _, s := range r.data {
		if s.ShiftID != shiftID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (r *mockShiftSignupRepo) ListByInstructor(_ context.Context, instructorID string, status string, offset, limit int) ([]model.ShiftSignup, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.ShiftSignup
	for _, s := range r.data {
		if s.InstructorID != instructorID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		cp := *s
		r.attachShift(&cp)
		result = append(result, cp)
	}
	return result, int64(len(result)), nil
}

func (r *mockShiftSignupRepo) ListActiveByShift(_ context.Context, shiftID string) ([]model.ShiftSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.ShiftSignup
	for _, s := range r.data {
		if s.ShiftID == shiftID && s.IsActive() {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *mockShiftSignupRepo) CountConfirmed(_ context.Context, shiftID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countConfirmedLocked(shiftID), nil
}

func (r *mockShiftSignupRepo) countConfirmedLocked(shiftID string) int64 {
	var count int64
	for _, s := range r.data {
		if s.ShiftID == shiftID && s.Status == model.SignupStatusConfirmed {
			count++
		}
	}
	return count
}

// Reopen 条件更新：仅 withdrawn/declined 可复位为 pending
func (r *mockShiftSignupRepo) Reopen(_ context.Context, signup *model.ShiftSignup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[signup.SignupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Status != model.SignupStatusWithdrawn && cur.Status != model.SignupStatusDeclined {
		return pkgerrors.ErrStateConflict
	}
	cur.Status = model.SignupStatusPending
	cur.StartTime = signup.StartTime
	cur.EndTime = signup.EndTime
	cur.Notes = signup.Notes
	cur.ConfirmedBy = nil
	cur.ConfirmedAt = nil
	cur.DeclineReason = ""
	cur.Version++
	return nil
}

// Withdraw 条件更新：已 withdrawn 的记录返回 ErrStateConflict
func (r *mockShiftSignupRepo) Withdraw(_ context.Context, signupID, instructorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[signupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.InstructorID != instructorID || cur.Status == model.SignupStatusWithdrawn {
		return pkgerrors.ErrStateConflict
	}
	cur.Status = model.SignupStatusWithdrawn
	cur.Version++
	return nil
}

// Confirm 复刻数据库实现的带锁语义：
// 同一把锁内重数确认人数，超容量返回 ErrCapacityExceeded，
// 非 pending 返回 ErrStateConflict。
func (r *mockShiftSignupRepo) Confirm(_ context.Context, signupID, reviewerID string, maxInstructors *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[signupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if maxInstructors != nil {
		if r.countConfirmedLocked(cur.ShiftID) >= int64(*maxInstructors) {
			return pkgerrors.ErrCapacityExceeded
		}
	}
	if cur.Status != model.SignupStatusPending {
		return pkgerrors.ErrStateConflict
	}
	now := time.Now()
	cur.Status = model.SignupStatusConfirmed
	cur.ConfirmedBy = &reviewerID
	cur.ConfirmedAt = &now
	cur.Version++
	return nil
}

// Decline 条件更新：仅 pending 可拒绝
func (r *mockShiftSignupRepo) Decline(_ context.Context, signupID, reviewerID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[signupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Status != model.SignupStatusPending {
		return pkgerrors.ErrStateConflict
	}
	cur.Status = model.SignupStatusDeclined
	cur.ConfirmedBy = &reviewerID
	cur.DeclineReason = reason
	cur.Version++
	return nil
}

// ────────────────────── Assignment ──────────────────────

type mockAssignmentRepo struct {
	mu   sync.Mutex
	data map[string]*model.SessionAssignment
}

func (r *mockAssignmentRepo) Create(_ context.Context, assignment *model.SessionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = nextID("assignment")
	}
	cp := *assignment
	r.data[assignment.AssignmentID] = &cp
	return nil
}

func (r *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.SessionAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *mockAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]model.SessionAssignment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.SessionAssignment
	for _, a := range r.data {
		if filter.DepartmentID != "" && a.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.InstructorID != "" && a.InstructorID != filter.InstructorID {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (r *mockAssignmentRepo) Update(_ context.Context, assignment *model.SessionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[assignment.AssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *assignment
	r.data[assignment.AssignmentID] = &cp
	return nil
}

func (r *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *mockAssignmentRepo) IsAssignedTo(_ context.Context, assignmentID, instructorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[assignmentID]
	if !ok {
		return false, nil
	}
	return a.InstructorID == instructorID, nil
}

// ────────────────────── SubstituteRequest ──────────────────────

type mockSubstituteRequestRepo struct {
	mu   sync.Mutex
	data map[string]*model.SubstituteRequest
}

func (r *mockSubstituteRequestRepo) Create(_ context.Context, req *model.SubstituteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 部分唯一索引语义：同一节次最多一条 pending
	for _, existing := range r.data {
		if existing.AssignmentID == req.AssignmentID && existing.Status == model.SubRequestStatusPending {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.RequestID == "" {
		req.RequestID = nextID("subreq")
	}
	if req.Version == 0 {
		req.Version = 1
	}
	cp := *req
	r.data[req.RequestID] = &cp
	return nil
}

func (r *mockSubstituteRequestRepo) GetByID(_ context.Context, id string) (*model.SubstituteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.data[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *mockSubstituteRequestRepo) ListByRequester(_ context.Context, requesterID string, status string, offset, limit int) ([]model.SubstituteRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.SubstituteRequest
	for _, req := range r.data {
		if req.RequesterID != requesterID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, *req)
	}
	return result, int64(len(result)), nil
}

func (r *mockSubstituteRequestRepo) List(_ context.Context, status string, offset, limit int) ([]model.SubstituteRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.SubstituteRequest
	for _, req := range r.data {
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, *req)
	}
	return result, int64(len(result)), nil
}

func (r *mockSubstituteRequestRepo) Approve(_ context.Context, requestID, reviewerID, notes string, coveredBy *string) error {
	return r.review(requestID, reviewerID, notes, model.SubRequestStatusApproved, coveredBy)
}

func (r *mockSubstituteRequestRepo) Deny(_ context.Context, requestID, reviewerID, notes string) error {
	return r.review(requestID, reviewerID, notes, model.SubRequestStatusDenied, nil)
}

// review 条件更新：仅 pending 可审核
func (r *mockSubstituteRequestRepo) review(requestID, reviewerID, notes, status string, coveredBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Status != model.SubRequestStatusPending {
		return pkgerrors.ErrStateConflict
	}
	now := time.Now()
	cur.Status = status
	cur.ReviewedBy = &reviewerID
	cur.ReviewedAt = &now
	cur.ReviewNotes = notes
	cur.CoveredBy = coveredBy
	cur.Version++
	return nil
}

// Cancel 条件更新：仅 pending 且本人可撤销
func (r *mockSubstituteRequestRepo) Cancel(_ context.Context, requestID, requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Status != model.SubRequestStatusPending || cur.RequesterID != requesterID {
		return pkgerrors.ErrStateConflict
	}
	cur.Status = model.SubRequestStatusCancelled
	cur.Version++
	return nil
}

// DeletePending 条件删除：仅 pending 可删除
func (r *mockSubstituteRequestRepo) DeletePending(_ context.Context, requestID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Status != model.SubRequestStatusPending {
		return pkgerrors.ErrStateConflict
	}
	delete(r.data, requestID)
	return nil
}

// ────────────────────── Notification ──────────────────────

// mockNotificationRepo 记录所有落库的通知，供测试断言收件人与类别
type mockNotificationRepo struct {
	mu      sync.Mutex
	sent    []model.Notification
	prefs   map[string]*model.NotificationPreference
	failure error // 注入写入失败
}

func (r *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	if n.NotificationID == "" {
		n.NotificationID = nextID("notify")
	}
	r.sent = append(r.sent, *n)
	return nil
}

func (r *mockNotificationRepo) CreateBatch(_ context.Context, ns []model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	for i := range ns {
		if ns[i].NotificationID == "" {
			ns[i].NotificationID = nextID("notify")
		}
		r.sent = append(r.sent, ns[i])
	}
	return nil
}

func (r *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Notification
	for _, n := range r.sent {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (r *mockNotificationRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.sent {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sent {
		if r.sent[i].NotificationID == notificationID && r.sent[i].UserID == userID {
			r.sent[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sent {
		if r.sent[i].UserID == userID {
			r.sent[i].IsRead = true
		}
	}
	return nil
}

func (r *mockNotificationRepo) GetPreference(_ context.Context, userID string) (*model.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockNotificationRepo) UpsertPreference(_ context.Context, pref *model.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pref
	r.prefs[pref.UserID] = &cp
	return nil
}

// sentTo 指定用户收到的全部通知
func (r *mockNotificationRepo) sentTo(userID string) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Notification
	for _, n := range r.sent {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// ────────────────────── SystemConfig ──────────────────────

type mockSystemConfigRepo struct {
	mu  sync.Mutex
	cfg *model.SystemConfig
}

func (r *mockSystemConfigRepo) Get(_ context.Context) (*model.SystemConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.cfg
	return &cp, nil
}

func (r *mockSystemConfigRepo) Update(_ context.Context, cfg *model.SystemConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.cfg = &cp
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
