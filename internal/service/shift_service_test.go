package service

import (
	"context"
	"errors"
	"testing"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
)

func TestShiftCreateValidation(t *testing.T) {
	svc, repo := newTestService()
	seedShift(t, repo, nil) // 预置 dept-1
	ctx := context.Background()

	tests := []struct {
		name    string
		req     dto.CreateOpenShiftRequest
		wantErr error
	}{
		{
			"日期格式错误",
			dto.CreateOpenShiftRequest{Title: "代班", ShiftDate: "2030/06/01", StartTime: "08:00", EndTime: "12:00", DepartmentID: "dept-1"},
			ErrShiftBadDate,
		},
		{
			"结束早于开始",
			dto.CreateOpenShiftRequest{Title: "代班", ShiftDate: "2030-06-01", StartTime: "12:00", EndTime: "08:00", DepartmentID: "dept-1"},
			ErrShiftBadTimeRange,
		},
		{
			"最少人数超过上限",
			dto.CreateOpenShiftRequest{Title: "代班", ShiftDate: "2030-06-01", StartTime: "08:00", EndTime: "12:00", DepartmentID: "dept-1", MinInstructors: 3, MaxInstructors: intPtr(2)},
			ErrShiftMinExceedsMax,
		},
		{
			"部门不存在",
			dto.CreateOpenShiftRequest{Title: "代班", ShiftDate: "2030-06-01", StartTime: "08:00", EndTime: "12:00", DepartmentID: "dept-missing"},
			ErrDepartmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Shift.Create(ctx, &tt.req, "admin-1", model.RoleAdmin, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

// director 只能在本部门创建班次
func TestShiftCreateDeptScope(t *testing.T) {
	svc, repo := newTestService()
	seedShift(t, repo, nil)
	ctx := context.Background()

	_, err := svc.Shift.Create(ctx, &dto.CreateOpenShiftRequest{
		Title: "代班", ShiftDate: "2030-06-01", StartTime: "08:00", EndTime: "12:00",
		DepartmentID: "dept-1",
	}, "dir-2", model.RoleDirector, "dept-other")
	if !errors.Is(err, ErrShiftDeptMismatch) {
		t.Errorf("跨部门创建应返回 ErrShiftDeptMismatch，实际 %v", err)
	}
}

// 取消班次：返回受影响讲师并通知活跃报名
func TestShiftCancelNotifiesActiveSignups(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, nil)
	ctx := context.Background()

	if _, err := svc.Signup.Create(ctx, shift.ShiftID, &dto.CreateSignupRequest{}, "inst-a"); err != nil {
		t.Fatalf("A 报名失败: %v", err)
	}
	signupB, err := svc.Signup.Create(ctx, shift.ShiftID, &dto.CreateSignupRequest{}, "inst-b")
	if err != nil {
		t.Fatalf("B 报名失败: %v", err)
	}
	// B 先撤回，不应出现在受影响名单中
	if err := svc.Signup.Withdraw(ctx, signupB.ID, "inst-b"); err != nil {
		t.Fatalf("B 撤回失败: %v", err)
	}

	result, err := svc.Shift.Cancel(ctx, shift.ShiftID, "admin-1", model.RoleAdmin, "")
	if err != nil {
		t.Fatalf("取消班次失败: %v", err)
	}
	if !result.IsCancelled {
		t.Error("取消响应应标记 is_cancelled")
	}
	if len(result.AffectedInstructors) != 1 || result.AffectedInstructors[0] != "inst-a" {
		t.Errorf("受影响讲师应仅为 inst-a，实际 %v", result.AffectedInstructors)
	}

	notifyRepo := repo.Notification.(*mockNotificationRepo)
	got := notifyRepo.sentTo("inst-a")
	if len(got) != 1 || got[0].Category != model.NotifyCategoryShiftChange {
		t.Errorf("inst-a 应收到一条 shift_change 通知，实际 %+v", got)
	}
	if got := notifyRepo.sentTo("inst-b"); len(got) != 0 {
		t.Errorf("已撤回的 inst-b 不应收到通知，实际 %d 条", len(got))
	}
}

func TestShiftCancelTwiceConflicts(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, nil)
	ctx := context.Background()

	if _, err := svc.Shift.Cancel(ctx, shift.ShiftID, "admin-1", model.RoleAdmin, ""); err != nil {
		t.Fatalf("首次取消失败: %v", err)
	}
	_, err := svc.Shift.Cancel(ctx, shift.ShiftID, "admin-1", model.RoleAdmin, "")
	if !errors.Is(err, ErrShiftCancelled) {
		t.Errorf("重复取消应返回 ErrShiftCancelled，实际 %v", err)
	}
}

// 有报名记录（含历史）的班次只能取消不能删除
func TestShiftDeleteBlockedBySignupHistory(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, nil)
	ctx := context.Background()

	signup, err := svc.Signup.Create(ctx, shift.ShiftID, &dto.CreateSignupRequest{}, "inst-a")
	if err != nil {
		t.Fatalf("报名失败: %v", err)
	}
	if err := svc.Signup.Withdraw(ctx, signup.ID, "inst-a"); err != nil {
		t.Fatalf("撤回失败: %v", err)
	}

	// 撤回后记录仍在，删除依旧被阻止
	err = svc.Shift.Delete(ctx, shift.ShiftID, "admin-1", model.RoleAdmin, "")
	if !errors.Is(err, ErrShiftHasSignups) {
		t.Errorf("有报名历史的班次删除应返回 ErrShiftHasSignups，实际 %v", err)
	}
}

func TestShiftDeleteWithoutSignups(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, nil)
	ctx := context.Background()

	if err := svc.Shift.Delete(ctx, shift.ShiftID, "admin-1", model.RoleAdmin, ""); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := svc.Shift.GetByID(ctx, shift.ShiftID); !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("删除后查询应返回 ErrShiftNotFound，实际 %v", err)
	}
}

// 人数上限不能调低到已确认人数之下
func TestShiftUpdateMaxBelowConfirmed(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, intPtr(3))
	ctx := context.Background()

	for _, inst := range []string{"inst-a", "inst-b"} {
		signup, err := svc.Signup.Create(ctx, shift.ShiftID, &dto.CreateSignupRequest{}, inst)
		if err != nil {
			t.Fatalf("%s 报名失败: %v", inst, err)
		}
		if _, err := svc.Signup.Review(ctx, signup.ID,
			&dto.ReviewSignupRequest{Action: "confirm"}, "admin-1", model.RoleAdmin, ""); err != nil {
			t.Fatalf("确认 %s 失败: %v", inst, err)
		}
	}

	_, err := svc.Shift.Update(ctx, shift.ShiftID,
		&dto.UpdateOpenShiftRequest{MaxInstructors: intPtr(1)}, "admin-1", model.RoleAdmin, "")
	if !errors.Is(err, ErrShiftMaxBelowConfirm) {
		t.Errorf("上限低于已确认人数应返回 ErrShiftMaxBelowConfirm，实际 %v", err)
	}
}

// 更新班次向活跃报名讲师广播变更
func TestShiftUpdateNotifiesActiveSignups(t *testing.T) {
	svc, repo := newTestService()
	shift := seedShift(t, repo, nil)
	ctx := context.Background()

	if _, err := svc.Signup.Create(ctx, shift.ShiftID, &dto.CreateSignupRequest{}, "inst-a"); err != nil {
		t.Fatalf("报名失败: %v", err)
	}

	newTitle := "周六上午代班（改）"
	if _, err := svc.Shift.Update(ctx, shift.ShiftID,
		&dto.UpdateOpenShiftRequest{Title: &newTitle}, "admin-1", model.RoleAdmin, ""); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	notifyRepo := repo.Notification.(*mockNotificationRepo)
	got := notifyRepo.sentTo("inst-a")
	if len(got) != 1 || got[0].Category != model.NotifyCategoryShiftChange {
		t.Errorf("讲师应收到一条 shift_change 通知，实际 %+v", got)
	}
}
