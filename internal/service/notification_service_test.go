package service

import (
	"context"
	"errors"
	"testing"

	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
)

// 偏好关闭的类别静默跳过，其余正常落库
func TestNotificationSendHonorsPreference(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	off := false
	if _, err := svc.Notification.UpdatePreference(ctx, "user-1",
		&dto.UpdatePreferenceRequest{CoverageBroadcast: &off}); err != nil {
		t.Fatalf("更新偏好失败: %v", err)
	}

	svc.Notification.Send(ctx, "user-1", model.NotifyCategoryCoverageBroadcast, "征集", "内容", nil, nil)
	svc.Notification.Send(ctx, "user-1", model.NotifyCategorySignupResult, "结果", "内容", nil, nil)

	notifyRepo := repo.Notification.(*mockNotificationRepo)
	got := notifyRepo.sentTo("user-1")
	if len(got) != 1 {
		t.Fatalf("应只落库一条通知，实际 %d 条", len(got))
	}
	if got[0].Category != model.NotifyCategorySignupResult {
		t.Errorf("落库通知类别应为 signup_result，实际 %s", got[0].Category)
	}
}

// Broadcast 逐个检查偏好：关闭的收件人被剔除
func TestNotificationBroadcastFiltersRecipients(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	off := false
	if _, err := svc.Notification.UpdatePreference(ctx, "user-2",
		&dto.UpdatePreferenceRequest{ShiftChange: &off}); err != nil {
		t.Fatalf("更新偏好失败: %v", err)
	}

	svc.Notification.Broadcast(ctx, []string{"user-1", "user-2", "user-3"},
		model.NotifyCategoryShiftChange, "班次变更", "内容", nil, nil)

	notifyRepo := repo.Notification.(*mockNotificationRepo)
	for _, uid := range []string{"user-1", "user-3"} {
		if got := notifyRepo.sentTo(uid); len(got) != 1 {
			t.Errorf("%s 应收到 1 条通知，实际 %d", uid, len(got))
		}
	}
	if got := notifyRepo.sentTo("user-2"); len(got) != 0 {
		t.Errorf("关闭偏好的 user-2 不应收到通知，实际 %d 条", len(got))
	}
}

// 通知写入失败不向调用方传播（尽力而为语义）
func TestNotificationSendSwallowsFailure(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	notifyRepo := repo.Notification.(*mockNotificationRepo)
	notifyRepo.failure = errors.New("数据库抖动")

	// Send 为 void 方法，这里只验证不 panic 且不落库
	svc.Notification.Send(ctx, "user-1", model.NotifyCategorySignupResult, "结果", "内容", nil, nil)

	notifyRepo.failure = nil
	if got := notifyRepo.sentTo("user-1"); len(got) != 0 {
		t.Errorf("写入失败时不应落库，实际 %d 条", len(got))
	}
}

func TestNotificationMarkReadScopes(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	svc.Notification.Send(ctx, "user-1", model.NotifyCategorySignupResult, "结果", "内容", nil, nil)
	notifyRepo := repo.Notification.(*mockNotificationRepo)
	sent := notifyRepo.sentTo("user-1")
	if len(sent) != 1 {
		t.Fatalf("应落库一条通知，实际 %d", len(sent))
	}

	// 他人不能标记我的通知
	err := svc.Notification.MarkRead(ctx, sent[0].NotificationID, "user-2")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("他人标记应返回 ErrNotificationNotFound，实际 %v", err)
	}

	if err := svc.Notification.MarkRead(ctx, sent[0].NotificationID, "user-1"); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	count, err := svc.Notification.UnreadCount(ctx, "user-1")
	if err != nil {
		t.Fatalf("统计未读失败: %v", err)
	}
	if count != 0 {
		t.Errorf("标记后未读数应为 0，实际 %d", count)
	}
}

// 无偏好记录时返回默认值（全部开启），增量更新只改提交的字段
func TestNotificationPreferenceDefaultsAndPartialUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	pref, err := svc.Notification.GetPreference(ctx, "user-1")
	if err != nil {
		t.Fatalf("查询偏好失败: %v", err)
	}
	if !pref.SignupResult || !pref.SubstituteReview || !pref.CoverageBroadcast || !pref.ShiftChange {
		t.Errorf("默认偏好应全部开启，实际 %+v", pref)
	}

	off := false
	updated, err := svc.Notification.UpdatePreference(ctx, "user-1",
		&dto.UpdatePreferenceRequest{SignupResult: &off})
	if err != nil {
		t.Fatalf("更新偏好失败: %v", err)
	}
	if updated.SignupResult {
		t.Error("signup_result 应已关闭")
	}
	if !updated.SubstituteReview || !updated.CoverageBroadcast || !updated.ShiftChange {
		t.Errorf("未提交的字段不应被改动，实际 %+v", updated)
	}
}
