package service

import "testing"

func intPtr(n int) *int { return &n }

func TestHasCapacity(t *testing.T) {
	tests := []struct {
		name      string
		max       *int
		confirmed int64
		want      bool
	}{
		{"不限人数", nil, 100, true},
		{"未满", intPtr(3), 2, true},
		{"刚好满", intPtr(3), 3, false},
		{"超满", intPtr(3), 4, false},
		{"上限为零", intPtr(0), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasCapacity(tt.max, tt.confirmed); got != tt.want {
				t.Errorf("hasCapacity(%v, %d) = %v, 期望 %v", tt.max, tt.confirmed, got, tt.want)
			}
		})
	}
}

func TestRemainingSlots(t *testing.T) {
	if got := remainingSlots(nil, 5); got != -1 {
		t.Errorf("不限人数应返回 -1，实际 %d", got)
	}
	if got := remainingSlots(intPtr(3), 1); got != 2 {
		t.Errorf("剩余名额应为 2，实际 %d", got)
	}
	if got := remainingSlots(intPtr(3), 5); got != 0 {
		t.Errorf("超满时剩余名额应为 0，实际 %d", got)
	}
}
