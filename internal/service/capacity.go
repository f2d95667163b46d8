package service

// hasCapacity 班次是否仍有可确认名额
// maxInstructors 为 nil 表示不限人数
func hasCapacity(maxInstructors *int, confirmed int64) bool {
	if maxInstructors == nil {
		return true
	}
	return confirmed < int64(*maxInstructors)
}

// remainingSlots 剩余名额；不限人数时返回 -1
func remainingSlots(maxInstructors *int, confirmed int64) int {
	if maxInstructors == nil {
		return -1
	}
	remain := *maxInstructors - int(confirmed)
	if remain < 0 {
		return 0
	}
	return remain
}
