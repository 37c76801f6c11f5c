package leave

import (
	"bytes"
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	leaveerrors "github.com/mrpavithran/Hrms-Backend/internal/leave/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Leave Requests"

var exportHeaders = []string{
	"ID", "Employee ID", "Employee", "Policy", "Leave Type", "Start Date", "End Date",
	"Days", "Status", "Reason", "Applied At", "Approved By", "Rejection Reason",
}

// Export writes every visible request matching the filter into a single
// xlsx sheet, ignoring pagination.
func (s *service) Export(ctx context.Context, req ListLeaveRequestsRequest) ([]byte, error) {
	filter, err := s.listFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	requests, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("export leave requests failed", zap.Error(err))
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, leaveerrors.ErrExportFailed
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range exportHeaders {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, c, h)
		f.SetCellStyle(exportSheet, c, c, headerStyle)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetColWidth(exportSheet, "A", lastCol, 18)

	for i, l := range requests {
		r := mapToResponse(l)
		approvedBy, rejection := "", ""
		if r.ApprovedBy != nil {
			approvedBy = *r.ApprovedBy
		}
		if r.RejectionReason != nil {
			rejection = *r.RejectionReason
		}
		row := []any{
			r.ID, r.EmployeeID, r.EmployeeName, r.PolicyName, r.LeaveType, r.StartDate, r.EndDate,
			r.Days, r.Status, r.Reason, r.AppliedAt, approvedBy, rejection,
		}
		c, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, c, &row); err != nil {
			s.logger.Error("export leave row failed", zap.Int("row", i+2), zap.Error(err))
			return nil, leaveerrors.ErrExportFailed
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("export leave write failed", zap.Error(err))
		return nil, leaveerrors.ErrExportFailed
	}

	s.logger.Info("export leave success", zap.Int("rows", len(requests)))
	return buf.Bytes(), nil
}

// Calendar renders pending and approved requests as all-day iCalendar
// events. Pending ones are marked tentative.
func (s *service) Calendar(ctx context.Context, req ListLeaveRequestsRequest) ([]byte, error) {
	filter, err := s.listFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	requests, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("calendar leave requests failed", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Hrms-Backend//leave calendar//EN")

	stamp := s.now().UTC()
	for _, l := range requests {
		if !l.Status.Blocks() {
			continue
		}
		r := mapToResponse(l)

		ev := cal.AddEvent(r.ID + "@leave-requests")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(l.StartDate)
		// DTEND is exclusive for all-day events.
		ev.SetAllDayEndAt(l.EndDate.AddDate(0, 0, 1))
		ev.SetSummary(calendarSummary(r))
		ev.SetDescription(r.Reason)
		if l.Status == StatusApproved {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			ev.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return []byte(cal.Serialize()), nil
}

func calendarSummary(r LeaveResponse) string {
	who := r.EmployeeName
	if who == "" {
		who = r.EmployeeID
	}
	kind := r.LeaveType
	if kind == "" {
		kind = "LEAVE"
	}
	return fmt.Sprintf("%s: %s (%d days)", who, kind, r.Days)
}
