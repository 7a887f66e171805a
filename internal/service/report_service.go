package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
	"github.com/sammy002621/parking-management-system-backend/pkg/export"
)

// Report formats and subjects.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"

	ReportSubjectRequests = "requests"
	ReportSubjectSlots    = "slots"
)

// reportPageSize caps how many rows one export pulls.
const reportPageSize = 100

type reportRequestLister interface {
	List(ctx context.Context, filter models.SlotRequestFilter) ([]models.SlotRequest, int, error)
}

type reportSlotLister interface {
	List(ctx context.Context, filter models.SlotFilter) ([]models.ParkingSlot, int, error)
}

// Report is a rendered export ready to stream to the client.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders admin exports of requests and slot inventory.
type ReportService struct {
	requests reportRequestLister
	slots    reportSlotLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	enabled  bool
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(requests reportRequestLister, slots reportSlotLister, enabled bool, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		requests: requests,
		slots:    slots,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		enabled:  enabled,
		logger:   logger,
	}
}

// Enabled reports whether exports are switched on.
func (s *ReportService) Enabled() bool {
	return s != nil && s.enabled
}

// Generate renders the named subject in the requested format.
func (s *ReportService) Generate(ctx context.Context, subject, format string) (*Report, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reports are disabled")
	}

	format = strings.ToLower(format)
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch strings.ToLower(subject) {
	case ReportSubjectRequests:
		dataset, err = s.requestsDataset(ctx)
		title = "Slot Requests"
	case ReportSubjectSlots:
		dataset, err = s.slotsDataset(ctx)
		title = "Parking Slots"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject must be requests or slots")
	}
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("%s-%s.%s", strings.ToLower(subject), stamp, format)

	if format == ReportFormatCSV {
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{FileName: name, ContentType: "text/csv", Content: content}, nil
	}

	content, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return &Report{FileName: name, ContentType: "application/pdf", Content: content}, nil
}

func (s *ReportService) requestsDataset(ctx context.Context) (export.Dataset, error) {
	headers := []string{"ID", "User", "Vehicle", "Status", "Slot", "Approved At", "Created At"}
	rows := make([]map[string]string, 0, reportPageSize)

	for page := 1; ; page++ {
		requests, total, err := s.requests.List(ctx, models.SlotRequestFilter{Page: page, PageSize: reportPageSize})
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests for report")
		}
		for _, request := range requests {
			row := map[string]string{
				"ID":         request.ID,
				"User":       request.UserID,
				"Vehicle":    request.VehicleID,
				"Status":     string(request.RequestStatus),
				"Created At": request.CreatedAt.Format(time.RFC3339),
			}
			if request.AssignedSlotNumber != nil {
				row["Slot"] = *request.AssignedSlotNumber
			}
			if request.ApprovedAt != nil {
				row["Approved At"] = request.ApprovedAt.Format(time.RFC3339)
			}
			rows = append(rows, row)
		}
		if len(rows) >= total || len(requests) == 0 {
			break
		}
	}

	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ReportService) slotsDataset(ctx context.Context) (export.Dataset, error) {
	headers := []string{"Slot Number", "Size", "Vehicle Type", "Status", "Location", "Created At"}
	rows := make([]map[string]string, 0, reportPageSize)

	for page := 1; ; page++ {
		slots, total, err := s.slots.List(ctx, models.SlotFilter{Page: page, PageSize: reportPageSize})
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots for report")
		}
		for _, slot := range slots {
			rows = append(rows, map[string]string{
				"Slot Number":  slot.SlotNumber,
				"Size":         string(slot.Size),
				"Vehicle Type": slot.VehicleType,
				"Status":       string(slot.Status),
				"Location":     slot.Location,
				"Created At":   slot.CreatedAt.Format(time.RFC3339),
			})
		}
		if len(rows) >= total || len(slots) == 0 {
			break
		}
	}

	return export.Dataset{Headers: headers, Rows: rows}, nil
}
