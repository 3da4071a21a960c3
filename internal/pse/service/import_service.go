package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/metrics"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Item rows of the shipment template.
const (
	importFirstItemRow = 26
	importLastItemRow  = 200
)

var (
	skippedSheetPattern = regexp.MustCompile(`(?i)^(SUM|PSE)$`)
	numberPattern       = regexp.MustCompile(`-?\d+(\.\d+)?`)
	numberNoise         = regexp.MustCompile(`[, ]+`)
)

// ImportItem is one item row read from a sheet.
type ImportItem struct {
	No       int     `json:"no"`
	BoxNo    string  `json:"boxNo"`
	PartNo   string  `json:"partNo"`
	PartName string  `json:"partName"`
	Quantity float64 `json:"quantity"`
	Remark   string  `json:"remark"`
}

// ImportData is the shipment described by a workbook.
type ImportData struct {
	ShippingMark    string             `json:"shippingMark"`
	OrderNo         string             `json:"orderNo"`
	CaseNo          string             `json:"caseNo"`
	Destination     string             `json:"destination"`
	Model           string             `json:"model"`
	ProductionMonth string             `json:"productionMonth"`
	CaseSize        string             `json:"caseSize"`
	GrossWeight     float64            `json:"grossWeight"`
	NetWeight       float64            `json:"netWeight"`
	RackNo          entity.RackNumbers `json:"rackNo"`
	Items           []ImportItem       `json:"items"`
}

// ToCreateRequest converts the import into a shipment create request.
func (d *ImportData) ToCreateRequest() *CreateShipmentRequest {
	req := &CreateShipmentRequest{
		ShippingMark:    d.ShippingMark,
		OrderNo:         d.OrderNo,
		CaseNo:          d.CaseNo,
		Destination:     d.Destination,
		Model:           d.Model,
		ProductionMonth: d.ProductionMonth,
		CaseSize:        d.CaseSize,
		GrossWeight:     entity.FlexFloat(d.GrossWeight),
		NetWeight:       entity.FlexFloat(d.NetWeight),
		RackNo:          d.RackNo,
	}
	for _, it := range d.Items {
		remark := it.Remark
		req.Items = append(req.Items, ShipmentItemRequest{
			No:       it.No,
			BoxNo:    it.BoxNo,
			PartNo:   it.PartNo,
			PartName: it.PartName,
			Quantity: entity.FlexFloat(it.Quantity),
			Remark:   &remark,
		})
	}
	return req
}

// ImportResult is the outcome of parsing a workbook. Data is nil when no
// sheet could be parsed.
type ImportResult struct {
	Data     *ImportData `json:"data,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Success reports whether at least one sheet was parsed.
func (r *ImportResult) Success() bool {
	return r.Data != nil
}

// UploadRequest describes an uploaded workbook.
type UploadRequest struct {
	UserID   string
	UserName string
	FileName string
	Content  []byte
}

// ImportService reads shipment spreadsheets.
type ImportService struct {
	archive       *ArchiveService
	notifications *NotificationService
	logger        *zap.Logger
}

func NewImportService(archive *ArchiveService, notifications *NotificationService, logger *zap.Logger) *ImportService {
	return &ImportService{archive: archive, notifications: notifications, logger: logger}
}

// Upload parses the workbook, archives it and records a notification.
// Archive and notification failures are logged, not returned.
func (s *ImportService) Upload(ctx context.Context, req *UploadRequest) *ImportResult {
	result := s.Parse(bytes.NewReader(req.Content))
	if !result.Success() {
		return result
	}

	if _, err := s.archive.Store(ctx, req.FileName, req.Content); err != nil {
		s.logger.Warn("archive spreadsheet failed", zap.String("file", req.FileName), zap.Error(err))
	}

	userName := req.UserName
	if userName == "" {
		userName = "Unknown"
	}
	_, err := s.notifications.Create(ctx, &CreateNotificationRequest{
		Title:   "Upload: " + req.FileName,
		Content: fmt.Sprintf("%s uploaded file %q. Parsed %d items.", userName, req.FileName, len(result.Data.Items)),
		UserID:  req.UserID,
	})
	if err != nil {
		s.logger.Warn("create upload notification failed", zap.Error(err))
	}
	return result
}

// Parse opens an xlsx stream and parses it.
func (s *ImportService) Parse(r io.Reader) *ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return &ImportResult{Errors: []string{"Failed to read workbook: " + err.Error()}}
	}
	defer f.Close()
	return s.ParseWorkbook(f)
}

// ParseWorkbook parses every sheet except SUM and PSE and merges the
// results into one shipment.
func (s *ImportService) ParseWorkbook(f *excelize.File) *ImportResult {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &ImportResult{Errors: []string{"Workbook contains no sheets"}}
	}

	var warnings, errs, skipped, toParse []string
	for _, name := range sheets {
		if skippedSheetPattern.MatchString(strings.TrimSpace(name)) {
			skipped = append(skipped, name)
		} else {
			toParse = append(toParse, name)
		}
	}
	if len(skipped) > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped sheets: %s.", strings.Join(skipped, ", ")))
	}
	if len(toParse) == 0 {
		return &ImportResult{
			Errors:   []string{"No sheets to parse (all sheets were skipped: SUM / PSE)"},
			Warnings: warnings,
		}
	}

	var parsed []*ImportData
	for _, name := range toParse {
		data, sheetWarnings, err := parseSheet(f, name)
		for _, w := range sheetWarnings {
			warnings = append(warnings, name+": "+w)
		}
		if err != nil {
			errs = append(errs, name+": "+err.Error())
			continue
		}
		metrics.ImportedSheets.Inc()
		parsed = append(parsed, data)
	}

	if len(parsed) == 0 {
		if len(errs) == 0 {
			errs = []string{"No sheet could be parsed successfully"}
		}
		return &ImportResult{Errors: errs, Warnings: warnings}
	}
	if len(parsed) == 1 {
		return &ImportResult{Data: parsed[0], Errors: errs, Warnings: warnings}
	}

	merged, racks := mergeImports(parsed)
	warnings = append([]string{fmt.Sprintf("Merged %d sheets into single shipment record.", len(parsed))}, warnings...)
	if len(racks) > 1 {
		warnings = append(warnings, fmt.Sprintf("Multiple distinct RACK NO found: %s, set as multiple rackNo values.", strings.Join(racks, ", ")))
	}
	return &ImportResult{Data: merged, Errors: errs, Warnings: warnings}
}

// mergeImports concatenates the items of all sheets, renumbering them, and
// takes each header field from the first sheet that has it.
func mergeImports(parsed []*ImportData) (*ImportData, []string) {
	merged := &ImportData{Items: []ImportItem{}}
	seen := map[string]bool{}
	var racks []string

	for _, d := range parsed {
		merged.ShippingMark = firstNonEmpty(merged.ShippingMark, d.ShippingMark)
		merged.OrderNo = firstNonEmpty(merged.OrderNo, d.OrderNo)
		merged.CaseNo = firstNonEmpty(merged.CaseNo, d.CaseNo)
		merged.Destination = firstNonEmpty(merged.Destination, d.Destination)
		merged.Model = firstNonEmpty(merged.Model, d.Model)
		merged.ProductionMonth = firstNonEmpty(merged.ProductionMonth, d.ProductionMonth)
		merged.CaseSize = firstNonEmpty(merged.CaseSize, d.CaseSize)
		if merged.GrossWeight == 0 {
			merged.GrossWeight = d.GrossWeight
		}
		if merged.NetWeight == 0 {
			merged.NetWeight = d.NetWeight
		}
		for _, r := range d.RackNo {
			if !seen[r] {
				seen[r] = true
				racks = append(racks, r)
			}
		}
		merged.Items = append(merged.Items, d.Items...)
	}

	for i := range merged.Items {
		merged.Items[i].No = i + 1
	}
	merged.RackNo = entity.NewRackNumbers(racks...)
	return merged, racks
}

// parseSheet reads one sheet laid out as the shipment template. Cell
// coordinates are 1-based (row, column).
func parseSheet(f *excelize.File, sheet string) (*ImportData, []string, error) {
	var readErr error
	get := func(row, col int) string {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			readErr = err
			return ""
		}
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			readErr = err
			return ""
		}
		return strings.TrimSpace(v)
	}

	var warnings []string

	rawShipping := get(1, 1)
	orderRaw := firstNonEmpty(get(4, 1), get(22, 4), get(22, 1))
	caseRaw := firstNonEmpty(get(5, 1), get(19, 12), get(15, 4))

	data := &ImportData{
		ShippingMark:    firstNonEmpty(afterColon(rawShipping), get(2, 1), rawShipping),
		Destination:     firstNonEmpty(get(3, 1), get(19, 4)),
		OrderNo:         firstNonEmpty(afterColon(orderRaw), orderRaw),
		CaseNo:          firstNonEmpty(afterColon(caseRaw), caseRaw),
		Model:           firstNonEmpty(get(20, 4), get(21, 4)),
		CaseSize:        firstNonEmpty(get(20, 12), get(13, 4)),
		ProductionMonth: get(23, 4),
		RackNo:          entity.NewRackNumbers(get(23, 12)),
		Items:           []ImportItem{},
	}
	data.GrossWeight = firstNumber(get(21, 12), get(12, 10))
	data.NetWeight = firstNumber(get(22, 12), get(12, 9))

	for r := importFirstItemRow; r <= importLastItemRow; r++ {
		noCell := get(r, 1)
		if noCell == "" {
			break
		}
		no, ok := parseNumber(noCell)
		if !ok || no == 0 {
			break
		}

		boxNo := get(r, 2)
		if boxNo == "" {
			boxNo = fmt.Sprintf("BOX_%02d", int(no))
		}
		data.Items = append(data.Items, ImportItem{
			No:       int(no),
			BoxNo:    boxNo,
			PartNo:   get(r, 4),
			PartName: get(r, 5),
			Quantity: firstNumber(get(r, 9), get(r, 8)),
			Remark:   get(r, 10),
		})
	}

	if readErr != nil {
		return nil, warnings, fmt.Errorf("read cells: %w", readErr)
	}
	if len(data.Items) == 0 {
		warnings = append(warnings, fmt.Sprintf("No items found at expected coordinates (rows starting %d).", importFirstItemRow))
	}
	return data, warnings, nil
}

// parseNumber extracts the first number from a cell, ignoring thousands
// separators and spaces.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	m := numberPattern.FindString(numberNoise.ReplaceAllString(s, ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstNumber(values ...string) float64 {
	for _, v := range values {
		if n, ok := parseNumber(v); ok {
			return n
		}
	}
	return 0
}

func afterColon(s string) string {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(s[idx+1:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
