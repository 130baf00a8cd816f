package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/report"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ReportRenderer genera la versión PDF de un reporte.
type ReportRenderer interface {
	RenderBranchReport(ctx context.Context, rep *entity.BranchReport) ([]byte, error)
}

// ReportHandler reportes financieros por sucursal (protegido, admin y manager).
type ReportHandler struct {
	reads    *inventory.ReadService
	renderer ReportRenderer
	loc      *time.Location
	now      func() time.Time
}

// NewReportHandler construye el handler. loc es la zona usada para los meses calendario.
func NewReportHandler(reads *inventory.ReadService, renderer ReportRenderer, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reads: reads, renderer: renderer, loc: loc, now: time.Now}
}

// GetBranchReport godoc
// @Summary      Reporte financiero de sucursal
// @Description  Ingresos, costo, utilidad bruta y neta del período [from, to). Sin parámetros usa el mes en curso.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        branchId  path   string  true   "ID de la sucursal"
// @Param        year      query  int     false  "Año (con month)"
// @Param        month     query  int     false  "Mes 1-12 (con year)"
// @Param        from      query  string  false  "Inicio incluido (RFC3339 o YYYY-MM-DD)"
// @Param        to        query  string  false  "Fin excluido (RFC3339 o YYYY-MM-DD)"
// @Param        opex      query  string  false  "Gastos operativos; por defecto los registrados"
// @Param        target    query  string  false  "Meta de utilidad"
// @Success      200  {object}  dto.BranchReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/branches/{branchId} [get]
func (h *ReportHandler) GetBranchReport(c *fiber.Ctx) error {
	rep, err := h.load(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewBranchReportResponse(rep))
}

// GetBranchReportPDF godoc
// @Summary      Reporte financiero de sucursal en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        branchId  path   string  true   "ID de la sucursal"
// @Param        year      query  int     false  "Año (con month)"
// @Param        month     query  int     false  "Mes 1-12 (con year)"
// @Param        from      query  string  false  "Inicio incluido"
// @Param        to        query  string  false  "Fin excluido"
// @Param        opex      query  string  false  "Gastos operativos"
// @Param        target    query  string  false  "Meta de utilidad"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/branches/{branchId}/pdf [get]
func (h *ReportHandler) GetBranchReportPDF(c *fiber.Ctx) error {
	rep, err := h.load(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.renderer.RenderBranchReport(c.UserContext(), rep)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="reporte-%s-%s.pdf"`,
		rep.BranchID, rep.Period.From.Format("2006-01-02")))
	return c.Send(out)
}

func (h *ReportHandler) load(c *fiber.Ctx) (*entity.BranchReport, error) {
	branchID := c.Params("branchId")
	if !CanAccessBranch(c, branchID) {
		return nil, domain.ErrForbidden
	}
	req, err := h.parseRequest(c, branchID)
	if err != nil {
		return nil, err
	}
	return h.reads.GetBranchReport(c.UserContext(), req)
}

func (h *ReportHandler) parseRequest(c *fiber.Ctx, branchID string) (report.Request, error) {
	req := report.Request{BranchID: branchID}
	period, err := h.parsePeriod(c)
	if err != nil {
		return req, err
	}
	req.Period = period
	if req.OperatingExpenses, err = optionalDecimal(c, "opex"); err != nil {
		return req, err
	}
	if req.TargetProfit, err = optionalDecimal(c, "target"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *ReportHandler) parsePeriod(c *fiber.Ctx) (entity.Period, error) {
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		f, err := parseTime(from, h.loc)
		if err != nil {
			return entity.Period{}, domain.Invalid("from", err.Error())
		}
		t, err := parseTime(to, h.loc)
		if err != nil {
			return entity.Period{}, domain.Invalid("to", err.Error())
		}
		return entity.Period{From: f, To: t}, nil
	}
	now := h.now().In(h.loc)
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return entity.Period{}, domain.Invalid("month", "debe estar entre 1 y 12")
	}
	return entity.MonthPeriod(year, time.Month(month), h.loc), nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("requerido junto con el otro extremo")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("formato esperado RFC3339 o YYYY-MM-DD")
	}
	return t, nil
}

func optionalDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Invalid(key, "monto inválido")
	}
	return &d, nil
}
