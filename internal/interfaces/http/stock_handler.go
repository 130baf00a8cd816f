package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/domain"
)

// StockHandler consultas de stock y movimientos (protegido).
type StockHandler struct {
	reads *inventory.ReadService
}

// NewStockHandler construye el handler.
func NewStockHandler(reads *inventory.ReadService) *StockHandler {
	return &StockHandler{reads: reads}
}

// GetCurrentStock godoc
// @Summary      Stock actual de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        branchId   path  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{productId}/branches/{branchId} [get]
func (h *StockHandler) GetCurrentStock(c *fiber.Ctx) error {
	branchID := c.Params("branchId")
	if !CanAccessBranch(c, branchID) {
		return writeError(c, domain.ErrForbidden)
	}
	lvl, err := h.reads.GetCurrentStock(c.UserContext(), c.Params("productId"), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: lvl.ProductID, BranchID: lvl.BranchID, Quantity: lvl.Quantity})
}

// ListMovements godoc
// @Summary      Últimos movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Filtrar por sucursal"
// @Param        limit      query  int     false  "Máximo de movimientos (por defecto 50)"
// @Success      200  {object}  dto.StockMovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "VALIDATION", "limit no puede ser negativo")
	}
	branchID, ok := movementScope(c)
	if !ok {
		return writeError(c, domain.ErrForbidden)
	}
	list, err := h.reads.GetStockMovements(c.UserContext(), branchID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockMovementList(list, h.reads.ResolveLimit(false, limit)))
}

// ListProductMovements godoc
// @Summary      Movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        branch_id  query  string  false  "Filtrar por sucursal"
// @Param        limit      query  int     false  "Máximo de movimientos (por defecto 10)"
// @Success      200  {object}  dto.StockMovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/products/{productId} [get]
func (h *StockHandler) ListProductMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "VALIDATION", "limit no puede ser negativo")
	}
	branchID, ok := movementScope(c)
	if !ok {
		return writeError(c, domain.ErrForbidden)
	}
	list, err := h.reads.GetStockMovementsByProduct(c.UserContext(), c.Params("productId"), branchID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockMovementList(list, h.reads.ResolveLimit(true, limit)))
}

// movementScope sucursal a la que se restringe un listado de movimientos. Sin branch_id, un
// token atado a sucursal ve solo la suya; admin ve todas.
func movementScope(c *fiber.Ctx) (string, bool) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		if GetRole(c) == RoleAdmin {
			return "", true
		}
		return GetBranchID(c), true
	}
	return branchID, CanAccessBranch(c, branchID)
}
