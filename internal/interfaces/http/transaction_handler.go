package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/transaction"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// TransactionHandler maneja la aplicación y consulta de transacciones (protegido).
type TransactionHandler struct {
	proc *transaction.Processor
	log  *logger.Logger
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(proc *transaction.Processor, log *logger.Logger) *TransactionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TransactionHandler{proc: proc, log: log}
}

// Create godoc
// @Summary      Aplicar transacción
// @Description  Registra una venta, compra, devolución o baja y mueve el stock de la sucursal de forma atómica.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "type, branch_id, items[{product_id, quantity}]"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	typ, err := entity.ParseTransactionType(in.Type)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if !CanAccessBranch(c, in.BranchID) {
		return writeError(c, domain.ErrForbidden)
	}
	items := make([]transaction.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transaction.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	tx, err := h.proc.Apply(c.UserContext(), transaction.ApplyInput{
		Type:      typ,
		BranchID:  in.BranchID,
		CreatedBy: GetUserID(c),
		Reference: in.Reference,
		Items:     items,
	})
	if err != nil {
		if tx != nil && errors.Is(err, domain.ErrCacheInvalidation) {
			// la transacción está confirmada: se responde éxito y se avisa por cabecera
			h.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("transacción confirmada con caché sin invalidar")
			c.Set("X-Cache-Invalidation", "failed")
			return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
		}
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.proc.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !CanAccessBranch(c, tx.BranchID) {
		return writeError(c, domain.ErrForbidden)
	}
	return c.JSON(dto.NewTransactionResponse(tx))
}
