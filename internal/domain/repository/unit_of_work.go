package repository

// UnitOfWork repositorios atados a una misma transacción del almacén.
// Todo lo escrito a través de ellos se confirma o se descarta junto.
type UnitOfWork struct {
	Transactions TransactionRepository
	Movements    StockMovementRepository
	Products     ProductRepository
}
