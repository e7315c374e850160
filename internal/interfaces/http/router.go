package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/application/payment"
	"github.com/roundspecs/hsbs/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *ledger.CommitMovementUseCase
	Payments      *payment.PaymentUseCase
	MovementQuery *usecase.MovementQueryUseCase
	ProductUC     *usecase.ProductUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todo cuelga de /api/workspaces/:workspace y requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	ws := api.Group("/workspaces/:workspace", AuthMiddleware(deps.JWTSecret), RequireWorkspace())

	// Products
	products := ws.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Movements: entradas, salidas, pagos y consultas
	movements := ws.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger, deps.Payments, deps.MovementQuery)
	movements.Post("/stock-in", movementHandler.StockIn)
	movements.Post("/stock-out", movementHandler.StockOut)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Patch("/:id/payment", movementHandler.UpdatePayment)
}
