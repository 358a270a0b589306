package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playhouse/roomhub/internal/core/ports"
)

// HeaderIdempotencyKey carries the client's purchase request id.
const HeaderIdempotencyKey = "Idempotency-Key"

// ShopHandler exposes the catalog, purchases, inventory and balance
// adjustments.
type ShopHandler struct {
	catalog   ports.CatalogService
	purchases ports.PurchaseService
	inventory ports.InventoryService
	ledger    ports.LedgerService
}

func NewShopHandler(catalog ports.CatalogService, purchases ports.PurchaseService, inventory ports.InventoryService, ledger ports.LedgerService) *ShopHandler {
	return &ShopHandler{catalog: catalog, purchases: purchases, inventory: inventory, ledger: ledger}
}

// ListCatalog godoc
//
// @Summary      List catalog items
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.CatalogItem
// @Router       /v1/catalog [get]
func (h *ShopHandler) ListCatalog(c echo.Context) error {
	items, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// AddCatalogItem godoc
//
// @Summary      Add a catalog item (admin)
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      AddCatalogItemRequest  true  "Item"
// @Success      201   {object}  domain.CatalogItem
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/catalog [post]
func (h *ShopHandler) AddCatalogItem(c echo.Context) error {
	var req AddCatalogItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.catalog.Add(c.Request().Context(), req.Name, req.Price, req.Stackable)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Buy godoc
//
// @Summary      Buy one unit of a catalog item
// @Description  Retries with the same Idempotency-Key never charge twice.
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string      false  "Client request id"
// @Param        body             body      BuyRequest  true   "Item to buy"
// @Success      201              {object}  PurchaseResponse
// @Success      200              {object}  PurchaseResponse  "Replayed"
// @Failure      404              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Failure      503              {object}  map[string]string
// @Router       /v1/purchases [post]
func (h *ShopHandler) Buy(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req BuyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.purchases.Buy(c.Request().Context(), ports.BuyInput{
		UserID:    id.UserID,
		ItemID:    req.ItemID,
		RequestID: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.Response().Header().Set(HeaderIdempotencyKey, res.RequestID)
	return c.JSON(status, PurchaseResponse{
		RequestID:  res.RequestID,
		Outcome:    res.Outcome,
		Item:       res.InventoryItem,
		NewBalance: res.NewBalance,
		Replayed:   res.Replayed,
	})
}

// Inventory godoc
//
// @Summary      List the caller's inventory
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.InventoryItem
// @Router       /v1/inventory [get]
func (h *ShopHandler) Inventory(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.inventory.List(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Credit godoc
//
// @Summary      Credit a user's balance (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "User ID"
// @Param        body  body      CreditRequest  true  "Amount"
// @Success      200   {object}  BalanceResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id}/credit [post]
func (h *ShopHandler) Credit(c echo.Context) error {
	var req CreditRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID := c.Param("id")
	balance, err := h.ledger.Add(c.Request().Context(), userID, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// Unreconciled godoc
//
// @Summary      Purchases whose refund failed (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.PurchaseAttempt
// @Router       /v1/admin/purchases/unreconciled [get]
func (h *ShopHandler) Unreconciled(c echo.Context) error {
	attempts, err := h.purchases.Unreconciled(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attempts)
}
