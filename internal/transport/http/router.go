package http

import (
	"context"
	"errors"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/avivreu7/medabrimbis/internal/domain"
	"github.com/avivreu7/medabrimbis/internal/risk"
	"github.com/avivreu7/medabrimbis/internal/usecase"
)

type PortfolioService interface {
	OpenTrade(ctx context.Context, ownerID string, in usecase.OpenTradeInput) (domain.Trade, error)
	CloseTrade(ctx context.Context, ownerID, tradeID string, closedPrice decimal.Decimal) (domain.Trade, error)
	DeleteTrade(ctx context.Context, ownerID, tradeID string) error
	ListTrades(ctx context.Context, ownerID string) ([]domain.Trade, error)
	SetBaseline(ctx context.Context, ownerID string, amount decimal.Decimal) error
	ComputeSnapshot(ctx context.Context, ownerID string) (domain.ValuationSnapshot, error)
}

type QuoteService interface {
	Sync(ctx context.Context) (int, error)
	List(ctx context.Context) (domain.QuoteSet, error)
}

type Router struct {
	app        *fiber.App
	portfolio  PortfolioService
	quotes     QuoteService
	reconciler *usecase.ReconcilerManager
}

func New(portfolio PortfolioService, quotes QuoteService, reconciler *usecase.ReconcilerManager) *Router {
	app := fiber.New()

	r := &Router{
		app:        app,
		portfolio:  portfolio,
		quotes:     quotes,
		reconciler: reconciler,
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/owners/:owner_id/trades", r.listTrades)
	v1.Post("/owners/:owner_id/trades", r.openTrade)
	v1.Post("/owners/:owner_id/trades/:trade_id/close", r.closeTrade)
	v1.Delete("/owners/:owner_id/trades/:trade_id", r.deleteTrade)
	v1.Get("/owners/:owner_id/snapshot", r.getSnapshot)
	v1.Put("/owners/:owner_id/baseline", r.setBaseline)
	r.registerStream(v1)

	v1.Get("/quotes", r.listQuotes)
	v1.Post("/quotes/sync", r.syncQuotes)

	v1.Post("/risk/position-size", r.positionSize)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

func (r *Router) App() *fiber.App {
	return r.app
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type OpenTradeRequest struct {
	Symbol     string           `json:"symbol"`
	Quantity   decimal.Decimal  `json:"quantity"`
	EntryPrice decimal.Decimal  `json:"entryPrice"`
	StopLoss   *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `json:"takeProfit,omitempty"`
}

type CloseTradeRequest struct {
	ClosedPrice decimal.Decimal `json:"closedPrice"`
}

type BaselineRequest struct {
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type PositionSizeRequest struct {
	EntryPrice    decimal.Decimal  `json:"entryPrice"`
	StopLoss      decimal.Decimal  `json:"stopLoss"`
	TakeProfit    *decimal.Decimal `json:"takeProfit,omitempty"`
	RiskAmount    decimal.Decimal  `json:"riskAmount"`
	PortfolioSize *decimal.Decimal `json:"portfolioSize,omitempty"`
	Direction     string           `json:"direction"`
}

// listTrades godoc
// @Summary List an owner's trades
// @Tags trades
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Success 200 {array} domain.Trade
// @Failure 500 {object} map[string]string
// @Router /owners/{owner_id}/trades [get]
func (r *Router) listTrades(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	trades, err := r.portfolio.ListTrades(ctx, ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(trades)
}

// openTrade godoc
// @Summary Open a trade in an owner's book
// @Tags trades
// @Accept json
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Param request body OpenTradeRequest true "Trade payload"
// @Success 201 {object} domain.Trade
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /owners/{owner_id}/trades [post]
func (r *Router) openTrade(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id required")
	}

	var payload OpenTradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	trade, err := r.portfolio.OpenTrade(ctx, ownerID, usecase.OpenTradeInput{
		Symbol:     payload.Symbol,
		Quantity:   payload.Quantity,
		EntryPrice: payload.EntryPrice,
		StopLoss:   payload.StopLoss,
		TakeProfit: payload.TakeProfit,
		RawPayload: append([]byte(nil), c.Body()...),
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(trade)
}

// closeTrade godoc
// @Summary Close an open trade at a price
// @Tags trades
// @Accept json
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Param trade_id path string true "Trade ID"
// @Param request body CloseTradeRequest true "Close payload"
// @Success 200 {object} domain.Trade
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /owners/{owner_id}/trades/{trade_id}/close [post]
func (r *Router) closeTrade(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	tradeID := c.Params("trade_id")
	if ownerID == "" || tradeID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id and trade_id required")
	}

	var payload CloseTradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	trade, err := r.portfolio.CloseTrade(ctx, ownerID, tradeID, payload.ClosedPrice)
	if errors.Is(err, domain.ErrTradeNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(trade)
}

// deleteTrade godoc
// @Summary Delete a trade
// @Tags trades
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Param trade_id path string true "Trade ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /owners/{owner_id}/trades/{trade_id} [delete]
func (r *Router) deleteTrade(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	tradeID := c.Params("trade_id")
	if ownerID == "" || tradeID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id and trade_id required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	err := r.portfolio.DeleteTrade(ctx, ownerID, tradeID)
	if errors.Is(err, domain.ErrTradeNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// getSnapshot godoc
// @Summary Compute the owner's valuation snapshot
// @Tags valuation
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Success 200 {object} domain.ValuationSnapshot
// @Failure 500 {object} map[string]string
// @Router /owners/{owner_id}/snapshot [get]
func (r *Router) getSnapshot(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	snapshot, err := r.portfolio.ComputeSnapshot(ctx, ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(snapshot)
}

// setBaseline godoc
// @Summary Set an owner's initial balance
// @Tags valuation
// @Accept json
// @Produce json
// @Param owner_id path string true "Owner ID"
// @Param request body BaselineRequest true "Baseline payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /owners/{owner_id}/baseline [put]
func (r *Router) setBaseline(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id required")
	}

	var payload BaselineRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	if err := r.portfolio.SetBaseline(ctx, ownerID, payload.InitialBalance); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// listQuotes godoc
// @Summary List the latest known quotes
// @Tags quotes
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /quotes [get]
func (r *Router) listQuotes(c *fiber.Ctx) error {
	if r.quotes == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "quote service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	quotes, err := r.quotes.List(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(quotes)
}

// syncQuotes godoc
// @Summary Trigger a quote sync from the price feed
// @Tags quotes
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {object} map[string]string
// @Router /quotes/sync [post]
func (r *Router) syncQuotes(c *fiber.Ctx) error {
	if r.quotes == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "quote service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	count, err := r.quotes.Sync(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrNoQuotes) {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"synced": 0,
				"status": "no quotes available",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"synced": count})
}

// positionSize godoc
// @Summary Size a position from entry, stop and risk amount
// @Tags risk
// @Accept json
// @Produce json
// @Param request body PositionSizeRequest true "Sizing inputs"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /risk/position-size [post]
func (r *Router) positionSize(c *fiber.Ctx) error {
	var payload PositionSizeRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	direction := risk.Direction(payload.Direction)
	if direction == "" {
		direction = risk.Long
	}

	result := fiber.Map{
		"shares":        nil,
		"positionValue": nil,
		"rewardRisk":    nil,
		"portfolioRisk": nil,
	}

	shares, ok := risk.SizePosition(payload.EntryPrice, payload.StopLoss, payload.RiskAmount, direction)
	if ok {
		result["shares"] = shares
		result["positionValue"] = risk.PositionValue(shares, payload.EntryPrice)
	}

	if payload.TakeProfit != nil {
		if ratio, ok := risk.RewardRisk(payload.EntryPrice, payload.StopLoss, *payload.TakeProfit, direction); ok {
			result["rewardRisk"] = ratio
		}
	}

	if payload.PortfolioSize != nil {
		if pct, ok := risk.PortfolioRiskPercent(payload.RiskAmount, *payload.PortfolioSize); ok {
			result["portfolioRisk"] = pct
		}
	}

	return c.JSON(result)
}
