package orders

import (
	"context"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.uber.org/zap"
)

// ConfirmOutcome is the result of a seller confirming an order. Stock holds the
// inline reconciliation result; StockWarning is set when the status change
// committed but the stock step failed.
type ConfirmOutcome struct {
	Transition   *TransitionResult   `json:"transition"`
	Stock        *ConfirmationResult `json:"stock,omitempty"`
	StockWarning string              `json:"stockWarning,omitempty"`
	Deferred     bool                `json:"deferred"`
}

// SellerFlow runs the two-step seller confirmation: the status change, then
// the seller-scoped stock decrement. With inline false the second step is left
// to the order event consumer.
type SellerFlow struct {
	status  *StatusService
	confirm *ConfirmationService
	inline  bool
	logger  observability.Logger
}

func NewSellerFlow(status *StatusService, confirm *ConfirmationService, inline bool, logger observability.Logger) *SellerFlow {
	return &SellerFlow{status: status, confirm: confirm, inline: inline, logger: logger}
}

// Confirm moves a pending order to confirmed and reconciles the seller's stock.
// A stock failure does not undo the status change.
func (f *SellerFlow) Confirm(ctx context.Context, orderID string, seller domain.Identity) (*ConfirmOutcome, error) {
	if !seller.IsVerifiedSeller() {
		return nil, &domain.ForbiddenError{Msg: "only verified sellers can confirm orders"}
	}

	transition, err := f.status.Transition(ctx, orderID, domain.StatusConfirmed, seller)
	if err != nil {
		return nil, err
	}

	outcome := &ConfirmOutcome{Transition: transition, Deferred: !f.inline}
	if !f.inline {
		return outcome, nil
	}

	stock, err := f.confirm.ConfirmForSeller(ctx, orderID, seller.UserID)
	outcome.Stock = stock
	if err != nil {
		outcome.StockWarning = "order confirmed but stock update failed: " + err.Error()
		f.logger.Warn("⚠️ Order confirmed with stock problem",
			zap.String("order_id", orderID),
			zap.String("seller_id", seller.UserID),
			zap.Error(err),
		)
	}
	return outcome, nil
}

// Reject moves a pending order to rejected.
func (f *SellerFlow) Reject(ctx context.Context, orderID string, seller domain.Identity) (*TransitionResult, error) {
	if !seller.IsVerifiedSeller() {
		return nil, &domain.ForbiddenError{Msg: "only verified sellers can reject orders"}
	}
	return f.status.Transition(ctx, orderID, domain.StatusRejected, seller)
}

// Reconcile re-runs the stock decrement for a confirmed order, for a seller
// whose earlier attempt failed part way.
func (f *SellerFlow) Reconcile(ctx context.Context, orderID string, seller domain.Identity) (*ConfirmationResult, error) {
	if !seller.IsVerifiedSeller() {
		return nil, &domain.ForbiddenError{Msg: "only verified sellers can reconcile stock"}
	}
	return f.confirm.ConfirmForSeller(ctx, orderID, seller.UserID)
}
