package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Priority ranks a fired alert
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// AlertDecision is the outcome of evaluating a movement against the policy
type AlertDecision struct {
	Fire     bool
	Priority Priority
}

// Alert is the structured event handed to the downstream renderer
type Alert struct {
	Token            entities.Token             `json:"token"`
	Address          string                     `json:"address"`
	Movement         entities.MovementDescriptor `json:"movement"`
	Stats            entities.WalletStats       `json:"stats"`
	TotalHoldingsUSD float64                    `json:"total_holdings_usd"`
	Priority         Priority                   `json:"priority"`
}

// Notifier delivers fired alerts. Rendering them into human-readable
// text is the consumer's concern.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// AlertPolicy decides whether a movement warrants an alert. Meme-token
// whale activity is the primary signal and always fires high priority;
// utility-token activity fires low priority only for wallets whose
// tracked holdings exceed the configured threshold.
type AlertPolicy struct {
	snapshots        repositories.SnapshotRepository
	utilityThreshold float64
	logger           *zap.Logger
}

// NewAlertPolicy creates a new alert policy
func NewAlertPolicy(snapshots repositories.SnapshotRepository, utilityThreshold float64, logger *zap.Logger) *AlertPolicy {
	return &AlertPolicy{
		snapshots:        snapshots,
		utilityThreshold: utilityThreshold,
		logger:           logger,
	}
}

// Evaluate applies the policy to one movement. The returned holdings
// total covers all tracked tokens for the wallet and is reused in the
// alert payload.
func (p *AlertPolicy) Evaluate(ctx context.Context, token entities.Token, address string) (AlertDecision, float64, error) {
	holdings, err := p.totalHoldings(ctx, address)
	if err != nil {
		return AlertDecision{}, 0, err
	}

	if token.IsMeme {
		return AlertDecision{Fire: true, Priority: PriorityHigh}, holdings, nil
	}
	if holdings > p.utilityThreshold {
		return AlertDecision{Fire: true, Priority: PriorityLow}, holdings, nil
	}
	return AlertDecision{}, holdings, nil
}

func (p *AlertPolicy) totalHoldings(ctx context.Context, address string) (float64, error) {
	snapshots, err := p.snapshots.ListByAddress(ctx, address)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, s := range snapshots {
		total += s.USDValue
	}
	return total, nil
}

// LogNotifier renders alerts as structured log lines. It stands in for
// any real delivery channel.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs alerts
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the alert
func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.logger.Info("Whale alert",
		zap.String("priority", string(alert.Priority)),
		zap.String("token", alert.Token.Symbol),
		zap.String("address", alert.Address),
		zap.String("direction", string(alert.Movement.Direction)),
		zap.Float64("amount", alert.Movement.Amount),
		zap.Float64("usd_value", alert.Movement.USDValue),
		zap.Float64("total_holdings_usd", alert.TotalHoldingsUSD),
		zap.Float64("win_rate", alert.Stats.WinRate()),
		zap.Int64("total_trades", alert.Stats.TotalTrades),
		zap.Float64("total_pnl_usd", alert.Stats.TotalPnLUSD),
	)
	return nil
}
