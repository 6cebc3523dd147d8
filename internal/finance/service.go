package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/enums"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
)

// maxRangeDays bounds dashboard queries to something renderable.
const maxRangeDays = 366

// DailyStat is one dashboard row: orders placed and revenue recognized on a
// single day. Canceled orders are excluded.
type DailyStat struct {
	Day           string          `json:"day"`
	OrderCount    int64           `json:"order_count"`
	RevenueCents  int64           `json:"revenue_cents"`
	Revenue       decimal.Decimal `json:"revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// StatusTotals aggregates one order status across the whole range.
type StatusTotals struct {
	OrderCount   int64           `json:"order_count"`
	RevenueCents int64           `json:"revenue_cents"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Dashboard is the finance overview for a date range.
type Dashboard struct {
	From      string       `json:"from"`
	To        string       `json:"to"`
	Days      []DailyStat  `json:"days"`
	Delivered StatusTotals `json:"delivered"`
	Canceled  StatusTotals `json:"canceled"`
}

// Service computes the finance dashboard aggregates.
type Service interface {
	Overview(ctx context.Context, from, to time.Time) (*Dashboard, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs a finance service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db}, nil
}

type dailyRow struct {
	Day          string
	OrderCount   int64
	RevenueCents int64
}

type totalsRow struct {
	OrderCount   int64
	RevenueCents int64
}

func (s *service) Overview(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("date range exceeds %d days", maxRangeDays))
	}
	end := to.Add(24 * time.Hour)

	var rows []dailyRow
	err := s.db.WithContext(ctx).
		Table("orders").
		Select("date(created_at) AS day, COUNT(*) AS order_count, COALESCE(SUM(total_cents), 0) AS revenue_cents").
		Where("created_at >= ? AND created_at < ?", from, end).
		Where("status <> ?", enums.OrderStatusCanceled).
		Group("date(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating daily revenue")
	}

	dashboard := &Dashboard{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
		Days: make([]DailyStat, 0, len(rows)),
	}
	for _, row := range rows {
		stat := DailyStat{
			Day:          row.Day,
			OrderCount:   row.OrderCount,
			RevenueCents: row.RevenueCents,
			Revenue:      centsToDecimal(row.RevenueCents),
		}
		if row.OrderCount > 0 {
			stat.AvgOrderValue = stat.Revenue.
				Div(decimal.NewFromInt(row.OrderCount)).
				Round(2)
		}
		dashboard.Days = append(dashboard.Days, stat)
	}

	delivered, err := s.statusTotals(ctx, from, end, enums.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	canceled, err := s.statusTotals(ctx, from, end, enums.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}
	dashboard.Delivered = delivered
	dashboard.Canceled = canceled

	return dashboard, nil
}

func (s *service) statusTotals(ctx context.Context, from, end time.Time, status enums.OrderStatus) (StatusTotals, error) {
	var row totalsRow
	err := s.db.WithContext(ctx).
		Table("orders").
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_cents), 0) AS revenue_cents").
		Where("created_at >= ? AND created_at < ?", from, end).
		Where("status = ?", status).
		Scan(&row).Error
	if err != nil {
		return StatusTotals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
			fmt.Sprintf("aggregating %s totals", status))
	}
	return StatusTotals{
		OrderCount:   row.OrderCount,
		RevenueCents: row.RevenueCents,
		Revenue:      centsToDecimal(row.RevenueCents),
	}, nil
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
