package service

import (
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	dailySalesDays  = 7
	topProductLimit = 5
	dateLayout      = "2006-01-02"
)

type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Stats struct {
	TotalRevenue    decimal.Decimal           `json:"totalRevenue"`
	TotalOrders     int64                     `json:"totalOrders"`
	PendingOrders   int64                     `json:"pendingOrders"`
	CompletedOrders int64                     `json:"completedOrders"`
	DailySales      []DailySales              `json:"dailySales"`
	ProductSales    []repository.ProductSales `json:"productSales"`
}

type Finance struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type Analytics struct {
	Finance       Finance                    `json:"finance"`
	Visitors      int64                      `json:"visitors"`
	CategorySales []repository.CategorySales `json:"categorySales"`
}

// DashboardService computes back office figures on every call; nothing is
// cached.
type DashboardService interface {
	Stats() (*Stats, error)
	Analytics() (*Analytics, error)
}

type dashboardService struct {
	statsRepo repository.StatsRepository
	visitRepo repository.VisitRepository
	now       func() time.Time
}

func NewDashboardService(statsRepo repository.StatsRepository, visitRepo repository.VisitRepository) DashboardService {
	return &dashboardService{
		statsRepo: statsRepo,
		visitRepo: visitRepo,
		now:       time.Now,
	}
}

func (s *dashboardService) Stats() (*Stats, error) {
	totals, err := s.statsRepo.Totals(model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	all, err := s.statsRepo.Totals()
	if err != nil {
		return nil, err
	}
	pending, err := s.statsRepo.CountByStatus(model.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	completed, err := s.statsRepo.CountByStatus(model.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}

	daily, err := s.dailySales()
	if err != nil {
		return nil, err
	}

	products, err := s.statsRepo.TopProducts(topProductLimit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []repository.ProductSales{}
	}

	logger.Debug("Dashboard stats computed", map[string]interface{}{
		"orders":  all.Orders,
		"revenue": totals.Revenue.String(),
	})

	return &Stats{
		TotalRevenue:    totals.Revenue,
		TotalOrders:     all.Orders,
		PendingOrders:   pending,
		CompletedOrders: completed,
		DailySales:      daily,
		ProductSales:    products,
	}, nil
}

// dailySales returns one entry per calendar day, oldest first, ending today.
// Days without orders have zero revenue.
func (s *dashboardService) dailySales() ([]DailySales, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(dailySalesDays - 1))

	amounts, err := s.statsRepo.OrderAmountsSince(start, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal, dailySalesDays)
	for _, a := range amounts {
		key := a.CreatedAt.UTC().Format(dateLayout)
		byDay[key] = byDay[key].Add(a.Total)
	}

	days := make([]DailySales, 0, dailySalesDays)
	for i := 0; i < dailySalesDays; i++ {
		key := start.AddDate(0, 0, i).Format(dateLayout)
		days = append(days, DailySales{Date: key, Revenue: byDay[key]})
	}
	return days, nil
}

func (s *dashboardService) Analytics() (*Analytics, error) {
	delivered, err := s.statsRepo.TotalsWithStatus(model.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	visitors, err := s.visitRepo.CountDistinctVisitors()
	if err != nil {
		return nil, err
	}
	categories, err := s.statsRepo.SalesByCategory()
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []repository.CategorySales{}
	}

	return &Analytics{
		Finance:       Finance{Revenue: delivered.Revenue, Orders: delivered.Orders},
		Visitors:      visitors,
		CategorySales: categories,
	}, nil
}
