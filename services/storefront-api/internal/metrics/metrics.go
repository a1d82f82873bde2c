package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total orders placed",
	})
	OrderStatusChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_changes_total",
		Help: "Order status changes by target status",
	}, []string{"status"})
	StockRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_rejections_total",
		Help: "Requests refused because of insufficient stock",
	})
	CheckoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Cart checkouts by result",
	}, []string{"result"})
	CartAdjustmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_adjustments_total",
		Help: "Cart items changed by reconciliation, by kind",
	}, []string{"kind"})
	UsersDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_users_deleted_total",
		Help: "Users removed by administrators",
	})
)

func init() {
	prometheus.MustRegister(
		OrdersPlacedTotal,
		OrderStatusChangesTotal,
		StockRejectionsTotal,
		CheckoutsTotal,
		CartAdjustmentsTotal,
		UsersDeletedTotal,
	)
}
