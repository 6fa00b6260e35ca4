package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/darazboard/order-sync/internal/service/models/trend"
	"github.com/darazboard/order-sync/internal/service/services/ordersvc"
	"github.com/darazboard/order-sync/internal/service/services/syncsvc"
	createtoken "github.com/darazboard/order-sync/internal/transport/http/create_token"
	listorders "github.com/darazboard/order-sync/internal/transport/http/list_orders"
	producttrend "github.com/darazboard/order-sync/internal/transport/http/product_trend"
	syncorders "github.com/darazboard/order-sync/internal/transport/http/sync_orders"
	"github.com/darazboard/order-sync/pkg/http/middleware/trace"
	"github.com/darazboard/order-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type syncService interface {
	RunIncrementalSync(ctx context.Context) error
	RunBackfill(ctx context.Context) error
	AggregateOrders(ctx context.Context) (*syncsvc.AggregateResult, error)
}

type orderService interface {
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) (*ordersvc.OrderListing, error)
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
}

type trendService interface {
	GetProductTrend(ctx context.Context) ([]trend.ProductTrend, error)
}

type tokenService interface {
	CreateAccessToken(ctx context.Context, code string) (json.RawMessage, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	syncSvc  syncService
	orderSvc orderService
	trendSvc trendService
	tokenSvc tokenService
}

func NewHTTPTransport(
	syncSvc syncService,
	orderSvc orderService,
	trendSvc trendService,
	tokenSvc tokenService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		syncSvc:  syncSvc,
		orderSvc: orderSvc,
		trendSvc: trendSvc,
		tokenSvc: tokenSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/daraz", func(r chi.Router) {
		r.Post("/sync", h.runSync)
		r.Post("/backfill", h.runBackfill)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/aggregate", h.aggregateOrders)
		r.Get("/orders/{orderID}", h.getOrder)
		r.Get("/products/trend", h.productTrend)
		r.Get("/token", h.createToken)
	})
}

func (h *HTTPTransport) runSync(w http.ResponseWriter, r *http.Request) {
	syncorders.RunSync(w, r, h.syncSvc)
}

func (h *HTTPTransport) runBackfill(w http.ResponseWriter, r *http.Request) {
	syncorders.RunBackfill(w, r, h.syncSvc)
}

func (h *HTTPTransport) aggregateOrders(w http.ResponseWriter, r *http.Request) {
	syncorders.AggregateOrders(w, r, h.syncSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	listorders.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) productTrend(w http.ResponseWriter, r *http.Request) {
	producttrend.GetProductTrend(w, r, h.trendSvc)
}

func (h *HTTPTransport) createToken(w http.ResponseWriter, r *http.Request) {
	createtoken.CreateToken(w, r, h.tokenSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
