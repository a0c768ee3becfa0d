package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/api/handlers"
	"github.com/Cheertaboi/shop-service/internal/api/middleware"
	"github.com/Cheertaboi/shop-service/internal/metrics"
)

type Deps struct {
	Products handlers.ProductService
	Coupons  handlers.CouponService
	Carts    handlers.CartService
	Orders   handlers.OrderService

	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Limiter     *middleware.RateLimiter // nil disables rate limiting
	CORSOrigins []string
}

// NewRouter builds the HTTP router for the shop service
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Retry-After", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	productHandler := handlers.NewProductHandler(d.Products, d.Log)
	couponHandler := handlers.NewCouponHandler(d.Coupons, d.Log)
	cartHandler := handlers.NewCartHandler(d.Carts, d.Log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.CreateProduct)
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", couponHandler.CreateCoupon)
			r.Get("/", couponHandler.ListCoupons)
			r.Post("/validate", couponHandler.ValidateCoupon)
			r.Get("/applicable/{session_id}", couponHandler.GetApplicableCoupons)
			r.Get("/code/{code}", couponHandler.GetCouponByCode)
			r.Get("/{id}", couponHandler.GetCoupon)
			r.Put("/{id}", couponHandler.UpdateCoupon)
			r.Delete("/{id}", couponHandler.DeleteCoupon)
		})

		// {id} is the session id for reads and the cart item id for writes.
		r.Route("/cart", func(r chi.Router) {
			r.Post("/", cartHandler.AddToCart)
			r.Delete("/clear/{session_id}", cartHandler.ClearCart)
			r.Get("/{id}", cartHandler.GetCart)
			r.Get("/{id}/summary", cartHandler.GetSummary)
			r.Put("/{id}", cartHandler.UpdateCartItem)
			r.Delete("/{id}", cartHandler.RemoveCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/session/{session_id}", orderHandler.ListSessionOrders)
			r.Get("/{id}", orderHandler.GetOrder)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Shop service API","version":"1.0.0"}`))
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	return r
}
