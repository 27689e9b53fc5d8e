package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heetvora/chronomart-backend/api/controllers"
	"github.com/heetvora/chronomart-backend/api/middleware"
	"github.com/heetvora/chronomart-backend/internal/cart"
	checkoutsvc "github.com/heetvora/chronomart-backend/internal/checkout"
	"github.com/heetvora/chronomart-backend/internal/coupons"
	"github.com/heetvora/chronomart-backend/internal/drops"
	"github.com/heetvora/chronomart-backend/internal/giftcards"
	"github.com/heetvora/chronomart-backend/internal/orders"
	"github.com/heetvora/chronomart-backend/internal/payments"
	"github.com/heetvora/chronomart-backend/internal/policies"
	"github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/internal/users"
	"github.com/heetvora/chronomart-backend/internal/wishlist"
	"github.com/heetvora/chronomart-backend/pkg/config"
	"github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Users     users.Service
	Products  products.Service
	Cart      cart.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Coupons   coupons.Service
	GiftCards giftcards.Service
	Payments  payments.Service
	Drops     drops.Service
	Policies  policies.Service
	Wishlist  wishlist.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/users/register", controllers.Register(svcs.Users, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/users/login", controllers.Login(svcs.Users, logg))
		})
		r.Get("/products", controllers.ListProducts(svcs.Products, logg))
		r.Get("/products/{productId}", controllers.GetProduct(svcs.Products, logg))
		r.Post("/coupons/validate", controllers.ValidateCoupon(svcs.Coupons, logg))
		r.Get("/giftcards/{code}", controllers.GetGiftCardBalance(svcs.GiftCards, logg))
		r.Get("/featured-drops", controllers.ListActiveDrops(svcs.Drops, logg))
		r.Get("/policies/{key}", controllers.GetPolicy(svcs.Policies, logg))
		r.Post("/payments/gateway/callback", controllers.PaymentCallback(svcs.Payments, logg))

		// Authenticated storefront surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/users/profile", func(r chi.Router) {
				r.Get("/", controllers.GetProfile(svcs.Users, logg))
				r.Put("/", controllers.UpdateProfile(svcs.Users, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(svcs.Cart, logg))
				r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
				r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
				r.Put("/items/{productId}", controllers.UpdateCartItem(svcs.Cart, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

			r.Get("/orders/my", controllers.ListMyOrders(svcs.Orders, logg))
			r.Get("/orders/{orderId}", controllers.GetOrder(svcs.Orders, logg))

			r.Post("/payments/gateway/initiate", controllers.InitiatePayment(svcs.Payments, logg))

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.ListWishlist(svcs.Wishlist, logg))
				r.Post("/{productId}", controllers.AddWishlistItem(svcs.Wishlist, logg))
				r.Delete("/{productId}", controllers.RemoveWishlistItem(svcs.Wishlist, logg))
			})
		})

		// Back office surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Get("/users", controllers.AdminListUsers(svcs.Users, logg))

			r.Post("/products", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Put("/products/{productId}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/products/{productId}", controllers.AdminDeleteProduct(svcs.Products, logg))

			r.Get("/orders", controllers.AdminListOrders(svcs.Orders, logg))
			r.Put("/orders/{orderId}/pay", controllers.AdminMarkPaid(svcs.Orders, logg))
			r.Put("/orders/{orderId}/ship", controllers.AdminMarkShipped(svcs.Orders, logg))
			r.Put("/orders/{orderId}/deliver", controllers.AdminMarkDelivered(svcs.Orders, logg))
			r.Put("/orders/{orderId}/cancel", controllers.AdminCancelOrder(svcs.Orders, logg))
			r.Put("/orders/{orderId}/refund", controllers.AdminRefundOrder(svcs.Orders, logg))

			r.Post("/coupons", controllers.AdminCreateCoupon(svcs.Coupons, logg))
			r.Get("/coupons", controllers.AdminListCoupons(svcs.Coupons, logg))
			r.Put("/coupons/{couponId}", controllers.AdminUpdateCoupon(svcs.Coupons, logg))
			r.Delete("/coupons/{couponId}", controllers.AdminDeleteCoupon(svcs.Coupons, logg))

			r.Post("/giftcards", controllers.AdminIssueGiftCard(svcs.GiftCards, logg))
			r.Get("/giftcards", controllers.AdminListGiftCards(svcs.GiftCards, logg))
			r.Post("/giftcards/{code}/redeem", controllers.AdminRedeemGiftCard(svcs.GiftCards, logg))
			r.Delete("/giftcards/{code}", controllers.AdminDeactivateGiftCard(svcs.GiftCards, logg))

			r.Get("/featured-drops/all", controllers.AdminListDrops(svcs.Drops, logg))
			r.Post("/featured-drops", controllers.AdminCreateDrop(svcs.Drops, logg))
			r.Put("/featured-drops/{dropId}", controllers.AdminUpdateDrop(svcs.Drops, logg))
			r.Delete("/featured-drops/{dropId}", controllers.AdminDeleteDrop(svcs.Drops, logg))

			r.Put("/policies/{key}", controllers.AdminUpsertPolicy(svcs.Policies, logg))
		})
	})

	return r
}
