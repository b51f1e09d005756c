package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"ecofinds/config"
	"ecofinds/controllers"
	"ecofinds/middleware"
	"ecofinds/routes"
	"ecofinds/services"
	"ecofinds/store"
	"ecofinds/store/memstore"
	"ecofinds/store/mongostore"
	"ecofinds/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
)

// backend is an opened store together with its underlying database, if any.
type backend struct {
	store store.Store
	db    *mongo.Database
	close func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Println("Using the in-memory store; data is lost on exit.")
		return &backend{
			store: memstore.New(),
			close: func(context.Context) error { return nil },
		}, nil
	}

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Printf("Connected to MongoDB database %s", cfg.Database)
	return &backend{
		store: mongostore.New(db),
		db:    db,
		close: client.Disconnect,
	}, nil
}

// newHandler assembles services, controllers and routes over st.
func newHandler(cfg *config.Config, st store.Store, mailer services.Mailer, accessLog io.Writer) http.Handler {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)

	catalog := services.NewCatalogService(st.Products, st.Users)
	carts := services.NewCartService(st.Carts, st.Products)
	orders := services.NewOrderService(st, mailer, cfg.Checkout.Hardened)
	auth := services.NewAuthService(st.Users, tokens, mailer)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Users:    controllers.NewUserController(auth),
		Products: controllers.NewProductController(catalog),
		Carts:    controllers.NewCartController(carts),
		Orders:   controllers.NewOrderController(orders),
	}, tokens)

	return middleware.Wrap(router, accessLog, cfg.CORSAllowOrigins, cfg.RequestTimeout)
}

func loadConfig(flags *globalFlags, opts ...config.Option) (*config.Config, error) {
	opts = append([]config.Option{config.WithStoreDriver(flags.store)}, opts...)
	cfg, err := config.Load(flags.configPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
