package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shophub/storefront/internal/auth"
	"github.com/shophub/storefront/internal/cart"
	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/checkout"
	"github.com/shophub/storefront/internal/storage"
	"github.com/shophub/storefront/pkg/config"
	"github.com/shophub/storefront/pkg/db"
	"github.com/shophub/storefront/pkg/enums"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/metrics"
	"go.uber.org/multierr"
)

const usage = `usage: storefront <command> [args]

commands:
  products [search <term> | category <name> | sort <name|price-low|price-high|rating>]
  categories
  cart [show | add <product-id> | remove <product-id> | set <product-id> <qty> | clear]
  login <username> <password>
  register <email> <username> <password> <first> <last>
  logout
  profile [name <value> | email <value> | phone <value>]
  orders
  checkout <first> <last> <email> <phone> <street> <city> <state> <zip> <card> <name> <expiry> <cvv>
`

type app struct {
	cfg      *config.Config
	logg     *logger.Logger
	catalog  *catalog.Client
	cart     *cart.Engine
	auth     *auth.Engine
	checkout *checkout.Service
	closers  []func() error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	a, err := bootstrap(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storefront", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.close(); err != nil {
			logg.Error(ctx, "error during teardown", err)
		}
	}()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, error) {
	m := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)

	store, closers, err := openStore(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog, logg, m)
	if err != nil {
		return nil, err
	}

	cartEngine := cart.NewEngine(ctx, store, logg, m)
	authEngine := auth.NewEngine(ctx, catalogClient, store, cfg.JWT, logg, m)

	return &app{
		cfg:      cfg,
		logg:     logg,
		catalog:  catalogClient,
		cart:     cartEngine,
		auth:     authEngine,
		checkout: checkout.NewService(cartEngine, authEngine, logg),
		closers:  closers,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, []func() error, error) {
	switch cfg.Storage.ParsedBackend() {
	case enums.StorageBackendMemory:
		store := storage.NewMemoryStore()
		return store, []func() error{store.Close}, nil
	case enums.StorageBackendFile:
		store, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, []func() error{store.Close}, nil
	case enums.StorageBackendRedis:
		store, err := storage.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, []func() error{store.Close}, nil
	case enums.StorageBackendSQLite:
		client, err := db.New(ctx, cfg.Storage.SQLitePath, logg)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			closeErr := client.Close()
			return nil, nil, multierr.Append(err, closeErr)
		}
		store, err := storage.NewGormStore(client.DB())
		if err != nil {
			closeErr := client.Close()
			return nil, nil, multierr.Append(err, closeErr)
		}
		return store, []func() error{store.Close, client.Close}, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
}

func (a *app) close() error {
	var err error
	for _, closer := range a.closers {
		err = multierr.Append(err, closer())
	}
	return err
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "products":
		return a.runProducts(ctx, args[1:])
	case "categories":
		return a.runCategories(ctx)
	case "cart":
		return a.runCart(ctx, args[1:])
	case "login":
		return a.runLogin(ctx, args[1:])
	case "register":
		return a.runRegister(ctx, args[1:])
	case "logout":
		a.auth.Logout(ctx)
		fmt.Println("signed out")
		return nil
	case "profile":
		return a.runProfile(ctx, args[1:])
	case "orders":
		return a.runOrders()
	case "checkout":
		return a.runCheckout(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
}

func (a *app) runProducts(ctx context.Context, args []string) error {
	products, err := a.catalog.GetAllProducts(ctx)
	if err != nil {
		return err
	}

	if len(args) >= 2 {
		switch args[0] {
		case "search":
			products = catalog.SearchProducts(products, args[1])
		case "category":
			products = catalog.FilterByCategory(products, args[1])
		case "sort":
			products = catalog.SortProducts(products, catalog.SortKey(args[1]))
		default:
			return fmt.Errorf("unknown products subcommand %q", args[0])
		}
	}

	for _, p := range products {
		fmt.Printf("%4d  $%-8s %-20s %s\n", p.ID, p.Price.StringFixed(2), p.Category, p.Title)
	}
	return nil
}

func (a *app) runCategories(ctx context.Context) error {
	categories, err := a.catalog.GetCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func (a *app) runCart(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		return a.printCart()
	}

	switch args[0] {
	case "add":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		product, err := a.catalog.GetProductByID(ctx, id)
		if err != nil {
			return err
		}
		a.cart.AddItem(ctx, *product)
	case "remove":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		a.cart.RemoveItem(ctx, id)
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("usage: cart set <product-id> <qty>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		a.cart.SetQuantity(ctx, id, qty)
	case "clear":
		a.cart.Clear(ctx)
	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
	return a.printCart()
}

func (a *app) printCart() error {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, line := range lines {
		fmt.Printf("%4d  x%-3d $%-8s %s\n", line.ProductID, line.Quantity, line.UnitPrice.StringFixed(2), line.Title)
	}
	summary := a.cart.Summary()
	fmt.Printf("\nitems:    %d\n", summary.ItemCount)
	fmt.Printf("subtotal: $%s\n", summary.Subtotal.StringFixed(2))
	fmt.Printf("tax:      $%s\n", summary.Tax.StringFixed(2))
	fmt.Printf("shipping: $%s\n", summary.Shipping.StringFixed(2))
	fmt.Printf("total:    $%s\n", summary.Total.StringFixed(2))
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}
	session, err := a.auth.Login(ctx, catalog.Credentials{Username: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", session.Name, session.Email)
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: register <email> <username> <password> <first> <last>")
	}
	session, err := a.auth.Register(ctx, catalog.RegistrationProfile{
		Email:     args[0],
		Username:  args[1],
		Password:  args[2],
		FirstName: args[3],
		LastName:  args[4],
	})
	if err != nil {
		return err
	}
	fmt.Printf("account created for %s (id %d)\n", session.Name, session.ID)
	return nil
}

func (a *app) runProfile(ctx context.Context, args []string) error {
	session := a.auth.Session()
	if session == nil {
		return fmt.Errorf("not signed in")
	}

	if len(args) >= 2 {
		value := strings.Join(args[1:], " ")
		var update auth.ProfileUpdate
		switch args[0] {
		case "name":
			update.Name = &value
		case "email":
			update.Email = &value
		case "phone":
			update.Phone = &value
		default:
			return fmt.Errorf("unknown profile field %q", args[0])
		}
		session = a.auth.UpdateProfile(ctx, update)
	}

	fmt.Printf("name:    %s\n", session.Name)
	fmt.Printf("email:   %s\n", session.Email)
	fmt.Printf("phone:   %s\n", session.Phone)
	fmt.Printf("address: %s\n", session.Address)
	fmt.Printf("joined:  %s\n", session.JoinedAt.Format("2006-01-02"))
	return nil
}

func (a *app) runOrders() error {
	history := a.auth.Orders()
	if len(history) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, order := range history {
		fmt.Printf("#%s  %s  $%s  %s  %d item(s)\n",
			order.ID,
			order.CreatedAt.Format("2006-01-02"),
			order.Total.StringFixed(2),
			order.Status,
			len(order.Items),
		)
	}
	return nil
}

func (a *app) runCheckout(ctx context.Context, args []string) error {
	if len(args) < 12 {
		return fmt.Errorf("usage: checkout <first> <last> <email> <phone> <street> <city> <state> <zip> <card> <name> <expiry> <cvv>")
	}
	order, err := a.checkout.PlaceOrder(ctx,
		checkout.ShippingDetails{
			FirstName: args[0],
			LastName:  args[1],
			Email:     args[2],
			Phone:     args[3],
			Address:   args[4],
			City:      args[5],
			State:     args[6],
			ZipCode:   args[7],
			Country:   "USA",
		},
		checkout.PaymentCard{
			CardNumber: args[8],
			CardName:   args[9],
			ExpiryDate: checkout.FormatExpiry(args[10]),
			CVV:        args[11],
		},
	)
	if err != nil {
		return err
	}
	fmt.Printf("order #%s placed, total $%s, paid with %s\n", order.ID, order.Total.StringFixed(2), order.PaymentMethod)
	return nil
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("product id required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}
