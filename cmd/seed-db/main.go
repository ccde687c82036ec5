// Command seed-db loads the book catalog from a JSON file and a set of demo
// coupons into the database. It is idempotent: rerunning refreshes existing
// rows instead of duplicating them.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/product"
	"github.com/xenking/bookcart/internal/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	products, err := decodeProducts(data)
	if err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}
	return nil
}

// decodeProducts streams the catalog array without building an intermediate
// map per element.
func decodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)

	var products []product.Product
	err := d.Arr(func(d *jx.Decoder) error {
		var p product.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "id":
				v, err := d.Str()
				p.ID = v
				return err
			case "title":
				v, err := d.Str()
				p.Title = v
				return err
			case "price":
				return decodeDecimal(d, &p.Price)
			case "discount":
				return decodeDecimal(d, &p.Discount)
			case "quantity":
				v, err := d.Int()
				p.Quantity = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	raw, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(raw.String())
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// Demo coupons for local development. Value multiplies the cart's item
// discount total; MaxValue caps the result.
func seedCoupons(ctx context.Context, repo *postgres.CouponRepository) error {
	now := time.Now()
	rules := []coupon.Rule{
		{
			Code:        "BOOKWORM",
			Description: "Doubles your item discounts, up to 50000",
			Value:       decimal.NewFromInt(2),
			MaxValue:    decimal.NewFromInt(50000),
			Enabled:     true,
			ValidFrom:   now,
			ValidUntil:  now.AddDate(1, 0, 0),
		},
		{
			Code:        "HALFBACK",
			Description: "Half your item discounts again, up to 20000",
			Value:       decimal.NewFromFloat(0.5),
			MaxValue:    decimal.NewFromInt(20000),
			Enabled:     true,
			ValidFrom:   now,
			ValidUntil:  now.AddDate(1, 0, 0),
		},
		{
			Code:        "EXPIRED1",
			Description: "Expired demo coupon",
			Value:       decimal.NewFromInt(1),
			MaxValue:    decimal.NewFromInt(10000),
			Enabled:     false,
			ValidFrom:   now.AddDate(-1, 0, 0),
			ValidUntil:  now.AddDate(0, 0, -1),
		},
	}

	slog.Info("upserting coupons", slog.Int("count", len(rules)))

	for i := range rules {
		rules[i].ID = uuid.New().String()
		if err := repo.Upsert(ctx, &rules[i]); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", rules[i].Code)
		}
	}
	return nil
}
