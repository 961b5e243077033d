// Command minpaku is the operator CLI for the minpaku backend: it manages
// properties and bookings, inspects ledgers, and answers availability and
// pricing questions against the configured database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/minpaku-suite/minpaku-backend/internal/availability"
	"github.com/minpaku-suite/minpaku-backend/internal/bookings"
	"github.com/minpaku-suite/minpaku-backend/internal/ledger"
	"github.com/minpaku-suite/minpaku-backend/internal/pricing"
	"github.com/minpaku-suite/minpaku-backend/internal/properties"
	"github.com/minpaku-suite/minpaku-backend/pkg/config"
	"github.com/minpaku-suite/minpaku-backend/pkg/db"
	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	"github.com/minpaku-suite/minpaku-backend/pkg/logger"
	"github.com/minpaku-suite/minpaku-backend/pkg/metrics"
	"github.com/minpaku-suite/minpaku-backend/pkg/pagination"
	"github.com/minpaku-suite/minpaku-backend/pkg/redis"
)

const dateFormat = "2006-01-02"

type app struct {
	ctx          context.Context
	bookings     *bookings.Service
	ledger       ledger.Service
	properties   properties.Repository
	availability *availability.Service
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "minpaku"})

	cfg, err := config.Load()
	fatalIf(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "minpaku",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalIf(ctx, logg, "database", err)
	defer dbClient.Close()

	bookingRepo := bookings.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	propertyRepo := properties.NewRepository(dbClient.DB())

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	ledgerSvc, err := ledger.NewService(ledgerRepo, logg, bookingMetrics)
	fatalIf(ctx, logg, "ledger service", err)

	availabilitySvc, err := newAvailability(ctx, cfg, bookingRepo, logg)
	fatalIf(ctx, logg, "availability service", err)

	bookingSvc, err := bookings.NewService(bookingRepo, ledgerSvc, dbClient, logg,
		bookings.WithCacheInvalidator(availabilitySvc),
		bookings.WithMetrics(bookingMetrics))
	fatalIf(ctx, logg, "booking service", err)

	a := &app{
		ctx:          ctx,
		bookings:     bookingSvc,
		ledger:       ledgerSvc,
		properties:   propertyRepo,
		availability: availabilitySvc,
	}

	switch os.Args[1] {
	case "property":
		err = a.runProperty(os.Args[2:])
	case "booking":
		err = a.runBooking(os.Args[2:])
	case "ledger":
		err = a.runLedger(os.Args[2:])
	case "availability":
		err = a.runAvailability(os.Args[2:])
	case "quote":
		err = a.runQuote(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newAvailability(ctx context.Context, cfg *config.Config, repo bookings.Repository, logg *logger.Logger) (*availability.Service, error) {
	if !cfg.Redis.Enabled() {
		return availability.NewService(repo, nil, cfg.Availability, logg)
	}
	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Warn(ctx, "redis unavailable, availability cache disabled")
		return availability.NewService(repo, nil, cfg.Availability, logg)
	}
	return availability.NewService(repo, cache, cfg.Availability, logg)
}

func (a *app) runProperty(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: minpaku property <create|show|list>")
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("property create", flag.ExitOnError)
		name := fs.String("name", "", "property name")
		currency := fs.String("currency", string(enums.DefaultCurrency), "pricing currency")
		rate := fs.String("rate", "", "base nightly rate")
		maxGuests := fs.Int("max-guests", 4, "maximum guests")
		fs.Parse(args[1:])

		if *name == "" || *rate == "" {
			return fmt.Errorf("-name and -rate are required")
		}
		nightly, err := decimal.NewFromString(*rate)
		if err != nil {
			return fmt.Errorf("parse -rate: %w", err)
		}
		parsedCurrency, err := enums.ParseCurrency(*currency)
		if err != nil {
			return err
		}

		property := &models.Property{
			Name:            *name,
			Currency:        parsedCurrency,
			BaseNightlyRate: nightly,
			MaxGuests:       *maxGuests,
		}
		if err := a.properties.Save(a.ctx, property); err != nil {
			return err
		}
		return printJSON(property)

	case "show":
		fs := flag.NewFlagSet("property show", flag.ExitOnError)
		id := fs.String("id", "", "property id")
		fs.Parse(args[1:])

		propertyID, err := parseID(*id)
		if err != nil {
			return err
		}
		property, err := a.properties.Find(a.ctx, propertyID)
		if err != nil {
			return err
		}
		return printJSON(property)

	case "list":
		fs := flag.NewFlagSet("property list", flag.ExitOnError)
		limit := fs.Int("limit", pagination.DefaultLimit, "page size")
		offset := fs.Int("offset", 0, "page offset")
		fs.Parse(args[1:])

		list, err := a.properties.List(a.ctx, pagination.Params{Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		return printJSON(list)
	}
	return fmt.Errorf("unknown property command: %s", args[0])
}

func (a *app) runBooking(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: minpaku booking <create|show|list|transition|delete>")
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("booking create", flag.ExitOnError)
		property := fs.String("property", "", "property id")
		checkin := fs.String("checkin", "", "check-in date (YYYY-MM-DD)")
		checkout := fs.String("checkout", "", "check-out date (YYYY-MM-DD)")
		adults := fs.Int("adults", 1, "adult guests")
		children := fs.Int("children", 0, "child guests")
		fs.Parse(args[1:])

		propertyID, err := parseID(*property)
		if err != nil {
			return err
		}
		input := bookings.NewBookingInput{
			PropertyID: propertyID,
			Adults:     *adults,
			Children:   *children,
		}
		if input.Checkin, err = parseDate(*checkin); err != nil {
			return err
		}
		if input.Checkout, err = parseDate(*checkout); err != nil {
			return err
		}

		booking, err := a.bookings.Create(a.ctx, input)
		if err != nil {
			return err
		}
		return printJSON(booking.ToMap())

	case "show":
		fs := flag.NewFlagSet("booking show", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		fs.Parse(args[1:])

		bookingID, err := parseID(*id)
		if err != nil {
			return err
		}
		booking, err := a.bookings.Get(a.ctx, bookingID)
		if err != nil {
			return err
		}
		return printJSON(booking.ToMap())

	case "list":
		fs := flag.NewFlagSet("booking list", flag.ExitOnError)
		property := fs.String("property", "", "property id")
		state := fs.String("state", "", "filter by state")
		limit := fs.Int("limit", pagination.DefaultLimit, "page size")
		offset := fs.Int("offset", 0, "page offset")
		fs.Parse(args[1:])

		propertyID, err := parseID(*property)
		if err != nil {
			return err
		}
		input := bookings.ListByPropertyInput{
			Page: pagination.Params{Limit: *limit, Offset: *offset},
		}
		if *state != "" {
			parsed, err := enums.ParseBookingState(*state)
			if err != nil {
				return err
			}
			input.State = &parsed
		}

		list, err := a.bookings.ListByProperty(a.ctx, propertyID, input)
		if err != nil {
			return err
		}
		out := make([]map[string]any, 0, len(list))
		for _, booking := range list {
			out = append(out, booking.ToMap())
		}
		return printJSON(out)

	case "transition":
		fs := flag.NewFlagSet("booking transition", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		to := fs.String("to", "", "target state")
		paymentMethod := fs.String("payment-method", "", "payment method (required to confirm)")
		note := fs.String("note", "", "free-form note recorded on the transition")
		fs.Parse(args[1:])

		bookingID, err := parseID(*id)
		if err != nil {
			return err
		}
		target, err := enums.ParseBookingState(*to)
		if err != nil {
			return err
		}

		meta := map[string]any{}
		if *paymentMethod != "" {
			meta[bookings.MetaKeyPaymentMethod] = *paymentMethod
		}
		if *note != "" {
			meta["note"] = *note
		}

		result, booking, err := a.bookings.Transition(a.ctx, bookingID, target, meta)
		if err != nil {
			return err
		}
		if !result.IsSuccess() {
			return fmt.Errorf("transition rejected [%s]: %s", result.ErrorCode(), result.ErrorMessage())
		}
		return printJSON(booking.ToMap())

	case "delete":
		fs := flag.NewFlagSet("booking delete", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		force := fs.Bool("force", false, "delete non-draft bookings")
		fs.Parse(args[1:])

		bookingID, err := parseID(*id)
		if err != nil {
			return err
		}
		if err := a.bookings.Delete(a.ctx, bookingID, *force); err != nil {
			return err
		}
		fmt.Println("deleted", bookingID)
		return nil
	}
	return fmt.Errorf("unknown booking command: %s", args[0])
}

func (a *app) runLedger(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: minpaku ledger <list|summary|record>")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("ledger list", flag.ExitOnError)
		booking := fs.String("booking", "", "booking id")
		kind := fs.String("kind", "", "filter by event kind")
		limit := fs.Int("limit", pagination.DefaultLimit, "page size")
		offset := fs.Int("offset", 0, "page offset")
		fs.Parse(args[1:])

		bookingID, err := parseID(*booking)
		if err != nil {
			return err
		}
		input := ledger.ListInput{
			Page: pagination.Params{Limit: *limit, Offset: *offset},
		}
		if *kind != "" {
			parsed, err := enums.ParseLedgerEventKind(*kind)
			if err != nil {
				return err
			}
			input.Kind = &parsed
		}

		entries, err := a.ledger.List(a.ctx, bookingID, input)
		if err != nil {
			return err
		}
		return printJSON(entries)

	case "summary":
		fs := flag.NewFlagSet("ledger summary", flag.ExitOnError)
		booking := fs.String("booking", "", "booking id")
		fs.Parse(args[1:])

		bookingID, err := parseID(*booking)
		if err != nil {
			return err
		}
		summary, err := a.ledger.Summarize(a.ctx, bookingID)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "record":
		fs := flag.NewFlagSet("ledger record", flag.ExitOnError)
		booking := fs.String("booking", "", "booking id")
		kind := fs.String("kind", "", "event kind")
		amount := fs.String("amount", "0", "signed amount")
		currency := fs.String("currency", string(enums.DefaultCurrency), "amount currency")
		note := fs.String("note", "", "free-form note")
		fs.Parse(args[1:])

		bookingID, err := parseID(*booking)
		if err != nil {
			return err
		}
		parsedKind, err := enums.ParseLedgerEventKind(*kind)
		if err != nil {
			return err
		}
		parsedAmount, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("parse -amount: %w", err)
		}
		parsedCurrency, err := enums.ParseCurrency(*currency)
		if err != nil {
			return err
		}

		input := ledger.RecordEntryInput{
			BookingID: bookingID,
			Kind:      parsedKind,
			Amount:    parsedAmount,
			Currency:  parsedCurrency,
		}
		if *note != "" {
			input.Metadata = map[string]any{"note": *note}
		}

		entry, err := a.ledger.RecordEntry(a.ctx, input)
		if err != nil {
			return err
		}
		return printJSON(entry)
	}
	return fmt.Errorf("unknown ledger command: %s", args[0])
}

func (a *app) runAvailability(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: minpaku availability <occupancy|check>")
	}
	switch args[0] {
	case "occupancy":
		fs := flag.NewFlagSet("availability occupancy", flag.ExitOnError)
		property := fs.String("property", "", "property id")
		from := fs.String("from", "", "window start (YYYY-MM-DD)")
		to := fs.String("to", "", "window end (YYYY-MM-DD)")
		fs.Parse(args[1:])

		propertyID, err := parseID(*property)
		if err != nil {
			return err
		}
		fromDate, err := parseDate(*from)
		if err != nil {
			return err
		}
		toDate, err := parseDate(*to)
		if err != nil {
			return err
		}

		occupancy, err := a.availability.Occupancy(a.ctx, propertyID, fromDate, toDate)
		if err != nil {
			return err
		}
		return printJSON(occupancy)

	case "check":
		fs := flag.NewFlagSet("availability check", flag.ExitOnError)
		property := fs.String("property", "", "property id")
		checkin := fs.String("checkin", "", "check-in date (YYYY-MM-DD)")
		checkout := fs.String("checkout", "", "check-out date (YYYY-MM-DD)")
		fs.Parse(args[1:])

		propertyID, err := parseID(*property)
		if err != nil {
			return err
		}
		checkinDate, err := parseDate(*checkin)
		if err != nil {
			return err
		}
		checkoutDate, err := parseDate(*checkout)
		if err != nil {
			return err
		}

		available, err := a.availability.IsAvailable(a.ctx, propertyID, checkinDate, checkoutDate, nil)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"available": available})
	}
	return fmt.Errorf("unknown availability command: %s", args[0])
}

func (a *app) runQuote(args []string) error {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	property := fs.String("property", "", "property id")
	checkin := fs.String("checkin", "", "check-in date (YYYY-MM-DD)")
	checkout := fs.String("checkout", "", "check-out date (YYYY-MM-DD)")
	adults := fs.Int("adults", 1, "adult guests")
	children := fs.Int("children", 0, "child guests")
	fs.Parse(args)

	propertyID, err := parseID(*property)
	if err != nil {
		return err
	}
	listing, err := a.properties.Find(a.ctx, propertyID)
	if err != nil {
		return err
	}

	input := pricing.QuoteInput{
		Property: listing,
		Adults:   *adults,
		Children: *children,
	}
	if input.Checkin, err = parseDate(*checkin); err != nil {
		return err
	}
	if input.Checkout, err = parseDate(*checkout); err != nil {
		return err
	}

	quote, err := pricing.QuoteStay(input)
	if err != nil {
		return err
	}
	return printJSON(quote)
}

func parseID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("an id flag is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", value, err)
	}
	return id, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("a date flag is required")
	}
	date, err := time.ParseInLocation(dateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return date, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: minpaku <command> [flags]

commands:
  property      create, show and list properties
  booking       create, show, list, transition and delete bookings
  ledger        list, summarize and record ledger entries
  availability  occupancy maps and availability checks
  quote         price a prospective stay`)
}

func fatalIf(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
