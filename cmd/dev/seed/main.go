package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/property"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

// Seeds a demo landlord, tenant and listed property, then opens a viewing
// request so the booking endpoints have something to act on.
func main() {
	var (
		landlordEmail = flag.String("landlord", "landlord@julaaz.dev", "demo landlord email")
		tenantEmail   = flag.String("tenant", "tenant@julaaz.dev", "demo tenant email")
		password      = flag.String("password", "password123", "password for both demo accounts")
		rent          = flag.String("rent", "1200000.00", "annual rent for the demo property (NGN)")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	users := user.NewRepository(pool)
	landlord, err := ensureUser(ctx, users, *landlordEmail, "Demo Landlord", *password, user.RoleLandlord)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed landlord: %v\n", err)
		os.Exit(1)
	}
	tenant, err := ensureUser(ctx, users, *tenantEmail, "Demo Tenant", *password, user.RoleTenant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed tenant: %v\n", err)
		os.Exit(1)
	}

	annualRent, err := decimal.NewFromString(*rent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse -rent: %v\n", err)
		os.Exit(1)
	}

	props := property.NewRepository(pool)
	prop, err := ensureProperty(ctx, props, landlord.ID, annualRent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed property: %v\n", err)
		os.Exit(1)
	}

	svc := &booking.Service{Store: booking.NewRepository(pool)}
	bk, err := svc.RequestViewing(ctx, prop.ID, landlord.ID, tenant.ID, booking.TypeLongTerm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request viewing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seed complete.\n")
	fmt.Printf("landlord_id=%s email=%s\n", landlord.ID, landlord.Email)
	fmt.Printf("tenant_id=%s email=%s\n", tenant.ID, tenant.Email)
	fmt.Printf("property_id=%s annual_rent=%s\n", prop.ID, prop.AnnualRent.StringFixed(2))
	fmt.Printf("booking_id=%s status=%s\n", bk.ID, bk.Status)

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("- Log in as the landlord and schedule the viewing:\n")
	fmt.Printf("  POST /v1/bookings/%s/actions {\"action\":\"scheduleViewing\",\"viewingAt\":\"...\"}\n", bk.ID)
	fmt.Printf("- Then walk the tenant through the rest of the flow.\n")
}

func ensureUser(ctx context.Context, repo *user.Repository, email, name, password string, role user.Role) (*user.User, error) {
	u, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, email, name, string(hash), role)
}

func ensureProperty(ctx context.Context, repo *property.Repository, landlordID string, annualRent decimal.Decimal) (property.Property, error) {
	existing, err := repo.ListByLandlord(ctx, landlordID)
	if err != nil {
		return property.Property{}, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	return repo.Insert(ctx, property.Property{
		LandlordID:  landlordID,
		Title:       "2 Bedroom Apartment, Lekki Phase 1",
		Description: "Seeded demo listing",
		Kind:        property.KindApartment,
		City:        "Lagos",
		Address:     "14 Admiralty Way, Lekki Phase 1",
		Bedrooms:    2,
		AnnualRent:  annualRent,
		Listed:      true,
	})
}
