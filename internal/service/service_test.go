package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"portfee/internal/calculation"
	"portfee/internal/database"
	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// env wires every service over one in-memory database.
type env struct {
	db        *gorm.DB
	reference repository.ReferenceRepository
	formRepo  repository.FormRepository
	userRepo  repository.UserRepository
	audit     AuditService
	users     UserService
	taxRates  TaxRatesService
	taxes     TaxService
	forms     FormService
	seed      SeedService
	events    *recordingPublisher

	authority model.PortAuthority
	nuuk      model.Port
	agency    model.ShippingAgent
	site      model.DisembarkmentSite

	taxAuthority, portAuthority, agent, ship *model.User
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

var testSecret = []byte("test-secret")

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	perms, err := permission.New(nil)
	require.NoError(t, err)

	e := &env{db: db, events: &recordingPublisher{}}
	tx := repository.NewTransactionManager(db)
	ratesRepo := repository.NewTaxRatesRepository(db)
	e.reference = repository.NewReferenceRepository(db)
	e.formRepo = repository.NewFormRepository(db)
	e.userRepo = repository.NewUserRepository(db)
	guard := &ScheduleGuard{}

	e.audit = NewAuditService(repository.NewAuditRepository(db), nil)
	e.users = NewUserService(e.userRepo, testSecret, nil)
	e.taxRates = NewTaxRatesService(ratesRepo, tx, guard, perms, e.audit, nil)
	e.taxes = NewTaxService(ratesRepo, e.formRepo, guard, calculation.NewCalculator(nil), e.audit, nil)
	e.forms = NewFormService(e.formRepo, e.reference, tx, e.taxes, perms, e.audit, e.events, nil)
	e.seed = NewSeedService(e.reference, e.userRepo, e.users, e.taxRates, e.forms, nil)

	ctx := context.Background()
	e.authority = model.PortAuthority{Name: "Mittarfeqarfiit"}
	require.NoError(t, e.reference.CreatePortAuthority(ctx, &e.authority))
	e.nuuk = model.Port{Name: "Nuuk", PortAuthorityID: &e.authority.ID}
	require.NoError(t, e.reference.CreatePort(ctx, &e.nuuk))
	e.agency = model.ShippingAgent{Name: "Blue Water Shipping"}
	require.NoError(t, e.reference.CreateShippingAgent(ctx, &e.agency))
	e.site = model.DisembarkmentSite{Name: "Qassiarsuk", Municipality: model.MunicipalityKujalleq}
	require.NoError(t, e.reference.CreateDisembarkmentSite(ctx, &e.site))

	e.taxAuthority = e.user(t, CreateUserRequest{Username: "skat", Password: "secret1", Group: model.GroupTaxAuthority})
	e.portAuthority = e.user(t, CreateUserRequest{Username: "havn", Password: "secret1", Group: model.GroupPortAuthority, PortAuthorityID: &e.authority.ID})
	e.agent = e.user(t, CreateUserRequest{Username: "agent", Password: "secret1", Group: model.GroupShippingAgent, ShippingAgentID: &e.agency.ID})
	e.ship = e.user(t, CreateUserRequest{Username: "9074729", Password: "secret1", Group: model.GroupShip})
	return e
}

func (e *env) user(t *testing.T, req CreateUserRequest) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), req)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func utcDate(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

// flatSchedule is one bracket of 1.10 per ton and day for any port and
// vessel, 50 per cruise passenger and 50 per landed passenger in Kujalleq.
func flatSchedule(start *time.Time) TaxRatesRequest {
	return TaxRatesRequest{
		StartDatetime: start,
		PaxTaxRate:    ptr("50"),
		PortTaxRates: []PortTaxRateInput{
			{GTStart: 0, PortTaxRate: "1.10"},
		},
		DisembarkmentTaxRates: []DisembarkmentTaxRateInput{
			{Municipality: model.MunicipalityKujalleq, DisembarkmentTax: "50"},
		},
	}
}

func (e *env) freighterRequest() FormRequest {
	return FormRequest{
		PortOfCallID:        &e.nuuk.ID,
		VesselName:          "Mary Arctica",
		VesselIMO:           "9074729",
		ShippingAgentID:     &e.agency.ID,
		VesselType:          model.VesselTypeFreighter,
		GrossTonnage:        ptr(1000),
		DatetimeOfArrival:   utcDate(2025, 3, 1, 10),
		DatetimeOfDeparture: utcDate(2025, 3, 3, 8),
	}
}

func newID() uuid.UUID { return uuid.New() }
