package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML document read by the seeder. References between
// records are by name; users are referenced by username.
type Fixtures struct {
	PortAuthorities    []AuthorityFixture `yaml:"port_authorities"`
	Ports              []PortFixture      `yaml:"ports"`
	ShippingAgents     []AgentFixture     `yaml:"shipping_agents"`
	DisembarkmentSites []SiteFixture      `yaml:"disembarkment_sites"`
	Users              []UserFixture      `yaml:"users"`
	TaxRates           []TaxRatesFixture  `yaml:"tax_rates"`
	Forms              []FormFixture      `yaml:"forms"`
}

type AuthorityFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type PortFixture struct {
	Name          string `yaml:"name"`
	PortAuthority string `yaml:"port_authority"`
}

type AgentFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type SiteFixture struct {
	Name                    string             `yaml:"name"`
	Municipality            model.Municipality `yaml:"municipality"`
	IsOutsidePopulatedAreas bool               `yaml:"is_outside_populated_areas"`
}

type UserFixture struct {
	Username      string      `yaml:"username"`
	Email         string      `yaml:"email"`
	Password      string      `yaml:"password"`
	Group         model.Group `yaml:"group"`
	IsSuperuser   bool        `yaml:"is_superuser"`
	PortAuthority string      `yaml:"port_authority"`
	Port          string      `yaml:"port"`
	ShippingAgent string      `yaml:"shipping_agent"`
}

type TaxRatesFixture struct {
	Start                 *time.Time                    `yaml:"start"`
	PaxTaxRate            *string                       `yaml:"pax_tax_rate"`
	PortTaxRates          []PortTaxRateFixture          `yaml:"port_tax_rates"`
	DisembarkmentTaxRates []DisembarkmentTaxRateFixture `yaml:"disembarkment_tax_rates"`
}

type PortTaxRateFixture struct {
	Port              string            `yaml:"port"`
	VesselType        *model.VesselType `yaml:"vessel_type"`
	GTStart           int               `yaml:"gt_start"`
	GTEnd             *int              `yaml:"gt_end"`
	Rate              string            `yaml:"rate"`
	RoundGrossTonUpTo int               `yaml:"round_gross_ton_up_to"`
}

type DisembarkmentTaxRateFixture struct {
	Municipality model.Municipality `yaml:"municipality"`
	Site         string             `yaml:"site"`
	Rate         string             `yaml:"rate"`
}

type FormFixture struct {
	VesselName         string           `yaml:"vessel_name"`
	VesselIMO          string           `yaml:"vessel_imo"`
	VesselOwner        string           `yaml:"vessel_owner"`
	VesselMaster       string           `yaml:"vessel_master"`
	VesselType         model.VesselType `yaml:"vessel_type"`
	Port               string           `yaml:"port"`
	NoPortOfCall       bool             `yaml:"no_port_of_call"`
	ShippingAgent      string           `yaml:"shipping_agent"`
	GrossTonnage       *int             `yaml:"gross_tonnage"`
	Arrival            *time.Time       `yaml:"arrival"`
	Departure          *time.Time       `yaml:"departure"`
	NumberOfPassengers *int             `yaml:"number_of_passengers"`
	Disembarkments     []LandingFixture `yaml:"disembarkments"`
	Submit             bool             `yaml:"submit"`
}

type LandingFixture struct {
	Site               string `yaml:"site"`
	NumberOfPassengers int    `yaml:"number_of_passengers"`
}

// SeedReport counts what a seeding run created and what already existed.
type SeedReport struct {
	Created map[string]int `json:"created"`
	Skipped map[string]int `json:"skipped"`
}

func newSeedReport() *SeedReport {
	return &SeedReport{Created: map[string]int{}, Skipped: map[string]int{}}
}

// SeedService loads fixtures through the regular services, so validation
// and schedule linkage apply. Named records that already exist are skipped;
// forms are always created.
type SeedService interface {
	Seed(ctx context.Context, fixtures *Fixtures) (*SeedReport, error)
	SeedFile(ctx context.Context, path string) (*SeedReport, error)
}

type seedService struct {
	reference repository.ReferenceRepository
	users     repository.UserRepository
	userSvc   UserService
	taxRates  TaxRatesService
	forms     FormService
	log       *zap.Logger
}

func NewSeedService(
	reference repository.ReferenceRepository,
	users repository.UserRepository,
	userSvc UserService,
	taxRates TaxRatesService,
	forms FormService,
	log *zap.Logger,
) SeedService {
	return &seedService{
		reference: reference,
		users:     users,
		userSvc:   userSvc,
		taxRates:  taxRates,
		forms:     forms,
		log:       logger.OrNop(log).Named("service.seed"),
	}
}

// systemUser acts for the seeder. Its nil id makes audit entries system entries.
var systemUser = &model.User{Username: "system", IsSuperuser: true, IsActive: true}

// DecodeFixtures parses a fixtures document, rejecting unknown keys.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	var fixtures Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixtures); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fixtures, nil
}

func (s *seedService) SeedFile(ctx context.Context, path string) (*SeedReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()

	fixtures, err := DecodeFixtures(f)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, fixtures)
}

func (s *seedService) Seed(ctx context.Context, fx *Fixtures) (*SeedReport, error) {
	report := newSeedReport()
	steps := []func(context.Context, *Fixtures, *SeedReport) error{
		s.seedAuthorities,
		s.seedPorts,
		s.seedAgents,
		s.seedSites,
		s.seedUsers,
		s.seedTaxRates,
		s.seedForms,
	}
	for _, step := range steps {
		if err := step(ctx, fx, report); err != nil {
			return report, err
		}
	}
	s.log.Info("fixtures loaded", zap.Any("created", report.Created), zap.Any("skipped", report.Skipped))
	return report, nil
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(notFound(err, ""), ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *seedService) seedAuthorities(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for _, in := range fx.PortAuthorities {
		_, err := s.reference.FindPortAuthorityByName(ctx, in.Name)
		found, err := exists(err)
		if err != nil {
			return fmt.Errorf("failed to look up port authority %q: %w", in.Name, err)
		}
		if found {
			report.Skipped["port_authorities"]++
			continue
		}
		if err := s.reference.CreatePortAuthority(ctx, &model.PortAuthority{Name: in.Name, Email: in.Email}); err != nil {
			return fmt.Errorf("failed to create port authority %q: %w", in.Name, err)
		}
		report.Created["port_authorities"]++
	}
	return nil
}

func (s *seedService) seedPorts(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for _, in := range fx.Ports {
		_, err := s.reference.FindPortByName(ctx, in.Name)
		found, err := exists(err)
		if err != nil {
			return fmt.Errorf("failed to look up port %q: %w", in.Name, err)
		}
		if found {
			report.Skipped["ports"]++
			continue
		}
		port := &model.Port{Name: in.Name}
		if in.PortAuthority != "" {
			authority, err := s.reference.FindPortAuthorityByName(ctx, in.PortAuthority)
			if err != nil {
				return fmt.Errorf("port %q: %w", in.Name, notFound(err, "port authority "+in.PortAuthority))
			}
			port.PortAuthorityID = &authority.ID
		}
		if err := s.reference.CreatePort(ctx, port); err != nil {
			return fmt.Errorf("failed to create port %q: %w", in.Name, err)
		}
		report.Created["ports"]++
	}
	return nil
}

func (s *seedService) seedAgents(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for _, in := range fx.ShippingAgents {
		_, err := s.reference.FindShippingAgentByName(ctx, in.Name)
		found, err := exists(err)
		if err != nil {
			return fmt.Errorf("failed to look up shipping agent %q: %w", in.Name, err)
		}
		if found {
			report.Skipped["shipping_agents"]++
			continue
		}
		if err := s.reference.CreateShippingAgent(ctx, &model.ShippingAgent{Name: in.Name, Email: in.Email}); err != nil {
			return fmt.Errorf("failed to create shipping agent %q: %w", in.Name, err)
		}
		report.Created["shipping_agents"]++
	}
	return nil
}

func (s *seedService) seedSites(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for _, in := range fx.DisembarkmentSites {
		if !in.Municipality.Valid() {
			return fmt.Errorf("%w: site %q has unknown municipality %d", ErrInvalidInput, in.Name, in.Municipality)
		}
		_, err := s.reference.FindDisembarkmentSiteByName(ctx, in.Name)
		found, err := exists(err)
		if err != nil {
			return fmt.Errorf("failed to look up disembarkment site %q: %w", in.Name, err)
		}
		if found {
			report.Skipped["disembarkment_sites"]++
			continue
		}
		site := &model.DisembarkmentSite{
			Name:                    in.Name,
			Municipality:            in.Municipality,
			IsOutsidePopulatedAreas: in.IsOutsidePopulatedAreas,
		}
		if err := s.reference.CreateDisembarkmentSite(ctx, site); err != nil {
			return fmt.Errorf("failed to create disembarkment site %q: %w", in.Name, err)
		}
		report.Created["disembarkment_sites"]++
	}
	return nil
}

func (s *seedService) seedUsers(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for _, in := range fx.Users {
		_, err := s.users.GetByUsername(ctx, in.Username)
		found, err := exists(err)
		if err != nil {
			return fmt.Errorf("failed to look up user %q: %w", in.Username, err)
		}
		if found {
			report.Skipped["users"]++
			continue
		}

		req := CreateUserRequest{
			Username:    in.Username,
			Email:       in.Email,
			Password:    in.Password,
			Group:       in.Group,
			IsSuperuser: in.IsSuperuser,
		}
		if in.PortAuthority != "" {
			authority, err := s.reference.FindPortAuthorityByName(ctx, in.PortAuthority)
			if err != nil {
				return fmt.Errorf("user %q: %w", in.Username, notFound(err, "port authority "+in.PortAuthority))
			}
			req.PortAuthorityID = &authority.ID
		}
		if in.Port != "" {
			port, err := s.portID(ctx, in.Port)
			if err != nil {
				return fmt.Errorf("user %q: %w", in.Username, err)
			}
			req.PortID = port
		}
		if in.ShippingAgent != "" {
			agent, err := s.reference.FindShippingAgentByName(ctx, in.ShippingAgent)
			if err != nil {
				return fmt.Errorf("user %q: %w", in.Username, notFound(err, "shipping agent "+in.ShippingAgent))
			}
			req.ShippingAgentID = &agent.ID
		}
		if _, err := s.userSvc.CreateUser(ctx, req); err != nil {
			return fmt.Errorf("failed to create user %q: %w", in.Username, err)
		}
		report.Created["users"]++
	}
	return nil
}

func (s *seedService) seedTaxRates(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for i, in := range fx.TaxRates {
		req := TaxRatesRequest{PaxTaxRate: in.PaxTaxRate, StartDatetime: in.Start}
		for _, r := range in.PortTaxRates {
			entry := PortTaxRateInput{
				VesselType:        r.VesselType,
				GTStart:           r.GTStart,
				GTEnd:             r.GTEnd,
				PortTaxRate:       r.Rate,
				RoundGrossTonUpTo: r.RoundGrossTonUpTo,
			}
			if r.Port != "" {
				port, err := s.portID(ctx, r.Port)
				if err != nil {
					return fmt.Errorf("tax_rates[%d]: %w", i, err)
				}
				entry.PortID = port
			}
			req.PortTaxRates = append(req.PortTaxRates, entry)
		}
		for _, r := range in.DisembarkmentTaxRates {
			entry := DisembarkmentTaxRateInput{Municipality: r.Municipality, DisembarkmentTax: r.Rate}
			if r.Site != "" {
				site, err := s.siteID(ctx, r.Site)
				if err != nil {
					return fmt.Errorf("tax_rates[%d]: %w", i, err)
				}
				entry.DisembarkmentSiteID = &site
			}
			req.DisembarkmentTaxRates = append(req.DisembarkmentTaxRates, entry)
		}

		_, err := s.taxRates.Create(ctx, systemUser, req)
		if errors.Is(err, ErrDuplicateStart) {
			report.Skipped["tax_rates"]++
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create tax_rates[%d]: %w", i, err)
		}
		report.Created["tax_rates"]++
	}
	return nil
}

func (s *seedService) seedForms(ctx context.Context, fx *Fixtures, report *SeedReport) error {
	for i, in := range fx.Forms {
		req := FormRequest{
			NoPortOfCall:        in.NoPortOfCall,
			VesselName:          in.VesselName,
			VesselIMO:           in.VesselIMO,
			VesselOwner:         in.VesselOwner,
			VesselMaster:        in.VesselMaster,
			VesselType:          in.VesselType,
			GrossTonnage:        in.GrossTonnage,
			DatetimeOfArrival:   in.Arrival,
			DatetimeOfDeparture: in.Departure,
			NumberOfPassengers:  in.NumberOfPassengers,
		}
		if in.Port != "" {
			port, err := s.portID(ctx, in.Port)
			if err != nil {
				return fmt.Errorf("forms[%d]: %w", i, err)
			}
			req.PortOfCallID = port
		}
		if in.ShippingAgent != "" {
			agent, err := s.reference.FindShippingAgentByName(ctx, in.ShippingAgent)
			if err != nil {
				return fmt.Errorf("forms[%d]: %w", i, notFound(err, "shipping agent "+in.ShippingAgent))
			}
			req.ShippingAgentID = &agent.ID
		}
		for _, l := range in.Disembarkments {
			site, err := s.siteID(ctx, l.Site)
			if err != nil {
				return fmt.Errorf("forms[%d]: %w", i, err)
			}
			req.Disembarkments = append(req.Disembarkments, DisembarkmentInput{DisembarkmentSiteID: site, NumberOfPassengers: l.NumberOfPassengers})
		}

		form, err := s.forms.Create(ctx, systemUser, req)
		if err != nil {
			return fmt.Errorf("failed to create forms[%d]: %w", i, err)
		}
		report.Created["forms"]++
		if in.Submit {
			if _, err := s.forms.Submit(ctx, systemUser, form.ID); err != nil {
				return fmt.Errorf("failed to submit forms[%d]: %w", i, err)
			}
			report.Created["submissions"]++
		}
	}
	return nil
}

func (s *seedService) portID(ctx context.Context, name string) (*uuid.UUID, error) {
	port, err := s.reference.FindPortByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "port "+name)
	}
	return &port.ID, nil
}

func (s *seedService) siteID(ctx context.Context, name string) (uuid.UUID, error) {
	site, err := s.reference.FindDisembarkmentSiteByName(ctx, name)
	if err != nil {
		return uuid.Nil, notFound(err, "disembarkment site "+name)
	}
	return site.ID, nil
}
