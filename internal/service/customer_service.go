package service

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MaxCustomerIDAttempts bounds how many generated ids Create tries before
// giving up with ErrIDExhausted.
const MaxCustomerIDAttempts = 100

// IDSource yields candidate customer ids.
type IDSource func() string

// RandomCustomerID draws a C-NNN id uniformly from C-000..C-999.
func RandomCustomerID() string {
	return fmt.Sprintf("C-%03d", rand.Intn(1000))
}

var referralColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id string) (*dto.CustomerResponse, error)
	List(ctx context.Context) ([]dto.CustomerResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	UpdateReferralSettings(ctx context.Context, id string, req dto.UpdateReferralSettingsRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id string) error
}

type customerService struct {
	repo  repository.CustomerRepository
	newID IDSource
}

// NewCustomerService wires the customer service. A nil ids falls back to
// RandomCustomerID.
func NewCustomerService(repo repository.CustomerRepository, ids IDSource) CustomerService {
	if ids == nil {
		ids = RandomCustomerID
	}
	return &customerService{repo: repo, newID: ids}
}

// Create inserts the customer under a freshly drawn id. The primary key is
// the arbiter: a collision surfaces as a duplicate-key error and a new id
// is drawn, so two concurrent creates can never end up sharing an id.
func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}

	c := &model.Customer{
		Name:   name,
		Spesa:  decimal.Zero,
		Debito: decimal.Zero,
		Attivo: true,
	}
	if req.Spesa != nil {
		c.Spesa = req.Spesa.Round(2)
	}
	if req.UltimoDeal != nil {
		t := req.UltimoDeal.Time
		c.UltimoDeal = &t
	}
	if req.Attivo != nil {
		c.Attivo = *req.Attivo
	}
	if ref := trimmedOrNil(req.ReferralID); ref != nil {
		if err := s.checkReferral(ctx, "", *ref); err != nil {
			return nil, err
		}
		c.ReferralID = ref
	}

	for attempt := 1; attempt <= MaxCustomerIDAttempts; attempt++ {
		c.ID = s.newID()
		err := s.repo.Create(ctx, c)
		if err == nil {
			log.Debug().Str("customer_id", c.ID).Int("attempt", attempt).Msg("customer created")
			return s.load(ctx, c.ID)
		}
		if !repository.IsDuplicateKey(err) {
			if repository.IsForeignKeyViolation(err) {
				return nil, newError(ErrValidation, "referral customer %s does not exist", *c.ReferralID)
			}
			return nil, err
		}
	}
	log.Error().Int("attempts", MaxCustomerIDAttempts).Msg("customer id space exhausted")
	return nil, newError(ErrIDExhausted, "could not allocate a customer id after %d attempts", MaxCustomerIDAttempts)
}

func (s *customerService) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	return s.load(ctx, strings.TrimSpace(id))
}

func (s *customerService) List(ctx context.Context) ([]dto.CustomerResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.CountReferred(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCustomer(c, counts[c.ID]))
	}
	return result, nil
}

func (s *customerService) Update(ctx context.Context, rawID string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	id := strings.TrimSpace(rawID)
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newError(ErrValidation, "name must not be empty")
		}
		c.Name = name
	}
	if req.Spesa != nil {
		c.Spesa = req.Spesa.Round(2)
	}
	if req.UltimoDeal.Set {
		if req.UltimoDeal.Value == nil {
			c.UltimoDeal = nil
		} else {
			t := req.UltimoDeal.Value.Time
			c.UltimoDeal = &t
		}
	}
	if req.Attivo != nil {
		c.Attivo = *req.Attivo
	}
	if req.ReferralID.Set {
		ref := trimmedOrNil(req.ReferralID.Value)
		if ref != nil {
			if err := s.checkReferral(ctx, c.ID, *ref); err != nil {
				return nil, err
			}
		}
		c.ReferralID = ref
	}

	c.Referral = nil
	if err := s.repo.Update(ctx, c); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, newError(ErrValidation, "referral customer does not exist")
		}
		return nil, err
	}
	return s.load(ctx, c.ID)
}

// UpdateReferralSettings toggles whether the customer acts as a referrer
// and the color used to tag the customers it brought in.
func (s *customerService) UpdateReferralSettings(ctx context.Context, rawID string, req dto.UpdateReferralSettingsRequest) (*dto.CustomerResponse, error) {
	c, err := s.find(ctx, strings.TrimSpace(rawID))
	if err != nil {
		return nil, err
	}
	if req.IsReferral != nil {
		c.IsReferral = *req.IsReferral
	}
	if req.ReferralColor.Set {
		color := trimmedOrNil(req.ReferralColor.Value)
		if color != nil && !referralColorRe.MatchString(*color) {
			return nil, newError(ErrValidation, "referralColor must be a #RRGGBB hex color")
		}
		c.ReferralColor = color
	}
	c.Referral = nil
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.load(ctx, c.ID)
}

func (s *customerService) Delete(ctx context.Context, rawID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(rawID)); err != nil {
		if repository.IsNotFound(err) {
			return newError(ErrNotFound, "customer not found")
		}
		return err
	}
	return nil
}

// checkReferral enforces the referral rule: a customer can never refer
// itself, and the referrer must exist. selfID is empty on create.
func (s *customerService) checkReferral(ctx context.Context, selfID, referralID string) error {
	if selfID != "" && referralID == selfID {
		return newError(ErrValidation, "a customer cannot refer itself")
	}
	ok, err := s.repo.Exists(ctx, referralID)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrValidation, "referral customer %s does not exist", referralID)
	}
	return nil
}

func (s *customerService) find(ctx context.Context, id string) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "customer not found")
		}
		return nil, err
	}
	return c, nil
}

func (s *customerService) load(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountReferred(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	resp := mapCustomer(*c, counts[c.ID])
	return &resp, nil
}
