package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/google/uuid"
)

type ProfileService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.Repo.LoadProfile(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.DateOfBirth != nil {
		dob, err := s.parseBirthDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = dob
	}
	if req.BloodGroup != nil {
		bg := strings.ToUpper(strings.TrimSpace(*req.BloodGroup))
		if bg != "" && !slices.Contains(models.BloodGroups, bg) {
			return nil, fmt.Errorf("%w: blood group %q", ErrValidation, *req.BloodGroup)
		}
		p.BloodGroup = bg
	}
	if req.Gender != nil {
		g := strings.TrimSpace(*req.Gender)
		if g != "" && !slices.Contains(models.Genders, g) {
			return nil, fmt.Errorf("%w: gender must be one of %s", ErrValidation, strings.Join(models.Genders, ", "))
		}
		p.Gender = g
	}

	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) parseBirthDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	dob, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		if dob, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", ErrValidation)
		}
	}
	dob = dob.UTC()
	if dob.After(s.now()) {
		return nil, fmt.Errorf("%w: date of birth is in the future", ErrValidation)
	}
	return &dob, nil
}

func normalizeAddress(req transport.AddressRequest) (models.AddressLabel, models.Address, error) {
	label := models.AddressLabel(strings.TrimSpace(req.Type))
	if !label.Valid() {
		return "", models.Address{}, fmt.Errorf("%w: address type must be Home, Work or Other", ErrValidation)
	}
	a := req.Address
	for _, f := range []*string{&a.FirstName, &a.LastName, &a.Email, &a.Street, &a.City, &a.State, &a.Zipcode, &a.Country, &a.Phone} {
		*f = strings.TrimSpace(*f)
	}
	if a.Street == "" {
		return "", models.Address{}, fmt.Errorf("%w: street is required", ErrValidation)
	}
	if a.Phone == "" {
		return "", models.Address{}, fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return label, a, nil
}

// phoneTaken reports whether another saved address uses phone.
func phoneTaken(p *models.Profile, phone string, except uuid.UUID) bool {
	for _, a := range p.Addresses {
		if a.ID != except && a.Phone == phone {
			return true
		}
	}
	return false
}

func (s *ProfileService) AddAddress(ctx context.Context, userID uuid.UUID, req transport.AddressRequest) (*models.Profile, *models.SavedAddress, error) {
	label, addr, err := normalizeAddress(req)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(p.Addresses) >= models.MaxSavedAddresses {
		return nil, nil, fmt.Errorf("%w: at most %d addresses", ErrValidation, models.MaxSavedAddresses)
	}
	if phoneTaken(p, addr.Phone, uuid.Nil) {
		return nil, nil, fmt.Errorf("%w: phone %s is already saved", ErrConflict, addr.Phone)
	}

	saved := models.SavedAddress{ID: uuid.New(), Label: label, Address: addr}
	p.Addresses = append(p.Addresses, saved)
	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, nil, err
	}
	return p, &saved, nil
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req transport.AddressRequest) (*models.Profile, error) {
	label, addr, err := normalizeAddress(req)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	i, ok := p.FindAddress(addressID)
	if !ok {
		return nil, fmt.Errorf("%w: address %s", ErrNotFound, addressID)
	}
	if phoneTaken(p, addr.Phone, addressID) {
		return nil, fmt.Errorf("%w: phone %s is already saved", ErrConflict, addr.Phone)
	}

	p.Addresses[i] = models.SavedAddress{ID: addressID, Label: label, Address: addr}
	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	i, ok := p.FindAddress(addressID)
	if !ok {
		return nil, fmt.Errorf("%w: address %s", ErrNotFound, addressID)
	}

	p.Addresses = slices.Delete(p.Addresses, i, i+1)
	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SavedAddress resolves a saved address for an order.
func (s *ProfileService) SavedAddress(ctx context.Context, userID, addressID uuid.UUID) (models.Address, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return models.Address{}, err
	}
	i, ok := p.FindAddress(addressID)
	if !ok {
		return models.Address{}, fmt.Errorf("%w: address %s", ErrNotFound, addressID)
	}
	return p.Addresses[i].Address, nil
}
