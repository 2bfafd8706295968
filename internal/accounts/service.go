package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.uber.org/zap"
)

type Registration struct {
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	Name          string      `json:"name"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	StoreName     string      `json:"storeName"`
	StoreCategory string      `json:"storeCategory"`
}

// Service owns user profiles. Buyers are verified on registration; sellers
// wait for an admin.
type Service struct {
	store  docstore.Store
	logger observability.Logger
	now    func() time.Time
}

func NewService(store docstore.Store, logger observability.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the profile for an authenticated user id.
func (s *Service) Register(ctx context.Context, userID string, reg Registration) (*domain.UserProfile, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	if userID == "" {
		return nil, &domain.ForbiddenError{Msg: "registration requires an authenticated user"}
	}
	if reg.Role != domain.RoleBuyer && reg.Role != domain.RoleSeller {
		return nil, domain.Validationf("role must be buyer or seller")
	}
	if !strings.Contains(reg.Email, "@") {
		return nil, domain.Validationf("a valid email is required")
	}
	if strings.TrimSpace(reg.Name) == "" {
		return nil, domain.Validationf("name is required")
	}
	if reg.Role == domain.RoleSeller && (reg.Phone == "" || reg.StoreName == "") {
		return nil, domain.Validationf("sellers need a whatsapp number and a store name")
	}

	if _, err := s.store.Get(ctx, docstore.Users, userID); err == nil {
		return nil, &domain.ConflictError{Msg: "user " + userID + " is already registered"}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	now := s.now()
	profile := domain.UserProfile{
		ID:            userID,
		Email:         reg.Email,
		Role:          reg.Role,
		Name:          strings.TrimSpace(reg.Name),
		Phone:         reg.Phone,
		Address:       reg.Address,
		StoreName:     reg.StoreName,
		StoreCategory: reg.StoreCategory,
		IsVerified:    reg.Role == domain.RoleBuyer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Put(ctx, docstore.Users, userID, profile); err != nil {
		return nil, fmt.Errorf("store user %s: %w", userID, err)
	}

	s.logger.Info("👤 User registered", zap.String("user_id", userID), zap.String("role", string(reg.Role)))
	return &profile, nil
}

// Profile loads a stored profile.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	rec, err := s.store.Get(ctx, docstore.Users, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, &domain.NotFoundError{Kind: "user", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	profile, err := domain.DecodeUser(rec.ID, rec.Data)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Resolve maps an authenticated user id to an Identity.
func (s *Service) Resolve(ctx context.Context, userID string) (domain.Identity, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.IdentityOf(*profile), nil
}

func (s *Service) VerifySeller(ctx context.Context, actor domain.Identity, sellerID string) error {
	return s.setVerification(ctx, actor, sellerID, map[string]any{"isVerified": true, "rejected": false})
}

func (s *Service) RejectSeller(ctx context.Context, actor domain.Identity, sellerID string) error {
	return s.setVerification(ctx, actor, sellerID, map[string]any{"isVerified": false, "rejected": true})
}

func (s *Service) setVerification(ctx context.Context, actor domain.Identity, sellerID string, fields map[string]any) error {
	if !actor.IsAdmin() {
		return &domain.ForbiddenError{Msg: "only admins can verify sellers"}
	}
	profile, err := s.Profile(ctx, sellerID)
	if err != nil {
		return err
	}
	if profile.Role != domain.RoleSeller {
		return domain.Validationf("user %s is not a seller", sellerID)
	}

	fields["updatedAt"] = s.now()
	if err := s.store.Update(ctx, docstore.Users, sellerID, fields); err != nil {
		return fmt.Errorf("update seller %s: %w", sellerID, err)
	}
	s.logger.Info("🛡️ Seller verification changed",
		zap.String("seller_id", sellerID),
		zap.Any("is_verified", fields["isVerified"]),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

// ListSellers returns every seller profile, pending ones first.
func (s *Service) ListSellers(ctx context.Context, actor domain.Identity) ([]domain.UserProfile, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	if !actor.IsAdmin() {
		return nil, &domain.ForbiddenError{Msg: "only admins can list sellers"}
	}

	records, err := s.store.Query(ctx, docstore.Users, docstore.Eq("role", domain.RoleSeller))
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}

	var pending, reviewed []domain.UserProfile
	for _, rec := range records {
		u, err := domain.DecodeUser(rec.ID, rec.Data)
		if err != nil {
			s.logger.Warn("⚠️ Skipping malformed user", zap.String("user_id", rec.ID), zap.Error(err))
			continue
		}
		if !u.IsVerified && !u.Rejected {
			pending = append(pending, u)
		} else {
			reviewed = append(reviewed, u)
		}
	}
	return append(pending, reviewed...), nil
}
