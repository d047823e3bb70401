package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"afilia/internal/domain"
	"afilia/internal/hierarchy"
	"afilia/internal/models"
	"afilia/internal/repository"
	"afilia/internal/tier"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AffiliateService owns affiliate enrollment and status transitions.
// Affiliates are never deleted; SUSPENDED is the operational off switch.
type AffiliateService struct {
	affiliates repository.AffiliateRepository
	log        *zap.Logger
}

func NewAffiliateService(affiliates repository.AffiliateRepository, log *zap.Logger) *AffiliateService {
	return &AffiliateService{affiliates: affiliates, log: log}
}

// generateReferralCode returns an 8-character hex code for shareable links.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Enroll creates a PENDING affiliate, optionally linked under the sponsor
// owning the given referral code. The sponsor's referral count only moves
// when the recruit is approved.
func (s *AffiliateService) Enroll(name, email, password, sponsorCode string) (*models.Affiliate, error) {
	if _, err := s.affiliates.GetByEmail(email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrAffiliateNotFound) {
		return nil, err
	}

	var sponsorID *uint
	if sponsorCode != "" {
		sponsor, err := s.affiliates.GetByReferralCode(sponsorCode)
		if err != nil {
			if errors.Is(err, domain.ErrAffiliateNotFound) {
				return nil, domain.ErrSponsorCodeNotFound
			}
			return nil, err
		}
		sponsorID = &sponsor.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	base := tier.Classify(0, decimal.Zero, 0)
	a := &models.Affiliate{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		SponsorID:      sponsorID,
		Status:         domain.AffiliateStatusPending,
		Tier:           base.Tier,
		CommissionRate: base.RatePercent,
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		a.ReferralCode = code
		if err := s.affiliates.Create(a); err == nil {
			s.log.Info("affiliate enrolled",
				zap.Uint("affiliate_id", a.ID),
				zap.String("referral_code", a.ReferralCode))
			return a, nil
		}
		// Collision on the unique code index: retry with a fresh one.
	}
	return nil, fmt.Errorf("failed to generate a unique referral code after retries")
}

// Approve activates a pending affiliate and credits the sponsor's direct
// referral count, which may promote the sponsor's tier. The status flip
// is conditional, so a concurrent duplicate approval cannot count the
// recruit twice.
func (s *AffiliateService) Approve(id uint) (*models.Affiliate, error) {
	var a *models.Affiliate
	err := s.affiliates.Transaction(func(tx *gorm.DB) error {
		affTx := s.affiliates.WithTx(tx)
		ok, err := affTx.TransitionStatus(id, domain.AffiliateStatusPending, domain.AffiliateStatusApproved)
		if err != nil {
			return err
		}
		if !ok {
			return affiliateTransitionErr(affTx, id, "approve")
		}
		a, err = affTx.GetByID(id)
		if err != nil {
			return err
		}
		if a.SponsorID == nil {
			return nil
		}
		if err := affTx.IncrementDirectReferrals(*a.SponsorID); err != nil {
			return err
		}
		return refreshDerived(affTx, *a.SponsorID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Reject turns down a pending enrollment.
func (s *AffiliateService) Reject(id uint) (*models.Affiliate, error) {
	return s.transition(id, domain.AffiliateStatusPending, domain.AffiliateStatusRejected, "reject")
}

// Suspend removes an approved affiliate from commission participation
// without deleting its history.
func (s *AffiliateService) Suspend(id uint) (*models.Affiliate, error) {
	return s.transition(id, domain.AffiliateStatusApproved, domain.AffiliateStatusSuspended, "suspend")
}

// Reinstate returns a suspended affiliate to the program.
func (s *AffiliateService) Reinstate(id uint) (*models.Affiliate, error) {
	return s.transition(id, domain.AffiliateStatusSuspended, domain.AffiliateStatusApproved, "reinstate")
}

func affiliateTransitionErr(repo repository.AffiliateRepository, id uint, action string) error {
	a, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	return &domain.TransitionError{Entity: "affiliate", ID: id, From: a.Status, Attempted: action}
}

func (s *AffiliateService) transition(id uint, from, to, action string) (*models.Affiliate, error) {
	ok, err := s.affiliates.TransitionStatus(id, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, affiliateTransitionErr(s.affiliates, id, action)
	}
	return s.affiliates.GetByID(id)
}

// Profile pairs the stored affiliate row with its live classification,
// including progress toward the next tier.
type Profile struct {
	Affiliate      *models.Affiliate
	Classification tier.Classification
}

func (s *AffiliateService) Profile(id uint) (*Profile, error) {
	a, err := s.affiliates.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Affiliate:      a,
		Classification: tier.Classify(a.DirectReferrals, a.TotalSalesVolume, a.Points),
	}, nil
}

// Network is the upline chain (nearest first) and direct downline of an
// affiliate.
type Network struct {
	Upline   []*models.Affiliate
	Downline []*models.Affiliate
}

func (s *AffiliateService) Network(id uint) (*Network, error) {
	all, err := s.affiliates.ListAll()
	if err != nil {
		return nil, err
	}
	set := hierarchy.NewSet(all)
	if set.Get(id) == nil {
		return nil, domain.ErrAffiliateNotFound
	}
	upline, err := set.UplineOf(id)
	if err != nil {
		return nil, err
	}
	return &Network{Upline: upline, Downline: set.DownlineOf(id)}, nil
}
