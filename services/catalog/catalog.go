// Package catalog serves the product and banner collections. Every mutation
// except reviews requires an admin session.
//
// The remote API accepts banner writes but has no product write endpoint, so
// product, review and like changes are stored locally only. While remote reads
// succeed they do not show those changes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"go.uber.org/zap"
)

var (
	ErrForbidden      = errors.New("catalog: admin role required")
	ErrNotFound       = errors.New("catalog: not found")
	ErrInvalidProduct = errors.New("catalog: invalid product")
	ErrInvalidBanner  = errors.New("catalog: invalid banner")
	ErrInvalidReview  = errors.New("catalog: invalid review")
)

// PurchaseChecker tells whether a user has received a product.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
}

type Service struct {
	products  *persistence.Collection[models.Product]
	banners   *persistence.Collection[string]
	purchases PurchaseChecker
	now       func() time.Time
	log       *zap.Logger
}

func NewService(products *persistence.Collection[models.Product], banners *persistence.Collection[string], purchases PurchaseChecker, log *zap.Logger) *Service {
	return &Service{products: products, banners: banners, purchases: purchases, now: time.Now, log: log}
}

func (s *Service) Products(ctx context.Context, q Query) ([]models.Product, error) {
	all, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	return q.Apply(all), nil
}

// Product returns nil when no product has id.
func (s *Service) Product(ctx context.Context, id string) (*models.Product, error) {
	all, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

func validateProduct(p models.Product) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	case p.Price < 0 || p.OriginalPrice < 0:
		return fmt.Errorf("%w: prices must not be negative", ErrInvalidProduct)
	case p.OriginalPrice > 0 && p.Price > p.OriginalPrice:
		return fmt.Errorf("%w: price exceeds original price", ErrInvalidProduct)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: rating must be within 0..5", ErrInvalidProduct)
	}
	return nil
}

// SaveProduct inserts p, or replaces the product with the same id. Reviews are
// owned by the review flow and survive a replace.
func (s *Service) SaveProduct(ctx context.Context, session *auth.Session, p models.Product) (*models.Product, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = "prod_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	}

	_, err := s.products.Mutate(ctx, func(all []models.Product) ([]models.Product, error) {
		for i := range all {
			if all[i].ID == p.ID {
				p.Reviews = all[i].Reviews
				p.Rating, p.ReviewsCount = all[i].Rating, all[i].ReviewsCount
				all[i] = p
				return all, nil
			}
		}
		p.Reviews, p.ReviewsCount, p.Rating = nil, 0, 0
		return append(all, p), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product saved", zap.String("product_id", p.ID), zap.String("by", session.UserID))
	s.warnLocalOnly("save", p.ID)
	return &p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, session *auth.Session, id string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	found := false
	_, err := s.products.Mutate(ctx, func(all []models.Product) ([]models.Product, error) {
		found = false
		out := all[:0]
		for _, p := range all {
			if p.ID == id {
				found = true
				continue
			}
			out = append(out, p)
		}
		if !found {
			return nil, persistence.ErrSkipWrite
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	s.log.Info("product deleted", zap.String("product_id", id), zap.String("by", session.UserID))
	s.warnLocalOnly("delete", id)
	return nil
}

func (s *Service) Banners(ctx context.Context) ([]string, error) {
	return s.banners.Load(ctx)
}

// SaveBanners replaces the whole banner list.
func (s *Service) SaveBanners(ctx context.Context, session *auth.Session, banners []string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	for i, b := range banners {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("%w: empty image reference at %d", ErrInvalidBanner, i)
		}
	}
	if banners == nil {
		banners = []string{}
	}
	if s.banners.TryRemote(ctx, http.MethodPost, "/banners", map[string][]string{"banners": banners}, nil) {
		return nil
	}
	if err := s.banners.Save(ctx, banners); err != nil {
		return err
	}
	s.log.Info("banners saved", zap.Int("count", len(banners)), zap.String("by", session.UserID))
	return nil
}

// AddBanner appends one image reference to the banner list.
func (s *Service) AddBanner(ctx context.Context, session *auth.Session, image string) ([]string, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(image) == "" {
		return nil, ErrInvalidBanner
	}
	if s.banners.RemoteEnabled() {
		current, err := s.banners.Load(ctx)
		if err != nil {
			return nil, err
		}
		next := append(current, image)
		if s.banners.TryRemote(ctx, http.MethodPost, "/banners", map[string][]string{"banners": next}, nil) {
			return next, nil
		}
	}
	return s.banners.Mutate(ctx, func(all []string) ([]string, error) {
		return append(all, image), nil
	})
}

// warnLocalOnly records a product change the remote API will not serve back.
func (s *Service) warnLocalOnly(op, productID string) {
	if s.products.RemoteEnabled() {
		s.log.Warn("product change stored locally only; remote reads will not include it",
			zap.String("op", op), zap.String("product_id", productID))
	}
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview attaches a review by the session user and recomputes the product rating.
func (s *Service) AddReview(ctx context.Context, session *auth.Session, productID string, in ReviewInput) (*models.Review, error) {
	if session == nil {
		return nil, auth.ErrUnauthenticated
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be within 1..5", ErrInvalidReview)
	}

	certified := false
	if s.purchases != nil {
		ok, err := s.purchases.HasPurchased(ctx, session.UserID, productID)
		if err != nil {
			s.log.Warn("purchase check failed", zap.String("product_id", productID), zap.Error(err))
		}
		certified = ok
	}

	review := models.Review{
		ID:                "rev_" + uuid.NewString()[:8],
		UserID:            session.UserID,
		UserName:          session.DisplayName,
		Rating:            in.Rating,
		Comment:           strings.TrimSpace(in.Comment),
		Date:              s.now().UTC(),
		CertifiedPurchase: certified,
	}
	if review.UserName == "" {
		review.UserName = "Customer"
	}

	found := false
	_, err := s.products.Mutate(ctx, func(all []models.Product) ([]models.Product, error) {
		found = false
		for i := range all {
			if all[i].ID != productID {
				continue
			}
			found = true
			p := &all[i]
			p.Reviews = append([]models.Review{review}, p.Reviews...)
			p.ReviewsCount = len(p.Reviews)
			p.Rating = averageRating(p.Reviews)
			return all, nil
		}
		return nil, persistence.ErrSkipWrite
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	s.warnLocalOnly("review", productID)
	return &review, nil
}

// LikeReview increments the like counter of one review.
func (s *Service) LikeReview(ctx context.Context, productID, reviewID string) (*models.Review, error) {
	var liked *models.Review
	_, err := s.products.Mutate(ctx, func(all []models.Product) ([]models.Product, error) {
		liked = nil
		for i := range all {
			if all[i].ID != productID {
				continue
			}
			for j := range all[i].Reviews {
				if all[i].Reviews[j].ID == reviewID {
					all[i].Reviews[j].Likes++
					r := all[i].Reviews[j]
					liked = &r
					return all, nil
				}
			}
		}
		return nil, persistence.ErrSkipWrite
	})
	if err != nil {
		return nil, err
	}
	if liked == nil {
		return nil, ErrNotFound
	}
	s.warnLocalOnly("like", productID)
	return liked, nil
}

func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
