package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/vendersphere/internal/catalog/domain"
)

type fakeProductRepo struct {
	domain.ProductRepository
	products map[uint]*domain.Product
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error {
	product, ok := f.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.Rating = rating
	product.ReviewCount = reviewCount
	return nil
}

type fakeReviewRepo struct {
	domain.ReviewRepository
	reviews []*domain.Review
}

func (f *fakeReviewRepo) Save(ctx context.Context, review *domain.Review) error {
	for _, existing := range f.reviews {
		if existing.ProductID == review.ProductID && existing.UserEmail == review.UserEmail {
			return domain.ErrAlreadyReviewed
		}
	}
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewRepo) Aggregate(ctx context.Context, productID uint) (float64, int, error) {
	sum, count := 0, 0
	for _, review := range f.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func newReviewFixture() (*CatalogApplicationService, *fakeProductRepo) {
	product := &domain.Product{
		Name:   "widget",
		Price:  decimal.RequireFromString("10.00"),
		Status: domain.ProductStatusActive,
	}
	product.ID = 1

	products := &fakeProductRepo{products: map[uint]*domain.Product{1: product}}
	reviews := &fakeReviewRepo{}
	service := NewCatalogApplicationService(products, nil, reviews, nil, nil, nil)
	return service, products
}

func TestAddReviewRecomputesRoundedAverage(t *testing.T) {
	service, products := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, service.AddReview(ctx, 1, "a@example.com", "A", 5, "great"))
	require.NoError(t, service.AddReview(ctx, 1, "b@example.com", "B", 4, "good"))
	require.NoError(t, service.AddReview(ctx, 1, "c@example.com", "C", 4, "fine"))

	// (5+4+4)/3 = 4.333... -> 四舍五入到一位小数
	assert.Equal(t, 4.3, products.products[1].Rating)
	assert.Equal(t, 3, products.products[1].ReviewCount)
}

func TestAddReviewOnePerUser(t *testing.T) {
	service, _ := newReviewFixture()
	ctx := context.Background()

	require.NoError(t, service.AddReview(ctx, 1, "a@example.com", "A", 5, "great"))
	err := service.AddReview(ctx, 1, "a@example.com", "A", 1, "changed my mind")
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestAddReviewValidation(t *testing.T) {
	service, _ := newReviewFixture()
	ctx := context.Background()

	assert.ErrorIs(t, service.AddReview(ctx, 1, "", "A", 3, ""), ErrInvalidReview)
	assert.ErrorIs(t, service.AddReview(ctx, 1, "a@example.com", "A", 0, ""), ErrInvalidReview)
	assert.ErrorIs(t, service.AddReview(ctx, 1, "a@example.com", "A", 6, ""), ErrInvalidReview)
	assert.ErrorIs(t, service.AddReview(ctx, 99, "a@example.com", "A", 3, ""), domain.ErrProductNotFound)
}
