package catalog

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"github.com/junaidrashid-git/swiftcart-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

var (
	admin    = &auth.Session{UserID: "u_admin", Email: "admin@flipkart.com", Role: models.RoleAdmin}
	customer = &auth.Session{UserID: "u_1", DisplayName: "Asha", Role: models.RoleCustomer}
)

type purchases map[string]bool

func (p purchases) HasPurchased(_ context.Context, userID, productID string) (bool, error) {
	return p[userID+"/"+productID], nil
}

func newService(t *testing.T, pc PurchaseChecker) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	products := persistence.NewCollection[models.Product](st, nil, zap.NewNop(), persistence.Options{Name: "products", Version: "v15", SchemaVersion: 1})
	banners := persistence.NewCollection[string](st, nil, zap.NewNop(), persistence.Options{Name: "banners", Version: "v4", SchemaVersion: 1})
	return NewService(products, banners, pc, zap.NewNop())
}

func phone() models.Product {
	return models.Product{ID: "prod_galaxy_s23", Title: "Galaxy S23", Price: 74999, OriginalPrice: 89999, Category: "Mobiles", Brand: "SAMSUNG"}
}

func TestMutationsRequireAdmin(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	for _, s := range []*auth.Session{nil, customer} {
		_, err := svc.SaveProduct(ctx, s, phone())
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, svc.DeleteProduct(ctx, s, "prod_galaxy_s23"), ErrForbidden)
		assert.ErrorIs(t, svc.SaveBanners(ctx, s, []string{"a.jpg"}), ErrForbidden)
		_, err = svc.AddBanner(ctx, s, "b.jpg")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, svc.ExportProducts(ctx, s, &bytes.Buffer{}), ErrForbidden)
	}

	list, err := svc.Products(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, list)
	banners, err := svc.Banners(ctx)
	require.NoError(t, err)
	assert.Empty(t, banners)
}

func TestSaveProductUpserts(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SaveProduct(ctx, admin, phone())
	require.NoError(t, err)

	updated := phone()
	updated.Price = 69999
	_, err = svc.SaveProduct(ctx, admin, updated)
	require.NoError(t, err)

	list, err := svc.Products(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 69999.0, list[0].Price)

	created, err := svc.SaveProduct(ctx, admin, models.Product{Title: "Kettle", Price: 749})
	require.NoError(t, err)
	assert.Regexp(t, `^prod_[0-9a-f]{10}$`, created.ID)
}

func TestSaveProductValidates(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	bad := phone()
	bad.Price = 99999
	_, err := svc.SaveProduct(ctx, admin, bad)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	noTitle := phone()
	noTitle.Title = " "
	_, err = svc.SaveProduct(ctx, admin, noTitle)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	noOriginal := phone()
	noOriginal.OriginalPrice = 0
	_, err = svc.SaveProduct(ctx, admin, noOriginal)
	assert.NoError(t, err)
}

func TestDeleteProduct(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.SaveProduct(ctx, admin, phone())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, admin, "prod_galaxy_s23"))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, admin, "prod_galaxy_s23"), ErrNotFound)

	got, err := svc.Product(ctx, "prod_galaxy_s23")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBannersRoundTrip(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	want := []string{"c.jpg", "a.jpg", "b.jpg"}

	require.NoError(t, svc.SaveBanners(ctx, admin, want))
	got, err := svc.Banners(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, svc.SaveBanners(ctx, admin, []string{"z.jpg"}))
	got, err = svc.Banners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"z.jpg"}, got)

	assert.ErrorIs(t, svc.SaveBanners(ctx, admin, []string{"ok.jpg", ""}), ErrInvalidBanner)

	got, err = svc.AddBanner(ctx, admin, "y.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"z.jpg", "y.jpg"}, got)
}

func TestReviews(t *testing.T) {
	svc := newService(t, purchases{"u_1/prod_galaxy_s23": true})
	ctx := context.Background()
	_, err := svc.SaveProduct(ctx, admin, phone())
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, nil, "prod_galaxy_s23", ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = svc.AddReview(ctx, customer, "prod_galaxy_s23", ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidReview)
	_, err = svc.AddReview(ctx, customer, "missing", ReviewInput{Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := svc.AddReview(ctx, customer, "prod_galaxy_s23", ReviewInput{Rating: 5, Comment: " Great phone "})
	require.NoError(t, err)
	assert.True(t, first.CertifiedPurchase)
	assert.Equal(t, "Great phone", first.Comment)
	assert.Equal(t, "Asha", first.UserName)

	_, err = svc.AddReview(ctx, admin, "prod_galaxy_s23", ReviewInput{Rating: 4})
	require.NoError(t, err)

	p, err := svc.Product(ctx, "prod_galaxy_s23")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReviewsCount)
	assert.Equal(t, 4.5, p.Rating)
	assert.False(t, p.Reviews[0].CertifiedPurchase)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LikeReview(ctx, "prod_galaxy_s23", first.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err = svc.Product(ctx, "prod_galaxy_s23")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Reviews[1].Likes)

	_, err = svc.LikeReview(ctx, "prod_galaxy_s23", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveProductKeepsReviews(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.SaveProduct(ctx, admin, phone())
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, customer, "prod_galaxy_s23", ReviewInput{Rating: 3})
	require.NoError(t, err)

	edit := phone()
	edit.Title = "Galaxy S23 5G"
	saved, err := svc.SaveProduct(ctx, admin, edit)
	require.NoError(t, err)
	assert.Len(t, saved.Reviews, 1)
	assert.Equal(t, 1, saved.ReviewsCount)
	assert.Equal(t, 3.0, saved.Rating)
}

func TestSeedOnlyFillsEmptyCollections(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	require.NoError(t, svc.SaveBanners(ctx, admin, []string{"mine.jpg"}))

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))

	banners, err := svc.Banners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine.jpg"}, banners)

	p, err := svc.Product(ctx, "prod_galaxy_s23")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 74999.0, p.Price)

	all, err := svc.Products(ctx, Query{})
	require.NoError(t, err)
	for _, p := range all {
		assert.NoError(t, validateProduct(p), p.ID)
	}
}

func TestQuery(t *testing.T) {
	products := []models.Product{
		{ID: "a", Title: "Galaxy", Price: 500, OriginalPrice: 1000, Category: "Mobiles", Rating: 4, Trending: true},
		{ID: "b", Title: "Airdopes", Price: 100, OriginalPrice: 400, Category: "Electronics", Rating: 4.5},
		{ID: "c", Title: "iPhone", Price: 900, Category: "Mobiles", Rating: 4.8, Trending: true},
	}

	q, err := ParseQuery(url.Values{"category": {"mobiles"}, "sort_by": {"price"}, "order": {"desc"}})
	require.NoError(t, err)
	got := q.Apply(products)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)

	q, err = ParseQuery(url.Values{"max_price": {"600"}, "sort_by": {"discount"}, "order": {"desc"}})
	require.NoError(t, err)
	got = q.Apply(products)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	q, err = ParseQuery(url.Values{"search": {"PHONE"}, "trending": {"true"}})
	require.NoError(t, err)
	got = q.Apply(products)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	_, err = ParseQuery(url.Values{"min_price": {"cheap"}})
	assert.EqualError(t, err, "invalid min_price")
	_, err = ParseQuery(url.Values{"sort_by": {"created_at; drop"}})
	assert.Error(t, err)

	assert.Equal(t, products, Query{}.Apply(products))
}

func TestExportProducts(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.SaveProduct(ctx, admin, phone())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportProducts(ctx, admin, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0].Cells[0].Value)
	assert.Equal(t, "prod_galaxy_s23", rows[1].Cells[0].Value)
	assert.Equal(t, "16", rows[1].Cells[6].Value)
}
