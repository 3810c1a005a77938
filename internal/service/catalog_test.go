package service

import (
	"context"
	"fmt"
	"testing"

	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db     *gorm.DB
	users  repository.UserRepository
	svc    CatalogService
	seller *model.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	f := &catalogFixture{
		db:    db,
		users: repository.NewUserRepository(db),
	}
	f.svc = NewCatalogService(
		f.users,
		repository.NewPlanRepository(db),
		repository.NewProductRepository(db),
		repository.NewAffiliateRepository(db),
		zaptest.NewLogger(t),
	)

	// free plan: 3 products, 3 approved affiliates
	f.seller = &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleVendor, PlanID: repository.FreePlanID}
	require.NoError(t, f.users.Create(ctx, f.seller))

	return f
}

func productRequest(name string) *dto.CreateProductRequest {
	return &dto.CreateProductRequest{
		Name:           name,
		PriceCents:     10000,
		CommissionType: "percentage",
		CommissionRate: "10",
	}
}

func TestCreateProductPlanLimit(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateProduct(ctx, f.seller.ID, productRequest(fmt.Sprintf("Product %d", i)))
		require.NoError(t, err)
	}

	_, err := f.svc.CreateProduct(ctx, f.seller.ID, productRequest("One Too Many"))
	require.ErrorIs(t, err, model.ErrLimitReached)
}

func TestUpdateProductRequiresOwnership(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.seller.ID, productRequest("Mine"))
	require.NoError(t, err)

	other := &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleVendor, PlanID: repository.FreePlanID}
	require.NoError(t, f.users.Create(ctx, other))

	name := "Hijacked"
	err = f.svc.UpdateProduct(ctx, other.ID, product.ID, &dto.UpdateProductRequest{Name: &name})
	require.ErrorIs(t, err, model.ErrForbidden)

	newPrice := int64(12000)
	require.NoError(t, f.svc.UpdateProduct(ctx, f.seller.ID, product.ID, &dto.UpdateProductRequest{PriceCents: &newPrice}))

	products, err := f.svc.ListProducts(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(12000), products[0].PriceCents)
	assert.Equal(t, "Mine", products[0].Name)
}

func TestAffiliationLifecycle(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.seller.ID, productRequest("Promoted"))
	require.NoError(t, err)

	affiliate := &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleAffiliate, PlanID: repository.FreePlanID}
	require.NoError(t, f.users.Create(ctx, affiliate))

	relation, err := f.svc.RequestAffiliation(ctx, affiliate.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationStatusPending, relation.Status)

	require.NoError(t, f.svc.ApproveAffiliation(ctx, f.seller.ID, relation.ID))

	// approval is one-shot
	err = f.svc.ApproveAffiliation(ctx, f.seller.ID, relation.ID)
	require.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestApproveAffiliationPlanLimit(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.seller.ID, productRequest("Popular"))
	require.NoError(t, err)

	var relations []*model.AffiliateRelation
	for i := 0; i < 4; i++ {
		affiliate := &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleAffiliate, PlanID: repository.FreePlanID}
		require.NoError(t, f.users.Create(ctx, affiliate))

		relation, err := f.svc.RequestAffiliation(ctx, affiliate.ID, product.ID)
		require.NoError(t, err)
		relations = append(relations, relation)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.ApproveAffiliation(ctx, f.seller.ID, relations[i].ID))
	}

	err = f.svc.ApproveAffiliation(ctx, f.seller.ID, relations[3].ID)
	require.ErrorIs(t, err, model.ErrLimitReached)
}
