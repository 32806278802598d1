package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

func TestClientUseCase_CreateClient(t *testing.T) {
	t.Run("new clients are active by default", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("Insert", mock.Anything, mock.MatchedBy(func(c *sales.Client) bool {
			return c.TaxID == "900123456" && c.Active && c.Email == "compras@acme.com"
		})).Return(nil)
		uc := NewClientUseCase(repo)

		client, err := uc.CreateClient(context.Background(), ClientRequest{
			TaxID: " 900123456 ", Name: "ACME", Email: " Compras@ACME.com", CreditTerms: 30,
		})

		require.NoError(t, err)
		assert.Equal(t, 30, client.CreditTerms)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate taxId", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("Insert", mock.Anything, mock.Anything).Return(sales.Conflict("client already exists", nil))

		_, err := NewClientUseCase(repo).CreateClient(context.Background(), ClientRequest{TaxID: "1", Name: "x"})

		assert.Equal(t, sales.KindConflict, sales.KindOf(err))
	})
}

func TestClientUseCase_UpdateClient(t *testing.T) {
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("keeps identity, creation date and status", func(t *testing.T) {
		// Arrange
		repo := new(MockClientRepository)
		repo.On("FindByTaxID", mock.Anything, "900").
			Return(&sales.Client{TaxID: "900", Active: false, CreatedAt: created}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(c *sales.Client) bool {
			return c.TaxID == "900" && !c.Active && c.CreatedAt.Equal(created) && c.Name == "Novo nome"
		})).Return(&sales.Client{TaxID: "900", Name: "Novo nome"}, nil)

		// Act
		client, err := NewClientUseCase(repo).UpdateClient(context.Background(), "900", ClientRequest{Name: "Novo nome"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Novo nome", client.Name)
		repo.AssertExpectations(t)
	})

	t.Run("taxId cannot change", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("FindByTaxID", mock.Anything, "900").Return(&sales.Client{TaxID: "900"}, nil)

		_, err := NewClientUseCase(repo).UpdateClient(context.Background(), "900", ClientRequest{TaxID: "901", Name: "x"})

		assert.Equal(t, sales.KindValidation, sales.KindOf(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown client", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("FindByTaxID", mock.Anything, "900").Return(nil, sales.NotFound("client", "900"))

		_, err := NewClientUseCase(repo).UpdateClient(context.Background(), "900", ClientRequest{Name: "x"})

		assert.Equal(t, sales.KindNotFound, sales.KindOf(err))
	})
}

func TestClientUseCase_SetActive(t *testing.T) {
	repo := new(MockClientRepository)
	repo.On("SetActive", mock.Anything, "900", false).Return(&sales.Client{TaxID: "900"}, nil)

	client, err := NewClientUseCase(repo).SetActive(context.Background(), "900", false)

	require.NoError(t, err)
	assert.False(t, client.Active)
	repo.AssertExpectations(t)
}
