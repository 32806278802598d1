package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ClientUseCase contém a lógica do cadastro de clientes
type ClientUseCase struct {
	repository ClientRepository
}

func NewClientUseCase(repository ClientRepository) *ClientUseCase {
	return &ClientUseCase{repository: repository}
}

// CreateClient cadastra um cliente; taxId duplicado resulta em CONFLICT
func (uc *ClientUseCase) CreateClient(ctx context.Context, req ClientRequest) (*sales.Client, error) {
	client := req.Client(time.Now().UTC())
	if client.TaxID == "" {
		return nil, sales.Validation("taxId is required", nil)
	}
	if err := uc.repository.Insert(ctx, client); err != nil {
		return nil, sales.Persistence(err, "failed to save client")
	}

	zerolog.Ctx(ctx).Info().Str("taxId", client.TaxID).Msg("✅ [CLIENT] cliente cadastrado")
	return client, nil
}

func (uc *ClientUseCase) GetClient(ctx context.Context, taxID string) (*sales.Client, error) {
	client, err := uc.repository.FindByTaxID(ctx, taxID)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load client")
	}
	return client, nil
}

func (uc *ClientUseCase) ListClients(ctx context.Context, search string, page sales.PageRequest) (sales.Page[sales.Client], error) {
	items, total, err := uc.repository.List(ctx, search, page)
	if err != nil {
		return sales.Page[sales.Client]{}, sales.Persistence(err, "failed to list clients")
	}
	return sales.NewPage(items, page, total), nil
}

// UpdateClient substitui os dados do cliente. O taxId da rota prevalece sobre o do corpo.
func (uc *ClientUseCase) UpdateClient(ctx context.Context, taxID string, req ClientRequest) (*sales.Client, error) {
	current, err := uc.repository.FindByTaxID(ctx, taxID)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load client")
	}
	if req.TaxID != "" && req.TaxID != taxID {
		return nil, sales.Validation("taxId cannot be changed", map[string]any{"taxId": req.TaxID})
	}

	client := req.Client(time.Now().UTC())
	client.TaxID = current.TaxID
	client.CreatedAt = current.CreatedAt
	if req.Active == nil {
		client.Active = current.Active
	}

	updated, err := uc.repository.Update(ctx, client)
	if err != nil {
		return nil, sales.Persistence(err, "failed to update client")
	}
	return updated, nil
}

func (uc *ClientUseCase) SetActive(ctx context.Context, taxID string, active bool) (*sales.Client, error) {
	client, err := uc.repository.SetActive(ctx, taxID, active)
	if err != nil {
		return nil, sales.Persistence(err, "failed to update client status")
	}

	zerolog.Ctx(ctx).Info().Str("taxId", taxID).Bool("active", active).Msg("ℹ️ [CLIENT] status alterado")
	return client, nil
}
