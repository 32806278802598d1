package sellers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/mailer"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const maxUsernameAttempts = 3

// SellerUseCase contém o cadastro, a confirmação e o login de vendedores
type SellerUseCase struct {
	repository Repository
	mailer     Mailer
	tokens     TokenIssuer
	confirmURL string
	newToken   func() string
}

// NewSellerUseCase cria uma nova instância de SellerUseCase
func NewSellerUseCase(repository Repository, mailer Mailer, tokens TokenIssuer, confirmURL string) *SellerUseCase {
	return &SellerUseCase{
		repository: repository,
		mailer:     mailer,
		tokens:     tokens,
		confirmURL: confirmURL,
		newToken:   uuid.NewString,
	}
}

// Register cadastra um vendedor com senha aleatória e envia credenciais e link de confirmação por e-mail
func (uc *SellerUseCase) Register(ctx context.Context, req CreateSellerRequest) (*sales.Seller, error) {
	log := zerolog.Ctx(ctx)

	seller := req.Seller(time.Now().UTC())
	if !seller.Role.Valid() {
		return nil, sales.Validation("invalid role", map[string]any{"role": seller.Role})
	}
	base := BaseUsername(seller.FirstName, seller.LastName)
	if base == "" {
		return nil, sales.Validation("name must contain letters or digits", nil)
	}

	// 1. nationalId é único
	if _, err := uc.repository.FindByNationalID(ctx, seller.NationalID); err == nil {
		return nil, sales.Conflict("seller already exists", map[string]any{"nationalId": seller.NationalID})
	} else if !sales.IsKind(err, sales.KindNotFound) {
		return nil, sales.Persistence(err, "failed to load seller")
	}

	// 2. Credenciais
	password, err := GeneratePassword()
	if err != nil {
		return nil, sales.Persistence(err, "failed to generate password")
	}
	if seller.PasswordHash, err = HashPassword(password); err != nil {
		return nil, sales.Persistence(err, "failed to hash password")
	}
	seller.ConfirmationToken = uc.newToken()

	// 3. Username livre; o índice único resolve corridas entre cadastros simultâneos
	for attempt := 1; ; attempt++ {
		existing, err := uc.repository.UsernamesWithPrefix(ctx, base)
		if err != nil {
			return nil, sales.Persistence(err, "failed to load usernames")
		}
		seller.Username = NextUsername(base, existing)

		err = uc.repository.Insert(ctx, seller)
		if err == nil {
			break
		}
		if !sales.IsKind(err, sales.KindConflict) {
			return nil, sales.Persistence(err, "failed to save seller")
		}
		// o conflito pode ser do nationalId (cadastro simultâneo do mesmo vendedor)
		if _, ferr := uc.repository.FindByNationalID(ctx, seller.NationalID); ferr == nil {
			return nil, sales.Conflict("seller already exists", map[string]any{"nationalId": seller.NationalID})
		}
		if attempt == maxUsernameAttempts {
			return nil, sales.Persistence(err, "failed to save seller")
		}
		log.Warn().Str("username", seller.Username).Int("attempt", attempt).Msg("⚠️ [SELLER] username em uso; tentando novamente")
	}

	// 4. E-mail (uma falha não desfaz o cadastro)
	if err := uc.mailer.Send(ctx, uc.welcomeMessage(seller, password)); err != nil {
		log.Error().Err(err).Int64("nationalId", seller.NationalID).Msg("❌ [SELLER] falha ao enviar credenciais")
	}

	log.Info().Int64("nationalId", seller.NationalID).Str("username", seller.Username).Msg("✅ [SELLER] vendedor cadastrado")
	return seller, nil
}

func (uc *SellerUseCase) welcomeMessage(seller *sales.Seller, password string) mailer.Message {
	link := uc.confirmURL + "?token=" + url.QueryEscape(seller.ConfirmationToken)
	return mailer.Message{
		To:      seller.Email,
		Subject: "Suas credenciais de acesso",
		Text: fmt.Sprintf("Olá %s,\n\nusuário: %s\nsenha: %s\n\nConfirme seu e-mail em: %s\n",
			seller.FirstName, seller.Username, password, link),
	}
}

// ConfirmEmail consome o token de confirmação
func (uc *SellerUseCase) ConfirmEmail(ctx context.Context, token string) (*sales.Seller, error) {
	if token == "" {
		return nil, sales.Validation("token is required", nil)
	}
	seller, err := uc.repository.ConfirmEmail(ctx, token)
	if err != nil {
		return nil, sales.Persistence(err, "failed to confirm email")
	}

	zerolog.Ctx(ctx).Info().Int64("nationalId", seller.NationalID).Msg("✅ [SELLER] e-mail confirmado")
	return seller, nil
}

// Login valida usuário e senha e emite o token. Vendedores inativos recebem FORBIDDEN.
func (uc *SellerUseCase) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	seller, err := uc.repository.FindByUsername(ctx, req.Username)
	if sales.IsKind(err, sales.KindNotFound) {
		return LoginResult{}, sales.Unauthorized("invalid username or password")
	}
	if err != nil {
		return LoginResult{}, sales.Persistence(err, "failed to load seller")
	}
	if !CheckPassword(seller.PasswordHash, req.Password) {
		zerolog.Ctx(ctx).Warn().Str("username", req.Username).Msg("⚠️ [LOGIN] senha inválida")
		return LoginResult{}, sales.Unauthorized("invalid username or password")
	}
	if !seller.Active {
		return LoginResult{}, sales.Forbidden("seller is inactive")
	}

	token, expiresAt, err := uc.tokens.Issue(seller)
	if err != nil {
		return LoginResult{}, sales.Persistence(err, "failed to issue token")
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, Seller: seller}, nil
}

func (uc *SellerUseCase) Me(ctx context.Context, actor sales.Actor) (*sales.Seller, error) {
	seller, err := uc.repository.FindByNationalID(ctx, actor.SellerID)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load seller")
	}
	return seller, nil
}

func (uc *SellerUseCase) List(ctx context.Context, page sales.PageRequest) (sales.Page[sales.Seller], error) {
	items, total, err := uc.repository.List(ctx, page)
	if err != nil {
		return sales.Page[sales.Seller]{}, sales.Persistence(err, "failed to list sellers")
	}
	return sales.NewPage(items, page, total), nil
}

// SetActive ativa ou desativa um vendedor. Um admin não pode desativar a si mesmo.
func (uc *SellerUseCase) SetActive(ctx context.Context, actor sales.Actor, nationalID int64, active bool) (*sales.Seller, error) {
	if !active && actor.SellerID == nationalID {
		return nil, sales.Validation("cannot deactivate yourself", map[string]any{"nationalId": nationalID})
	}
	seller, err := uc.repository.SetActive(ctx, nationalID, active)
	if err != nil {
		return nil, sales.Persistence(err, "failed to update seller status")
	}

	zerolog.Ctx(ctx).Info().Int64("nationalId", nationalID).Bool("active", active).Msg("ℹ️ [SELLER] status alterado")
	return seller, nil
}
