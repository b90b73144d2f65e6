package userservice

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"edublog/internal/auth"
	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
	"edublog/internal/pkg/token"
)

// Mensagem única para qualquer falha de credencial no login: não revela se o
// e-mail existe ou se a senha está errada.
const msgInvalidCredentials = "Email ou senha inválidos."

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// LoginResult agrupa o token emitido e o usuário autenticado.
// O hash da senha nunca sai daqui: a struct domain.User usa a tag json:"-".
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"usuario"`
}

// UserService define o serviço de lógica de negócio para a entidade User.
// Toda decisão de permissão é delegada ao pacote auth; o serviço orquestra a
// ordem das checagens (identidade antes de existência, existência do alvo
// antes das regras sobre os campos do alvo) e a persistência.
type UserService struct {
	UserRepo domain.UserRepository
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório
// e o serviço de tokens.
func NewService(repo domain.UserRepository, tokenSvc TokenService, log logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		logger:   log,
	}
}

// Register registra um novo usuário no sistema.
// A identidade que registra precisa de permissão para o papel solicitado:
// professores criam qualquer papel, alunos criam apenas alunos.
func (s *UserService) Register(ctx context.Context, actor domain.Identity, registration domain.UserRegistration) (domain.User, error) {
	// 1. Autorização antes de qualquer consulta
	if err := auth.CanRegisterUser(actor, registration.Role); err != nil {
		return domain.User{}, err
	}

	// 2. Validação Básica
	if registration.Name == "" || registration.Email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Nome, email e senha são obrigatórios.")
	}
	if !registration.Role.IsValid() {
		return domain.User{}, apperror.NewValidationError("O role deve ser 'professor' ou 'aluno'.")
	}

	// 3. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newUser := domain.User{
		Name:         registration.Name,
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         registration.Role,
	}

	// 4. Persistência. A constraint única de e-mail no banco é o sinal
	// autoritativo de duplicidade; o repositório já a traduz para Conflict.
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{
		"user_id": user.ID,
		"role":    string(user.Role),
	})
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT com validade de 1 dia.
func (s *UserService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, apperror.NewUnauthorizedError(msgInvalidCredentials)
	}

	// Busca pelo e-mail. NotFound vira a mesma falha genérica da senha errada,
	// para não permitir enumeração de usuários.
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return LoginResult{}, apperror.NewUnauthorizedError(msgInvalidCredentials)
		}
		return LoginResult{}, err
	}

	// Compara a senha informada (texto puro) com o hash salvo no DB.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, apperror.NewUnauthorizedError(msgInvalidCredentials)
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return LoginResult{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login efetuado.", map[string]interface{}{"user_id": user.ID})
	return LoginResult{Token: tokenString, User: user}, nil
}

// List lista os usuários visíveis para a identidade solicitante:
// professores enxergam todos, alunos apenas outros alunos.
func (s *UserService) List(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	filter, err := auth.ListUsersScope(actor)
	if err != nil {
		return nil, err
	}
	return s.UserRepo.FindAll(ctx, filter)
}

// GetByID busca um usuário pelo id, respeitando as regras de visibilidade.
// A existência do alvo é confirmada antes da regra de permissão: quem não
// encontra recebe 404, quem encontra mas não pode ver recebe 403.
func (s *UserService) GetByID(ctx context.Context, actor domain.Identity, id string) (domain.User, error) {
	target, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if err := auth.CanReadUser(actor, target); err != nil {
		return domain.User{}, err
	}

	return target, nil
}

// Update aplica uma atualização parcial a um usuário.
// Ordem das checagens: existência do alvo, regra de permissão sobre o alvo e
// as alterações, unicidade do novo e-mail, e só então a escrita.
func (s *UserService) Update(ctx context.Context, actor domain.Identity, id string, changes domain.UserUpdate) (domain.User, error) {
	target, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if err := auth.CanUpdateUser(actor, target, changes); err != nil {
		return domain.User{}, err
	}

	// Checa se o novo e-mail pertence a outro usuário. A leitura seguida da
	// escrita não é atômica; a constraint única do banco cobre a janela e o
	// repositório traduz a violação para Conflict.
	if changes.Email != nil && *changes.Email != target.Email {
		other, err := s.UserRepo.FindByEmail(ctx, *changes.Email)
		if err == nil && other.ID != target.ID {
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", *changes.Email))
		}
		if err != nil {
			var notFoundErr *apperror.NotFoundError
			if !errors.As(err, &notFoundErr) {
				return domain.User{}, err
			}
		}
		target.Email = *changes.Email
	}

	if changes.Name != nil {
		if *changes.Name == "" {
			return domain.User{}, apperror.NewValidationError("O nome não pode ser vazio.")
		}
		target.Name = *changes.Name
	}

	if changes.Role != nil {
		if !changes.Role.IsValid() {
			return domain.User{}, apperror.NewValidationError("O role deve ser 'professor' ou 'aluno'.")
		}
		target.Role = *changes.Role
	}

	if changes.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*changes.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		target.PasswordHash = string(hashedPassword)
	}

	updated, err := s.UserRepo.Update(ctx, target)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário atualizado.", map[string]interface{}{"user_id": updated.ID})
	return updated, nil
}

// Delete remove um usuário. Operação exclusiva de professores.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if err := auth.CanDeleteUser(actor); err != nil {
		return err
	}
	return s.UserRepo.Delete(ctx, id)
}
