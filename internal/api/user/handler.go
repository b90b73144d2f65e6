package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
	"edublog/internal/pkg/middleware"
	"edublog/internal/service/userservice"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, actor domain.Identity, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (userservice.LoginResult, error)
	List(ctx context.Context, actor domain.Identity) ([]domain.User, error)
	GetByID(ctx context.Context, actor domain.Identity, id string) (domain.User, error)
	Update(ctx context.Context, actor domain.Identity, id string, changes domain.UserUpdate) (domain.User, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category),
			map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}

// identity extrai a identidade autenticada do contexto da requisição.
// Rotas públicas (login) não passam pelo Authenticate e recebem a identidade zero.
func identity(ctx context.Context) domain.Identity {
	actor, _ := middleware.GetIdentityFromContext(ctx)
	return actor
}

// RegisterHandler lida com a requisição POST /users/register.
// @Summary Registra um novo usuário
// @Description Cria um novo usuário. Professores criam qualquer papel; alunos só criam alunos.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registration body domain.UserRegistration true "Dados de registro (nome, email, senha e role)"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou campos obrigatórios ausentes"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Permissão negada para o papel solicitado"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /users/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	newUser, err := h.Service.Register(ctx, identity(ctx), reg)
	h.handleServiceResponse(w, r, newUser, err, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /users/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha e emite um token com validade de 1 dia. A falha é genérica: não revela se o email existe.
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} userservice.LoginResult "Token JWT emitido e dados do usuário"
// @Failure 401 {object} domain.ErrorResponse "Email ou senha inválidos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /users/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	result, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// ListHandler lida com a requisição GET /users.
// @Summary Lista usuários conforme permissão
// @Description Professores veem todos os usuários; alunos veem apenas outros alunos.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.User "Lista de usuários no escopo do solicitante"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro ao listar usuários"
// @Router /users [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Service.List(ctx, identity(ctx))
	h.handleServiceResponse(w, r, users, err, http.StatusOK)
}

// GetByIDHandler lida com a requisição GET /users/{id}.
// @Summary Busca um usuário por ID
// @Description Professores veem qualquer usuário; alunos veem a si mesmos e outros alunos.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Success 200 {object} domain.User "Usuário encontrado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Aluno tentando visualizar professor"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro ao buscar usuário"
// @Router /users/{id} [get]
func (h *Handler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	user, err := h.Service.GetByID(ctx, identity(ctx), id)
	h.handleServiceResponse(w, r, user, err, http.StatusOK)
}

// UpdateHandler lida com a requisição PUT /users/{id}.
// @Summary Atualiza um usuário
// @Description Alunos só editam outros alunos e não podem enviar o campo role; professores editam qualquer campo de qualquer usuário.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param changes body domain.UserUpdate true "Campos a atualizar (nome, email, senha, role)"
// @Success 200 {object} domain.User "Usuário atualizado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Permissão negada pelas regras de edição"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Email já está em uso por outro usuário"
// @Failure 500 {object} domain.ErrorResponse "Erro ao atualizar usuário"
// @Router /users/{id} [put]
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var changes domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	updated, err := h.Service.Update(ctx, identity(ctx), id, changes)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteHandler lida com a requisição DELETE /users/{id}.
// @Summary Deleta um usuário (somente professor autenticado)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Success 200 {object} map[string]string "Usuário deletado com sucesso"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Acesso permitido apenas para professores"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro ao deletar usuário"
// @Router /users/{id} [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(ctx, identity(ctx), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]string{"message": "Usuário deletado com sucesso."}, nil, http.StatusOK)
}
