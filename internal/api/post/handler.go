package post

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
)

// PostService define o contrato que o Handler espera da camada de Serviço.
type PostService interface {
	List(ctx context.Context) ([]domain.Post, error)
	Search(ctx context.Context, query string) ([]domain.Post, error)
	GetByID(ctx context.Context, id string) (domain.Post, error)
	Create(ctx context.Context, actor domain.Identity, creation domain.PostCreation) (domain.Post, error)
	Edit(ctx context.Context, actor domain.Identity, id string, patch domain.PostUpdate) (domain.Post, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

// Handler agrupa todos os métodos de Handler de posts.
type Handler struct {
	Service PostService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PostService, log logger.Logger) *Handler {
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
func identity(ctx context.Context) domain.Identity {
	actor, _ := middleware.GetIdentityFromContext(ctx)
	return actor
}

// GetAllHandler lida com a requisição GET /posts.
// @Summary Lista todos os posts
// @Description Retorna todos os posts, mais recentes primeiro, com o nome do autor resolvido. Não exige autenticação.
// @Tags posts
// @Produce json
// @Success 200 {array} domain.Post "Lista de posts"
// @Failure 500 {object} domain.ErrorResponse "Erro ao listar posts"
// @Router /posts [get]
func (h *Handler) GetAllHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, r, posts, err, http.StatusOK)
}

// SearchHandler lida com a requisição GET /posts/search?q=.
// @Summary Busca posts por palavra-chave (título, conteúdo ou autor)
// @Description Busca sem diferenciar maiúsculas de minúsculas. Termo vazio retorna lista vazia.
// @Tags posts
// @Produce json
// @Param q query string true "Palavra para busca"
// @Success 200 {array} domain.Post "Posts encontrados"
// @Failure 500 {object} domain.ErrorResponse "Erro ao buscar posts"
// @Router /posts/search [get]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	posts, err := h.Service.Search(r.Context(), query)
	h.handleServiceResponse(w, r, posts, err, http.StatusOK)
}

// GetByIDHandler lida com a requisição GET /posts/{id}.
// @Summary Busca um post por ID
// @Tags posts
// @Produce json
// @Param id path string true "ID do post"
// @Success 200 {object} domain.Post "Post encontrado"
// @Failure 404 {object} domain.ErrorResponse "Post não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /posts/{id} [get]
func (h *Handler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.Service.GetByID(r.Context(), id)
	h.handleServiceResponse(w, r, post, err, http.StatusOK)
}

// CreateHandler lida com a requisição POST /posts.
// @Summary Cria um novo post (somente professor autenticado)
// @Description O autor é sempre o professor autenticado; o payload não carrega autor.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body domain.PostCreation true "Dados do post (titulo e conteudo)"
// @Success 201 {object} domain.Post "Post criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Título ou conteúdo ausentes"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Apenas professores podem criar posts"
// @Failure 500 {object} domain.ErrorResponse "Erro ao criar post"
// @Router /posts [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creation domain.PostCreation
	if err := json.NewDecoder(r.Body).Decode(&creation); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	created, err := h.Service.Create(ctx, identity(ctx), creation)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// EditHandler lida com a requisição PUT /posts/{id}.
// @Summary Atualiza um post (somente professor autenticado)
// @Description Atualização parcial de título e/ou conteúdo. Qualquer professor pode editar qualquer post.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do post"
// @Param patch body domain.PostUpdate true "Campos a atualizar (titulo e/ou conteudo)"
// @Success 200 {object} domain.Post "Post atualizado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Apenas professores podem editar posts"
// @Failure 404 {object} domain.ErrorResponse "Post não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro ao editar post"
// @Router /posts/{id} [put]
func (h *Handler) EditHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var patch domain.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	updated, err := h.Service.Edit(ctx, identity(ctx), id, patch)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteHandler lida com a requisição DELETE /posts/{id}.
// @Summary Deleta um post (somente professor autenticado)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do post"
// @Success 200 {object} map[string]string "Post deletado com sucesso"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 403 {object} domain.ErrorResponse "Apenas professores podem deletar posts"
// @Failure 404 {object} domain.ErrorResponse "Post não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro ao deletar post"
// @Router /posts/{id} [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(ctx, identity(ctx), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]string{"message": "Post deletado com sucesso."}, nil, http.StatusOK)
}
