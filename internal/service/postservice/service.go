package postservice

import (
	"context"
	"strings"

	"edublog/internal/auth"
	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
)

// Service é a estrutura que implementa a lógica de negócio de posts.
// Leitura é pública; criação, edição e exclusão passam pela regra de
// autorização do pacote auth (qualquer professor, autoria irrelevante).
type Service struct {
	repo   domain.PostRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Posts.
func NewService(repo domain.PostRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// List retorna todos os posts, mais recentes primeiro, com o nome do autor
// resolvido. Não exige autenticação.
func (s *Service) List(ctx context.Context) ([]domain.Post, error) {
	return s.repo.FindAll(ctx)
}

// Search busca posts por palavra-chave no título, conteúdo ou nome do autor,
// sem diferenciar maiúsculas de minúsculas. Termo vazio significa "nenhum
// resultado", não um erro — o repositório nem chega a ser consultado.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Post, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Post{}, nil
	}
	return s.repo.Search(ctx, query)
}

// GetByID busca um post pelo seu identificador. Não exige autenticação.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Create cria um novo post. O autor é sempre a identidade autenticada: o
// payload não tem voz sobre o campo autor.
func (s *Service) Create(ctx context.Context, actor domain.Identity, creation domain.PostCreation) (domain.Post, error) {
	if err := auth.CanManagePosts(actor); err != nil {
		return domain.Post{}, err
	}

	if creation.Title == "" || creation.Body == "" {
		return domain.Post{}, apperror.NewValidationError("Título e conteúdo são obrigatórios.")
	}

	post := domain.Post{
		Title:    creation.Title,
		Body:     creation.Body,
		AuthorID: actor.ID,
	}

	created, err := s.repo.Save(ctx, post)
	if err != nil {
		return domain.Post{}, err
	}

	s.logger.Info("Post criado.", map[string]interface{}{
		"post_id": created.ID,
		"autor":   created.AuthorID,
	})
	return created, nil
}

// Edit aplica uma atualização parcial (título e/ou conteúdo) a um post.
// A regra de papel vem antes da busca pelo alvo; o repositório devolve
// NotFound se o post não existir.
func (s *Service) Edit(ctx context.Context, actor domain.Identity, id string, patch domain.PostUpdate) (domain.Post, error) {
	if err := auth.CanManagePosts(actor); err != nil {
		return domain.Post{}, err
	}

	if patch.Title != nil && *patch.Title == "" {
		return domain.Post{}, apperror.NewValidationError("O título não pode ser vazio.")
	}
	if patch.Body != nil && *patch.Body == "" {
		return domain.Post{}, apperror.NewValidationError("O conteúdo não pode ser vazio.")
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Post{}, err
	}

	s.logger.Info("Post atualizado.", map[string]interface{}{"post_id": id})
	return updated, nil
}

// Delete remove um post. Operação exclusiva de professores.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if err := auth.CanManagePosts(actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Post removido.", map[string]interface{}{"post_id": id})
	return nil
}
