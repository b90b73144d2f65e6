package postservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
	"edublog/internal/service/postservice"
)

// MockPostRepository é uma implementação mock da interface domain.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Save(ctx context.Context, post domain.Post) (domain.Post, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string) (domain.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) FindAll(ctx context.Context) ([]domain.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string) ([]domain.Post, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, patch domain.PostUpdate) (domain.Post, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	professor = domain.Identity{ID: "prof-1", Role: domain.RoleProfessor}
	aluno     = domain.Identity{ID: "aluno-1", Role: domain.RoleAluno}
)

func newService(repo *MockPostRepository) *postservice.Service {
	return postservice.NewService(repo, logger.NewLogger("error"))
}

func strPtr(s string) *string { return &s }

// TestCreate_ProfessorIsForcedAsAuthor: o autor do post é sempre a identidade
// autenticada; o payload não carrega autor.
func TestCreate_ProfessorIsForcedAsAuthor(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Post) bool {
		return p.AuthorID == professor.ID && p.Title == "X" && p.Body == "Y"
	})).Return(domain.Post{ID: "post-1", Title: "X", Body: "Y", AuthorID: professor.ID}, nil)

	created, err := svc.Create(context.Background(), professor, domain.PostCreation{Title: "X", Body: "Y"})

	assert.NoError(t, err)
	assert.Equal(t, professor.ID, created.AuthorID)
	mockRepo.AssertExpectations(t)
}

// TestCreate_AlunoForbidden: aluno nunca cria post e nada é persistido.
func TestCreate_AlunoForbidden(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	_, err := svc.Create(context.Background(), aluno, domain.PostCreation{Title: "X", Body: "Y"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreate_EmptyFields_ValidationError: título e conteúdo são obrigatórios.
func TestCreate_EmptyFields_ValidationError(t *testing.T) {
	svc := newService(new(MockPostRepository))

	_, err := svc.Create(context.Background(), professor, domain.PostCreation{Title: "", Body: "Y"})
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.Create(context.Background(), professor, domain.PostCreation{Title: "X", Body: ""})
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestSearch_EmptyQuery_ReturnsEmptyList: termo vazio não é erro e não toca o
// repositório.
func TestSearch_EmptyQuery_ReturnsEmptyList(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	for _, q := range []string{"", "   "} {
		posts, err := svc.Search(context.Background(), q)
		assert.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Len(t, posts, 0)
	}

	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

// TestSearch_DelegatesToRepository: termo não vazio consulta o repositório.
func TestSearch_DelegatesToRepository(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	expected := []domain.Post{{ID: "post-1", Title: "Introdução ao Docker"}}
	mockRepo.On("Search", mock.Anything, "docker").Return(expected, nil)

	posts, err := svc.Search(context.Background(), "docker")

	assert.NoError(t, err)
	assert.Equal(t, expected, posts)
	mockRepo.AssertExpectations(t)
}

// TestList_Public: listagem não exige identidade.
func TestList_Public(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	expected := []domain.Post{{ID: "post-1"}, {ID: "post-2"}}
	mockRepo.On("FindAll", mock.Anything).Return(expected, nil)

	posts, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	mockRepo.AssertExpectations(t)
}

// TestEdit_AnyProfessorMayEditAnyPost reproduz o comportamento observado: a
// edição é liberada por papel, não por autoria — um professor edita o post de
// outro professor sem restrição.
func TestEdit_AnyProfessorMayEditAnyPost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	outroProfessor := domain.Identity{ID: "prof-2", Role: domain.RoleProfessor}
	patch := domain.PostUpdate{Title: strPtr("Título Corrigido")}

	mockRepo.On("Update", mock.Anything, "post-do-prof-1", patch).
		Return(domain.Post{ID: "post-do-prof-1", Title: "Título Corrigido", AuthorID: professor.ID}, nil)

	updated, err := svc.Edit(context.Background(), outroProfessor, "post-do-prof-1", patch)

	assert.NoError(t, err)
	assert.Equal(t, professor.ID, updated.AuthorID)
	mockRepo.AssertExpectations(t)
}

// TestEdit_AlunoForbidden: aluno não edita post algum.
func TestEdit_AlunoForbidden(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	_, err := svc.Edit(context.Background(), aluno, "post-1",
		domain.PostUpdate{Title: strPtr("Vandalismo")})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// TestEdit_EmptyFieldPresent_ValidationError: campo presente porém vazio viola
// a invariante de título/conteúdo não vazios.
func TestEdit_EmptyFieldPresent_ValidationError(t *testing.T) {
	svc := newService(new(MockPostRepository))

	_, err := svc.Edit(context.Background(), professor, "post-1",
		domain.PostUpdate{Title: strPtr("")})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestEdit_NotFound: post inexistente devolve NotFound, distinto de Forbidden.
func TestEdit_NotFound(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	patch := domain.PostUpdate{Title: strPtr("Tanto Faz")}
	mockRepo.On("Update", mock.Anything, "inexistente", patch).
		Return(domain.Post{}, apperror.NewNotFoundError("Post não encontrado."))

	_, err := svc.Edit(context.Background(), professor, "inexistente", patch)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestDelete_RoleGated: professor exclui, aluno recebe Forbidden.
func TestDelete_RoleGated(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	mockRepo.On("Delete", mock.Anything, "post-1").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), professor, "post-1"))

	err := svc.Delete(context.Background(), aluno, "post-1")
	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)

	mockRepo.AssertNumberOfCalls(t, "Delete", 1)
}

// TestGetByID_NotFound: leitura pública de post inexistente devolve NotFound.
func TestGetByID_NotFound(t *testing.T) {
	mockRepo := new(MockPostRepository)
	svc := newService(mockRepo)

	mockRepo.On("FindByID", mock.Anything, "inexistente").
		Return(domain.Post{}, apperror.NewNotFoundError("Post não encontrado."))

	_, err := svc.GetByID(context.Background(), "inexistente")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}
