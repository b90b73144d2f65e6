package userservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
	"edublog/internal/pkg/token"
	"edublog/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService é uma implementação mock do serviço de tokens.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*token.CustomClaims)
	return claims, args.Error(1)
}

var (
	professor = domain.Identity{ID: "prof-1", Role: domain.RoleProfessor}
	aluno     = domain.Identity{ID: "aluno-1", Role: domain.RoleAluno}
)

func newService(repo *MockUserRepository, tokenSvc *MockTokenService) *userservice.UserService {
	return userservice.NewService(repo, tokenSvc, logger.NewLogger("error"))
}

func strPtr(s string) *string { return &s }

func rolePtr(r domain.UserRole) *domain.UserRole { return &r }

// TestRegister_Success_HashesPassword garante que a senha nunca é persistida
// em texto puro e que o papel solicitado é mantido.
func TestRegister_Success_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		hashOK := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("123456")) == nil
		return u.Name == "Aluno Teste" && u.Email == "aluno@email.com" &&
			u.Role == domain.RoleAluno && hashOK
	})).Return(domain.User{ID: "novo-id", Role: domain.RoleAluno}, nil)

	user, err := svc.Register(context.Background(), professor, domain.UserRegistration{
		Name:     "Aluno Teste",
		Email:    "aluno@email.com",
		Password: "123456",
		Role:     domain.RoleAluno,
	})

	assert.NoError(t, err)
	assert.Equal(t, "novo-id", user.ID)
	mockRepo.AssertExpectations(t)
}

// TestRegister_AlunoCreatingProfessor_Forbidden: aluno não cria professor e o
// repositório nem chega a ser consultado.
func TestRegister_AlunoCreatingProfessor_Forbidden(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	_, err := svc.Register(context.Background(), aluno, domain.UserRegistration{
		Name:     "Intruso",
		Email:    "intruso@email.com",
		Password: "123456",
		Role:     domain.RoleProfessor,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestRegister_MissingFields_ValidationError cobre os campos obrigatórios.
func TestRegister_MissingFields_ValidationError(t *testing.T) {
	svc := newService(new(MockUserRepository), new(MockTokenService))

	_, err := svc.Register(context.Background(), professor, domain.UserRegistration{
		Email: "sem-nome@email.com",
		Role:  domain.RoleAluno,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestRegister_DuplicateEmail_Conflict: a violação da constraint única do
// banco chega ao chamador como Conflict.
func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("O email 'dup@email.com' já está em uso."))

	_, err := svc.Register(context.Background(), professor, domain.UserRegistration{
		Name:     "Duplicado",
		Email:    "dup@email.com",
		Password: "123456",
		Role:     domain.RoleAluno,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestLogin_Success emite o token com id e papel do usuário encontrado.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := newService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	mockRepo.On("FindByEmail", mock.Anything, "prof@email.com").Return(domain.User{
		ID:           "prof-1",
		Email:        "prof@email.com",
		PasswordHash: string(hash),
		Role:         domain.RoleProfessor,
	}, nil)
	mockToken.On("GenerateToken", "prof-1", "professor").Return("um-token-jwt", nil)

	result, err := svc.Login(context.Background(), "prof@email.com", "123456")

	assert.NoError(t, err)
	assert.Equal(t, "um-token-jwt", result.Token)
	assert.Equal(t, "prof-1", result.User.ID)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestLogin_GenericFailure: e-mail desconhecido e senha errada produzem o
// mesmo tipo de erro com a mesma mensagem, impedindo enumeração de usuários.
func TestLogin_GenericFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@email.com").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário com email 'fantasma@email.com' não encontrado"))

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-certa"), bcrypt.DefaultCost)
	mockRepo.On("FindByEmail", mock.Anything, "real@email.com").Return(domain.User{
		ID:           "user-1",
		PasswordHash: string(hash),
		Role:         domain.RoleAluno,
	}, nil)

	_, errEmail := svc.Login(context.Background(), "fantasma@email.com", "qualquer")
	_, errSenha := svc.Login(context.Background(), "real@email.com", "senha-errada")

	assert.Error(t, errEmail)
	assert.Error(t, errSenha)
	assert.IsType(t, &apperror.UnauthorizedError{}, errEmail)
	assert.IsType(t, &apperror.UnauthorizedError{}, errSenha)
	assert.Equal(t, errEmail.Error(), errSenha.Error())
}

// TestList_ScopeByRole: professor lista todos, aluno lista apenas alunos.
func TestList_ScopeByRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	todos := []domain.User{{ID: "a"}, {ID: "b"}}
	apenasAlunos := []domain.User{{ID: "a", Role: domain.RoleAluno}}

	mockRepo.On("FindAll", mock.Anything, domain.UserFilter{}).Return(todos, nil).Once()
	mockRepo.On("FindAll", mock.Anything, domain.UserFilter{Roles: []domain.UserRole{domain.RoleAluno}}).
		Return(apenasAlunos, nil).Once()

	vistoPorProfessor, err := svc.List(context.Background(), professor)
	assert.NoError(t, err)
	assert.Len(t, vistoPorProfessor, 2)

	vistoPorAluno, err := svc.List(context.Background(), aluno)
	assert.NoError(t, err)
	assert.Len(t, vistoPorAluno, 1)
	for _, u := range vistoPorAluno {
		assert.Equal(t, domain.RoleAluno, u.Role)
	}

	mockRepo.AssertExpectations(t)
}

// TestList_MissingRole_Fails: identidade sem papel reconhecido falha explicitamente.
func TestList_MissingRole_Fails(t *testing.T) {
	svc := newService(new(MockUserRepository), new(MockTokenService))

	_, err := svc.List(context.Background(), domain.Identity{ID: "x"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestGetByID_NotFoundVsForbidden: alvo inexistente dá NotFound; alvo existente
// porém proibido dá Forbidden. Os dois erros são distinguíveis.
func TestGetByID_NotFoundVsForbidden(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("FindByID", mock.Anything, "inexistente").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado."))
	mockRepo.On("FindByID", mock.Anything, "prof-2").
		Return(domain.User{ID: "prof-2", Role: domain.RoleProfessor}, nil)

	_, errNotFound := svc.GetByID(context.Background(), aluno, "inexistente")
	_, errForbidden := svc.GetByID(context.Background(), aluno, "prof-2")

	assert.IsType(t, &apperror.NotFoundError{}, errNotFound)
	assert.IsType(t, &apperror.ForbiddenError{}, errForbidden)
}

// TestUpdate_AlunoChangingOwnName_Success: aluno edita o próprio nome.
func TestUpdate_AlunoChangingOwnName_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	atual := domain.User{ID: aluno.ID, Name: "Aluno", Email: "aluno@email.com", Role: domain.RoleAluno}
	mockRepo.On("FindByID", mock.Anything, aluno.ID).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ID == aluno.ID && u.Name == "Aluno Renomeado" && u.Role == domain.RoleAluno
	})).Return(domain.User{ID: aluno.ID, Name: "Aluno Renomeado", Role: domain.RoleAluno}, nil)

	updated, err := svc.Update(context.Background(), aluno, aluno.ID,
		domain.UserUpdate{Name: strPtr("Aluno Renomeado")})

	assert.NoError(t, err)
	assert.Equal(t, "Aluno Renomeado", updated.Name)
	mockRepo.AssertExpectations(t)
}

// TestUpdate_AlunoSendingRole_Forbidden: a presença do campo role nega a
// edição, mesmo repetindo o valor atual.
func TestUpdate_AlunoSendingRole_Forbidden(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	atual := domain.User{ID: aluno.ID, Role: domain.RoleAluno}
	mockRepo.On("FindByID", mock.Anything, aluno.ID).Return(atual, nil)

	_, err := svc.Update(context.Background(), aluno, aluno.ID,
		domain.UserUpdate{Role: rolePtr(domain.RoleAluno)})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestUpdate_AlunoEditingProfessor_Forbidden: aluno não edita professor.
func TestUpdate_AlunoEditingProfessor_Forbidden(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("FindByID", mock.Anything, "prof-2").
		Return(domain.User{ID: "prof-2", Role: domain.RoleProfessor}, nil)

	_, err := svc.Update(context.Background(), aluno, "prof-2",
		domain.UserUpdate{Name: strPtr("Hackeado")})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestUpdate_EmailTakenByAnotherUser_Conflict cobre a checagem de unicidade
// do novo e-mail contra o estado atual da base.
func TestUpdate_EmailTakenByAnotherUser_Conflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	atual := domain.User{ID: aluno.ID, Email: "aluno@email.com", Role: domain.RoleAluno}
	mockRepo.On("FindByID", mock.Anything, aluno.ID).Return(atual, nil)
	mockRepo.On("FindByEmail", mock.Anything, "ocupado@email.com").
		Return(domain.User{ID: "outro-usuario", Email: "ocupado@email.com"}, nil)

	_, err := svc.Update(context.Background(), aluno, aluno.ID,
		domain.UserUpdate{Email: strPtr("ocupado@email.com")})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestUpdate_PasswordIsRehashed: a senha nova nunca chega ao repositório em
// texto puro.
func TestUpdate_PasswordIsRehashed(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	atual := domain.User{ID: aluno.ID, Email: "aluno@email.com", Role: domain.RoleAluno, PasswordHash: "hash-antigo"}
	mockRepo.On("FindByID", mock.Anything, aluno.ID).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.PasswordHash != "hash-antigo" && u.PasswordHash != "nova-senha" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("nova-senha")) == nil
	})).Return(atual, nil)

	_, err := svc.Update(context.Background(), aluno, aluno.ID,
		domain.UserUpdate{Password: strPtr("nova-senha")})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdate_ProfessorCanDemoteSelf reproduz o comportamento observado: não há
// guarda contra um professor rebaixar o próprio papel.
func TestUpdate_ProfessorCanDemoteSelf(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	atual := domain.User{ID: professor.ID, Email: "prof@email.com", Role: domain.RoleProfessor}
	mockRepo.On("FindByID", mock.Anything, professor.ID).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ID == professor.ID && u.Role == domain.RoleAluno
	})).Return(domain.User{ID: professor.ID, Role: domain.RoleAluno}, nil)

	updated, err := svc.Update(context.Background(), professor, professor.ID,
		domain.UserUpdate{Role: rolePtr(domain.RoleAluno)})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAluno, updated.Role)
	mockRepo.AssertExpectations(t)
}

// TestDelete_ProfessorOnly: exclusão é exclusiva de professores.
func TestDelete_ProfessorOnly(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockTokenService))

	mockRepo.On("Delete", mock.Anything, "alvo-1").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), professor, "alvo-1"))

	err := svc.Delete(context.Background(), aluno, "alvo-1")
	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)

	mockRepo.AssertNumberOfCalls(t, "Delete", 1)
}
