package domain

import (
	"context"
	"time"
)

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

// Papéis aceitos pela plataforma.
const (
	RoleProfessor UserRole = "professor"
	RoleAluno     UserRole = "aluno"
)

// IsValid informa se o papel é um dos papéis conhecidos da plataforma.
func (r UserRole) IsValid() bool {
	return r == RoleProfessor || r == RoleAluno
}

// Identity representa a identidade autenticada extraída do token JWT.
// É o sujeito de toda decisão de autorização: quem está agindo e com qual papel.
type Identity struct {
	ID   string
	Role UserRole
}

// IsAuthenticated informa se a identidade veio de um token válido.
func (i Identity) IsAuthenticated() bool {
	return i.ID != "" && i.Role.IsValid()
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Name     string   `json:"nome"`
	Email    string   `json:"email"`
	Password string   `json:"senha"`
	Role     UserRole `json:"role"`
}

// UserUpdate representa uma atualização parcial de usuário.
// Ponteiros distinguem "campo ausente" de "campo enviado vazio": a regra de
// autorização para alunos depende da presença do campo role, não do seu valor.
type UserUpdate struct {
	Name     *string   `json:"nome"`
	Email    *string   `json:"email"`
	Password *string   `json:"senha"`
	Role     *UserRole `json:"role"`
}

// UserFilter restringe a listagem de usuários ao escopo permitido ao solicitante.
// Vazio significa "sem restrição" (todos os usuários).
type UserFilter struct {
	Roles []UserRole
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id string) error
}
