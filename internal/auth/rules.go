// Package auth concentra as regras de autorização da plataforma.
//
// Todas as funções são puras: recebem a identidade que está agindo, a
// operação pretendida e o alvo, e devolvem nil (permitido) ou um erro tipado
// (negado). Nenhuma função faz I/O ou guarda estado; a verificação de
// existência do alvo é responsabilidade da camada de Serviço, que só consulta
// estas regras depois de confirmar que o alvo existe.
package auth

import (
	"edublog/internal/domain"
	apperror "edublog/internal/errors"
)

// Mensagens de negação reutilizadas pelas regras.
const (
	msgProfessorOnly    = "Acesso permitido apenas para professores."
	msgAuthRequired     = "Autenticação necessária para esta operação."
	msgAlunoCreatesOnly = "Alunos só podem criar usuários que sejam alunos."
	msgAlunoReadsOnly   = "Alunos só podem visualizar outros alunos."
	msgAlunoEditsOnly   = "Alunos só podem editar outros alunos."
	msgAlunoRoleChange  = "Alunos não podem alterar o tipo de usuário."
)

// CanManagePosts decide se a identidade pode criar, editar ou excluir posts.
// A regra é por papel, não por autoria: qualquer professor pode gerenciar
// qualquer post, inclusive de outros professores.
func CanManagePosts(actor domain.Identity) error {
	if !actor.IsAuthenticated() {
		return apperror.NewUnauthorizedError(msgAuthRequired)
	}
	if actor.Role != domain.RoleProfessor {
		return apperror.NewForbiddenError(msgProfessorOnly)
	}
	return nil
}

// CanRegisterUser decide se a identidade pode registrar um usuário com o papel
// solicitado. Professores registram qualquer papel; alunos, apenas alunos.
func CanRegisterUser(actor domain.Identity, newRole domain.UserRole) error {
	if !actor.IsAuthenticated() {
		return apperror.NewUnauthorizedError(msgAuthRequired)
	}
	if actor.Role == domain.RoleAluno && newRole != domain.RoleAluno {
		return apperror.NewForbiddenError(msgAlunoCreatesOnly)
	}
	return nil
}

// ListUsersScope devolve o filtro de escopo a aplicar na listagem de usuários:
// professores enxergam todos; alunos enxergam apenas outros alunos.
func ListUsersScope(actor domain.Identity) (domain.UserFilter, error) {
	if !actor.IsAuthenticated() {
		return domain.UserFilter{}, apperror.NewUnauthorizedError(
			"Papel do solicitante ausente ou desconhecido.")
	}
	if actor.Role == domain.RoleProfessor {
		return domain.UserFilter{}, nil
	}
	return domain.UserFilter{Roles: []domain.UserRole{domain.RoleAluno}}, nil
}

// CanReadUser decide se a identidade pode visualizar o usuário alvo.
// Alunos visualizam a si mesmos e a outros alunos; professores, qualquer um.
func CanReadUser(actor domain.Identity, target domain.User) error {
	if !actor.IsAuthenticated() {
		return apperror.NewUnauthorizedError(msgAuthRequired)
	}
	if actor.Role == domain.RoleProfessor {
		return nil
	}
	if target.ID == actor.ID || target.Role == domain.RoleAluno {
		return nil
	}
	return apperror.NewForbiddenError(msgAlunoReadsOnly)
}

// CanUpdateUser decide se a identidade pode aplicar as alterações ao usuário
// alvo. Para alunos valem duas restrições independentes: o alvo precisa ser
// aluno, e o campo role não pode estar presente nas alterações — nem mesmo
// repetindo o valor atual. Professores não têm restrição aqui; a unicidade de
// e-mail é verificada pela camada de Serviço contra o estado atual da base.
func CanUpdateUser(actor domain.Identity, target domain.User, changes domain.UserUpdate) error {
	if !actor.IsAuthenticated() {
		return apperror.NewUnauthorizedError(msgAuthRequired)
	}
	if actor.Role == domain.RoleProfessor {
		return nil
	}
	if target.Role != domain.RoleAluno {
		return apperror.NewForbiddenError(msgAlunoEditsOnly)
	}
	if changes.Role != nil {
		return apperror.NewForbiddenError(msgAlunoRoleChange)
	}
	return nil
}

// CanDeleteUser decide se a identidade pode excluir usuários.
func CanDeleteUser(actor domain.Identity) error {
	if !actor.IsAuthenticated() {
		return apperror.NewUnauthorizedError(msgAuthRequired)
	}
	if actor.Role != domain.RoleProfessor {
		return apperror.NewForbiddenError(msgProfessorOnly)
	}
	return nil
}
