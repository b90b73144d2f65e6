package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de chave única (e-mail duplicado).
const uniqueViolation = "23505"

// UserRepository implementa a interface domain.UserRepository sobre PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// isDuplicateEmail verifica se o erro do driver é a violação da constraint
// única de e-mail. A constraint do banco é o sinal autoritativo de conflito:
// fecha a janela entre a checagem de unicidade no serviço e o INSERT/UPDATE.
func isDuplicateEmail(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	const insertSQL = `INSERT INTO users (id, nome, email, password_hash, role, created_at, updated_at)
                       VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isDuplicateEmail(err) {
			r.logger.Info("Tentativa de registro com e-mail duplicado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByID busca um usuário pelo seu identificador.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, email, password_hash, role, created_at, updated_at
                   FROM users WHERE id = $1`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
		}
		r.logger.Error("Falha ao buscar usuário por id no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}

	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email_attempt": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, email, password_hash, role, created_at, updated_at
                   FROM users WHERE email = $1`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(
				fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}

	return user, nil
}

// FindAll lista usuários, aplicando o filtro de escopo quando presente.
func (r *UserRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, nome, email, password_hash, role, created_at, updated_at
              FROM users`
	args := []interface{}{}

	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		query += ` WHERE role = ANY($1)`
		args = append(args, pq.Array(roles))
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewDBError("failed to list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			r.logger.Error("Falha ao mapear usuário da listagem.", err)
			return nil, apperror.NewDBError("failed to scan user row", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate user rows", err)
	}

	return users, nil
}

// Update persiste o estado atualizado de um usuário existente.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()

	const updateSQL = `UPDATE users
                       SET nome = $2, email = $3, password_hash = $4, role = $5, updated_at = $6
                       WHERE id = $1`

	result, err := r.DB.ExecContext(
		ctxTimeout,
		updateSQL,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.UpdatedAt,
	)

	if err != nil {
		if isDuplicateEmail(err) {
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to update user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.User{}, apperror.NewDBError("failed to check update result", err)
	}
	if affected == 0 {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}

	r.logger.Info("Usuário atualizado com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Delete remove um usuário pelo seu identificador.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário no DB.", err)
		return apperror.NewDBError("failed to delete user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}

	r.logger.Info("Usuário removido do repositório.", map[string]interface{}{"user_id": id})
	return nil
}
