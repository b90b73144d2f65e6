package postrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/cache"
	"edublog/internal/pkg/logger"
)

// Chave do cache da listagem completa de posts.
const cacheKeyAllPosts = "posts:all"

// PostRepository implementa a interface domain.PostRepository sobre PostgreSQL,
// com cache-aside no Redis para a listagem completa.
type PostRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewPostRepository cria uma nova instância do PostRepository, injetando
// as conexões de infraestrutura (DB e Cache).
func NewPostRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *PostRepository {
	return &PostRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// invalidateListCache descarta a listagem cacheada após qualquer escrita.
func (r *PostRepository) invalidateListCache(ctx context.Context) {
	if err := r.Cache.Delete(ctx, cacheKeyAllPosts); err != nil {
		// Falha de cache não derruba a operação de escrita.
		r.logger.Warn("Falha ao invalidar cache de posts.", map[string]interface{}{"error": err.Error()})
	}
}

// Save insere um novo post no banco de dados.
func (r *PostRepository) Save(ctx context.Context, post domain.Post) (domain.Post, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt

	const insertSQL = `INSERT INTO posts (id, titulo, conteudo, autor, created_at, updated_at)
                       VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		post.ID,
		post.Title,
		post.Body,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir post no DB.", err)
		return domain.Post{}, apperror.NewDBError("failed to insert post", err)
	}

	r.invalidateListCache(ctxTimeout)
	r.logger.Info("Post salvo com sucesso no repositório.", map[string]interface{}{"post_id": post.ID})
	return post, nil
}

// FindByID busca um post pelo seu identificador, resolvendo o nome do autor.
func (r *PostRepository) FindByID(ctx context.Context, id string) (domain.Post, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT p.id, p.titulo, p.conteudo, p.autor, u.nome, p.created_at, p.updated_at
                   FROM posts p
                   JOIN users u ON u.id = p.autor
                   WHERE p.id = $1`

	var post domain.Post
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.AuthorID,
		&post.AuthorName,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, apperror.NewNotFoundError("Post não encontrado.")
		}
		r.logger.Error("Falha ao buscar post por id no DB.", err)
		return domain.Post{}, apperror.NewDBError("failed to find post by id", err)
	}

	return post, nil
}

// FindAll lista todos os posts, mais recentes primeiro, com o nome do autor
// resolvido por join. A listagem completa fica em cache até a próxima escrita.
func (r *PostRepository) FindAll(ctx context.Context) ([]domain.Post, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if cached, err := r.Cache.Get(ctxTimeout, cacheKeyAllPosts); err == nil {
		var posts []domain.Post
		if err := json.Unmarshal([]byte(cached), &posts); err == nil {
			r.logger.Debug("Listagem de posts servida do cache.", nil)
			return posts, nil
		}
		// Entrada corrompida: descarta e segue para o banco.
		r.invalidateListCache(ctxTimeout)
	}

	const query = `SELECT p.id, p.titulo, p.conteudo, p.autor, u.nome, p.created_at, p.updated_at
                   FROM posts p
                   JOIN users u ON u.id = p.autor
                   ORDER BY p.created_at DESC`

	posts, err := r.queryPosts(ctxTimeout, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(posts); err == nil {
		if err := r.Cache.Set(ctxTimeout, cacheKeyAllPosts, string(payload), r.CacheTTL); err != nil {
			r.logger.Warn("Falha ao popular cache de posts.", map[string]interface{}{"error": err.Error()})
		}
	}

	return posts, nil
}

// Search busca posts cujo título, conteúdo ou nome do autor contenha o termo,
// sem diferenciar maiúsculas de minúsculas. Resultado ordenado do mais recente
// para o mais antigo; o OR no SQL já entrega a união sem duplicatas.
func (r *PostRepository) Search(ctx context.Context, query string) ([]domain.Post, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const searchSQL = `SELECT p.id, p.titulo, p.conteudo, p.autor, u.nome, p.created_at, p.updated_at
                       FROM posts p
                       JOIN users u ON u.id = p.autor
                       WHERE p.titulo ILIKE '%' || $1 || '%'
                          OR p.conteudo ILIKE '%' || $1 || '%'
                          OR u.nome ILIKE '%' || $1 || '%'
                       ORDER BY p.created_at DESC`

	return r.queryPosts(ctxTimeout, searchSQL, query)
}

// queryPosts executa uma consulta que projeta posts com o nome do autor.
func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]domain.Post, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Falha ao consultar posts no DB.", err)
		return nil, apperror.NewDBError("failed to query posts", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Body,
			&post.AuthorID,
			&post.AuthorName,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			r.logger.Error("Falha ao mapear post da consulta.", err)
			return nil, apperror.NewDBError("failed to scan post row", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate post rows", err)
	}

	return posts, nil
}

// Update aplica uma atualização parcial (título e/ou conteúdo) a um post.
// Campos nulos no patch preservam o valor atual (COALESCE).
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostUpdate) (domain.Post, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE posts
                       SET titulo = COALESCE($2, titulo),
                           conteudo = COALESCE($3, conteudo),
                           updated_at = $4
                       WHERE id = $1
                       RETURNING id, titulo, conteudo, autor, created_at, updated_at`

	var post domain.Post
	err := r.DB.QueryRowContext(
		ctxTimeout,
		updateSQL,
		id,
		patch.Title,
		patch.Body,
		time.Now().UTC(),
	).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, apperror.NewNotFoundError("Post não encontrado.")
		}
		r.logger.Error("Falha ao atualizar post no DB.", err)
		return domain.Post{}, apperror.NewDBError("failed to update post", err)
	}

	r.invalidateListCache(ctxTimeout)
	r.logger.Info("Post atualizado com sucesso no repositório.", map[string]interface{}{"post_id": id})
	return post, nil
}

// Delete remove um post pelo seu identificador.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar post no DB.", err)
		return apperror.NewDBError("failed to delete post", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Post não encontrado.")
	}

	r.invalidateListCache(ctxTimeout)
	r.logger.Info("Post removido do repositório.", map[string]interface{}{"post_id": id})
	return nil
}
