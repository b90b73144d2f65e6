package domain

import (
	"context"
	"time"
)

// Post representa uma publicação de um professor na plataforma.
// AuthorID é sempre uma referência estrita (id do usuário); o nome do autor é
// resolvido por join na leitura e nunca persistido junto ao post.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"titulo"`
	Body       string    `json:"conteudo"`
	AuthorID   string    `json:"autor"`
	AuthorName string    `json:"autor_nome,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostCreation representa o payload de entrada para criação de um post.
// O autor não faz parte do payload: é derivado da identidade autenticada.
type PostCreation struct {
	Title string `json:"titulo"`
	Body  string `json:"conteudo"`
}

// PostUpdate representa uma atualização parcial de post (apenas título e conteúdo).
type PostUpdate struct {
	Title *string `json:"titulo"`
	Body  *string `json:"conteudo"`
}

// PostRepository define o contrato de persistência para a entidade Post.
type PostRepository interface {
	Save(ctx context.Context, post Post) (Post, error)
	FindByID(ctx context.Context, id string) (Post, error)
	FindAll(ctx context.Context) ([]Post, error)
	Search(ctx context.Context, query string) ([]Post, error)
	Update(ctx context.Context, id string, patch PostUpdate) (Post, error)
	Delete(ctx context.Context, id string) error
}
