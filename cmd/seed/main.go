package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"edublog/config"
	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/cache"
	"edublog/internal/pkg/database"
	"edublog/internal/pkg/logger"
	"edublog/internal/repository/postrepo"
	"edublog/internal/repository/userrepo"
)

// Seed de desenvolvimento: garante um professor e um aluno de teste e cria os
// posts de exemplo do professor. Idempotente para usuários; os posts só são
// criados junto com o professor.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	logg := logger.NewLogger(cfg.LogLevel)

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Seed: falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, logg)
	postRepo := postrepo.NewPostRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTimeout, logg)

	ctx := context.Background()

	// Garante o professor
	professor, created, err := ensureUser(ctx, userRepo, domain.User{
		Name:  "Professor Admin",
		Email: "prof@email.com",
		Role:  domain.RoleProfessor,
	}, "123456")
	if err != nil {
		logg.Fatal("Seed: falha ao garantir professor.", err)
	}
	if created {
		logg.Info("Professor criado.", map[string]interface{}{"user_id": professor.ID})
	}

	// Garante o aluno
	_, alunoCriado, err := ensureUser(ctx, userRepo, domain.User{
		Name:  "Aluno",
		Email: "aluno@email.com",
		Role:  domain.RoleAluno,
	}, "123456")
	if err != nil {
		logg.Fatal("Seed: falha ao garantir aluno.", err)
	}
	if alunoCriado {
		logg.Info("Aluno criado.", nil)
	}

	if !created {
		logg.Info("Seed concluída: usuários já existiam, posts preservados.", nil)
		return
	}

	// Posts de exemplo, todos de autoria do professor
	samples := []struct {
		title string
		body  string
	}{
		{"Introdução ao Go", "Conteúdo inicial sobre a linguagem Go..."},
		{"PostgreSQL na prática", "Como modelar dados relacionais..."},
		{"Autenticação com JWT", "Implementando login seguro com JWT..."},
		{"Introdução ao Docker", "Conteúdo inicial sobre Docker..."},
		{"Introdução ao Linux", "Conteúdo inicial sobre Linux..."},
	}

	for _, sample := range samples {
		if _, err := postRepo.Save(ctx, domain.Post{
			Title:    sample.title,
			Body:     sample.body,
			AuthorID: professor.ID,
		}); err != nil {
			logg.Fatal("Seed: falha ao criar post de exemplo.", err)
		}
	}

	logg.Info("Seed concluída com sucesso.", map[string]interface{}{"posts": len(samples)})
}

// ensureUser cria o usuário se o e-mail ainda não existir.
// Retorna o usuário e se ele foi criado nesta execução.
func ensureUser(ctx context.Context, repo *userrepo.UserRepository, user domain.User, password string) (domain.User, bool, error) {
	existing, err := repo.FindByEmail(ctx, user.Email)
	if err == nil {
		return existing, false, nil
	}

	var notFoundErr *apperror.NotFoundError
	if !errors.As(err, &notFoundErr) {
		return domain.User{}, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, false, err
	}
	user.PasswordHash = string(hash)

	created, err := repo.Save(ctx, user)
	if err != nil {
		return domain.User{}, false, err
	}
	return created, true, nil
}
