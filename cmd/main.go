package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"edublog/config"
	"edublog/internal/pkg/cache"
	"edublog/internal/pkg/database"
	"edublog/internal/pkg/logger"
	"edublog/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"edublog/internal/api/post"
	"edublog/internal/api/router"
	"edublog/internal/api/user"
	"edublog/internal/repository/postrepo"
	"edublog/internal/repository/userrepo"
	"edublog/internal/service/postservice"
	"edublog/internal/service/userservice"
)

// @title EduBlog API
// @version 1.0
// @description Plataforma de posts para professores e alunos, com regras de permissão por papel.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("⚡ Inicializando serviço EduBlog...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos em frente: as variáveis essenciais podem
	// estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// --- Conexão com Recursos de Infraestrutura ---

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// --- Injeção de Dependências (Repository -> Service -> Handler) ---

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Módulo de Usuário inicializado.", nil)

	postRepo := postrepo.NewPostRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTimeout, log)
	postSvc := postservice.NewService(postRepo, log)
	postHandler := post.NewHandler(postSvc, log)
	log.Debug("Módulo de Posts inicializado.", nil)

	// --- Configuração e Início do Roteador/Servidor ---

	r := router.NewRouter(postHandler, userHandler, tokenSvc, cacheClient,
		cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor EduBlog ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
