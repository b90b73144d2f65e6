package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"edublog/internal/api/post"
	"edublog/internal/api/user"
	"edublog/internal/domain"
	"edublog/internal/pkg/cache"
	"edublog/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	postHandler *post.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares globais
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod))

	// Health check
	r.Get("/ping", PingHandler)

	// Documentação da API (gerada com swag init)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// --- Rotas de Posts ---
	// Leitura é pública; escrita exige professor autenticado.
	r.Route("/posts", func(pr chi.Router) {
		pr.Get("/", postHandler.GetAllHandler)
		pr.Get("/search", postHandler.SearchHandler)
		pr.Get("/{id}", postHandler.GetByIDHandler)

		pr.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticate(tokenSvc))
			protected.Use(middleware.RequireRoles(domain.RoleProfessor))
			protected.Post("/", postHandler.CreateHandler)
			protected.Put("/{id}", postHandler.EditHandler)
			protected.Delete("/{id}", postHandler.DeleteHandler)
		})
	})

	// --- Rotas de Usuários ---
	// Apenas o login é público. As demais exigem token; a exclusão exige
	// professor já na rota, e os Serviços revalidam as regras por dentro.
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/login", userHandler.LoginHandler)

		ur.Group(func(authenticated chi.Router) {
			authenticated.Use(middleware.Authenticate(tokenSvc))
			authenticated.Post("/register", userHandler.RegisterHandler)
			authenticated.Get("/", userHandler.ListHandler)
			authenticated.Get("/{id}", userHandler.GetByIDHandler)
			authenticated.Put("/{id}", userHandler.UpdateHandler)

			authenticated.Group(func(professorOnly chi.Router) {
				professorOnly.Use(middleware.RequireRoles(domain.RoleProfessor))
				professorOnly.Delete("/{id}", userHandler.DeleteHandler)
			})
		})
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
