package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"edublog/internal/domain"
	apperror "edublog/internal/errors"
	"edublog/internal/pkg/token"
)

// ContextKey é o tipo usado para armazenar a identidade no contexto.
// Usamos um tipo próprio para garantir que esta chave seja única e não haja
// conflito com outras chaves string.
type ContextKey int

const (
	IdentityKey ContextKey = iota
)

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// writeError envia a resposta de erro no mesmo formato padronizado dos handlers.
func writeError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}

// extractBearer retorna o token do header Authorization, ou vazio se ausente/malformado.
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// Authenticate valida o JWT e anexa a identidade (id + papel) ao contexto da
// requisição. Requisições sem token válido são rejeitadas com 401 antes de
// qualquer consulta a entidades.
func Authenticate(tokenSvc TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearer(r)
			if tokenString == "" {
				writeError(w, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeError(w, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			identity := domain.Identity{
				ID:   claims.UserID,
				Role: domain.UserRole(claims.Role),
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentityFromContext extrai a identidade autenticada anexada pelo Authenticate.
func GetIdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}

// RequireRoles rejeita com 403 as identidades cujo papel não está na lista.
// Deve ser encadeado após o Authenticate.
func RequireRoles(requiredRoles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentityFromContext(r.Context())
			if !ok {
				writeError(w, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, required := range requiredRoles {
				if identity.Role == required {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, apperror.NewForbiddenError("Acesso permitido apenas para professores."))
		})
	}
}
