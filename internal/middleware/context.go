package middleware

import (
	"context"
	"net/http"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

func SetPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(r *http.Request) model.Principal {
	p, _ := r.Context().Value(principalKey).(model.Principal)
	return p
}
