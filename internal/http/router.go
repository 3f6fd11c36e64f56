package http

import (
	"net/http"

	"github.com/teamtodo/teamtodo-api/internal/http/handler"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type Services struct {
	Todos       *service.TodoService
	Categories  *service.CategoryService
	Teams       *service.TeamService
	Invitations *service.InvitationService
	Users       *service.UserService
}

func NewRouter(svcs Services) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	health := handler.NewHealthHandler()
	mux.Handle("/health", health)

	todoHandler := handler.NewTodoHandler(svcs.Todos)
	mux.Handle("/api/v1/todos", todoHandler)
	mux.Handle("/api/v1/todos/", todoHandler)

	categoryHandler := handler.NewCategoryHandler(svcs.Categories)
	mux.Handle("/api/v1/categories", categoryHandler)
	mux.Handle("/api/v1/categories/", categoryHandler)

	teamHandler := handler.NewTeamHandler(svcs.Teams, svcs.Invitations)
	mux.Handle("/api/v1/teams", teamHandler)
	mux.Handle("/api/v1/teams/", teamHandler)

	invitationHandler := handler.NewInvitationHandler(svcs.Invitations)
	mux.Handle("/api/v1/invitations/", invitationHandler)

	userHandler := handler.NewUserHandler(svcs.Users)
	mux.Handle("/api/v1/users/", userHandler)

	return mux
}
