package api

import (
	"github.com/readkeepapp/readkeep-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Book    *service.BookService
	Import  *service.ImportService
	Stats   *service.StatsService
	Search  *service.SearchService
	Genre   *service.GenreService
}
