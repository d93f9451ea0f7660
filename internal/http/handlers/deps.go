package handlers

import (
	"studioapi/internal/auth"
	"studioapi/internal/config"
	"studioapi/internal/repos"
	"studioapi/internal/services"
)

// Deps carries everything the routes need. It is built once at startup.
type Deps struct {
	Config        config.Config
	Verifier      *auth.TokenVerifier
	HealthHandler *HealthHandler
	AuthHandler   *AuthHandler
	ResultHandler *ResultHandler
}

func NewDeps(db *repos.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	logRepo := repos.NewProcessLogRepo(db)

	authSvc := services.NewAuthService(userRepo)
	resultSvc := services.NewResultService(logRepo)

	return &Deps{
		Config:        cfg,
		Verifier:      auth.NewTokenVerifier(cfg.JWTSecret),
		HealthHandler: &HealthHandler{DB: db},
		AuthHandler:   &AuthHandler{Auth: authSvc},
		ResultHandler: &ResultHandler{Results: resultSvc},
	}
}
