// Package httpapi exposes the REST API of the server and mounts the push
// websocket at the root path.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Signup(ctx context.Context, userName, password string) (string, error)
	Login(ctx context.Context, userName, password string) (string, error)
	UserIDFromToken(token string) (string, error)
}

type CityBreakService interface {
	List(ctx context.Context, userID string) ([]*models.CityBreak, error)
	Get(ctx context.Context, userID, id string) (*models.CityBreak, error)
	Create(ctx context.Context, userID string, in models.CityBreak) (*models.CityBreak, error)
	Update(ctx context.Context, userID, id string, in models.CityBreak) (*models.CityBreak, error)
	Delete(ctx context.Context, userID, id string) error
}

type ExportService interface {
	Export(ctx context.Context, userID string) (string, error)
}

// Deps are the collaborators of the router. Push may be nil.
type Deps struct {
	Users      UserService
	CityBreaks CityBreakService
	Exports    ExportService
	Push       http.Handler
	Logger     logging.Logger
}

func NewRouter(d Deps) *gin.Engine {
	h := &handler{
		users:      d.Users,
		cityBreaks: d.CityBreaks,
		exports:    d.Exports,
		logger:     d.Logger.With("module", "httpapi"),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{common.AuthorizationHeaderName, "Content-Type"},
	}))

	if d.Push != nil {
		r.GET("/", gin.WrapH(d.Push))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
	}

	records := r.Group(common.CollectionPath)
	records.Use(bearerAuth(d.Users))
	{
		records.GET("", h.listCityBreaks)
		records.POST("", h.createCityBreak)
		records.POST("/export", h.export)
		records.GET("/:id", h.getCityBreak)
		records.PUT("/:id", h.updateCityBreak)
		records.DELETE("/:id", h.deleteCityBreak)
	}

	return r
}
