// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fieldstock/app"
	"fieldstock/cache"
	"fieldstock/config"
	"fieldstock/db"
)

type Srv struct {
	Repo  *db.Repo
	Cache *cache.StockCache
	Cfg   config.Config
	Log   *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:  db.NewRepo(a.DB, a.Log),
		Cache: a.Cache,
		Cfg:   a.Config,
		Log:   a.Log,
	}
}

// writeErr maps the repo error taxonomy onto HTTP statuses. Every mutating
// operation either fully succeeded before reaching here or had no effect.
func (s *Srv) writeErr(c *gin.Context, err error) {
	switch {
	case db.IsValidation(err):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrDuplicateIdentity),
		errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrStateConflict),
		errors.Is(err, db.ErrStaleState):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// A writer racing the slip number generator loses here; the client
		// can simply resubmit.
		c.JSON(http.StatusConflict, app.H{"error": "identifier collision, retry the request"})
	default:
		s.Log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}

// invalidated marks the org's stock level reports stale after a commit.
func (s *Srv) invalidated(c *gin.Context, scope db.OrgScope) {
	s.Cache.Invalidate(c.Request.Context(), scope.OrgID)
}
