package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/dmitrijs2005/citybreaks/internal/server/services"
	"github.com/gin-gonic/gin"
)

type handler struct {
	users      UserService
	cityBreaks CityBreakService
	exports    ExportService
	logger     logging.Logger
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handler) signup(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	token, err := h.users.Signup(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info(c.Request.Context(), "signed up", "username", body.Username)
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *handler) login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handler) listCityBreaks(c *gin.Context) {
	list, err := h.cityBreaks.List(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getCityBreak(c *gin.Context) {
	cb, err := h.cityBreaks.Get(c.Request.Context(), userIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cb)
}

func (h *handler) createCityBreak(c *gin.Context) {
	var body models.CityBreak
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	cb, err := h.cityBreaks.Create(c.Request.Context(), userIDFromContext(c), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cb)
}

func (h *handler) updateCityBreak(c *gin.Context) {
	var body models.CityBreak
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	cb, err := h.cityBreaks.Update(c.Request.Context(), userIDFromContext(c), c.Param("id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cb)
}

func (h *handler) deleteCityBreak(c *gin.Context) {
	if err := h.cityBreaks.Delete(c.Request.Context(), userIDFromContext(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) export(c *gin.Context) {
	url, err := h.exports.Export(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrVersionConflict), errors.Is(err, common.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrExportDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
