package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fieldstock/db"
)

func TestWriteErrStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Srv{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &db.ValidationError{Field: "quantity", Msg: "must be positive"}, http.StatusBadRequest},
		{"not found", db.ErrNotFound, http.StatusNotFound},
		{"duplicate identity", db.ErrDuplicateIdentity, http.StatusConflict},
		{"insufficient stock", db.ErrInsufficientStock, http.StatusConflict},
		{"state conflict", db.ErrStateConflict, http.StatusConflict},
		{"slip race", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		s.writeErr(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}
}
