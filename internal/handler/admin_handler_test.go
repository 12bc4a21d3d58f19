package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"socialid/internal/handler"
	"socialid/mocks"
)

func TestAdminHandler_InvalidateProvider(t *testing.T) {
	cache := new(mocks.MockProviderCache)
	cache.On("Invalidate", "google").Return()
	h := handler.NewAdminHandler(cache)

	c, w := jsonContext(http.MethodPost, "/api/v1/admin/providers/google/invalidate", "")
	c.Params = gin.Params{{Key: "provider", Value: "google"}}
	h.InvalidateProvider(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"provider":"google"}}`, w.Body.String())
	cache.AssertExpectations(t)
}

func TestAdminHandler_InvalidateProvider_MissingID(t *testing.T) {
	cache := new(mocks.MockProviderCache)
	h := handler.NewAdminHandler(cache)

	c, w := jsonContext(http.MethodPost, "/api/v1/admin/providers//invalidate", "")
	h.InvalidateProvider(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cache.AssertNotCalled(t, "Invalidate", "")
}
