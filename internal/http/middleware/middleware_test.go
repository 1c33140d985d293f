package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/taskflow/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Logger())
		engine.GET("/boom", func(c *gin.Context) { panic("boom") })
		engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })
	})

	It("turns a panic into a 500", func() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"internal server error"}`))
	})

	It("passes normal requests through", func() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("fine"))
	})
})
