package middlewares

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured origins with credentials. "*" in the list
// allows any origin, without credentials.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		// cors.New refuses a config that allows nothing
		return func(c *gin.Context) { c.Next() }
	}

	conf := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:              []string{"Authorization", "Content-Type"},
		ExposeHeaders:             []string{"X-Cache", "X-Quota-Used"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusNoContent,
	}
	if slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return cors.New(conf)
}
