package services_test

import (
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/auth"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Configure("services-test-secret", 15*time.Minute, "simbi-test")
	os.Exit(m.Run())
}
