package client

import (
	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUserID(c)
}
