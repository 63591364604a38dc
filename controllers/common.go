package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/darshakvaddoriya6/youtube-backend/middleware"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// getOptionalUserID resolves the viewer identity on optional-auth routes:
// nil means anonymous.
func getOptionalUserID(ctx *gin.Context) *uint {
	if id, ok := getUserID(ctx); ok {
		return &id
	}
	return nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
