// Package mirror serves the local character cache with the same routes and
// JSON shape as the public directory, so clients can run offline against it.
package mirror

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rickdex/internal/catalog"
	"rickdex/pkg/models"
)

// PageSize matches the public directory.
const PageSize = 20

const nothingHere = "There is nothing here"

type Handler struct {
	Repo *catalog.Repo
}

func NewHandler(repo *catalog.Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/character", h.list)
	rg.GET("/character/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	page := catalog.ParseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	q := catalog.ListQuery{
		Q:       c.Query("name"),
		Status:  c.Query("status"),
		Species: c.Query("species"),
		Gender:  c.Query("gender"),
		Limit:   PageSize,
		Offset:  (page - 1) * PageSize,
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		log.Printf("[mirror] count: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	pages := (total + PageSize - 1) / PageSize
	if total == 0 || page > pages {
		c.JSON(http.StatusNotFound, gin.H{"error": nothingHere})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		log.Printf("[mirror] list: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	info := models.PageInfo{Count: total, Pages: pages}
	if page < pages {
		info.Next = pageURL(c, page+1)
	}
	if page > 1 {
		info.Prev = pageURL(c, page-1)
	}
	c.JSON(http.StatusOK, models.CharacterPage{Info: info, Results: items})
}

func (h *Handler) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hey! you must provide an id"})
		return
	}
	ch, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[mirror] get %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// pageURL rebuilds the request URL with a different page number.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	v := url.Values{}
	for key, vals := range c.Request.URL.Query() {
		if key == "page" || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		v.Set(key, vals[0])
	}
	v.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, v.Encode())
}
