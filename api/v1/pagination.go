package v1

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/services"
)

// parsePage reads ?page=, defaulting to 1
func parsePage(c *gin.Context) (int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, services.ErrPageNotFound
	}
	return page, nil
}

// parseTaskFilter reads the creator_id, tasker_id and is_completed filters
func parseTaskFilter(c *gin.Context) (dto.TaskFilter, error) {
	var filter dto.TaskFilter

	for _, f := range []struct {
		name string
		dst  **uint
	}{
		{"creator_id", &filter.CreatorID},
		{"tasker_id", &filter.TaskerID},
	} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, services.NewValidationError(f.name, "Enter a number.")
		}
		v := uint(id)
		*f.dst = &v
	}

	if raw := c.Query("is_completed"); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "1":
			v := true
			filter.IsCompleted = &v
		case "false", "0":
			v := false
			filter.IsCompleted = &v
		default:
			return filter, services.NewValidationError("is_completed", "Enter a valid boolean.")
		}
	}

	return filter, nil
}

// pageURL builds the absolute URL of another page of the current listing
func pageURL(c *gin.Context, page int) *string {
	u := url.URL{
		Scheme: requestScheme(c),
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()

	s := u.String()
	return &s
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// paginatedTasks wraps a task page in the page-number envelope
func paginatedTasks(c *gin.Context, page *services.TaskPage, room *dto.RoomDetail) dto.PaginatedTasksResponse {
	resp := dto.PaginatedTasksResponse{
		Count: page.Count,
		Results: dto.TaskPageResults{
			RoomData:   room,
			Tasks:      dto.NewTaskResponses(page.Tasks),
			TotalPages: page.TotalPages,
		},
	}
	if page.HasNext() {
		resp.Next = pageURL(c, page.Page+1)
	}
	if page.HasPrevious() {
		resp.Previous = pageURL(c, page.Page-1)
	}
	return resp
}
