package routes

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eventapi/services"
	"eventapi/utils"
)

// POST /admin/login
func (d *deps) adminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	if d.auth.PasswordHash == "" || !utils.CheckPasswordHash(req.Password, d.auth.PasswordHash) {
		d.log.Warn("admin login failed", slog.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Could not authenticate."})
		return
	}

	token, err := utils.GenerateAdminToken(d.auth.Secret, d.auth.TokenTTL)
	if err != nil {
		d.log.Error("failed to sign admin token", utils.ErrAttr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not authenticate."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": token})
}

// GET /admin/events
func (d *deps) getAdminEvents(c *gin.Context) {
	views, err := d.admin.ListEventsForAdmin(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "Could not fetch events. Try again later.")
		return
	}
	c.JSON(http.StatusOK, views)
}

// flexInt takes a JSON number or a numeric string; the admin form posts
// capacity as text.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

type createEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Capacity    flexInt `json:"capacity"`
	Image       string  `json:"image"`
}

// POST /admin/events
func (d *deps) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	event, err := d.admin.CreateEvent(c.Request.Context(), services.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    int(req.Capacity),
		Image:       req.Image,
	})
	if err != nil {
		abortWithError(c, err, "Could not create event. Try again later.")
		return
	}

	d.purge(c, event.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
}

// DELETE /admin/events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id := c.Param("id")
	event, err := d.admin.DeleteEvent(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "Could not delete the event.")
		return
	}

	d.purge(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully", "event": event})
}
