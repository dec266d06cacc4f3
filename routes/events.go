package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/services"
)

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.admin.ListEvents(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "Could not fetch events. Try again later.")
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	event, err := d.admin.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, "Could not fetch event. Try again later.")
		return
	}
	c.JSON(http.StatusOK, event)
}

// POST /events/:id/register
func (d *deps) registerForEvent(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	id := c.Param("id")
	event, err := d.registrar.Register(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err, "Could not register. Try again later.")
		return
	}

	d.purge(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "Registration successful", "event": event})
}
