package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/images"
	"eventapi/utils"
)

// multipart envelope allowance on top of the file itself
const multipartOverhead = 64 << 10

// POST /upload
func (d *deps) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, d.images.MaxSize()+multipartOverhead)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abortWithError(c, images.ErrTooLarge, "")
			return
		}
		abortWithError(c, images.ErrNoFile, "")
		return
	}

	f, err := fh.Open()
	if err != nil {
		d.log.Error("failed to open uploaded file", utils.ErrAttr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read upload."})
		return
	}
	defer f.Close()

	stored, err := d.images.Accept(c.Request.Context(), f, fh.Size, fh.Filename)
	if err != nil {
		abortWithError(c, err, "Could not store upload.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "File uploaded successfully",
		"imagePath":    stored.Path,
		"originalName": stored.OriginalName,
	})
}
