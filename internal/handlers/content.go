package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/services"
)

// ContentHandler serves announcements and carousel images.
type ContentHandler struct {
	announcements *services.AnnouncementService
	carousel      *services.CarouselService
}

func NewContentHandler(announcements *services.AnnouncementService, carousel *services.CarouselService) *ContentHandler {
	return &ContentHandler{announcements: announcements, carousel: carousel}
}

func (h *ContentHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.announcements.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (h *ContentHandler) GetAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	announcement, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// CreateAnnouncement stores an announcement and notifies every user
func (h *ContentHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	announcement, err := h.announcements.Create(c.Request.Context(), announcementInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

func (h *ContentHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	announcement, err := h.announcements.Update(c.Request.Context(), id, announcementInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

func (h *ContentHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted successfully"})
}

func (h *ContentHandler) ListCarousel(c *gin.Context) {
	images, err := h.carousel.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *ContentHandler) AddCarouselImage(c *gin.Context) {
	var req dto.CarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "link is required")
		return
	}

	image, err := h.carousel.Add(c.Request.Context(), req.Link)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *ContentHandler) RemoveCarouselImage(c *gin.Context) {
	id, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}

	if err := h.carousel.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image removed successfully"})
}

func announcementInput(req dto.AnnouncementRequest) services.AnnouncementInput {
	return services.AnnouncementInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
	}
}
