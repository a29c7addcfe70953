package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/mailvault/internal/database"
	"github.com/okatkov/mailvault/pkg/models"
)

// EmailUpload is the request body for storing an email record.
// No field is required; absent fields are stored as empty text, and a
// client-sent id is ignored.
type EmailUpload struct {
	InboxType string `json:"inbox_type"`
	Receiver  string `json:"receiver"`
	Sender    string `json:"sender"`
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Tag       string `json:"tag"`
	Reply     string `json:"reply"`
}

// handleListEmails returns every stored email as a JSON array
func (s *Server) handleListEmails(c *gin.Context) {
	emails, err := s.db.ListEmails(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list emails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emails)
}

// handleSearchEmails returns the emails matching the sender/subject/tag
// query parameters. The unfiltered collection route stays parameter-blind;
// this route is the filtered view.
func (s *Server) handleSearchEmails(c *gin.Context) {
	filter := database.SearchFilter{
		Sender:  c.Query("sender"),
		Subject: c.Query("subject"),
		Tag:     c.Query("tag"),
	}

	emails, err := s.db.SearchEmails(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("failed to search emails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emails)
}

// handleCreateEmail stores one email record
func (s *Server) handleCreateEmail(c *gin.Context) {
	var in EmailUpload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := &models.Email{
		InboxType: in.InboxType,
		Receiver:  in.Receiver,
		Sender:    in.Sender,
		Time:      in.Time,
		Subject:   in.Subject,
		Content:   in.Content,
		Tag:       in.Tag,
		Reply:     in.Reply,
	}

	ctx := c.Request.Context()
	if err := s.db.CreateEmail(ctx, email); err != nil {
		s.logger.Error("failed to create email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.notifier != nil {
		s.notifier.EmailStored(ctx, email)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Email uploaded"})
}

// handleGetEmail returns a single email record by id
func (s *Server) handleGetEmail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	email, err := s.db.GetEmailByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get email", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, email)
}
