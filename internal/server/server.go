package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/peoplekit/inbox-sync/internal/domain"
	"github.com/peoplekit/inbox-sync/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dev server accepts clients from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server bundles the REST API and the push hub.
type Server struct {
	storage *Storage
	tokens  *TokenService
	hub     *Hub
	logger  logging.Logger
	router  *gin.Engine
}

// NewServer wires the router over the given storage and token service.
func NewServer(storage *Storage, tokens *TokenService) *Server {
	s := &Server{
		storage: storage,
		tokens:  tokens,
		hub:     NewHub(),
		logger:  logging.With("component", "server"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/v1/auth/token", s.issueToken)
	router.GET("/ws/notifications", s.handleSocket)

	authorized := router.Group("/api/v1", s.requireToken())
	{
		authorized.GET("/notifications/", s.listNotifications)
		authorized.POST("/notifications/", s.createNotification)
		authorized.POST("/notifications/mark-read/:id", s.markRead)
	}

	s.router = router
	return s
}

// Router exposes the http handler, used by tests and Run.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves the API on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.router.Run(addr)
}

// Close shuts down the push hub.
func (s *Server) Close() {
	s.hub.Close()
}

// requireToken authenticates requests via the Authorization header.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

type tokenRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// issueToken signs a development token for the requested user.
func (s *Server) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.tokens.Generate(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// listNotifications returns the user's full inbox, newest first, as a
// bare JSON array.
func (s *Server) listNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")

	records, err := s.storage.List(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, records)
}

type createRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// createNotification stores a new record and pushes it to the user's
// open connections.
func (s *Server) createNotification(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.storage.Create(c.Request.Context(), userID, domain.Notification{
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Status:  domain.StatusUnread,
	})
	if err != nil {
		s.logger.Error("create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	s.hub.SendToUser(userID, record)
	c.JSON(http.StatusCreated, record)
}

// markRead flips one notification to READ.
func (s *Server) markRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id := c.Param("id")

	if err := s.storage.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		s.logger.Error("mark read failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mark read failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSocket authenticates the handshake via the token query
// parameter and keeps the connection registered until it drops.
func (s *Server) handleSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	s.hub.Register(claims.UserID, conn)
	s.logger.Debug("push connection opened", "user", claims.UserID)

	// Inbound frames are not part of the protocol; the read loop only
	// detects closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(claims.UserID, conn)
	s.logger.Debug("push connection closed", "user", claims.UserID)
}
