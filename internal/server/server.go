package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/ingest"
)

// Server is the HTTP intake for storage notifications. One POST per
// uploaded object; the response status tells the push collaborator
// whether to redeliver.
type Server struct {
	router     *gin.Engine
	dispatcher *ingest.Dispatcher
}

// New builds the intake server around a dispatcher.
func New(dispatcher *ingest.Dispatcher) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:     gin.New(),
		dispatcher: dispatcher,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/events", s.handleEvent)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// handleEvent decodes one storage notification and runs the pipeline.
// 200 settles the event (success, skip, or malformed input); 500 asks
// for redelivery.
func (s *Server) handleEvent(c *gin.Context) {
	var ev ingest.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		// an unreadable payload can never succeed on redelivery
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	if err := s.dispatcher.Handle(ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving on the given port.
func (s *Server) Run(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}
