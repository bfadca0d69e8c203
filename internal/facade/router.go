package facade

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	"github.com/nbaqa/hro/internal/logger"
	"github.com/nbaqa/hro/internal/types"
)

// Router builds the gin engine exposing /chat, conversation CRUD,
// /system/info, and /healthz.
func (f *Facade) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/healthz", f.handleHealthz)
	r.GET("/system/info", f.handleSystemInfo)
	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	r.POST("/chat", f.handleChat)

	convs := r.Group("/conversations")
	convs.POST("", f.handleCreateConversation)
	convs.GET("", f.handleListConversations)
	convs.GET("/:id", f.handleGetConversation)
	convs.GET("/:id/messages", f.handleGetConversationMessages)
	convs.PUT("/:id", f.handleUpdateConversation)
	convs.DELETE("/:id", f.handleDeleteConversation)

	return r
}

// handleChat godoc
// @Summary      Ask a question
// @Description  Classify, retrieve, and answer an NBA question
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body types.ChatRequest true "chat request"
// @Success      200 {object} types.ChatResponse
// @Router       /chat [post]
func (f *Facade) handleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, newFacadeError(types.ErrInvalidInput, err.Error()))
		return
	}

	ctx := logger.CloneContext(c.Request.Context())
	resp, err := f.Chat(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success", "data": resp})
}

func respondError(c *gin.Context, err error) {
	fe, ok := err.(*FacadeError)
	if !ok {
		fe = newFacadeError(types.ErrInternal, err.Error())
	}
	status := http.StatusInternalServerError
	switch fe.Kind {
	case types.ErrInvalidInput:
		status = http.StatusBadRequest
	case types.ErrConversationNotFound:
		status = http.StatusNotFound
	case types.ErrDeadlineExceeded:
		status = http.StatusGatewayTimeout
	case types.ErrUpstreamUnavailable:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"code": -1, "msg": fe.Message, "error_kind": fe.Kind})
}

type systemInfoResponse struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

// Version/GoVersion are injected at build time via -ldflags.
var (
	Version   = "unknown"
	GoVersion = "unknown"
)

func (f *Facade) handleSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"msg":  "success",
		"data": systemInfoResponse{Version: Version, GoVersion: GoVersion},
	})
}

func (f *Facade) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (f *Facade) handleCreateConversation(c *gin.Context) {
	var body struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&body)

	ctx := logger.CloneContext(c.Request.Context())
	conv, err := f.convs.StartConversation(ctx, body.Title)
	if err != nil {
		respondError(c, newFacadeError(types.ErrInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success", "data": conv})
}

func (f *Facade) handleListConversations(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())
	convs, err := f.convs.List(ctx)
	if err != nil {
		respondError(c, newFacadeError(types.ErrInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success", "data": convs})
}

func (f *Facade) handleGetConversation(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())
	conv, err := f.convs.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success", "data": conv})
}

func (f *Facade) handleGetConversationMessages(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())
	history, err := f.convs.GetHistory(ctx, c.Param("id"), 0)
	if err != nil {
		respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success", "data": history})
}

func (f *Facade) handleUpdateConversation(c *gin.Context) {
	var body struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, newFacadeError(types.ErrInvalidInput, err.Error()))
		return
	}

	ctx := logger.CloneContext(c.Request.Context())
	id := c.Param("id")

	if body.Title != "" {
		if err := f.convs.Rename(ctx, id, body.Title); err != nil {
			respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
			return
		}
	}
	switch types.ConversationStatus(body.Status) {
	case types.ConversationArchived:
		if err := f.convs.Archive(ctx, id); err != nil {
			respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
			return
		}
	case types.ConversationDeleted:
		if err := f.convs.SoftDelete(ctx, id); err != nil {
			respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success"})
}

func (f *Facade) handleDeleteConversation(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())
	if err := f.convs.SoftDelete(ctx, c.Param("id")); err != nil {
		respondError(c, newFacadeError(types.ErrConversationNotFound, "conversation does not exist"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success"})
}
