package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"intent_finder/config"
	_ "intent_finder/docs" // 导入 swagger 文档
	"intent_finder/logger"
	"intent_finder/models"
	"intent_finder/services"
	"intent_finder/utils"
)

// HealthHandler godoc
// @Summary 健康检查
// @Description 部署平台的存活探针
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status":  "healthy",
		"service": "intent-finder",
	})
}

// ExtractHandler godoc
// @Summary 提取产品信息
// @Description 根据网站URL（或manual:前缀的手工描述）生成产品描述、目标客户群和客户痛点
// @Tags 产品分析
// @Accept json
// @Produce json
// @Param request body models.ExtractRequest true "提取请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/extract [post]
func ExtractHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.ExtractRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireField(w, "url", strings.TrimSpace(req.URL)) {
		return
	}

	resp, err := services.ExtractProduct(r.Context(), cfg, req.URL)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeExtractError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, resp)
}

// GTMTopicsHandler godoc
// @Summary 生成GTM话题
// @Description 根据产品描述生成面向客户痛点的GTM话题
// @Tags 产品分析
// @Accept json
// @Produce json
// @Param request body models.GTMRequest true "话题生成请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/gtm-topics [post]
func GTMTopicsHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.GTMRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireField(w, "description", strings.TrimSpace(req.Description)) {
		return
	}

	topics, err := services.GenerateGTMTopics(r.Context(), cfg, req.Description)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeLLMError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, models.GTMResponse{Topics: topics})
}

// KeywordsHandler godoc
// @Summary 生成搜索关键词
// @Description 根据GTM话题和产品描述生成买家意图搜索查询
// @Tags 产品分析
// @Accept json
// @Produce json
// @Param request body models.KeywordsRequest true "关键词生成请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/keywords [post]
func KeywordsHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.KeywordsRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireField(w, "topic", strings.TrimSpace(req.Topic)) {
		return
	}

	queries, err := services.GenerateSearchKeywords(r.Context(), cfg, req.Topic, req.Description)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeLLMError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, models.KeywordsResponse{Queries: queries})
}

// SearchHandler godoc
// @Summary 搜索买家意图帖子
// @Description 跨平台搜索后经两阶段过滤（启发式排序 + LLM语义过滤）返回高意图帖子
// @Tags 意图搜索
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "搜索请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/search [post]
func SearchHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.SearchRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if len(req.Queries) == 0 {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"param": "queries",
		})
		return
	}

	posts, err := services.SearchPosts(r.Context(), cfg, req.Topic, req.Queries, req.PerQuery)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeSearchError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, models.SearchResponse{Posts: posts})
}

// ReplyHandler godoc
// @Summary 生成回复草稿
// @Description 为选定帖子生成一段简短的公开回复
// @Tags 回复
// @Accept json
// @Produce json
// @Param request body models.ReplyRequest true "回复生成请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/reply [post]
func ReplyHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.ReplyRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireField(w, "topic", strings.TrimSpace(req.Topic)) {
		return
	}

	text, err := services.GenerateReply(r.Context(), cfg, req.Topic, req.Post)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeLLMError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, models.ReplyResponse{Response: text})
}

// ReplyStreamHandler godoc
// @Summary 流式生成回复草稿
// @Description 通过SSE逐块返回生成的回复文本，结束时发送[DONE]
// @Tags 回复
// @Accept json
// @Produce text/event-stream
// @Param request body models.ReplyRequest true "回复生成请求"
// @Success 200 {string} string "SSE事件流"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /api/reply/stream [post]
func ReplyStreamHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.ReplyRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireField(w, "topic", strings.TrimSpace(req.Topic)) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteCustomErrorResponse(w, models.CodeServerError, "streaming unsupported", map[string]interface{}{})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // 禁用nginx缓冲

	err := services.GenerateReplyStream(r.Context(), cfg, req.Topic, req.Post, func(chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.Error("回复流式生成失败", "error", err)
		fmt.Fprintf(w, "data: [ERROR] %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	// 发送结束标记
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r *chi.Mux, cfg *config.Config) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	r.Get("/health", HealthHandler)

	r.Post("/api/extract", func(w http.ResponseWriter, r *http.Request) {
		ExtractHandler(w, r, cfg)
	})

	r.Post("/api/gtm-topics", func(w http.ResponseWriter, r *http.Request) {
		GTMTopicsHandler(w, r, cfg)
	})

	r.Post("/api/keywords", func(w http.ResponseWriter, r *http.Request) {
		KeywordsHandler(w, r, cfg)
	})

	r.Post("/api/search", func(w http.ResponseWriter, r *http.Request) {
		SearchHandler(w, r, cfg)
	})

	r.Post("/api/reply", func(w http.ResponseWriter, r *http.Request) {
		ReplyHandler(w, r, cfg)
	})

	r.Post("/api/reply/stream", func(w http.ResponseWriter, r *http.Request) {
		ReplyStreamHandler(w, r, cfg)
	})
}
