/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供服务健康状态和数据库就绪检查
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 健康检查不依赖外部服务，就绪检查要求数据库可用
 * @dependencies net/http
 * @refs service/init.go
 */

package controllers

import (
	"net/http"
	"time"

	"ecommerce-pipeline/service"

	"github.com/go-chi/render"
)

// HealthController 健康检查控制器
type HealthController struct{}

// NewHealthController 创建健康检查控制器实例
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"ecommerce-pipeline"`
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "ecommerce-pipeline",
	})
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查服务是否就绪，要求分析库连接可用
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	if service.AnalyticsStore != nil {
		if err := service.AnalyticsStore.Ping(r.Context()); err != nil {
			status = "not ready"
			render.Status(r, http.StatusServiceUnavailable)
		}
	}

	render.JSON(w, r, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "ecommerce-pipeline",
	})
}
