/*
 * @module api/controllers/quality_controller
 * @description 数据质量控制器，提供质量检查触发、异常检测和历史报告查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 请求接收 -> 业务逻辑处理 -> 响应返回
 * @rules 检查执行为同步操作，返回完整报告，分页参数有默认值
 * @dependencies net/http, strconv
 * @refs service/quality/
 */

package controllers

import (
	"net/http"
	"strconv"

	"ecommerce-pipeline/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// QualityController 数据质量控制器
type QualityController struct{}

// NewQualityController 创建数据质量控制器实例
func NewQualityController() *QualityController {
	return &QualityController{}
}

// RunChecks 执行质量检查
// @Summary 执行数据质量检查
// @Description 同步执行全部维度的质量检查并返回完整报告
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=models.QualityReport}
// @Failure 500 {object} APIResponse
// @Router /quality/checks [post]
func (c *QualityController) RunChecks(w http.ResponseWriter, r *http.Request) {
	report, err := service.GlobalQualityService.RunAllChecks(r.Context())
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "质量检查执行失败: " + err.Error()})
		return
	}

	render.JSON(w, r, &APIResponse{Status: 0, Msg: "质量检查完成", Data: report})
}

// RunAnomalyDetection 执行异常检测
// @Summary 执行异常检测
// @Description 单独执行统计异常检测和业务规则检测
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.AnomalyFinding}
// @Router /quality/anomalies [post]
func (c *QualityController) RunAnomalyDetection(w http.ResponseWriter, r *http.Request) {
	findings := service.GlobalQualityService.RunAnomalyDetection(r.Context())
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "异常检测完成", Data: findings})
}

// GetReports 获取历史质量报告列表
// @Summary 获取质量报告列表
// @Description 分页查询历史质量报告，按生成时间倒序
// @Tags 数据质量
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.QualityReportRecord}
// @Failure 500 {object} APIResponse
// @Router /quality/reports [get]
func (c *QualityController) GetReports(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	records, total, err := service.GlobalQualityService.GetReports(page, size)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "查询质量报告失败: " + err.Error()})
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   records,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetReport 获取单个质量报告
// @Summary 获取质量报告详情
// @Description 按报告ID查询质量报告详情
// @Tags 数据质量
// @Produce json
// @Param id path string true "报告ID"
// @Success 200 {object} APIResponse{data=models.QualityReportRecord}
// @Failure 404 {object} APIResponse
// @Router /quality/reports/{id} [get]
func (c *QualityController) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := service.GlobalQualityService.GetReport(id)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "质量报告不存在"})
		return
	}

	render.JSON(w, r, &APIResponse{Status: 0, Msg: "查询成功", Data: record})
}

// pageParams 解析分页参数
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	return page, size
}
