/*
 * @module api/controllers/pipeline_controller
 * @description 管道控制器，提供数据生成、加载、汇总刷新和完整管道运行的触发接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 请求接收 -> 同步执行管道阶段 -> 返回运行记录
 * @rules 管道阶段同步执行，失败时返回运行记录中的错误信息
 * @dependencies net/http
 * @refs service/pipeline/
 */

package controllers

import (
	"net/http"

	"ecommerce-pipeline/service"

	"github.com/go-chi/render"
)

// PipelineController 管道控制器
type PipelineController struct{}

// NewPipelineController 创建管道控制器实例
func NewPipelineController() *PipelineController {
	return &PipelineController{}
}

// Generate 生成合成数据
// @Summary 生成合成数据
// @Description 按配置的规模和随机种子生成客户、商品和订单CSV文件
// @Tags 管道
// @Produce json
// @Success 200 {object} APIResponse{data=models.PipelineRunRecord}
// @Failure 500 {object} APIResponse
// @Router /pipeline/generate [post]
func (c *PipelineController) Generate(w http.ResponseWriter, r *http.Request) {
	record, err := service.GlobalPipelineService.Generate(r.Context())
	c.respond(w, r, "数据生成完成", record, err)
}

// Load 加载CSV数据入库
// @Summary 加载CSV数据
// @Description 清空目标表并从CSV文件分批加载数据，完成后校验外键完整性
// @Tags 管道
// @Produce json
// @Success 200 {object} APIResponse{data=models.PipelineRunRecord}
// @Failure 500 {object} APIResponse
// @Router /pipeline/load [post]
func (c *PipelineController) Load(w http.ResponseWriter, r *http.Request) {
	record, err := service.GlobalPipelineService.Load(r.Context())
	c.respond(w, r, "数据加载完成", record, err)
}

// Refresh 刷新汇总表
// @Summary 刷新汇总表
// @Description 重建客户、商品、日度和月度四张汇总表
// @Tags 管道
// @Produce json
// @Success 200 {object} APIResponse{data=models.PipelineRunRecord}
// @Failure 500 {object} APIResponse
// @Router /pipeline/refresh [post]
func (c *PipelineController) Refresh(w http.ResponseWriter, r *http.Request) {
	record, err := service.GlobalPipelineService.Refresh(r.Context())
	c.respond(w, r, "汇总表刷新完成", record, err)
}

// RunFull 运行完整管道
// @Summary 运行完整管道
// @Description 依次执行数据生成、加载、汇总刷新和质量检查
// @Tags 管道
// @Produce json
// @Success 200 {object} APIResponse{data=models.PipelineRunRecord}
// @Failure 500 {object} APIResponse
// @Router /pipeline/run [post]
func (c *PipelineController) RunFull(w http.ResponseWriter, r *http.Request) {
	record, err := service.GlobalPipelineService.RunFull(r.Context())
	c.respond(w, r, "管道运行完成", record, err)
}

// GetRuns 获取管道运行记录
// @Summary 获取管道运行记录
// @Description 分页查询管道各阶段的历史运行记录
// @Tags 管道
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.PipelineRunRecord}
// @Failure 500 {object} APIResponse
// @Router /pipeline/runs [get]
func (c *PipelineController) GetRuns(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	records, total, err := service.GlobalPipelineService.GetRuns(page, size)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "查询运行记录失败: " + err.Error()})
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

func (c *PipelineController) respond(w http.ResponseWriter, r *http.Request, msg string,
	record interface{}, err error) {
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error(), Data: record})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: msg, Data: record})
}
