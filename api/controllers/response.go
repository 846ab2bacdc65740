/*
 * @module api/controllers/response
 * @description 统一响应信封，status为0表示成功，非0时msg携带错误信息
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 无状态响应构造
 * @rules 所有接口统一使用该信封，分页接口额外返回total/page/size
 * @refs quality_controller.go, pipeline_controller.go
 */

package controllers

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"质量检查完成"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构，用于报告和运行记录列表
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"查询成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"42"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}
