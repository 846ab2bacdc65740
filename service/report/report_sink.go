/*
 * @module service/report/report_sink
 * @description 质量报告文件导出，将报告写为带时间戳的JSON和HTML文件
 * @architecture 分层架构 - 输出适配层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 接收质量报告 -> 序列化JSON -> 渲染HTML模板 -> 写入输出目录
 * @rules 文件名携带生成时间戳，序列化失败只影响导出不影响检查流程
 * @dependencies encoding/json, html/template
 * @refs service/quality/quality_checker.go
 */

package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ecommerce-pipeline/service/models"
)

// FileSink 文件报告导出器
type FileSink struct {
	outputDir string
}

// NewFileSink 创建文件报告导出器
func NewFileSink(outputDir string) *FileSink {
	return &FileSink{outputDir: outputDir}
}

// Write 将质量报告写为JSON和HTML两个文件
func (s *FileSink) Write(report *models.QualityReport) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %v", err)
	}

	stamp := report.GeneratedAt.Format("20060102_150405")

	if err := s.writeJSON(report, stamp); err != nil {
		return err
	}
	return s.writeHTML(report, stamp)
}

// writeJSON 写入JSON格式报告
func (s *FileSink) writeJSON(report *models.QualityReport, stamp string) error {
	path := filepath.Join(s.outputDir, fmt.Sprintf("quality_check_%s.json", stamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("报告JSON序列化失败: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("报告JSON写入失败: %v", err)
	}

	slog.Info("质量报告JSON已导出", "path", path)
	return nil
}

// writeHTML 渲染并写入HTML格式报告
func (s *FileSink) writeHTML(report *models.QualityReport, stamp string) error {
	path := filepath.Join(s.outputDir, fmt.Sprintf("quality_report_%s.html", stamp))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("报告HTML文件创建失败: %v", err)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, s.buildView(report)); err != nil {
		return fmt.Errorf("报告HTML渲染失败: %v", err)
	}

	slog.Info("质量报告HTML已导出", "path", path)
	return nil
}

// reportView HTML模板视图数据
type reportView struct {
	ReportID     string
	GeneratedAt  string
	OverallScore string
	Grade        string
	Healthy      bool
	TotalChecks  int
	TotalPassed  int
	TotalFailed  int
	Dimensions   []dimensionView
	Issues       []models.Issue
	Anomalies    []models.AnomalyFinding
	RowCounts    []rowCountView
}

type dimensionView struct {
	Name    string
	Passed  int
	Failed  int
	Score   string
	Results []models.CheckResult
}

type rowCountView struct {
	Table string
	Count int64
}

func (s *FileSink) buildView(report *models.QualityReport) reportView {
	view := reportView{
		ReportID:     report.ReportID,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		OverallScore: fmt.Sprintf("%.2f", report.OverallScore),
		Grade:        report.Grade,
		Healthy:      report.Healthy,
		TotalChecks:  report.TotalChecks,
		TotalPassed:  report.TotalPassed,
		TotalFailed:  report.TotalFailed,
		Issues:       report.Issues,
		Anomalies:    report.Anomalies,
	}

	dimensions := make([]string, 0, len(report.Dimensions))
	for name := range report.Dimensions {
		dimensions = append(dimensions, name)
	}
	sort.Strings(dimensions)
	for _, name := range dimensions {
		dr := report.Dimensions[name]
		view.Dimensions = append(view.Dimensions, dimensionView{
			Name:    name,
			Passed:  dr.Passed,
			Failed:  dr.Failed,
			Score:   fmt.Sprintf("%.2f", dr.Score),
			Results: dr.Results,
		})
	}

	tables := make([]string, 0, len(report.RowCounts))
	for table := range report.RowCounts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		view.RowCounts = append(view.RowCounts, rowCountView{Table: table, Count: report.RowCounts[table]})
	}

	return view
}

var reportTemplate = template.Must(template.New("quality_report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>数据质量报告 {{.ReportID}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; color: #333; }
h1 { border-bottom: 2px solid #2c3e50; padding-bottom: 8px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #2c3e50; color: #fff; }
.passed { color: #27ae60; }
.failed { color: #c0392b; }
.summary { font-size: 1.1em; margin-bottom: 16px; }
</style>
</head>
<body>
<h1>数据质量报告</h1>
<p class="summary">
报告ID: {{.ReportID}}<br>
生成时间: {{.GeneratedAt}}<br>
总分: {{.OverallScore}} / 100 ({{.Grade}})<br>
检查: {{.TotalChecks}} 项，通过 {{.TotalPassed}}，失败 {{.TotalFailed}}<br>
健康状态: {{if .Healthy}}<span class="passed">健康</span>{{else}}<span class="failed">需要关注</span>{{end}}
</p>

{{range .Dimensions}}
<h2>{{.Name}} ({{.Score}}分，通过 {{.Passed}} / 失败 {{.Failed}})</h2>
<table>
<tr><th>检查项</th><th>状态</th><th>严重级别</th><th>期望</th><th>实际</th></tr>
{{range .Results}}
<tr>
<td>{{.CheckName}}</td>
<td class="{{if eq .Status "PASSED"}}passed{{else}}failed{{end}}">{{.Status}}</td>
<td>{{.Severity}}</td>
<td>{{.Expected}}</td>
<td>{{if .Error}}{{.Error}}{{else}}{{.Actual}}{{end}}</td>
</tr>
{{end}}
</table>
{{end}}

<h2>问题清单 ({{len .Issues}})</h2>
{{if .Issues}}
<table>
<tr><th>问题</th><th>表</th><th>列</th><th>行数</th><th>占比</th><th>级别</th><th>修复建议</th></tr>
{{range .Issues}}
<tr>
<td>{{.Type}}</td>
<td>{{.Table}}</td>
<td>{{.Column}}</td>
<td>{{.Count}}</td>
<td>{{printf "%.2f" .Percentage}}%</td>
<td class="{{if eq .Severity "ERROR"}}failed{{else}}passed{{end}}">{{.Severity}}</td>
<td>{{.RemediationHint}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="passed">未发现质量问题</p>
{{end}}

<h2>异常发现 ({{len .Anomalies}})</h2>
{{if .Anomalies}}
<table>
<tr><th>检测器</th><th>级别</th><th>对象</th><th>数值</th><th>说明</th></tr>
{{range .Anomalies}}
<tr><td>{{.Detector}}</td><td>{{.Severity}}</td><td>{{.EntityType}} {{.EntityID}}</td><td>{{printf "%.2f" .Value}}</td><td>{{.Description}}</td></tr>
{{end}}
</table>
{{else}}
<p class="passed">未发现显著异常</p>
{{end}}

<h2>表行数</h2>
<table>
<tr><th>表</th><th>行数</th></tr>
{{range .RowCounts}}
<tr><td>{{.Table}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
</body>
</html>
`))
