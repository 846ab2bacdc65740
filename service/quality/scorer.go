/*
 * @module service/quality/scorer
 * @description 质量评分器，基于维度检查结果计算总分与等级
 * @architecture 策略模式 - 通过率评分为默认策略，扣分制作为备选策略
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 维度结果 -> 计算总分 -> 映射等级
 * @rules 各维度等权参与总分，等级映射表对所有评分策略共用
 * @refs quality_checker.go
 */

package quality

import "ecommerce-pipeline/service/models"

// Scorer 质量评分策略接口
type Scorer interface {
	// Score 基于各维度检查结果计算0-100总分
	Score(dimensions map[string]models.DimensionResult) float64
}

// PassRateScorer 通过率评分策略：各维度通过率的等权平均
type PassRateScorer struct{}

// Score 计算各维度得分的等权平均值
func (PassRateScorer) Score(dimensions map[string]models.DimensionResult) float64 {
	if len(dimensions) == 0 {
		return 100
	}
	var sum float64
	for _, dr := range dimensions {
		sum += dr.Score
	}
	return sum / float64(len(dimensions))
}

// DeductionScorer 扣分制评分策略：满分100，ERROR级失败扣5分，WARNING级失败扣2分
type DeductionScorer struct{}

// Score 按失败检查的严重级别扣分，下限为0
func (DeductionScorer) Score(dimensions map[string]models.DimensionResult) float64 {
	score := 100.0
	for _, dr := range dimensions {
		for _, r := range dr.Results {
			if r.Status == models.StatusPassed {
				continue
			}
			switch r.Severity {
			case models.SeverityWarning:
				score -= 2
			default:
				score -= 5
			}
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Grade 将总分映射为质量等级
func Grade(score float64) string {
	switch {
	case score >= 99:
		return "A+ (Excellent)"
	case score >= 95:
		return "A (Very Good)"
	case score >= 90:
		return "B (Good)"
	case score >= 80:
		return "C (Acceptable)"
	default:
		return "F (Needs Attention)"
	}
}
