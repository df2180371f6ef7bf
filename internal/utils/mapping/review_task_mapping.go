package mapping

import (
	"encoding/json"

	"github.com/sekrobank/sekro_bank_api/internal/core/domain"
	"github.com/sekrobank/sekro_bank_api/internal/models"
)

// ToModelReviewTask converts a domain HumanReviewTask to a model ReviewTask.
// The input snapshot is serialized to JSON for the JSONB column.
func ToModelReviewTask(d domain.HumanReviewTask) (models.ReviewTask, error) {
	input, err := json.Marshal(d.Input)
	if err != nil {
		return models.ReviewTask{}, err
	}
	m := models.ReviewTask{
		TaskID:      d.TaskID,
		WorkflowID:  d.WorkflowID,
		State:       string(d.State),
		ClaimantID:  d.ClaimantID,
		Input:       input,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
	if d.Decision != nil {
		dec := string(*d.Decision)
		m.Decision = &dec
	}
	return m, nil
}

// ToDomainReviewTask converts a model ReviewTask to a domain HumanReviewTask.
func ToDomainReviewTask(m models.ReviewTask) (domain.HumanReviewTask, error) {
	var input domain.ReviewTaskInput
	if len(m.Input) > 0 {
		if err := json.Unmarshal(m.Input, &input); err != nil {
			return domain.HumanReviewTask{}, err
		}
	}
	d := domain.HumanReviewTask{
		TaskID:      m.TaskID,
		WorkflowID:  m.WorkflowID,
		State:       domain.ReviewTaskState(m.State),
		ClaimantID:  m.ClaimantID,
		Input:       input,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
	if m.Decision != nil {
		dec := domain.ReviewDecision(*m.Decision)
		d.Decision = &dec
	}
	return d, nil
}

// ToDomainReviewTaskSlice converts a slice of model ReviewTasks to domain tasks.
func ToDomainReviewTaskSlice(ms []models.ReviewTask) ([]domain.HumanReviewTask, error) {
	ds := make([]domain.HumanReviewTask, len(ms))
	for i, m := range ms {
		d, err := ToDomainReviewTask(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}
